package pipeline

import (
	"errors"

	"github.com/M1noa/DocuCheat/internal/answer"
)

// Per-question attempts against the answer service: the initial call plus
// exactly one retry after a fixed delay.
const MaxAnswerAttempts = 2

// IsRetryable reports whether an error came from the answer service
// transport and is worth one more attempt. The invalid-question judgment
// never takes this path; it arrives as a successful reply.
func IsRetryable(err error) bool {
	var svcErr *answer.ServiceError
	return errors.As(err, &svcErr)
}

// statusCodeOf extracts the HTTP status from a service error, 0 otherwise.
func statusCodeOf(err error) int {
	var svcErr *answer.ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.StatusCode
	}
	return 0
}
