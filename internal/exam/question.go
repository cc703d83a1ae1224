package exam

import (
	"fmt"
	"strings"
)

// Choice is one lettered answer option. Letters are unique within a
// question but not necessarily contiguous.
type Choice struct {
	Letter string `json:"letter"`
	Text   string `json:"text"`
}

// Question is a validated multiple-choice question. Text and choice texts
// are whitespace-normalized; Number is kept as parsed, not re-numbered.
type Question struct {
	Number  int      `json:"number"`
	Text    string   `json:"text"`
	Choices []Choice `json:"choices"`
}

// Render formats the question the way it is presented to the answer
// service and echoed in events: numbered body followed by lettered choices.
func (q Question) Render() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d. %s", q.Number, q.Text)
	for _, c := range q.Choices {
		fmt.Fprintf(&sb, "\n%s. %s", c.Letter, c.Text)
	}
	return sb.String()
}

// normalize collapses whitespace runs to single spaces and trims.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
