package ws

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"
)

func testHub() *Hub {
	return NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func recv(t *testing.T, ch chan []byte) []byte {
	t.Helper()
	select {
	case data := <-ch:
		return data
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func recvNone(t *testing.T, ch chan []byte) {
	t.Helper()
	select {
	case data := <-ch:
		t.Fatalf("expected no event, got %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_BroadcastReachesSubscriber(t *testing.T) {
	hub := testHub()

	conn := &Connection{RunID: "run-1", Send: make(chan []byte, 16)}
	hub.Register(conn)

	hub.Emit("run-1", "status", map[string]any{"message": "working", "progress": 10})

	var env Envelope
	if err := json.Unmarshal(recv(t, conn.Send), &env); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if env.Event != "status" {
		t.Errorf("expected status event, got %q", env.Event)
	}
}

func TestHub_IsolatesRuns(t *testing.T) {
	hub := testHub()

	conn := &Connection{RunID: "run-a", Send: make(chan []byte, 16)}
	hub.Register(conn)

	hub.Emit("run-b", "status", "other run")
	recvNone(t, conn.Send)
}

func TestHub_ReplaysBacklogToLateSubscriber(t *testing.T) {
	hub := testHub()

	hub.Emit("run-1", "status", "first")
	hub.Emit("run-1", "stats", "second")

	// Give the run loop time to drain the broadcast buffer before the
	// late client joins.
	time.Sleep(20 * time.Millisecond)

	conn := &Connection{RunID: "run-1", Send: make(chan []byte, 16)}
	hub.Register(conn)

	var first, second Envelope
	if err := json.Unmarshal(recv(t, conn.Send), &first); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if err := json.Unmarshal(recv(t, conn.Send), &second); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if first.Event != "status" || second.Event != "stats" {
		t.Errorf("expected replay in emission order, got %q then %q", first.Event, second.Event)
	}
}

func TestHub_ForgetDropsBacklog(t *testing.T) {
	hub := testHub()

	hub.Emit("run-1", "status", "gone")
	time.Sleep(20 * time.Millisecond)
	hub.Forget("run-1")

	conn := &Connection{RunID: "run-1", Send: make(chan []byte, 16)}
	hub.Register(conn)
	recvNone(t, conn.Send)
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	hub := testHub()

	conn := &Connection{RunID: "run-1", Send: make(chan []byte, 16)}
	hub.Register(conn)
	hub.Unregister(conn)

	select {
	case _, ok := <-conn.Send:
		if ok {
			t.Fatal("expected closed channel, got a message")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for channel close")
	}

	// Later broadcasts must not panic on the removed connection.
	hub.Emit("run-1", "status", "after unregister")
	time.Sleep(20 * time.Millisecond)
}
