package telemetry

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// sseRecorder is a ResponseWriter safe to inspect while the hub writes.
type sseRecorder struct {
	mu     sync.Mutex
	body   strings.Builder
	header http.Header
}

func newSSERecorder() *sseRecorder {
	return &sseRecorder{header: make(http.Header)}
}

func (r *sseRecorder) Header() http.Header { return r.header }

func (r *sseRecorder) WriteHeader(int) {}

func (r *sseRecorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.body.Write(p)
}

func (r *sseRecorder) Body() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.body.String()
}

func startSubscriber(t *testing.T, hub *Hub, lastEventID string) (*sseRecorder, context.CancelFunc, chan error) {
	t.Helper()

	rec := newSSERecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/telemetry", nil)
	if lastEventID != "" {
		req.Header.Set("Last-Event-ID", lastEventID)
	}
	ctx, cancel := context.WithCancel(req.Context())

	done := make(chan error, 1)
	go func() {
		done <- hub.Subscribe(ctx, rec, req.WithContext(ctx))
	}()

	// Wait for the ready event so the client is registered.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if strings.Contains(rec.Body(), "event: ready") {
			return rec, cancel, done
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	t.Fatal("Subscriber never received ready event")
	return nil, nil, nil
}

func waitForBody(t *testing.T, rec *sseRecorder, substr string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if strings.Contains(rec.Body(), substr) {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Body never contained %q, got:\n%s", substr, rec.Body())
}

func TestSubscribeSendsReadyEvent(t *testing.T) {
	hub := NewHub(Options{})
	defer hub.Stop()

	rec, cancel, done := startSubscriber(t, hub, "")
	cancel()
	<-done

	if !strings.Contains(rec.Body(), "event: ready") {
		t.Errorf("Expected ready event, got:\n%s", rec.Body())
	}
}

func TestPublishReachesSubscriber(t *testing.T) {
	hub := NewHub(Options{})
	defer hub.Stop()

	rec, cancel, done := startSubscriber(t, hub, "")
	defer func() { cancel(); <-done }()

	hub.PublishState(map[string]any{"frequencyHz": 14250000})

	waitForBody(t, rec, "event: state")
	waitForBody(t, rec, "14250000")
}

func TestSSEFraming(t *testing.T) {
	hub := NewHub(Options{})
	defer hub.Stop()

	rec, cancel, done := startSubscriber(t, hub, "")
	defer func() { cancel(); <-done }()

	hub.Publish(Event{Type: "state", Data: map[string]any{"mode": "USB"}})
	waitForBody(t, rec, `"mode":"USB"`)

	// Every data line must be preceded by an event line in its block.
	scanner := bufio.NewScanner(strings.NewReader(rec.Body()))
	sawEvent := false
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			sawEvent = true
		case strings.HasPrefix(line, "data: "):
			if !sawEvent {
				t.Errorf("data line without preceding event line: %q", line)
			}
		case line == "":
			sawEvent = false
		}
	}
}

func TestReplayAfterLastEventID(t *testing.T) {
	hub := NewHub(Options{BufferSize: 10})
	defer hub.Stop()

	// Populate the replay buffer with no subscribers attached.
	hub.Publish(Event{Type: "state", Data: map[string]any{"seq": 1}})
	hub.Publish(Event{Type: "state", Data: map[string]any{"seq": 2}})
	hub.Publish(Event{Type: "state", Data: map[string]any{"seq": 3}})

	rec, cancel, done := startSubscriber(t, hub, "1")
	defer func() { cancel(); <-done }()

	waitForBody(t, rec, `"seq":2`)
	waitForBody(t, rec, `"seq":3`)
	if strings.Contains(rec.Body(), `"seq":1`) {
		t.Error("Event at or before Last-Event-ID must not be replayed")
	}
}

func TestBufferEvictsOldest(t *testing.T) {
	buf := newEventBuffer(2)
	buf.add(Event{ID: 1, Type: "state"})
	buf.add(Event{ID: 2, Type: "state"})
	buf.add(Event{ID: 3, Type: "state"})

	events := buf.eventsAfter(0)
	if len(events) != 2 {
		t.Fatalf("Expected 2 buffered events, got %d", len(events))
	}
	if events[0].ID != 2 || events[1].ID != 3 {
		t.Errorf("Expected events 2 and 3, got %d and %d", events[0].ID, events[1].ID)
	}
}

func TestHeartbeat(t *testing.T) {
	hub := NewHub(Options{HeartbeatInterval: 20 * time.Millisecond})
	defer hub.Stop()

	rec, cancel, done := startSubscriber(t, hub, "")
	defer func() { cancel(); <-done }()

	waitForBody(t, rec, "event: heartbeat")
}

func TestStopDisconnectsClients(t *testing.T) {
	hub := NewHub(Options{})

	_, cancel, done := startSubscriber(t, hub, "")
	defer cancel()

	hub.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Subscriber did not exit after Stop()")
	}
}
