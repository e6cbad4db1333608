package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Event is a single telemetry event delivered over SSE. IDs are monotonic
// per hub so clients can resume with Last-Event-ID.
type Event struct {
	ID   int64          `json:"id,omitempty"`
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

// Client is one SSE subscriber connection.
type Client struct {
	id     string
	writer http.ResponseWriter
	ctx    context.Context
	cancel context.CancelFunc
	events chan Event
	mu     sync.Mutex // guards writer
}

// Hub fans rig state changes out to SSE subscribers. Events are buffered in
// a bounded ring so reconnecting clients can replay what they missed.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	buffer  *eventBuffer
	nextID  int64

	heartbeatInterval time.Duration
	heartbeatTicker   *time.Ticker
	stopHeartbeat     chan struct{}

	done chan struct{}
	wg   sync.WaitGroup
}

// Options tunes the hub. Zero values get sensible defaults.
type Options struct {
	BufferSize        int
	HeartbeatInterval time.Duration
}

// NewHub creates a telemetry hub.
func NewHub(opts Options) *Hub {
	if opts.BufferSize <= 0 {
		opts.BufferSize = 50
	}
	if opts.HeartbeatInterval <= 0 {
		opts.HeartbeatInterval = 15 * time.Second
	}
	return &Hub{
		clients:           make(map[string]*Client),
		buffer:            newEventBuffer(opts.BufferSize),
		heartbeatInterval: opts.HeartbeatInterval,
		done:              make(chan struct{}),
	}
}

// Subscribe registers the request as an SSE client and blocks until the
// client disconnects or the hub stops. Honors Last-Event-ID for replay.
func (h *Hub) Subscribe(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "text/event-stream; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	clientCtx, cancel := context.WithCancel(ctx)
	client := &Client{
		id:     fmt.Sprintf("client_%d", time.Now().UnixNano()),
		writer: w,
		ctx:    clientCtx,
		cancel: cancel,
		events: make(chan Event, 100),
	}

	h.mu.Lock()
	h.clients[client.id] = client
	if len(h.clients) == 1 && h.heartbeatTicker == nil {
		h.startHeartbeat()
	}
	h.mu.Unlock()

	if err := h.sendEvent(client, Event{Type: "ready", Data: map[string]any{
		"ts": time.Now().UTC().Format(time.RFC3339),
	}}); err != nil {
		h.unregister(client.id)
		return fmt.Errorf("failed to send ready event: %w", err)
	}

	if lastStr := r.Header.Get("Last-Event-ID"); lastStr != "" {
		if lastID, err := strconv.ParseInt(lastStr, 10, 64); err == nil {
			for _, ev := range h.buffer.eventsAfter(lastID) {
				if err := h.sendEvent(client, ev); err != nil {
					h.unregister(client.id)
					return fmt.Errorf("failed to replay events: %w", err)
				}
			}
		}
	}

	h.serveClient(client)
	return nil
}

// Publish buffers the event and fans it out to every connected client.
// Slow clients get the event dropped rather than blocking the publisher.
func (h *Hub) Publish(event Event) {
	h.mu.Lock()
	if event.ID == 0 {
		h.nextID++
		event.ID = h.nextID
	}
	if event.Type != "heartbeat" {
		h.buffer.add(event)
	}
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		select {
		case <-c.ctx.Done():
		case <-h.done:
			return
		case c.events <- event:
		default:
		}
	}
}

// PublishState is a convenience for the common state-change event.
func (h *Hub) PublishState(data map[string]any) {
	h.Publish(Event{Type: "state", Data: data})
}

func (h *Hub) sendEvent(c *Client, event Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if event.ID > 0 {
		if _, err := fmt.Fprintf(c.writer, "id: %d\n", event.ID); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(c.writer, "event: %s\n", event.Type); err != nil {
		return err
	}
	data, err := json.Marshal(event.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}
	if _, err := fmt.Fprintf(c.writer, "data: %s\n\n", data); err != nil {
		return err
	}
	if flusher, ok := c.writer.(http.Flusher); ok {
		flusher.Flush()
	}
	return nil
}

// serveClient drains the client's event channel until disconnect. The
// channel is never closed; cancellation of the client context ends the
// loop and publishers skip cancelled clients.
func (h *Hub) serveClient(c *Client) {
	defer h.unregister(c.id)

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-h.done:
			return
		case event := <-c.events:
			if err := h.sendEvent(c, event); err != nil {
				return
			}
		}
	}
}

func (h *Hub) unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c, ok := h.clients[clientID]; ok {
		c.cancel()
		delete(h.clients, clientID)
		if len(h.clients) == 0 && h.heartbeatTicker != nil {
			h.heartbeatTicker.Stop()
			h.heartbeatTicker = nil
			close(h.stopHeartbeat)
			h.stopHeartbeat = nil
		}
	}
}

// startHeartbeat runs while at least one client is connected.
// Caller must hold h.mu.
func (h *Hub) startHeartbeat() {
	h.heartbeatTicker = time.NewTicker(h.heartbeatInterval)
	h.stopHeartbeat = make(chan struct{})

	ticker := h.heartbeatTicker
	stop := h.stopHeartbeat

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		for {
			select {
			case <-ticker.C:
				h.Publish(Event{Type: "heartbeat", Data: map[string]any{
					"ts": time.Now().UTC().Format(time.RFC3339),
				}})
			case <-stop:
				return
			case <-h.done:
				return
			}
		}
	}()
}

// Stop disconnects all clients and stops the heartbeat.
func (h *Hub) Stop() {
	close(h.done)

	h.mu.Lock()
	for _, c := range h.clients {
		c.cancel()
	}
	h.clients = make(map[string]*Client)
	if h.heartbeatTicker != nil {
		h.heartbeatTicker.Stop()
		h.heartbeatTicker = nil
	}
	if h.stopHeartbeat != nil {
		close(h.stopHeartbeat)
		h.stopHeartbeat = nil
	}
	h.mu.Unlock()

	h.wg.Wait()
}

// eventBuffer is a bounded FIFO of recent events used for replay.
type eventBuffer struct {
	mu       sync.RWMutex
	events   []Event
	capacity int
}

func newEventBuffer(capacity int) *eventBuffer {
	return &eventBuffer{
		events:   make([]Event, 0, capacity),
		capacity: capacity,
	}
}

func (b *eventBuffer) add(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.events = append(b.events, event)
	if len(b.events) > b.capacity {
		b.events = b.events[1:]
	}
}

func (b *eventBuffer) eventsAfter(lastID int64) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var result []Event
	for _, ev := range b.events {
		if ev.ID > lastID {
			result = append(result, ev)
		}
	}
	return result
}
