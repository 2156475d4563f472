package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/motion-control/mcc/internal/config"
)

// Event is one SSE telemetry event.
type Event struct {
	ID   int64                  `json:"id,omitempty"`
	Type string                 `json:"type"`
	Data map[string]interface{} `json:"data"`
}

// Client is one SSE subscriber connection.
type Client struct {
	ID      string
	Writer  http.ResponseWriter
	Context context.Context
	Cancel  context.CancelFunc
	LastID  int64
	Events  chan Event
	once    sync.Once
	mu      sync.Mutex // protects Writer access
}

// SnapshotFunc supplies the state payload for the initial ready event.
type SnapshotFunc func() map[string]interface{}

// Hub distributes controller events over a single SSE stream.
//
// LOCK ORDERING:
// 1. h.mu (Hub RWMutex) - protects clients map and heartbeat state
// 2. EventBuffer.mu - protects buffer contents
// 3. Client.once - ensures single channel close
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client

	buffer *EventBuffer
	nextID atomic.Int64

	config   *config.TimingConfig
	snapshot SnapshotFunc

	heartbeatTicker *time.Ticker
	stopHeartbeat   chan bool

	done chan struct{}
	wg   sync.WaitGroup
}

// EventBuffer is a bounded replay buffer of recent events.
type EventBuffer struct {
	mu       sync.RWMutex
	events   []Event
	capacity int
}

// NewHub creates a hub. snapshot may be nil; the ready event then carries an
// empty snapshot.
func NewHub(timingConfig *config.TimingConfig, snapshot SnapshotFunc) *Hub {
	return &Hub{
		clients:  make(map[string]*Client),
		buffer:   NewEventBuffer(timingConfig.EventBufferSize),
		config:   timingConfig,
		snapshot: snapshot,
		done:     make(chan struct{}),
	}
}

// Subscribe handles an SSE client subscription with Last-Event-ID resume
// support. It blocks until the client disconnects or the hub stops.
func (h *Hub) Subscribe(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "text/event-stream; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Cache-Control")

	clientCtx, cancel := context.WithCancel(ctx)
	clientID := fmt.Sprintf("client_%d", time.Now().UnixNano())

	lastEventID := int64(0)
	if lastIDStr := r.Header.Get("Last-Event-ID"); lastIDStr != "" {
		if id, err := strconv.ParseInt(lastIDStr, 10, 64); err == nil {
			lastEventID = id
		}
	}

	client := &Client{
		ID:      clientID,
		Writer:  w,
		Context: clientCtx,
		Cancel:  cancel,
		LastID:  lastEventID,
		Events:  make(chan Event, 100),
	}

	h.mu.Lock()
	h.clients[clientID] = client
	h.mu.Unlock()

	if err := h.sendReadyEvent(client); err != nil {
		h.unregisterClient(clientID)
		return fmt.Errorf("failed to send ready event: %w", err)
	}

	if lastEventID > 0 {
		if err := h.replayEvents(client, lastEventID); err != nil {
			h.unregisterClient(clientID)
			return fmt.Errorf("failed to replay events: %w", err)
		}
	}

	h.mu.Lock()
	if len(h.clients) == 1 && h.heartbeatTicker == nil {
		h.startHeartbeat()
	}
	h.mu.Unlock()

	h.handleClient(client)

	return nil
}

// Publish assigns the event a monotonic ID, buffers it for replay, and fans
// it out to all connected clients. Slow clients are dropped rather than
// allowed to block the publisher.
func (h *Hub) Publish(event Event) error {
	if event.ID == 0 {
		event.ID = h.nextID.Add(1)
	}
	h.buffer.AddEvent(event)

	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for _, client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		select {
		case <-client.Context.Done():
			continue
		case <-h.done:
			return nil
		case client.Events <- event:
		case <-time.After(100 * time.Millisecond):
			// Drop event if the client cannot keep up.
		}
	}

	return nil
}

// sendReadyEvent sends the initial ready event carrying a state snapshot.
func (h *Hub) sendReadyEvent(client *Client) error {
	snapshot := map[string]interface{}{}
	if h.snapshot != nil {
		snapshot = h.snapshot()
	}

	readyEvent := Event{
		ID:   h.nextID.Add(1),
		Type: "ready",
		Data: map[string]interface{}{
			"snapshot": snapshot,
		},
	}

	return h.sendEventToClient(client, readyEvent)
}

// replayEvents re-sends buffered events newer than lastEventID.
func (h *Hub) replayEvents(client *Client, lastEventID int64) error {
	for _, event := range h.buffer.GetEventsAfter(lastEventID) {
		if err := h.sendEventToClient(client, event); err != nil {
			return err
		}
	}
	return nil
}

// sendEventToClient writes a single event in SSE wire format.
func (h *Hub) sendEventToClient(client *Client, event Event) error {
	client.mu.Lock()
	defer client.mu.Unlock()

	if event.ID > 0 {
		if _, err := fmt.Fprintf(client.Writer, "id: %d\n", event.ID); err != nil {
			return fmt.Errorf("failed to write event ID: %w", err)
		}
	}
	if _, err := fmt.Fprintf(client.Writer, "event: %s\n", event.Type); err != nil {
		return fmt.Errorf("failed to write event type: %w", err)
	}

	data, err := json.Marshal(event.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	if _, err := fmt.Fprintf(client.Writer, "data: %s\n\n", string(data)); err != nil {
		return fmt.Errorf("failed to write event data: %w", err)
	}

	if flusher, ok := client.Writer.(http.Flusher); ok {
		flusher.Flush()
	}

	return nil
}

// handleClient delivers events to one client until it disconnects.
func (h *Hub) handleClient(client *Client) {
	defer func() {
		client.once.Do(func() {
			close(client.Events)
		})
		h.unregisterClient(client.ID)
	}()

	for {
		select {
		case <-client.Context.Done():
			return
		default:
		}

		timeout := time.NewTimer(100 * time.Millisecond)
		select {
		case <-client.Context.Done():
			timeout.Stop()
			return
		case <-timeout.C:
			continue
		case event, ok := <-client.Events:
			timeout.Stop()
			if !ok {
				return
			}
			if err := h.sendEventToClient(client, event); err != nil {
				return
			}
		}
	}
}

// unregisterClient removes a client and stops the heartbeat when the last
// client leaves.
func (h *Hub) unregisterClient(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if client, exists := h.clients[clientID]; exists {
		client.Cancel()
		delete(h.clients, clientID)

		if len(h.clients) == 0 && h.heartbeatTicker != nil {
			h.heartbeatTicker.Stop()
			h.heartbeatTicker = nil
			if h.stopHeartbeat != nil {
				close(h.stopHeartbeat)
				h.stopHeartbeat = nil
			}
		}
	}
}

// startHeartbeat starts the heartbeat ticker. Caller must hold h.mu and have
// verified h.heartbeatTicker == nil.
func (h *Hub) startHeartbeat() {
	interval := h.config.HeartbeatInterval
	jitter := h.config.HeartbeatJitter

	actualInterval := interval + time.Duration(float64(jitter)*0.5)

	h.heartbeatTicker = time.NewTicker(actualInterval)
	h.stopHeartbeat = make(chan bool)

	ticker := h.heartbeatTicker
	stopChan := h.stopHeartbeat

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		for {
			select {
			case <-ticker.C:
				h.sendHeartbeat()
			case <-stopChan:
				return
			case <-h.done:
				return
			}
		}
	}()
}

func (h *Hub) sendHeartbeat() {
	_ = h.Publish(Event{
		Type: "heartbeat",
		Data: map[string]interface{}{
			"ts": time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// Stop shuts down the hub, cancelling all client contexts and waiting for
// goroutines to drain.
func (h *Hub) Stop() {
	close(h.done)

	h.mu.Lock()
	for _, client := range h.clients {
		client.Cancel()
	}
	if h.heartbeatTicker != nil {
		h.heartbeatTicker.Stop()
		h.heartbeatTicker = nil
	}
	if h.stopHeartbeat != nil {
		close(h.stopHeartbeat)
		h.stopHeartbeat = nil
	}
	h.mu.Unlock()

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
	}

	h.mu.Lock()
	for _, client := range h.clients {
		client.Cancel()
		client.once.Do(func() {
			close(client.Events)
		})
	}
	h.clients = make(map[string]*Client)
	h.mu.Unlock()
}

// NewEventBuffer creates a replay buffer holding at most capacity events.
func NewEventBuffer(capacity int) *EventBuffer {
	return &EventBuffer{
		events:   make([]Event, 0, capacity),
		capacity: capacity,
	}
}

// AddEvent appends an event, evicting the oldest when over capacity.
func (b *EventBuffer) AddEvent(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.events = append(b.events, event)
	if len(b.events) > b.capacity {
		b.events = b.events[1:]
	}
}

// GetEventsAfter returns buffered events with IDs greater than lastID.
func (b *EventBuffer) GetEventsAfter(lastID int64) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var result []Event
	for _, event := range b.events {
		if event.ID > lastID {
			result = append(result, event)
		}
	}
	return result
}

// GetSize returns the current number of buffered events.
func (b *EventBuffer) GetSize() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.events)
}
