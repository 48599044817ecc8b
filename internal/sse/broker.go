// Package sse implements a Server-Sent Events broker that streams decision
// log changes to connected clients.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path"
	"sync/atomic"
	"time"
)

// Event types emitted by PublishRecordEvent.
const (
	TypeRecordCreated = "record.created"
	TypeRecordUpdated = "record.updated"
	TypeRecordDeleted = "record.deleted"
	TypeIndexUpdated  = "index.updated"
	TypeLogChanged    = "log.changed"
)

// Event represents an SSE event to broadcast.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// keepAliveInterval is how often an idle stream receives a comment line so
// proxies do not close it.
const keepAliveInterval = 30 * time.Second

type recordEventReq struct {
	kind string
	path string
}

// Broker manages SSE client connections and broadcasts events.
//
// A single internal event loop owns the client set and the log.changed
// throttle timestamp; public methods talk to it through channels.
type Broker struct {
	changedMin time.Duration
	isIndex    func(name string) bool

	subscribeCh   chan chan []byte
	unsubscribeCh chan chan []byte
	publishCh     chan Event
	recordEventCh chan recordEventReq
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a broker that emits at most one log.changed event per
// throttle interval. isIndex reports whether a file name is an index file;
// changes to those are published as index.updated. A nil isIndex treats
// every file as a record.
func NewBroker(throttle time.Duration, isIndex func(name string) bool) *Broker {
	if throttle <= 0 {
		throttle = 2 * time.Second
	}
	if isIndex == nil {
		isIndex = func(string) bool { return false }
	}

	b := &Broker{
		changedMin:    throttle,
		isIndex:       isIndex,
		subscribeCh:   make(chan chan []byte),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan Event, 256),
		recordEventCh: make(chan recordEventReq, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}

	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]struct{})
	var lastChanged time.Time

	broadcast := func(event Event) {
		payload, err := json.Marshal(event.Data)
		if err != nil {
			return
		}
		raw := []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", event.Type, payload))
		for ch := range clients {
			select {
			case ch <- raw:
			default:
				// Slow client; drop rather than block the loop.
			}
		}
	}

	for {
		select {
		case <-b.stopCh:
			for ch := range clients {
				close(ch)
			}
			return

		case ch := <-b.subscribeCh:
			clients[ch] = struct{}{}

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case event := <-b.publishCh:
			broadcast(event)

		case req := <-b.recordEventCh:
			if t := b.eventType(req); t != "" {
				broadcast(Event{Type: t, Data: map[string]string{"path": req.path, "kind": req.kind}})
			}
			now := time.Now()
			if now.Sub(lastChanged) >= b.changedMin {
				lastChanged = now
				broadcast(Event{Type: TypeLogChanged, Data: map[string]string{}})
			}

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

func (b *Broker) eventType(req recordEventReq) string {
	if b.isIndex(path.Base(req.path)) {
		if req.kind == "deleted" {
			return ""
		}
		return TypeIndexUpdated
	}
	switch req.kind {
	case "created":
		return TypeRecordCreated
	case "updated":
		return TypeRecordUpdated
	case "deleted":
		return TypeRecordDeleted
	}
	return ""
}

// Close gracefully stops the broker loop and closes all client channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a new client and returns its channel.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}
	select {
	case b.subscribeCh <- ch:
	case <-b.stopped:
		close(ch)
	}
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}
	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}
	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish sends an event to all connected clients.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- event:
	case <-b.stopped:
	}
}

// PublishRecordEvent publishes a file change ("created", "updated" or
// "deleted") followed by a throttled log.changed event. Its signature
// matches both record.Hook and catalog.EventCallback.
func (b *Broker) PublishRecordEvent(kind, path string) {
	if b.closed.Load() {
		return
	}
	select {
	case b.recordEventCh <- recordEventReq{kind: kind, path: path}:
	case <-b.stopped:
	}
}

// ServeHTTP is the SSE endpoint handler (GET /api/events).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-keepAlive.C:
			_, _ = w.Write([]byte(": ping\n\n"))
			flusher.Flush()
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
