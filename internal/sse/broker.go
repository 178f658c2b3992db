// Package sse implements a Server-Sent Events broker that notifies clients
// about language file changes.
//
// Every frame carries a sequence id. The broker keeps the most recent frames
// so a reconnecting EventSource that sends Last-Event-ID receives what it
// missed, as long as it is still retained.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/starford/lngkit/internal/langs"
)

// Event types emitted by the broker.
const (
	TypeLanguageCreated = "language.created"
	TypeLanguageUpdated = "language.updated"
	TypeLanguageDeleted = "language.deleted"
	TypeCatalogUpdated  = "catalog.updated"
)

const (
	clientBuffer   = 64
	defaultHistory = 64
	retryMillis    = 3000
)

// Event represents an SSE event to broadcast.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// LanguageEvent is the payload of language.* events.
type LanguageEvent struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

var languageTypes = map[string]string{
	"created": TypeLanguageCreated,
	"updated": TypeLanguageUpdated,
	"deleted": TypeLanguageDeleted,
}

// Option configures a Broker.
type Option func(*Broker)

// WithCatalogThrottle sets the minimum interval between catalog.updated events.
func WithCatalogThrottle(d time.Duration) Option {
	return func(b *Broker) {
		if d > 0 {
			b.catalogMin = d
		}
	}
}

// WithHeartbeat makes ServeHTTP write a comment line every d so proxies
// keep idle connections open. Zero disables it.
func WithHeartbeat(d time.Duration) Option {
	return func(b *Broker) { b.heartbeat = d }
}

// WithHistory sets how many frames are kept for Last-Event-ID replay.
// Zero disables replay.
func WithHistory(n int) Option {
	return func(b *Broker) {
		if n >= 0 {
			b.history = n
		}
	}
}

type outgoing struct {
	event   Event
	catalog bool
}

type subscription struct {
	ch     chan []byte
	resume bool
	after  uint64
}

type frame struct {
	seq uint64
	raw []byte
}

// Broker fans events out to SSE clients.
//
// The run goroutine owns the client set, the sequence counter, the replay
// history and the catalog throttle. Public methods talk to it over channels.
type Broker struct {
	catalogMin time.Duration
	heartbeat  time.Duration
	history    int

	subscribeCh   chan subscription
	unsubscribeCh chan chan []byte
	publishCh     chan outgoing
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a new SSE broker and starts its event loop.
func NewBroker(opts ...Option) *Broker {
	b := &Broker{
		catalogMin:    2 * time.Second,
		history:       defaultHistory,
		subscribeCh:   make(chan subscription),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan outgoing, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}

	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]struct{})
	recent := make([]frame, 0, b.history)
	var lastCatalog time.Time
	var seq uint64

	send := func(ch chan []byte, raw []byte) {
		select {
		case ch <- raw:
		default:
			// slow client
		}
	}

	broadcast := func(event Event) {
		payload, err := json.Marshal(event.Data)
		if err != nil {
			return
		}
		seq++
		raw := fmt.Appendf(nil, "id: %d\nevent: %s\ndata: %s\n\n", seq, event.Type, payload)
		if b.history > 0 {
			if len(recent) == b.history {
				recent = append(recent[:0], recent[1:]...)
			}
			recent = append(recent, frame{seq: seq, raw: raw})
		}
		for ch := range clients {
			send(ch, raw)
		}
	}

	for {
		select {
		case <-b.stopCh:
			for ch := range clients {
				close(ch)
			}
			return

		case sub := <-b.subscribeCh:
			if sub.resume {
				for _, f := range recent {
					if f.seq > sub.after {
						send(sub.ch, f.raw)
					}
				}
			}
			clients[sub.ch] = struct{}{}

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case out := <-b.publishCh:
			broadcast(out.event)
			if !out.catalog {
				continue
			}
			if now := time.Now(); now.Sub(lastCatalog) >= b.catalogMin {
				lastCatalog = now
				broadcast(Event{Type: TypeCatalogUpdated, Data: map[string]string{}})
			}

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

// Close stops the event loop and closes every client channel.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a client that receives events published from now on.
func (b *Broker) Subscribe() chan []byte {
	return b.subscribe(subscription{})
}

// Resume adds a client that first receives the retained frames with an id
// greater than lastID.
func (b *Broker) Resume(lastID uint64) chan []byte {
	return b.subscribe(subscription{resume: true, after: lastID})
}

func (b *Broker) subscribe(sub subscription) chan []byte {
	sub.ch = make(chan []byte, max(clientBuffer, b.history))
	if b.closed.Load() {
		close(sub.ch)
		return sub.ch
	}
	select {
	case b.subscribeCh <- sub:
	case <-b.stopped:
		close(sub.ch)
	}
	return sub.ch
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
	b.enqueue(outgoing{event: event})
}

// PublishLanguageEvent publishes a language change followed by a throttled
// catalog.updated event. kind is "created", "updated" or "deleted"; other
// kinds are ignored. The signature matches index.EventCallback.
func (b *Broker) PublishLanguageEvent(kind, code string) {
	typ, ok := languageTypes[kind]
	if !ok {
		return
	}
	b.enqueue(outgoing{
		event:   Event{Type: typ, Data: LanguageEvent{Code: code, Name: langs.DisplayName(code)}},
		catalog: true,
	})
}

func (b *Broker) enqueue(out outgoing) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- out:
	case <-b.stopped:
	}
}

// ServeHTTP is the SSE endpoint handler (GET /api/events). A numeric
// Last-Event-ID header resumes from the retained history.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "retry: %d\n\n", retryMillis)
	flusher.Flush()

	var ch chan []byte
	if last, err := strconv.ParseUint(r.Header.Get("Last-Event-ID"), 10, 64); err == nil {
		ch = b.Resume(last)
	} else {
		ch = b.Subscribe()
	}
	defer b.Unsubscribe(ch)

	var tick <-chan time.Time
	if b.heartbeat > 0 {
		t := time.NewTicker(b.heartbeat)
		defer t.Stop()
		tick = t.C
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-tick:
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
