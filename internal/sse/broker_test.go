package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// drain collects the frames queued on ch once the loop has settled.
func drain(ch chan []byte) []string {
	time.Sleep(50 * time.Millisecond)
	var out []string
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, string(msg))
		default:
			return out
		}
	}
}

func TestClientCount(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	a, c := b.Subscribe(), b.Resume(0)
	if n := b.ClientCount(); n != 2 {
		t.Fatalf("clients = %d, want 2", n)
	}
	b.Unsubscribe(a)
	b.Unsubscribe(c)
	if n := b.ClientCount(); n != 0 {
		t.Fatalf("clients after unsubscribe = %d", n)
	}
}

func TestPublish_FrameFormat(t *testing.T) {
	b := NewBroker()
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish(Event{Type: "custom", Data: map[string]string{"code": "de"}})

	frames := drain(ch)
	if len(frames) != 1 {
		t.Fatalf("frames = %q", frames)
	}
	want := "id: 1\nevent: custom\ndata: {\"code\":\"de\"}\n\n"
	if frames[0] != want {
		t.Errorf("frame = %q, want %q", frames[0], want)
	}
}

func TestPublishLanguageEvent_CatalogThrottle(t *testing.T) {
	b := NewBroker(WithCatalogThrottle(time.Hour))
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishLanguageEvent("created", "de_DE")
	b.PublishLanguageEvent("updated", "ru_RU")
	b.PublishLanguageEvent("renamed", "xx")

	frames := drain(ch)
	var catalog int
	for _, f := range frames {
		if strings.Contains(f, "event: "+TypeCatalogUpdated) {
			catalog++
		}
	}
	if len(frames) != 3 || catalog != 1 {
		t.Fatalf("frames = %q", frames)
	}
	if !strings.Contains(frames[0], "event: "+TypeLanguageCreated) || !strings.Contains(frames[0], `"name":"Deutsch"`) {
		t.Errorf("first frame = %q", frames[0])
	}
	if !strings.Contains(frames[1], TypeCatalogUpdated) {
		t.Errorf("catalog frame should follow the first change, got %q", frames[1])
	}
}

func TestResume_ReplaysMissedFrames(t *testing.T) {
	b := NewBroker(WithHistory(2))
	defer b.Close()

	for _, code := range []string{"a", "b", "c"} {
		b.Publish(Event{Type: "custom", Data: map[string]string{"code": code}})
	}
	time.Sleep(50 * time.Millisecond)

	ch := b.Resume(1)
	defer b.Unsubscribe(ch)
	frames := drain(ch)
	if len(frames) != 2 || !strings.HasPrefix(frames[0], "id: 2\n") || !strings.HasPrefix(frames[1], "id: 3\n") {
		t.Fatalf("replayed = %q", frames)
	}

	old := b.Resume(0)
	defer b.Unsubscribe(old)
	if frames := drain(old); len(frames) != 2 {
		t.Errorf("history should be capped at 2, got %d frames", len(frames))
	}
}

func TestResume_HistoryDisabled(t *testing.T) {
	b := NewBroker(WithHistory(0))
	defer b.Close()
	b.Publish(Event{Type: "custom", Data: "x"})
	time.Sleep(50 * time.Millisecond)

	ch := b.Resume(0)
	defer b.Unsubscribe(ch)
	if frames := drain(ch); len(frames) != 0 {
		t.Errorf("replayed = %q", frames)
	}
}

// lockedRecorder guards the body for concurrent reads during streaming.
type lockedRecorder struct {
	mu sync.Mutex
	*httptest.ResponseRecorder
}

func (l *lockedRecorder) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ResponseRecorder.Write(p)
}

func (l *lockedRecorder) body() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ResponseRecorder.Body.String()
}

// stream runs the handler until cancel is called and returns the recorder
// and a channel closed when the handler returns.
func stream(b *Broker, req *http.Request) (*lockedRecorder, context.CancelFunc, chan struct{}) {
	ctx, cancel := context.WithCancel(req.Context())
	w := &lockedRecorder{ResponseRecorder: httptest.NewRecorder()}
	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req.WithContext(ctx))
		close(done)
	}()
	return w, cancel, done
}

func TestServeHTTP_StreamsEvents(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	w, cancel, done := stream(b, httptest.NewRequest(http.MethodGet, "/api/events", nil))
	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client from handler")
	}

	b.PublishLanguageEvent("deleted", "fr")
	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	body := w.body()
	if !strings.HasPrefix(body, "retry: 3000\n\n") {
		t.Errorf("missing retry hint: %q", body)
	}
	if !strings.Contains(body, "event: "+TypeLanguageDeleted) {
		t.Errorf("handler output missing event: %q", body)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type = %q", ct)
	}

	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 0 {
		t.Errorf("client not cleaned up after disconnect")
	}
}

func TestServeHTTP_LastEventID(t *testing.T) {
	b := NewBroker()
	defer b.Close()
	b.PublishLanguageEvent("created", "de_DE") // id 1, catalog id 2
	b.PublishLanguageEvent("updated", "de_DE") // id 3
	time.Sleep(50 * time.Millisecond)

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	req.Header.Set("Last-Event-ID", "2")
	w, cancel, done := stream(b, req)
	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	body := w.body()
	if strings.Contains(body, "id: 1\n") || !strings.Contains(body, "id: 3\nevent: "+TypeLanguageUpdated) {
		t.Errorf("resumed body = %q", body)
	}
}

func TestServeHTTP_Heartbeat(t *testing.T) {
	b := NewBroker(WithHeartbeat(20 * time.Millisecond))
	defer b.Close()

	w, cancel, done := stream(b, httptest.NewRequest(http.MethodGet, "/api/events", nil))
	time.Sleep(100 * time.Millisecond)
	cancel()
	<-done

	if !strings.Contains(w.body(), ": ping") {
		t.Errorf("expected heartbeat comment, got %q", w.body())
	}
}

func TestPublish_SlowClientDoesNotBlock(t *testing.T) {
	b := NewBroker()
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	for range clientBuffer + 10 {
		b.Publish(Event{Type: "test", Data: "x"})
	}
	if got := len(drain(ch)); got != clientBuffer {
		t.Errorf("buffered frames = %d, want %d", got, clientBuffer)
	}
}

func TestClose(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe()
	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after close")
	}

	// no-ops after close
	b.Publish(Event{Type: "custom", Data: "x"})
	b.PublishLanguageEvent("updated", "x")
	if _, ok := <-b.Subscribe(); ok {
		t.Error("subscribe after close should return a closed channel")
	}
	b.Close()
}
