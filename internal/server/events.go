package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-cipherview/pkg/render"
	"github.com/goliatone/go-cipherview/pkg/resultarea"
)

type message struct {
	Event string
	Data  string
}

type replacePayload struct {
	Markup string `json:"markup"`
}

type appendPayload struct {
	Kind   render.BlockKind  `json:"kind"`
	Markup string            `json:"markup"`
	Scroll render.ScrollHint `json:"scroll"`
}

type seedPayload struct {
	Seed string `json:"seed"`
}

// feed buffers the messages of one event stream. Publishing never blocks: a
// full buffer drops the message and the stream is resynchronised with a fresh
// replace.
type feed struct {
	ch      chan message
	overrun chan struct{}
}

func newFeed() *feed {
	return &feed{
		ch:      make(chan message, 128),
		overrun: make(chan struct{}, 1),
	}
}

func (f *feed) publish(event string, payload any) {
	b, _ := json.Marshal(payload)
	select {
	case f.ch <- message{Event: event, Data: string(b)}:
	default:
		select {
		case f.overrun <- struct{}{}:
		default:
		}
	}
}

func (f *feed) areaListener(renderer render.BlockRenderer) resultarea.Listener {
	return func(evt resultarea.Event) {
		switch evt.Kind {
		case resultarea.EventReplace:
			f.publish("replace", replacePayload{Markup: renderer.Compose(evt.Blocks)})
		case resultarea.EventAppend:
			f.publish("append", appendPayload{Kind: evt.Block.Kind, Markup: evt.Block.Markup, Scroll: evt.Block.Scroll})
		}
	}
}

// resync writes one replace carrying the current area contents. Area
// messages still queued were published before that copy and are dropped.
// Seed messages are kept and follow the replace. Only the drain runs under
// the area lock; the handler is the sole reader of f.ch, so later messages
// wait behind the write.
func (f *feed) resync(w io.Writer, area *resultarea.Area, renderer render.BlockRenderer) {
	var (
		markup string
		kept   []message
	)
	area.Resync(func(_ uint64, blocks []render.Block) {
		for len(f.ch) > 0 {
			if msg := <-f.ch; msg.Event == "seed" {
				kept = append(kept, msg)
			}
		}
		markup = renderer.Compose(blocks)
	})
	writeMessage(w, "replace", replacePayload{Markup: markup})
	for _, msg := range kept {
		fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.Event, msg.Data)
	}
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	e, err := s.lookup(r)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	fmt.Fprint(w, "retry: 2000\n\n")
	fmt.Fprint(w, "event: ready\ndata: {}\n\n")
	flusher.Flush()

	session := e.session
	renderer := session.Renderer()
	f := newFeed()

	// The area replays its current contents first, then every change in order.
	stopArea := session.Area().Subscribe(f.areaListener(renderer))
	defer stopArea()
	stopSeed := session.OnSeed(func(seed string) {
		f.publish("seed", seedPayload{Seed: seed})
	})
	defer stopSeed()

	ticker := time.NewTicker(s.heartbeat)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return

		case <-e.done:
			return

		case <-ticker.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
			s.touch(e)

		case <-f.overrun:
			s.logger.Warn("event stream overrun, resynchronising", zap.String("session", session.ID()))
			f.resync(w, session.Area(), renderer)
			flusher.Flush()

		case msg := <-f.ch:
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.Event, msg.Data)
			flusher.Flush()
		}
	}
}

func writeMessage(w io.Writer, event string, payload any) {
	b, _ := json.Marshal(payload)
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, b)
}
