package resultarea

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-cipherview/pkg/render"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) listen(evt Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
}

func (r *recorder) kinds() []EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventKind, 0, len(r.events))
	for _, evt := range r.events {
		out = append(out, evt.Kind)
	}
	return out
}

func step(markup string) render.Block {
	return render.Block{Kind: render.BlockStep, Markup: markup}
}

func TestArea_StaleAppendsAreDropped(t *testing.T) {
	area := New()

	first := area.Clear()
	if !area.Append(first, step("a")) {
		t.Fatalf("append for current generation rejected")
	}

	second := area.Clear()
	if second <= first {
		t.Fatalf("generation did not advance: %d -> %d", first, second)
	}
	if area.Append(first, step("stale")) {
		t.Fatalf("append for stale generation accepted")
	}
	if area.ReplaceIf(first, step("stale replace")) {
		t.Fatalf("replace for stale generation accepted")
	}
	area.Append(second, step("b"))

	gen, blocks := area.Snapshot()
	if gen != second {
		t.Fatalf("snapshot generation mismatch: want %d, got %d", second, gen)
	}
	if diff := cmp.Diff([]render.Block{step("b")}, blocks); diff != "" {
		t.Fatalf("blocks mismatch (-want +got):\n%s", diff)
	}
}

func TestArea_ClearCancelsTrackedWork(t *testing.T) {
	area := New()
	gen := area.Clear()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if !area.Track(gen, cancel) {
		t.Fatalf("track for current generation rejected")
	}
	if ctx.Err() != nil {
		t.Fatalf("context cancelled too early")
	}

	area.Clear()
	if ctx.Err() == nil {
		t.Fatalf("expected tracked context to be cancelled by Clear")
	}

	staleCtx, staleCancel := context.WithCancel(context.Background())
	defer staleCancel()
	if area.Track(gen, staleCancel) {
		t.Fatalf("track for stale generation accepted")
	}
	if staleCtx.Err() == nil {
		t.Fatalf("stale track should cancel immediately")
	}
}

func TestArea_ReplaceAllAdvancesGeneration(t *testing.T) {
	area := New()
	gen := area.Clear()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	area.Track(gen, cancel)

	errBlock := render.Block{Kind: render.BlockError, Markup: "boom"}
	next := area.ReplaceAll(errBlock)
	if next == gen {
		t.Fatalf("ReplaceAll must advance the generation")
	}
	if ctx.Err() == nil {
		t.Fatalf("ReplaceAll must cancel tracked work")
	}
	if area.Append(gen, step("late")) {
		t.Fatalf("late append accepted after ReplaceAll")
	}

	area.ReplaceAll(errBlock)
	_, blocks := area.Snapshot()
	if diff := cmp.Diff([]render.Block{errBlock}, blocks); diff != "" {
		t.Fatalf("repeated ReplaceAll mismatch (-want +got):\n%s", diff)
	}
}

func TestArea_ReplaceIfKeepsGeneration(t *testing.T) {
	area := New()
	gen := area.Clear()
	area.Append(gen, render.Block{Kind: render.BlockLoading, Markup: "spinner"})

	if !area.ReplaceIf(gen) {
		t.Fatalf("ReplaceIf rejected for current generation")
	}
	if area.Generation() != gen {
		t.Fatalf("ReplaceIf must not advance the generation")
	}
	if !area.Append(gen, step("after")) {
		t.Fatalf("append after ReplaceIf rejected")
	}
	_, blocks := area.Snapshot()
	if diff := cmp.Diff([]render.Block{step("after")}, blocks); diff != "" {
		t.Fatalf("blocks mismatch (-want +got):\n%s", diff)
	}
}

func TestArea_SubscribeReceivesSnapshotThenChanges(t *testing.T) {
	area := New()
	gen := area.Clear()
	area.Append(gen, step("existing"))

	rec := &recorder{}
	unsubscribe := area.Subscribe(rec.listen)

	area.Append(gen, step("next"))
	area.Clear()
	unsubscribe()
	area.Append(area.Generation(), step("unseen"))

	want := []EventKind{EventReplace, EventAppend, EventReplace}
	if diff := cmp.Diff(want, rec.kinds()); diff != "" {
		t.Fatalf("event kinds mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]render.Block{step("existing")}, rec.events[0].Blocks); diff != "" {
		t.Fatalf("initial snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestArea_CloseRejectsWrites(t *testing.T) {
	area := New()
	gen := area.Clear()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	area.Track(gen, cancel)

	rec := &recorder{}
	area.Subscribe(rec.listen)
	area.Close()

	if ctx.Err() == nil {
		t.Fatalf("Close must cancel tracked work")
	}
	if area.Append(area.Generation(), step("x")) {
		t.Fatalf("append accepted after Close")
	}
	area.Clear()
	if got := len(rec.kinds()); got != 1 {
		t.Fatalf("listeners should be dropped on Close, saw %d events", got)
	}
}

func TestArea_ResyncHoldsBackConcurrentWrites(t *testing.T) {
	area := New()
	gen := area.Clear()
	area.Append(gen, step("a"))

	rec := &recorder{}
	defer area.Subscribe(rec.listen)()

	appended := make(chan struct{})
	var seen []render.Block
	area.Resync(func(got uint64, blocks []render.Block) {
		if got != gen {
			t.Errorf("generation mismatch: want %d, got %d", gen, got)
		}
		seen = blocks
		go func() {
			area.Append(gen, step("b"))
			close(appended)
		}()
		select {
		case <-appended:
			t.Errorf("append completed while Resync held the area")
		case <-time.After(20 * time.Millisecond):
		}
	})
	<-appended

	if diff := cmp.Diff([]render.Block{step("a")}, seen); diff != "" {
		t.Fatalf("resync blocks mismatch (-want +got):\n%s", diff)
	}
	want := []EventKind{EventReplace, EventAppend}
	if diff := cmp.Diff(want, rec.kinds()); diff != "" {
		t.Fatalf("event kinds mismatch (-want +got):\n%s", diff)
	}
	_, blocks := area.Snapshot()
	if diff := cmp.Diff([]render.Block{step("a"), step("b")}, blocks); diff != "" {
		t.Fatalf("blocks mismatch (-want +got):\n%s", diff)
	}
}
