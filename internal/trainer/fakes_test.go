package trainer

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ColonelBlimp/cwtrainer/internal/speech"
	"github.com/ColonelBlimp/cwtrainer/internal/tone"
)

// entry is one thing the scheduler made happen, in order.
type entry struct {
	kind string // "tone", "sleep" or "speak"
	d    time.Duration
	gain float64
	text string
}

type timeline struct {
	mu      sync.Mutex
	entries []entry
}

func (tl *timeline) add(e entry) {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	tl.entries = append(tl.entries, e)
}

func (tl *timeline) snapshot() []entry {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	return append([]entry(nil), tl.entries...)
}

type fakeSynth struct {
	tl       *timeline
	readyErr error
	playErr  error
	block    bool
	sounding chan struct{}

	mu      sync.Mutex
	live    int
	maxLive int
}

func newFakeSynth(tl *timeline) *fakeSynth {
	return &fakeSynth{tl: tl, sounding: make(chan struct{}, 1)}
}

func (f *fakeSynth) Ready() error { return f.readyErr }

func (f *fakeSynth) Play(ctx context.Context, d time.Duration, p tone.Params) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	f.live++
	f.maxLive = max(f.maxLive, f.live)
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.live--
		f.mu.Unlock()
	}()

	f.tl.add(entry{kind: "tone", d: d, gain: p.Gain()})
	if f.playErr != nil {
		return f.playErr
	}
	if f.block {
		select {
		case f.sounding <- struct{}{}:
		default:
		}
		<-ctx.Done()
		return ctx.Err()
	}
	return nil
}

func (f *fakeSynth) Live() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.live
}

func (f *fakeSynth) MaxLive() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxLive
}

type fakeClock struct {
	tl      *timeline
	block   bool
	waiting chan struct{}

	mu      sync.Mutex
	pending int
}

func newFakeClock(tl *timeline) *fakeClock {
	return &fakeClock{tl: tl, waiting: make(chan struct{}, 1)}
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.mu.Lock()
	c.pending++
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.pending--
		c.mu.Unlock()
	}()

	c.tl.add(entry{kind: "sleep", d: d})
	if c.block {
		select {
		case c.waiting <- struct{}{}:
		default:
		}
		<-ctx.Done()
	}
	return ctx.Err()
}

func (c *fakeClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

type fakeAnnouncer struct {
	tl  *timeline
	err error
}

func (a *fakeAnnouncer) Speak(ctx context.Context, text string, _ speech.Language) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	a.tl.add(entry{kind: "speak", text: text})
	return a.err
}

type fakePersister struct {
	mu     sync.Mutex
	values map[string]any
}

func (p *fakePersister) Persist(key string, value any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.values == nil {
		p.values = make(map[string]any)
	}
	p.values[key] = value
	return nil
}

func (p *fakePersister) get(key string) any {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.values[key]
}

type eventLog struct {
	mu     sync.Mutex
	events []Event
}

func (l *eventLog) observe(e Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) snapshot() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Event(nil), l.events...)
}

func waitFor(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}
