// Package audio plays the arcade's cues. The frame loop hands cues to a
// Dispatcher, which queues them and plays them on its own goroutine so a
// slow speaker never stalls a frame.
package audio

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"
	"sync/atomic"

	"github.com/ayusman/arcade/internal/games"
	"github.com/ayusman/arcade/internal/plugin"
)

// Event is one cue together with the game state that raised it.
type Event struct {
	Cue   games.Cue  `json:"cue"`
	Game  games.Kind `json:"game"`
	Score int        `json:"score"`
}

// Sink makes a cue audible.
type Sink interface {
	Play(ctx context.Context, ev Event) error
}

// DefaultQueueSize is the number of cues that may wait for the sink.
const DefaultQueueSize = 16

// Dispatcher queues cues for a Sink. Dispatch never blocks; when the queue
// is full the cue is dropped.
type Dispatcher struct {
	sink    Sink
	queue   chan Event
	enabled atomic.Bool
	dropped atomic.Int64
}

// NewDispatcher creates a dispatcher with room for size queued cues.
func NewDispatcher(sink Sink, size int, enabled bool) *Dispatcher {
	if size <= 0 {
		size = DefaultQueueSize
	}
	d := &Dispatcher{
		sink:  sink,
		queue: make(chan Event, size),
	}
	d.enabled.Store(enabled)
	return d
}

// Dispatch queues ev. It reports false when sound is off or the queue is full.
func (d *Dispatcher) Dispatch(ev Event) bool {
	if !d.enabled.Load() {
		return false
	}
	select {
	case d.queue <- ev:
		return true
	default:
		d.dropped.Add(1)
		return false
	}
}

// Run plays queued cues until ctx is done.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-d.queue:
			if !d.enabled.Load() {
				continue
			}
			if err := d.sink.Play(ctx, ev); err != nil {
				log.Printf("audio: %s: %v", ev.Cue, err)
			}
		}
	}
}

// SetEnabled turns sound on or off. Cues already queued are discarded while off.
func (d *Dispatcher) SetEnabled(enabled bool) {
	d.enabled.Store(enabled)
}

func (d *Dispatcher) Enabled() bool  { return d.enabled.Load() }
func (d *Dispatcher) Dropped() int64 { return d.dropped.Load() }

// PluginSink plays cues through the first plugin that handles the "cue" action.
type PluginSink struct {
	manager  *plugin.Manager
	executor *plugin.Executor
}

// NewPluginSink creates a sink backed by discovered plugins.
func NewPluginSink(manager *plugin.Manager, executor *plugin.Executor) *PluginSink {
	return &PluginSink{manager: manager, executor: executor}
}

// Play runs the audio plugin for ev.
func (s *PluginSink) Play(ctx context.Context, ev Event) error {
	p, err := s.manager.ForAction("cue")
	if err != nil {
		return err
	}

	resp, err := s.executor.Execute(ctx, p, &plugin.Request{
		Action: "cue",
		Cue:    string(ev.Cue),
		Game:   string(ev.Game),
		Score:  ev.Score,
	})
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("plugin %s: %s", p.Manifest.Name, resp.Error)
	}
	return nil
}

// BellSink rings the terminal bell once per cue.
type BellSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewBellSink creates a sink writing to w, usually os.Stdout.
func NewBellSink(w io.Writer) *BellSink {
	return &BellSink{w: w}
}

func (s *BellSink) Play(_ context.Context, _ Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := io.WriteString(s.w, "\a")
	return err
}

// MockSink records played cues.
type MockSink struct {
	mu     sync.Mutex
	events []Event
	err    error
}

// NewMockSink creates an empty recording sink.
func NewMockSink() *MockSink {
	return &MockSink{}
}

// SetError makes every later Play fail with err.
func (s *MockSink) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *MockSink) Play(_ context.Context, ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return s.err
}

// Events returns a copy of the cues played so far.
func (s *MockSink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...)
}
