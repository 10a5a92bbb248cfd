// Package games holds the vocabulary shared by the per-frame game engines:
// the game kind tag, frame counters and the audio cues engines give rise to.
// Each engine lives in its own subpackage and owns all of its state.
package games

import "fmt"

// Kind identifies one of the games.
type Kind string

const (
	KindSnake   Kind = "snake"
	KindSlicer  Kind = "slicer"
	KindFlappy  Kind = "flappy"
	KindRPS     Kind = "rps"
	KindDrawing Kind = "drawing"
)

// Kinds returns every game in menu order.
func Kinds() []Kind {
	return []Kind{KindSnake, KindSlicer, KindFlappy, KindRPS, KindDrawing}
}

// ParseKind converts a name into a Kind.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown game %q", s)
}

// Title is the human-readable menu label.
func (k Kind) Title() string {
	switch k {
	case KindSnake:
		return "Snake"
	case KindSlicer:
		return "Fruit Slicer"
	case KindFlappy:
		return "Flappy Hand"
	case KindRPS:
		return "Rock Paper Scissors"
	case KindDrawing:
		return "Air Drawing"
	default:
		return string(k)
	}
}

// NeedsGestures reports whether the game consumes discrete gesture events.
func (k Kind) NeedsGestures() bool {
	return k == KindRPS || k == KindDrawing
}

// NeedsPointer reports whether the game is steered by the index fingertip.
func (k Kind) NeedsPointer() bool {
	return k != KindRPS
}

// Scored reports whether the game keeps a score that can set a high score.
func (k Kind) Scored() bool {
	return k != KindDrawing
}

// Cue is a discrete audio event raised by a frame.
type Cue string

const (
	CueEat      Cue = "eat"
	CueGameOver Cue = "game_over"
	CueLevelUp  Cue = "level_up"
	CueMenu     Cue = "menu"
)

// Counter is a frame-counted timer: it advances once per Tick and fires
// when the count reaches Threshold.
type Counter struct {
	Count     int `json:"count"`
	Threshold int `json:"threshold"`
}

// NewCounter returns a counter that fires every threshold ticks.
func NewCounter(threshold int) Counter {
	return Counter{Threshold: threshold}
}

// Tick advances the counter and reports whether it fired. A firing counter
// rewinds to zero.
func (c *Counter) Tick() bool {
	c.Count++
	if c.Count >= c.Threshold {
		c.Count = 0
		return true
	}
	return false
}

// Reset rewinds the counter without changing its threshold.
func (c *Counter) Reset() {
	c.Count = 0
}
