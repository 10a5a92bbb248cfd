// Package gesture turns per-frame hand landmarks into a small vocabulary of
// debounced gesture events.
package gesture

import "fmt"

// Gesture is a discrete named hand pose.
type Gesture string

const (
	None       Gesture = "none"
	Point      Gesture = "point"
	Peace      Gesture = "peace"
	Call       Gesture = "call"
	OpenPalm   Gesture = "open_palm"
	Fist       Gesture = "fist"
	Pinch      Gesture = "pinch"
	ThumbsUp   Gesture = "thumbs_up"
	ThumbsDown Gesture = "thumbs_down"
)

// All lists every gesture except None.
func All() []Gesture {
	return []Gesture{Point, Peace, Call, OpenPalm, Fist, Pinch, ThumbsUp, ThumbsDown}
}

// Parse converts a name into a Gesture. Unknown names are an error.
func Parse(s string) (Gesture, error) {
	if s == string(None) {
		return None, nil
	}
	for _, g := range All() {
		if string(g) == s {
			return g, nil
		}
	}
	return None, fmt.Errorf("unknown gesture %q", s)
}

func (g Gesture) String() string {
	return string(g)
}

// Kind tells a caller how to read a classification.
type Kind int

const (
	// KindNone means nothing new happened this frame.
	KindNone Kind = iota
	// KindFresh is a newly detected gesture. It is emitted once per pose change.
	KindFresh
	// KindHeld re-emits the previous gesture while the cooldown runs.
	KindHeld
)

func (k Kind) String() string {
	switch k {
	case KindFresh:
		return "fresh"
	case KindHeld:
		return "held"
	default:
		return "none"
	}
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name. Unknown names decode as KindNone.
func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "fresh":
		*k = KindFresh
	case "held":
		*k = KindHeld
	default:
		*k = KindNone
	}
	return nil
}

// Result is the outcome of classifying one frame.
type Result struct {
	Kind    Kind    `json:"kind"`
	Gesture Gesture `json:"gesture"`
}

// Fresh returns the gesture when it was newly detected this frame, otherwise None.
func (r Result) Fresh() Gesture {
	if r.Kind == KindFresh {
		return r.Gesture
	}
	return None
}

// Active returns the gesture for fresh and held results, otherwise None.
func (r Result) Active() Gesture {
	if r.Kind == KindNone {
		return None
	}
	return r.Gesture
}

func noResult() Result {
	return Result{Kind: KindNone, Gesture: None}
}
