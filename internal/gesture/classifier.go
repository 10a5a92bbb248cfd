package gesture

import (
	"github.com/ayusman/arcade/internal/detector"
)

// Config holds the classifier thresholds. All distances are in normalized
// frame units.
type Config struct {
	// ThumbMargin is how far the thumb tip must sit left of its IP joint to count as extended.
	ThumbMargin float64 `yaml:"thumb_margin"`
	// PinchDistance is the thumb-tip to index-tip distance below which a pinch is detected.
	PinchDistance float64 `yaml:"pinch_distance"`
	// ThumbVertical is how far the thumb tip must rise above (or drop below) its MCP joint.
	ThumbVertical float64 `yaml:"thumb_vertical"`
	// CooldownFrames is the number of frames a fresh gesture is held for.
	CooldownFrames int `yaml:"cooldown_frames"`
}

// DefaultConfig returns the tuned thresholds.
func DefaultConfig() Config {
	return Config{
		ThumbMargin:    0.05,
		PinchDistance:  0.05,
		ThumbVertical:  0.1,
		CooldownFrames: 10,
	}
}

// Classifier maps one frame's landmarks to a gesture with a cooldown.
// It is not safe for concurrent use; call Classify once per frame.
type Classifier struct {
	config   Config
	last     Gesture
	cooldown int
}

// NewClassifier creates a Classifier with the given thresholds.
func NewClassifier(config Config) *Classifier {
	return &Classifier{
		config: config,
		last:   None,
	}
}

// Classify runs once per frame.
//
//  1. No hand: KindNone, cooldown untouched.
//  2. Cooldown running: decrement it and re-emit the last gesture as KindHeld.
//  3. Otherwise detect a pose. A pose different from the last emitted one is
//     KindFresh and arms the cooldown; the same pose again, or no pose, is KindNone.
func (c *Classifier) Classify(hand *detector.HandLandmarks) Result {
	if hand == nil {
		return noResult()
	}

	if c.cooldown > 0 {
		c.cooldown--
		return Result{Kind: KindHeld, Gesture: c.last}
	}

	g := c.Detect(hand)
	if g != None && g != c.last {
		c.last = g
		c.cooldown = c.config.CooldownFrames
		return Result{Kind: KindFresh, Gesture: g}
	}

	return noResult()
}

// Last returns the most recently emitted fresh gesture.
func (c *Classifier) Last() Gesture {
	return c.last
}

// Cooldown returns the remaining cooldown frames.
func (c *Classifier) Cooldown() int {
	return c.cooldown
}

// Reset forgets the last gesture and clears the cooldown.
func (c *Classifier) Reset() {
	c.last = None
	c.cooldown = 0
}

// Detect classifies a single pose without touching the cooldown state.
func (c *Classifier) Detect(hand *detector.HandLandmarks) Gesture {
	if hand == nil {
		return None
	}

	up := c.Fingers(hand)
	switch up {
	case [5]bool{false, true, false, false, false}:
		return Point
	case [5]bool{false, true, true, false, false}:
		return Peace
	case [5]bool{true, false, false, false, true}:
		return Call
	case [5]bool{true, true, true, true, true}:
		return OpenPalm
	case [5]bool{false, false, false, false, false}:
		return Fist
	}

	othersDown := !up[1] && !up[2] && !up[3] && !up[4]
	thumbTip := hand.Points[detector.ThumbTip]
	thumbMCP := hand.Points[detector.ThumbMCP]

	switch {
	case hand.TipDistance(detector.Thumb, detector.Index) < c.config.PinchDistance:
		return Pinch
	case othersDown && thumbTip.Y < thumbMCP.Y-c.config.ThumbVertical:
		return ThumbsUp
	case othersDown && thumbTip.Y > thumbMCP.Y+c.config.ThumbVertical:
		return ThumbsDown
	}

	return None
}

// Fingers reports which fingers are extended, thumb first.
// The thumb counts when its tip is left of its IP joint by ThumbMargin; the
// others when the tip is above the PIP joint.
func (c *Classifier) Fingers(hand *detector.HandLandmarks) [5]bool {
	p := hand.Points
	return [5]bool{
		p[detector.ThumbTip].X < p[detector.ThumbIP].X-c.config.ThumbMargin,
		p[detector.IndexTip].Y < p[detector.IndexPIP].Y,
		p[detector.MiddleTip].Y < p[detector.MiddlePIP].Y,
		p[detector.RingTip].Y < p[detector.RingPIP].Y,
		p[detector.PinkyTip].Y < p[detector.PinkyPIP].Y,
	}
}
