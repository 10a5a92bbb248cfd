// Package detector provides hand detection interfaces and the landmark types
// consumed by the gesture classifier and the game orchestrator.
package detector

import "math"

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Finger names one of the five digits.
type Finger string

const (
	Thumb  Finger = "thumb"
	Index  Finger = "index"
	Middle Finger = "middle"
	Ring   Finger = "ring"
	Pinky  Finger = "pinky"
)

// Fingers lists the digits in thumb-to-pinky order.
var Fingers = [5]Finger{Thumb, Index, Middle, Ring, Pinky}

// fingerTips maps each finger to its tip landmark index.
var fingerTips = map[Finger]int{
	Thumb:  ThumbTip,
	Index:  IndexTip,
	Middle: MiddleTip,
	Ring:   RingTip,
	Pinky:  PinkyTip,
}

// Point3D represents a 3D point in space with x, y, z coordinates.
// X and Y are normalized to the frame (0-1, Y grows downward).
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
// A nil *HandLandmarks means no hand was found in the frame.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// Tip returns the normalized tip position of the given finger.
func (h *HandLandmarks) Tip(f Finger) Point3D {
	return h.Points[fingerTips[f]]
}

// Fingertips returns the normalized tip position of every finger.
func (h *HandLandmarks) Fingertips() map[Finger]Point3D {
	if h == nil {
		return nil
	}

	tips := make(map[Finger]Point3D, len(fingerTips))
	for f, idx := range fingerTips {
		tips[f] = h.Points[idx]
	}
	return tips
}

// TipPixel converts a finger tip into pixel coordinates of a width x height frame.
// Coordinates are truncated toward zero.
func (h *HandLandmarks) TipPixel(f Finger, width, height int) (int, int) {
	tip := h.Tip(f)
	return int(tip.X * float64(width)), int(tip.Y * float64(height))
}

// Translate returns a copy of the hand shifted by (dx, dy) in normalized space.
func (h HandLandmarks) Translate(dx, dy float64) HandLandmarks {
	for i := range h.Points {
		h.Points[i].X += dx
		h.Points[i].Y += dy
	}
	return h
}

// distance2D calculates the planar distance between two landmarks, ignoring depth.
func distance2D(a, b Point3D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// TipDistance returns the planar distance between two finger tips.
func (h *HandLandmarks) TipDistance(a, b Finger) float64 {
	return distance2D(h.Tip(a), h.Tip(b))
}
