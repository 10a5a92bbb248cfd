package detector

// Preset hand poses used by tests and demos. All presets are right hands in a
// mirrored camera frame: fingers run index to pinky left to right and an
// extended thumb points toward smaller X.

// Finger column positions (X) for the four long fingers.
const (
	indexX  = 0.45
	middleX = 0.50
	ringX   = 0.55
	pinkyX  = 0.60
)

// newHand returns a hand with only the wrist placed.
func newHand() HandLandmarks {
	h := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}
	h.Points[Wrist] = Point3D{X: 0.52, Y: 0.85}
	h.Points[ThumbCMC] = Point3D{X: 0.46, Y: 0.80}
	return h
}

// setFinger places the MCP, PIP, DIP and tip of one long finger.
// Extended fingers have their tip above the PIP joint; curled ones fold back below it.
func (h *HandLandmarks) setFinger(mcp int, x float64, extended bool) {
	if extended {
		h.Points[mcp] = Point3D{X: x, Y: 0.68}
		h.Points[mcp+1] = Point3D{X: x, Y: 0.55}
		h.Points[mcp+2] = Point3D{X: x, Y: 0.45}
		h.Points[mcp+3] = Point3D{X: x, Y: 0.35}
		return
	}
	h.Points[mcp] = Point3D{X: x, Y: 0.70, Z: -0.02}
	h.Points[mcp+1] = Point3D{X: x, Y: 0.62, Z: -0.05}
	h.Points[mcp+2] = Point3D{X: x, Y: 0.66, Z: -0.04}
	h.Points[mcp+3] = Point3D{X: x, Y: 0.70, Z: -0.02}
}

func (h *HandLandmarks) setThumb(mcp, ip, tip Point3D) {
	h.Points[ThumbMCP] = mcp
	h.Points[ThumbIP] = ip
	h.Points[ThumbTip] = tip
}

// tuckThumb folds the thumb across the palm.
func (h *HandLandmarks) tuckThumb() {
	h.setThumb(
		Point3D{X: 0.42, Y: 0.74},
		Point3D{X: 0.44, Y: 0.70},
		Point3D{X: 0.46, Y: 0.66},
	)
}

// spreadThumb extends the thumb sideways, away from the index finger.
func (h *HandLandmarks) spreadThumb() {
	h.setThumb(
		Point3D{X: 0.40, Y: 0.72},
		Point3D{X: 0.33, Y: 0.68},
		Point3D{X: 0.26, Y: 0.64},
	)
}

func handWith(thumbOut bool, index, middle, ring, pinky bool) HandLandmarks {
	h := newHand()
	if thumbOut {
		h.spreadThumb()
	} else {
		h.tuckThumb()
	}
	h.setFinger(IndexMCP, indexX, index)
	h.setFinger(MiddleMCP, middleX, middle)
	h.setFinger(RingMCP, ringX, ring)
	h.setFinger(PinkyMCP, pinkyX, pinky)
	return h
}

// PointLandmarks returns a hand with only the index finger extended.
func PointLandmarks() HandLandmarks {
	return handWith(false, true, false, false, false)
}

// PeaceLandmarks returns a hand with the index and middle fingers extended.
func PeaceLandmarks() HandLandmarks {
	return handWith(false, true, true, false, false)
}

// CallLandmarks returns a hand with the thumb and pinky extended.
func CallLandmarks() HandLandmarks {
	return handWith(true, false, false, false, true)
}

// OpenPalmLandmarks returns a preset HandLandmarks representing an open palm gesture.
// All fingers are extended outward.
func OpenPalmLandmarks() HandLandmarks {
	return handWith(true, true, true, true, true)
}

// FistLandmarks returns a closed fist with the thumb folded over the fingers.
func FistLandmarks() HandLandmarks {
	return handWith(false, false, false, false, false)
}

// PinchLandmarks returns a hand whose thumb tip touches the extended index tip.
func PinchLandmarks() HandLandmarks {
	h := handWith(false, true, false, false, false)
	h.setThumb(
		Point3D{X: 0.40, Y: 0.65},
		Point3D{X: 0.50, Y: 0.45},
		Point3D{X: 0.44, Y: 0.37},
	)
	return h
}

// ThumbsUpLandmarks returns a preset HandLandmarks representing a thumbs up gesture.
// The thumb is extended upward while other fingers are curled.
func ThumbsUpLandmarks() HandLandmarks {
	h := handWith(false, false, false, false, false)
	h.setThumb(
		Point3D{X: 0.42, Y: 0.72},
		Point3D{X: 0.38, Y: 0.58},
		Point3D{X: 0.30, Y: 0.48},
	)
	return h
}

// ThumbsDownLandmarks returns a thumb pointing down with the other fingers curled.
func ThumbsDownLandmarks() HandLandmarks {
	h := handWith(false, false, false, false, false)
	h.setThumb(
		Point3D{X: 0.42, Y: 0.62},
		Point3D{X: 0.38, Y: 0.74},
		Point3D{X: 0.30, Y: 0.84},
	)
	return h
}

// PointAt returns the pointing pose translated so the index tip sits at (x, y).
func PointAt(x, y float64) HandLandmarks {
	h := PointLandmarks()
	tip := h.Points[IndexTip]
	h = h.Translate(x-tip.X, y-tip.Y)
	// Pin the tip exactly; the subtraction above can be off by one ulp.
	h.Points[IndexTip].X = x
	h.Points[IndexTip].Y = y
	return h
}
