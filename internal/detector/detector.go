package detector

import (
	"time"

	"gocv.io/x/gocv"
)

// Detector defines the interface for hand detection implementations.
type Detector interface {
	// Detect analyzes a video frame and returns detected hand landmarks.
	// Returns an empty slice if no hands are detected.
	Detect(frame *gocv.Mat) ([]HandLandmarks, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for hand detection.
type Config struct {
	// MaxHands is the maximum number of hands to detect (default: 1).
	MaxHands int `yaml:"max_hands"`

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64 `yaml:"min_confidence"`

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64 `yaml:"min_tracking_confidence"`

	// Script is the hand service path. Empty searches the usual locations.
	Script string `yaml:"script"`

	// Python is the interpreter. Empty prefers a venv, then python3.
	Python string `yaml:"python"`

	// IdleTimeout stops the hand service after this long without frames.
	// Zero keeps it running until Close.
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

// DefaultConfig returns the single-hand tracking configuration the games expect.
func DefaultConfig() Config {
	return Config{
		MaxHands:        1,
		MinConfidence:   0.7,
		MinTrackingConf: 0.5,
		IdleTimeout:     30 * time.Second,
	}
}

// Primary returns the first detected hand, or nil when none was found.
// Games are driven by a single hand.
func Primary(hands []HandLandmarks) *HandLandmarks {
	if len(hands) == 0 {
		return nil
	}
	h := hands[0]
	return &h
}
