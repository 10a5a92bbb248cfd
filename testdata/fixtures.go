// Package testdata builds camera frames and detector scripts for tests that
// drive the whole frame loop.
package testdata

import (
	"gocv.io/x/gocv"

	"github.com/ayusman/arcade/internal/detector"
)

// BlankFrames returns n black frames of the given size for a MockCamera.
// Release them with CloseFrames.
func BlankFrames(n, width, height int) []*gocv.Mat {
	frames := make([]*gocv.Mat, n)
	for i := range frames {
		m := gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC3)
		frames[i] = &m
	}
	return frames
}

// CloseFrames releases frames made by BlankFrames.
func CloseFrames(frames []*gocv.Mat) {
	for _, f := range frames {
		f.Close()
	}
}

// Script is a per-frame detector result; a nil entry is a frame without a hand.
type Script [][]detector.HandLandmarks

// Hold shows pose for n frames.
func Hold(pose detector.HandLandmarks, n int) Script {
	s := make(Script, n)
	for i := range s {
		s[i] = []detector.HandLandmarks{pose}
	}
	return s
}

// Gap shows no hand for n frames.
func Gap(n int) Script {
	return make(Script, n)
}

// Then appends more frames to s.
func (s Script) Then(more ...Script) Script {
	for _, m := range more {
		s = append(s, m...)
	}
	return s
}

// Throw is one rock-paper-scissors throw: a short gap, then pose held for
// long enough to count as fresh and ride out the cooldown.
func Throw(pose detector.HandLandmarks) Script {
	return Gap(3).Then(Hold(pose, 12))
}
