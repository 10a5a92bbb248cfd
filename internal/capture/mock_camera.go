package capture

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockCamera plays back frames for tests. With no frames it produces blank
// frames of its configured size, which is enough to drive a MockDetector.
type MockCamera struct {
	config  Config
	frames  []*gocv.Mat
	index   int
	loop    bool
	reads   int
	mu      sync.Mutex
	running bool
}

// NewMockCamera creates a camera replaying frames, optionally looping.
func NewMockCamera(frames []*gocv.Mat, loop bool) *MockCamera {
	cfg := DefaultConfig()
	cfg.Width, cfg.Height = 64, 36
	return &MockCamera{
		config: cfg,
		frames: frames,
		loop:   loop,
	}
}

func (c *MockCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = true
	c.index = 0
	return nil
}

func (c *MockCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false
	return nil
}

// ReadFrame returns a clone of the next frame, or a blank frame when the
// camera was built without any.
func (c *MockCamera) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return nil, ErrCameraNotOpen
	}
	c.reads++

	if len(c.frames) == 0 {
		blank := gocv.NewMatWithSize(c.config.Height, c.config.Width, gocv.MatTypeCV8UC3)
		return &blank, nil
	}

	if c.index >= len(c.frames) {
		if !c.loop {
			return nil, ErrNoFrame
		}
		c.index = 0
	}

	frame := c.frames[c.index].Clone()
	c.index++
	return &frame, nil
}

func (c *MockCamera) SetFPS(fps int) {
	if fps <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.config.FPS = fps
}

func (c *MockCamera) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.config.FPS
}

func (c *MockCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Reads returns how many frames have been requested while open.
func (c *MockCamera) Reads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads
}

// SetFrames replaces the frame sequence.
func (c *MockCamera) SetFrames(frames []*gocv.Mat) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = frames
	c.index = 0
}

// Reset restarts playback from the beginning.
func (c *MockCamera) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.index = 0
}
