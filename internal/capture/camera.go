// Package capture reads frames from the webcam using GoCV (OpenCV).
package capture

import (
	"errors"
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

var (
	// ErrCameraNotOpen is returned when reading from a camera that is not open.
	ErrCameraNotOpen = errors.New("camera is not open")
	// ErrNoFrame is returned when the device produced no usable frame.
	ErrNoFrame = errors.New("no frame available")
)

// Config selects the capture device and frame geometry.
type Config struct {
	DeviceID int `yaml:"device_id"`
	Width    int `yaml:"width"`
	Height   int `yaml:"height"`
	FPS      int `yaml:"fps"`
	// Mirror flips frames horizontally so the player sees themselves as in a mirror.
	Mirror bool `yaml:"mirror"`
}

// DefaultConfig returns 1280x720 at 30 FPS from the first device, mirrored.
func DefaultConfig() Config {
	return Config{
		DeviceID: 0,
		Width:    1280,
		Height:   720,
		FPS:      30,
		Mirror:   true,
	}
}

// Camera is a source of frames.
type Camera interface {
	Open() error
	Close() error
	// ReadFrame returns the next frame. The caller must close it.
	ReadFrame() (*gocv.Mat, error)
	SetFPS(fps int)
	FPS() int
	IsOpen() bool
}

// cameraImpl captures from a device through gocv.VideoCapture.
type cameraImpl struct {
	config  Config
	capture *gocv.VideoCapture
	mu      sync.Mutex
	running bool
}

// NewCamera creates a camera for config. Nothing is opened until Open.
func NewCamera(config Config) Camera {
	if config.FPS <= 0 {
		config.FPS = DefaultConfig().FPS
	}
	return &cameraImpl{config: config}
}

// Open opens the device and requests the configured size and rate. The
// device may ignore either.
func (c *cameraImpl) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}

	capture, err := gocv.OpenVideoCapture(c.config.DeviceID)
	if err != nil {
		return fmt.Errorf("open camera %d: %w", c.config.DeviceID, err)
	}

	if c.config.Width > 0 && c.config.Height > 0 {
		capture.Set(gocv.VideoCaptureFrameWidth, float64(c.config.Width))
		capture.Set(gocv.VideoCaptureFrameHeight, float64(c.config.Height))
	}
	capture.Set(gocv.VideoCaptureFPS, float64(c.config.FPS))

	c.capture = capture
	c.running = true
	return nil
}

// Close releases the device.
func (c *cameraImpl) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		c.running = false
		return nil
	}

	err := c.capture.Close()
	c.capture = nil
	c.running = false
	return err
}

// ReadFrame reads one frame, mirrored when configured.
func (c *cameraImpl) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if ok := c.capture.Read(&mat); !ok || mat.Empty() {
		mat.Close()
		return nil, ErrNoFrame
	}

	if c.config.Mirror {
		gocv.Flip(mat, &mat, 1)
	}
	return &mat, nil
}

// SetFPS changes the requested rate. Values <= 0 are ignored.
func (c *cameraImpl) SetFPS(fps int) {
	if fps <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.config.FPS = fps
	if c.capture != nil {
		c.capture.Set(gocv.VideoCaptureFPS, float64(fps))
	}
}

func (c *cameraImpl) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.config.FPS
}

func (c *cameraImpl) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// EncodeJPEG compresses frame at the given quality (1-100).
func EncodeJPEG(frame *gocv.Mat, quality int) ([]byte, error) {
	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, *frame, []int{gocv.IMWriteJpegQuality, quality})
	if err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	defer buf.Close()

	return append([]byte(nil), buf.GetBytes()...), nil
}
