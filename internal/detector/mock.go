package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results, either as a fixed set of
// hands or as a script consumed one entry per Detect call.
type MockDetector struct {
	mu     sync.Mutex
	hands  []HandLandmarks
	script [][]HandLandmarks
	err    error
	calls  int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect once any script is exhausted.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetScript queues per-frame results. Each Detect call consumes one entry;
// a nil entry means no hand in that frame.
func (m *MockDetector) SetScript(frames [][]HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = frames
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect has been called.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the next scripted frame, the pre-configured hands, or the error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if len(m.script) > 0 {
		next := m.script[0]
		m.script = m.script[1:]
		return next, nil
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}
