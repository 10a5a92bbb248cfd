package detector

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// ErrServiceNotFound is returned when the hand tracking script cannot be located.
var ErrServiceNotFound = errors.New("hand_service.py not found")

// MediaPipeDetector implements Detector on top of a Python hand service.
// Each frame goes out as a 4-byte big-endian length and JPEG bytes; each
// reply is one JSON line of hands. The service starts on the first frame
// and stops after Config.IdleTimeout without frames.
type MediaPipeDetector struct {
	config Config
	script string
	python string

	mu       sync.Mutex
	cmd      *exec.Cmd
	stdin    io.WriteCloser
	stdout   *bufio.Reader
	idle     *time.Timer
	lastUsed time.Time
}

// NewMediaPipeDetector resolves the hand service and its interpreter.
// Nothing is started until the first Detect.
func NewMediaPipeDetector(config Config) (*MediaPipeDetector, error) {
	script := config.Script
	if script == "" {
		script = firstExisting(searchPaths(filepath.Join("scripts", "hand_service.py")))
	} else if _, err := os.Stat(script); err != nil {
		script = ""
	}
	if script == "" {
		return nil, ErrServiceNotFound
	}

	python := config.Python
	if python == "" {
		python = firstExisting(searchPaths(filepath.Join("venv", "bin", "python")))
	}
	if python == "" {
		python = "python3"
	}

	return &MediaPipeDetector{
		config: config,
		script: script,
		python: python,
	}, nil
}

// Detect sends one frame to the hand service and returns the hands it found.
// A failed exchange stops the service so the next frame starts a fresh one.
func (d *MediaPipeDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.start(); err != nil {
		return nil, err
	}

	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	if err := writeFrame(d.stdin, buf.GetBytes()); err != nil {
		d.stop(true)
		return nil, err
	}
	hands, err := readHands(d.stdout)
	if err != nil {
		d.stop(true)
		return nil, err
	}

	d.touch()
	return hands, nil
}

// Close stops the hand service.
func (d *MediaPipeDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stop(false)
}

// args returns the service command line after the interpreter.
func (d *MediaPipeDetector) args() []string {
	return []string{
		d.script,
		"--max-hands", strconv.Itoa(d.config.MaxHands),
		"--min-detection", strconv.FormatFloat(d.config.MinConfidence, 'f', 2, 64),
		"--min-tracking", strconv.FormatFloat(d.config.MinTrackingConf, 'f', 2, 64),
	}
}

func (d *MediaPipeDetector) start() error {
	if d.cmd != nil {
		return nil
	}

	cmd := exec.Command(d.python, d.args()...)
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start hand service: %w", err)
	}

	d.cmd = cmd
	d.stdin = stdin
	d.stdout = bufio.NewReader(stdout)
	return nil
}

// stop ends the service. Closing stdin asks it to exit; kill does not wait
// for that. Callers hold mu.
func (d *MediaPipeDetector) stop(kill bool) error {
	if d.idle != nil {
		d.idle.Stop()
		d.idle = nil
	}
	if d.cmd == nil {
		return nil
	}

	d.stdin.Close()
	if kill {
		d.cmd.Process.Kill()
	}
	err := d.cmd.Wait()
	d.cmd = nil
	d.stdin = nil
	d.stdout = nil
	if kill {
		return nil
	}
	return err
}

// touch pushes the idle shutdown back. Callers hold mu.
func (d *MediaPipeDetector) touch() {
	d.lastUsed = time.Now()
	if d.config.IdleTimeout <= 0 {
		return
	}
	if d.idle == nil {
		d.idle = time.AfterFunc(d.config.IdleTimeout, func() {
			d.mu.Lock()
			defer d.mu.Unlock()
			// A frame may have arrived while this callback waited for mu.
			if left := d.config.IdleTimeout - time.Since(d.lastUsed); left > 0 {
				if d.idle != nil {
					d.idle.Reset(left)
				}
				return
			}
			d.stop(false)
		})
		return
	}
	d.idle.Reset(d.config.IdleTimeout)
}

// writeFrame writes one length-prefixed JPEG.
func writeFrame(w io.Writer, jpg []byte) error {
	msg := binary.BigEndian.AppendUint32(make([]byte, 0, 4+len(jpg)), uint32(len(jpg)))
	if _, err := w.Write(append(msg, jpg...)); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// readHands reads one reply line.
func readHands(r *bufio.Reader) ([]HandLandmarks, error) {
	line, err := r.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return decodeHands(line)
}

// searchPaths lists where rel may live: the working directory, its
// parent, next to the executable and under ~/.arcade.
func searchPaths(rel string) []string {
	paths := []string{rel, filepath.Join("..", rel)}
	if exe, err := os.Executable(); err == nil {
		paths = append(paths, filepath.Join(filepath.Dir(exe), rel))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".arcade", rel))
	}
	return paths
}

// firstExisting returns the absolute form of the first path that exists.
func firstExisting(paths []string) string {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
		return path
	}
	return ""
}

// jsonHand is one hand in a service reply.
type jsonHand struct {
	Points     []jsonPoint `json:"points"`
	Handedness string      `json:"handedness"`
	Score      float64     `json:"score"`
}

type jsonPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// decodeHands parses one reply line from the hand service.
func decodeHands(line []byte) ([]HandLandmarks, error) {
	var response struct {
		Hands []jsonHand `json:"hands"`
	}
	if err := json.Unmarshal(line, &response); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	result := make([]HandLandmarks, len(response.Hands))
	for i, h := range response.Hands {
		result[i] = h.toHandLandmarks()
	}
	return result, nil
}

func (h jsonHand) toHandLandmarks() HandLandmarks {
	lm := HandLandmarks{
		Handedness: h.Handedness,
		Score:      h.Score,
	}
	for i := 0; i < NumLandmarks && i < len(h.Points); i++ {
		lm.Points[i] = Point3D{X: h.Points[i].X, Y: h.Points[i].Y, Z: h.Points[i].Z}
	}
	return lm
}
