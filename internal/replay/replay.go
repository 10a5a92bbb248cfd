// Package replay records arcade sessions as zstd-compressed JSON lines and
// plays them back. A log holds one header line followed by frame lines and
// control event lines in the order they happened. Given the header's seed,
// re-feeding the recorded hands reproduces every frame's score.
package replay

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/ayusman/arcade/internal/config"
	"github.com/ayusman/arcade/internal/detector"
	"github.com/ayusman/arcade/internal/games"
)

// Ext is the file extension of a replay log.
const Ext = ".jsonl.zst"

var (
	// ErrNoHeader is returned when a log does not start with a header line.
	ErrNoHeader = errors.New("replay log has no header")
	// ErrClosed is returned when writing to a closed recorder.
	ErrClosed = errors.New("recorder closed")
)

// Header identifies the session a log belongs to.
type Header struct {
	Session    string            `json:"session"`
	Seed       uint64            `json:"seed"`
	Game       games.Kind        `json:"game"`
	Difficulty config.Difficulty `json:"difficulty"`
	StartedAt  time.Time         `json:"started_at"`
}

// Frame is one processed frame: its input and the outcome it produced.
type Frame struct {
	Frame    int64                   `json:"frame"`
	Hand     *detector.HandLandmarks `json:"hand,omitempty"`
	Score    int                     `json:"score"`
	GameOver bool                    `json:"game_over"`
}

// Action names a control event applied between frames.
type Action string

const (
	ActionSwitch     Action = "switch"
	ActionPause      Action = "pause"
	ActionResume     Action = "resume"
	ActionReset      Action = "reset"
	ActionDifficulty Action = "difficulty"
	ActionDrawing    Action = "drawing"
)

// Event is a control event. Frame is the last frame processed before it.
type Event struct {
	Frame  int64  `json:"frame"`
	Action Action `json:"action"`
	Value  string `json:"value,omitempty"`
}

// Entry is one line after the header: exactly one of Frame or Event is set.
type Entry struct {
	Frame *Frame `json:"frame,omitempty"`
	Event *Event `json:"event,omitempty"`
}

// line is the on-disk shape of every line.
type line struct {
	Header *Header `json:"header,omitempty"`
	Frame  *Frame  `json:"frame,omitempty"`
	Event  *Event  `json:"event,omitempty"`
}

// Path returns the log file for session under dir.
func Path(dir, session string) string {
	return filepath.Join(dir, session+Ext)
}

// Recorder appends a session to a compressed log file. It is safe for
// concurrent use.
type Recorder struct {
	path string

	mu     sync.Mutex
	f      *os.File
	enc    *zstd.Encoder
	w      *bufio.Writer
	frames int64
}

// Create opens a new log at path and writes its header.
func Create(path string, h Header) (*Recorder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create replay dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to create replay log: %w", err)
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	r := &Recorder{
		path: path,
		f:    f,
		enc:  enc,
		w:    bufio.NewWriterSize(enc, 64*1024),
	}
	if err := r.write(line{Header: &h}); err != nil {
		_ = r.Close()
		return nil, err
	}
	return r, nil
}

// Frame appends a frame line.
func (r *Recorder) Frame(f Frame) error {
	if err := r.write(line{Frame: &f}); err != nil {
		return err
	}
	r.mu.Lock()
	r.frames++
	r.mu.Unlock()
	return nil
}

// Event appends a control event line.
func (r *Recorder) Event(ev Event) error {
	return r.write(line{Event: &ev})
}

func (r *Recorder) write(l line) error {
	b, err := json.Marshal(l)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.w == nil {
		return ErrClosed
	}
	if _, err := r.w.Write(b); err != nil {
		return err
	}
	return r.w.WriteByte('\n')
}

// Close flushes and finalizes the log.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.w == nil {
		return nil
	}
	err := r.w.Flush()
	if cerr := r.enc.Close(); err == nil {
		err = cerr
	}
	if cerr := r.f.Close(); err == nil {
		err = cerr
	}
	r.w, r.enc, r.f = nil, nil, nil
	return err
}

// Path returns the log's file path.
func (r *Recorder) Path() string { return r.path }

// Frames returns the number of frame lines written.
func (r *Recorder) Frames() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

// Log is a fully decoded replay.
type Log struct {
	Header  Header
	Entries []Entry
}

// Frames returns the frame entries in order.
func (l *Log) Frames() []Frame {
	var out []Frame
	for _, e := range l.Entries {
		if e.Frame != nil {
			out = append(out, *e.Frame)
		}
	}
	return out
}

// Open reads the log at path.
func Open(path string) (*Log, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	log, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return log, nil
}

// Read decodes a compressed log from r.
func Read(r io.Reader) (*Log, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), 8*1024*1024)

	var log *Log
	n := 0
	for sc.Scan() {
		n++
		var l line
		if err := json.Unmarshal(sc.Bytes(), &l); err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}

		if log == nil {
			if l.Header == nil {
				return nil, ErrNoHeader
			}
			log = &Log{Header: *l.Header}
			continue
		}

		switch {
		case l.Frame != nil:
			log.Entries = append(log.Entries, Entry{Frame: l.Frame})
		case l.Event != nil:
			log.Entries = append(log.Entries, Entry{Event: l.Event})
		default:
			return nil, fmt.Errorf("line %d: empty entry", n)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if log == nil {
		return nil, ErrNoHeader
	}
	return log, nil
}

// Machine is something a log can be re-fed into.
type Machine interface {
	Step(hand *detector.HandLandmarks) (score int, gameOver bool)
	Apply(ev Event) error
}

// Divergence reports the first frame whose replayed outcome differs from
// the recorded one.
type Divergence struct {
	Frame     int64
	WantScore int
	GotScore  int
	WantOver  bool
	GotOver   bool
}

func (d *Divergence) Error() string {
	return fmt.Sprintf("frame %d diverged: score %d (recorded %d), game over %v (recorded %v)",
		d.Frame, d.GotScore, d.WantScore, d.GotOver, d.WantOver)
}

// Verify re-feeds log into m. It returns a *Divergence at the first
// mismatching frame, or nil when every frame reproduces.
func Verify(log *Log, m Machine) error {
	for _, e := range log.Entries {
		if e.Event != nil {
			if err := m.Apply(*e.Event); err != nil {
				return fmt.Errorf("event after frame %d: %w", e.Event.Frame, err)
			}
			continue
		}

		f := e.Frame
		score, over := m.Step(f.Hand)
		if score != f.Score || over != f.GameOver {
			return &Divergence{
				Frame:     f.Frame,
				WantScore: f.Score,
				GotScore:  score,
				WantOver:  f.GameOver,
				GotOver:   over,
			}
		}
	}
	return nil
}
