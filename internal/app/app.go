// Package app runs the arcade: it pulls frames from the camera, finds the
// hand, steps the active game and fans the result out to audio, the replay
// log, the store and any subscribers.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/arcade/internal/audio"
	"github.com/ayusman/arcade/internal/capture"
	"github.com/ayusman/arcade/internal/config"
	"github.com/ayusman/arcade/internal/detector"
	"github.com/ayusman/arcade/internal/games"
	"github.com/ayusman/arcade/internal/replay"
	"github.com/ayusman/arcade/internal/store"
)

// ErrRunning is returned by Run when the frame loop is already running.
var ErrRunning = errors.New("app is already running")

// streamQuality is the JPEG quality of frames kept for the camera stream.
const streamQuality = 70

// Config holds the settings and collaborators of an App. Only Arcade is
// required; nil collaborators get defaults or are skipped.
type Config struct {
	Arcade config.Config
	// Game is the game to start with. Empty starts snake.
	Game games.Kind
	// Store persists settings, high scores and sessions.
	Store *store.Store
	// Camera defaults to the configured capture device.
	Camera capture.Camera
	// Detector defaults to MediaPipe, falling back to a mock without hands.
	Detector detector.Detector
	// Sink plays cues. Nil keeps the game silent.
	Sink audio.Sink
}

// Update is what subscribers receive after every frame.
type Update struct {
	Result FrameResult `json:"result"`
	State  Snapshot    `json:"state"`
	// HighScore is set on the frame a game ended with a new best score.
	HighScore bool `json:"high_score,omitempty"`
}

// App owns the arcade and the frame loop. All of its methods are safe for
// concurrent use; access to the Arcade is serialized by mu.
type App struct {
	config   Config
	camera   capture.Camera
	detector detector.Detector
	audio    *audio.Dispatcher
	store    *store.Store

	mu         sync.Mutex
	arcade     *Arcade
	recorder   *replay.Recorder
	sessionID  string
	started    time.Time
	startFrame int64
	enabled    bool
	running    bool

	subMu sync.RWMutex
	subs  map[chan Update]struct{}

	frameMu  sync.RWMutex
	jpeg     []byte
	frameSeq uint64
	viewers  atomic.Int32
}

// New builds an App. Difficulty and sound come from the store's settings
// when a store is configured.
func New(cfg Config) (*App, error) {
	if err := cfg.Arcade.Validate(); err != nil {
		return nil, err
	}
	if cfg.Game == "" {
		cfg.Game = games.KindSnake
	}

	settings := store.Settings{Difficulty: store.DefaultDifficulty, SoundEnabled: store.DefaultSoundEnabled}
	if cfg.Store != nil {
		s, err := cfg.Store.Settings().Load()
		if err != nil {
			return nil, fmt.Errorf("load settings: %w", err)
		}
		settings = s
	}
	difficulty, err := config.ParseDifficulty(settings.Difficulty)
	if err != nil {
		log.Printf("Ignoring stored difficulty: %v", err)
		difficulty = config.Medium
	}

	seed := cfg.Arcade.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}

	arcade, err := NewArcade(cfg.Arcade, difficulty, seed, cfg.Game)
	if err != nil {
		return nil, err
	}

	a := &App{
		config:   cfg,
		camera:   cfg.Camera,
		detector: cfg.Detector,
		store:    cfg.Store,
		arcade:   arcade,
		enabled:  true,
		subs:     make(map[chan Update]struct{}),
	}

	if a.camera == nil {
		a.camera = capture.NewCamera(cfg.Arcade.Camera)
	}
	if a.detector == nil {
		if mp, err := detector.NewMediaPipeDetector(cfg.Arcade.Detector); err == nil {
			a.detector = mp
			log.Println("Using MediaPipe hand detection")
		} else {
			log.Printf("MediaPipe not available (%v), using mock detector", err)
			a.detector = detector.NewMockDetector()
		}
	}
	if cfg.Sink != nil {
		a.audio = audio.NewDispatcher(cfg.Sink, audio.DefaultQueueSize, settings.SoundEnabled)
	}

	a.beginSession()
	if err := a.openRecorder(); err != nil {
		log.Printf("Replay recording disabled: %v", err)
	}
	return a, nil
}

// openRecorder starts the replay log for this run when a replay dir is set.
func (a *App) openRecorder() error {
	dir := a.config.Arcade.ReplayDir
	if dir == "" {
		return nil
	}

	rec, err := replay.Create(replay.Path(dir, a.sessionID), replay.Header{
		Session:    a.sessionID,
		Seed:       a.arcade.Seed(),
		Game:       a.arcade.Kind(),
		Difficulty: a.arcade.Difficulty(),
		StartedAt:  a.started,
	})
	if err != nil {
		return err
	}
	a.recorder = rec
	return nil
}

// Run opens the camera and processes frames at the configured rate until
// ctx is done. It closes the camera on the way out; Close releases the rest.
func (a *App) Run(ctx context.Context) error {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return ErrRunning
	}
	a.running = true
	a.mu.Unlock()

	if err := a.camera.Open(); err != nil {
		a.mu.Lock()
		a.running = false
		a.mu.Unlock()
		return fmt.Errorf("open camera: %w", err)
	}
	fps := a.config.Arcade.Camera.FPS
	a.camera.SetFPS(fps)
	defer a.shutdown()

	if a.audio != nil {
		go a.audio.Run(ctx)
	}

	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	log.Printf("Frame loop started at %d FPS", fps)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			a.tick()
		}
	}
}

// tick reads, detects and steps one frame.
func (a *App) tick() {
	if !a.Enabled() {
		return
	}

	frame, err := a.camera.ReadFrame()
	if err != nil {
		log.Printf("Error reading frame: %v", err)
		return
	}

	hands, err := a.detector.Detect(frame)
	if a.viewers.Load() > 0 {
		if jpg, err := capture.EncodeJPEG(frame, streamQuality); err == nil {
			a.storeFrame(jpg)
		}
	}
	frame.Close()

	if err != nil {
		log.Printf("Error detecting hands: %v", err)
		hands = nil
	}
	a.ProcessHand(detector.Primary(hands))
}

// ProcessHand runs one frame of the arcade on hand, which is nil when no
// hand was seen, and publishes the outcome.
func (a *App) ProcessHand(hand *detector.HandLandmarks) FrameResult {
	a.mu.Lock()
	res := a.arcade.Step(hand)

	if a.recorder != nil {
		err := a.recorder.Frame(replay.Frame{
			Frame:    res.Frame,
			Hand:     hand,
			Score:    res.Score,
			GameOver: res.GameOver,
		})
		if err != nil {
			log.Printf("Replay frame %d: %v", res.Frame, err)
		}
	}

	var high bool
	if res.Ended {
		high = a.endSessionLocked()
	}
	upd := Update{Result: res, State: a.arcade.Snapshot(), HighScore: high}
	a.mu.Unlock()

	if a.audio != nil {
		for _, cue := range res.Cues {
			a.audio.Dispatch(audio.Event{Cue: cue, Game: res.Game, Score: res.Score})
		}
	}
	a.publish(upd)
	return res
}

func (a *App) beginSession() {
	a.sessionID = uuid.NewString()
	a.started = time.Now().UTC()
	a.startFrame = a.arcade.Frame()
}

// endSessionLocked records the active game's session and submits its score.
// It reports whether the score is a new high. Callers hold mu.
func (a *App) endSessionLocked() bool {
	kind := a.arcade.Kind()
	if a.store == nil || !kind.Scored() {
		return false
	}

	score := a.arcade.Score()
	difficulty := string(a.arcade.Playing())

	high, err := a.store.Scores().Submit(string(kind), difficulty, score)
	if err != nil {
		log.Printf("Failed to submit %s score: %v", kind, err)
	} else if high {
		log.Printf("New %s high score: %d", kind, score)
	}

	sess := &store.Session{
		ID:         a.sessionID,
		Game:       string(kind),
		Difficulty: difficulty,
		Score:      score,
		Frames:     a.arcade.Frame() - a.startFrame,
		Seed:       a.arcade.Seed(),
		StartedAt:  a.started,
	}
	if a.recorder != nil {
		sess.ReplayPath = a.recorder.Path()
	}
	if err := a.store.Sessions().Create(sess); err != nil {
		log.Printf("Failed to record session: %v", err)
	}

	a.beginSession()
	return high
}

// leaveLocked closes the session of a game that is left before it ended.
// Games that never end (RPS, drawing) are recorded here.
func (a *App) leaveLocked() {
	if !a.arcade.GameOver() && a.arcade.Score() > 0 {
		a.endSessionLocked()
		return
	}
	a.beginSession()
}

// recordLocked appends a control event to the replay log.
func (a *App) recordLocked(action replay.Action, value string) {
	if a.recorder == nil {
		return
	}
	err := a.recorder.Event(replay.Event{Frame: a.arcade.Frame(), Action: action, Value: value})
	if err != nil {
		log.Printf("Replay event %s: %v", action, err)
	}
}

// Switch starts a fresh game of kind.
func (a *App) Switch(kind games.Kind) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, err := games.ParseKind(string(kind)); err != nil {
		return fmt.Errorf("%w: %s", ErrUnknownGame, kind)
	}
	a.leaveLocked()
	if err := a.arcade.Switch(kind); err != nil {
		return err
	}
	a.recordLocked(replay.ActionSwitch, string(kind))
	return nil
}

// SetPaused pauses or resumes the active game.
func (a *App) SetPaused(paused bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.arcade.SetPaused(paused)
	if paused {
		a.recordLocked(replay.ActionPause, "")
	} else {
		a.recordLocked(replay.ActionResume, "")
	}
}

// TogglePause flips the pause state and returns the new one.
func (a *App) TogglePause() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	paused := !a.arcade.Paused()
	a.arcade.SetPaused(paused)
	if paused {
		a.recordLocked(replay.ActionPause, "")
	} else {
		a.recordLocked(replay.ActionResume, "")
	}
	return paused
}

// Reset restarts the active game.
func (a *App) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.leaveLocked()
	a.arcade.Reset()
	a.recordLocked(replay.ActionReset, "")
}

// SetDifficulty changes and persists the difficulty. The snake picks it up
// the next time it starts.
func (a *App) SetDifficulty(d config.Difficulty) error {
	if _, err := config.ParseDifficulty(string(d)); err != nil {
		return err
	}
	if a.store != nil {
		if err := a.store.Settings().SetDifficulty(string(d)); err != nil {
			return err
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.arcade.SetDifficulty(d)
	a.recordLocked(replay.ActionDifficulty, string(d))
	return nil
}

// SetSound turns cues on or off and persists the choice.
func (a *App) SetSound(enabled bool) error {
	if a.store != nil {
		if err := a.store.Settings().SetSoundEnabled(enabled); err != nil {
			return err
		}
	}
	if a.audio != nil {
		a.audio.SetEnabled(enabled)
	}
	return nil
}

// DrawingControl applies a tool control to the drawing game.
func (a *App) DrawingControl(control string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.arcade.DrawingControl(control); err != nil {
		return err
	}
	a.recordLocked(replay.ActionDrawing, control)
	return nil
}

// Snapshot returns the current visual state.
func (a *App) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.arcade.Snapshot()
}

// SetEnabled starts or stops frame processing without closing the camera.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// Enabled reports whether frames are being processed.
func (a *App) Enabled() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.enabled
}

// SessionID returns the id of the session in progress.
func (a *App) SessionID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sessionID
}

// Store returns the store, which may be nil.
func (a *App) Store() *store.Store { return a.store }

// Subscribe registers for per-frame updates. Slow subscribers miss updates
// rather than stall the frame loop. Call the returned func to unsubscribe.
func (a *App) Subscribe() (<-chan Update, func()) {
	ch := make(chan Update, 8)

	a.subMu.Lock()
	a.subs[ch] = struct{}{}
	a.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			a.subMu.Lock()
			delete(a.subs, ch)
			a.subMu.Unlock()
		})
	}
}

func (a *App) publish(u Update) {
	a.subMu.RLock()
	defer a.subMu.RUnlock()

	for ch := range a.subs {
		select {
		case ch <- u:
		default:
		}
	}
}

// WatchStream marks a viewer of the camera stream; frames are only encoded
// while someone watches. Call the returned func when done.
func (a *App) WatchStream() func() {
	a.viewers.Add(1)
	var once sync.Once
	return func() {
		once.Do(func() { a.viewers.Add(-1) })
	}
}

// LatestFrame returns the most recent JPEG frame and its sequence number.
// The sequence is zero until the first frame is encoded.
func (a *App) LatestFrame() ([]byte, uint64) {
	a.frameMu.RLock()
	defer a.frameMu.RUnlock()
	return a.jpeg, a.frameSeq
}

func (a *App) storeFrame(jpg []byte) {
	a.frameMu.Lock()
	defer a.frameMu.Unlock()
	a.jpeg = jpg
	a.frameSeq++
}

// shutdown releases the camera when the frame loop stops.
func (a *App) shutdown() {
	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}

	a.mu.Lock()
	a.running = false
	a.mu.Unlock()
	log.Println("Frame loop stopped")
}

// Close records the session in progress, finalizes the replay log and
// releases the detector. Call it once the frame loop has returned.
func (a *App) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.leaveLocked()

	var errs []error
	if a.recorder != nil {
		if err := a.recorder.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close replay log: %w", err))
		}
		a.recorder = nil
	}
	if err := a.detector.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close detector: %w", err))
	}
	return errors.Join(errs...)
}

// ReplayPath returns the replay log being written, or "" when recording is off.
func (a *App) ReplayPath() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.recorder == nil {
		return ""
	}
	return a.recorder.Path()
}
