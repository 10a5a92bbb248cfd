package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/ayusman/arcade/internal/capture"
	"github.com/ayusman/arcade/internal/config"
	"github.com/ayusman/arcade/internal/detector"
	"github.com/ayusman/arcade/internal/games"
	"github.com/ayusman/arcade/internal/replay"
	"github.com/ayusman/arcade/internal/store"
)

type testEnv struct {
	store    *store.Store
	camera   *capture.MockCamera
	detector *detector.MockDetector
	config   config.Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "arcade.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })

	cfg := config.Default()
	cfg.Seed = 42
	return &testEnv{
		store:    s,
		camera:   capture.NewMockCamera(nil, false),
		detector: detector.NewMockDetector(),
		config:   cfg,
	}
}

func (e *testEnv) newApp(t *testing.T, game games.Kind) *App {
	t.Helper()
	a, err := New(Config{
		Arcade:   e.config,
		Game:     game,
		Store:    e.store,
		Camera:   e.camera,
		Detector: e.detector,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return a
}

// chase returns a hand on the snake's food.
func chase(a *App) *detector.HandLandmarks {
	return handAt(cellPixel(a.Snapshot().Snake.Food))
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Snake.CellSize = 0
	if _, err := New(Config{Arcade: cfg, Detector: detector.NewMockDetector()}); err == nil {
		t.Error("New() should reject an invalid config")
	}
}

func TestApp_ProcessHandPublishes(t *testing.T) {
	env := newTestEnv(t)
	a := env.newApp(t, games.KindSnake)
	defer a.Close()

	updates, unsubscribe := a.Subscribe()

	res := a.ProcessHand(nil)
	if res.Frame != 1 || res.Game != games.KindSnake {
		t.Errorf("ProcessHand() = %+v", res)
	}

	select {
	case u := <-updates:
		if u.Result.Frame != 1 || u.State.Snake == nil {
			t.Errorf("update = %+v", u)
		}
	default:
		t.Fatal("no update published")
	}

	unsubscribe()
	unsubscribe()
	a.ProcessHand(nil)
	select {
	case u := <-updates:
		t.Errorf("received %+v after unsubscribe", u)
	default:
	}
}

func TestApp_GameOverRecordsSession(t *testing.T) {
	env := newTestEnv(t)
	a := env.newApp(t, games.KindSlicer)
	defer a.Close()

	first := a.SessionID()
	updates, unsubscribe := a.Subscribe()
	defer unsubscribe()

	var ended *Update
	for i := 0; i < 5000 && ended == nil; i++ {
		a.ProcessHand(nil)
		if u := <-updates; u.Result.Ended {
			ended = &u
		}
	}
	if ended == nil {
		t.Fatal("slicer never ended")
	}
	if ended.HighScore {
		t.Error("a game ending on zero must not set a high score")
	}
	if _, err := env.store.Scores().Get("slicer", "medium"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Scores().Get() error = %v, want ErrNotFound", err)
	}

	sess, err := env.store.Sessions().GetByID(first)
	if err != nil {
		t.Fatalf("Sessions().GetByID() error = %v", err)
	}
	if sess.Game != "slicer" || sess.Frames != ended.Result.Frame || sess.Seed != 42 {
		t.Errorf("session = %+v", sess)
	}
	if a.SessionID() == first {
		t.Error("a new session should begin after game over")
	}
}

func TestApp_LeavingScoredGameRecordsSession(t *testing.T) {
	env := newTestEnv(t)
	a := env.newApp(t, games.KindSnake)
	defer a.Close()

	for i := 0; i < 8; i++ {
		a.ProcessHand(chase(a))
	}
	if a.Snapshot().Score != 10 {
		t.Fatalf("score = %d, want 10", a.Snapshot().Score)
	}

	if err := a.Switch(games.KindDrawing); err != nil {
		t.Fatalf("Switch() error = %v", err)
	}

	list, err := env.store.Sessions().List("snake", 10)
	if err != nil {
		t.Fatalf("Sessions().List() error = %v", err)
	}
	if len(list) != 1 || list[0].Score != 10 {
		t.Errorf("sessions = %+v, want one snake session scoring 10", list)
	}
	if hs, err := env.store.Scores().Get("snake", "medium"); err != nil || hs.Score != 10 {
		t.Errorf("Scores().Get() = %+v, %v; want 10", hs, err)
	}

	// Unscored games leave nothing behind.
	a.Switch(games.KindSlicer)
	if all, _ := env.store.Sessions().List("", 10); len(all) != 1 {
		t.Errorf("sessions = %d, want 1", len(all))
	}
}

func TestApp_Switch_Unknown(t *testing.T) {
	env := newTestEnv(t)
	a := env.newApp(t, games.KindSnake)
	defer a.Close()

	if err := a.Switch("pong"); !errors.Is(err, ErrUnknownGame) {
		t.Errorf("Switch(pong) error = %v, want ErrUnknownGame", err)
	}
}

func TestApp_SettingsPersist(t *testing.T) {
	env := newTestEnv(t)
	a := env.newApp(t, games.KindSnake)

	if err := a.SetDifficulty("impossible"); err == nil {
		t.Error("SetDifficulty() should reject unknown levels")
	}
	if err := a.SetDifficulty(config.Hard); err != nil {
		t.Fatalf("SetDifficulty() error = %v", err)
	}
	if err := a.SetSound(false); err != nil {
		t.Fatalf("SetSound() error = %v", err)
	}
	a.Close()

	settings, err := env.store.Settings().Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if settings.Difficulty != "hard" || settings.SoundEnabled {
		t.Errorf("settings = %+v", settings)
	}

	b := env.newApp(t, games.KindSnake)
	defer b.Close()
	if got := b.Snapshot().Difficulty; got != config.Hard {
		t.Errorf("restarted difficulty = %s, want hard", got)
	}
}

func TestApp_TogglePause(t *testing.T) {
	env := newTestEnv(t)
	a := env.newApp(t, games.KindFlappy)
	defer a.Close()

	if !a.TogglePause() || !a.Snapshot().Paused {
		t.Error("TogglePause() should pause")
	}
	if a.TogglePause() {
		t.Error("TogglePause() should resume")
	}
}

func TestApp_ReplayVerifies(t *testing.T) {
	env := newTestEnv(t)
	env.config.ReplayDir = filepath.Join(t.TempDir(), "replays")
	a := env.newApp(t, games.KindSnake)

	path := a.ReplayPath()
	if path == "" {
		t.Fatal("ReplayPath() is empty with a replay dir")
	}

	for i := 0; i < 60; i++ {
		hand := chase(a)
		if i%7 == 0 {
			hand = nil
		}
		a.ProcessHand(hand)
		if i == 20 {
			a.SetPaused(true)
		}
		if i == 25 {
			a.SetPaused(false)
		}
	}
	a.SetDifficulty(config.Easy)
	a.Reset()
	for i := 0; i < 30; i++ {
		a.ProcessHand(chase(a))
	}
	a.Switch(games.KindDrawing)
	pinch := detector.PinchLandmarks()
	for i := 0; i < 5; i++ {
		a.ProcessHand(&pinch)
	}
	a.DrawingControl("undo")
	a.Switch(games.KindSlicer)
	for i := 0; i < 300; i++ {
		a.ProcessHand(nil)
	}

	if err := a.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	log, err := replay.Open(path)
	if err != nil {
		t.Fatalf("replay.Open() error = %v", err)
	}
	if log.Header.Seed != 42 || log.Header.Game != games.KindSnake {
		t.Errorf("header = %+v", log.Header)
	}
	if n := len(log.Frames()); n != 395 {
		t.Errorf("frames = %d, want 395", n)
	}
	if err := VerifyReplay(env.config, log); err != nil {
		t.Errorf("VerifyReplay() error = %v", err)
	}

	// A different seed must not reproduce the run.
	log.Header.Seed = 7
	var div *replay.Divergence
	if err := VerifyReplay(env.config, log); !errors.As(err, &div) {
		t.Errorf("VerifyReplay() with wrong seed = %v, want divergence", err)
	}
}

func TestApp_Run(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping frame loop test")
	}

	env := newTestEnv(t)
	env.detector.SetHands([]detector.HandLandmarks{detector.FistLandmarks()})
	a := env.newApp(t, games.KindRPS)
	defer a.Close()

	stop := a.WatchStream()
	defer stop()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	deadline := time.Now().Add(3 * time.Second)
	for env.detector.Calls() < 3 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if env.detector.Calls() < 3 {
		t.Fatal("frame loop did not run")
	}

	if err := a.Run(ctx); !errors.Is(err, ErrRunning) {
		t.Errorf("second Run() error = %v, want ErrRunning", err)
	}

	if jpg, seq := a.LatestFrame(); seq == 0 || len(jpg) == 0 {
		t.Error("no stream frame while watching")
	}
	if a.Snapshot().RPS.Player != "rock" {
		t.Errorf("rps = %+v, want rock from the detected fist", a.Snapshot().RPS)
	}

	a.SetEnabled(false)
	time.Sleep(50 * time.Millisecond)
	calls := env.detector.Calls()
	time.Sleep(100 * time.Millisecond)
	if env.detector.Calls() != calls {
		t.Error("disabled app kept detecting")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run() did not stop")
	}
	if env.camera.IsOpen() {
		t.Error("camera left open")
	}
}
