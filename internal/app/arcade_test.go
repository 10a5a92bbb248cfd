package app

import (
	"errors"
	"reflect"
	"slices"
	"testing"

	"github.com/ayusman/arcade/internal/config"
	"github.com/ayusman/arcade/internal/detector"
	"github.com/ayusman/arcade/internal/games"
	"github.com/ayusman/arcade/internal/games/rps"
	"github.com/ayusman/arcade/internal/games/snake"
	"github.com/ayusman/arcade/internal/gesture"
)

func newTestArcade(t *testing.T, kind games.Kind) *Arcade {
	t.Helper()
	a, err := NewArcade(config.Default(), config.Medium, 7, kind)
	if err != nil {
		t.Fatalf("NewArcade() error = %v", err)
	}
	return a
}

// handAt returns a pointing hand whose index tip lands on pixel (px, py)
// of the default 1280x720 frame.
func handAt(px, py int) *detector.HandLandmarks {
	h := detector.PointAt((float64(px)+0.5)/1280, (float64(py)+0.5)/720)
	return &h
}

// cellPixel returns the frame pixel at the center of a snake cell.
func cellPixel(c snake.Cell) (int, int) {
	return 50 + c.X*30 + 15, 50 + c.Y*30 + 15
}

func TestNewArcade_UnknownGame(t *testing.T) {
	if _, err := NewArcade(config.Default(), config.Medium, 1, "pong"); !errors.Is(err, ErrUnknownGame) {
		t.Errorf("NewArcade(pong) error = %v, want ErrUnknownGame", err)
	}

	a := newTestArcade(t, games.KindSnake)
	if err := a.Switch("pong"); !errors.Is(err, ErrUnknownGame) {
		t.Errorf("Switch(pong) error = %v, want ErrUnknownGame", err)
	}
	if a.Kind() != games.KindSnake || a.Snapshot().Snake == nil {
		t.Error("a failed switch must leave the active game alone")
	}
}

func TestArcade_SwitchQueuesMenuCue(t *testing.T) {
	a := newTestArcade(t, games.KindSnake)

	if res := a.Step(nil); len(res.Cues) != 0 {
		t.Errorf("first frame cues = %v, want none", res.Cues)
	}

	if err := a.Switch(games.KindSlicer); err != nil {
		t.Fatalf("Switch() error = %v", err)
	}
	res := a.Step(nil)
	if res.Game != games.KindSlicer || !slices.Contains(res.Cues, games.CueMenu) {
		t.Errorf("Step() after switch = %+v, want slicer with menu cue", res)
	}
	if res := a.Step(nil); slices.Contains(res.Cues, games.CueMenu) {
		t.Error("menu cue repeated")
	}

	s := a.Snapshot()
	if s.Slicer == nil || s.Snake != nil || s.Title != "Fruit Slicer" {
		t.Errorf("Snapshot() = %+v, want only the slicer view", s)
	}
}

func TestArcade_SnakeEatsThroughStep(t *testing.T) {
	a := newTestArcade(t, games.KindSnake)
	food := a.Snapshot().Snake.Food
	hand := handAt(cellPixel(food))

	// Medium difficulty moves every 8 frames.
	for i := 0; i < 7; i++ {
		res := a.Step(hand)
		if res.Points != 0 || len(res.Cues) != 0 {
			t.Fatalf("frame %d = %+v, want no movement yet", res.Frame, res)
		}
		if res.Pointer == nil {
			t.Fatal("snake frames must carry the pointer")
		}
	}

	res := a.Step(hand)
	if res.Points != 10 || res.Score != 10 {
		t.Errorf("Step() = %+v, want 10 points", res)
	}
	if !slices.Equal(res.Cues, []games.Cue{games.CueEat}) {
		t.Errorf("Cues = %v, want [eat]", res.Cues)
	}
	if res.Gesture.Kind != gesture.KindNone {
		t.Errorf("Gesture = %+v, snake frames are not classified", res.Gesture)
	}

	s := a.Snapshot()
	if s.Snake.Cells[0] != food || len(s.Snake.Cells) != 2 {
		t.Errorf("snake = %+v, want head on the eaten food", s.Snake.Cells)
	}
}

func TestArcade_SnakeSkipsClassifier(t *testing.T) {
	a := newTestArcade(t, games.KindSnake)
	fist := detector.FistLandmarks()

	a.Step(&fist)
	if a.Classifier().Last() != gesture.None || a.Classifier().Cooldown() != 0 {
		t.Error("snake frames must not run the classifier")
	}
}

func TestArcade_GameOverCueOnce(t *testing.T) {
	a := newTestArcade(t, games.KindSlicer)

	ended := 0
	var endFrame int64
	for i := 0; i < 5000 && !a.GameOver(); i++ {
		res := a.Step(nil)
		if res.Ended {
			ended++
			endFrame = res.Frame
			if !slices.Contains(res.Cues, games.CueGameOver) {
				t.Errorf("ending frame cues = %v, want game_over", res.Cues)
			}
		}
	}
	if !a.GameOver() {
		t.Fatal("slicer never ran out of lives")
	}
	if ended != 1 {
		t.Fatalf("Ended reported %d times, want 1", ended)
	}

	for i := 0; i < 10; i++ {
		res := a.Step(nil)
		if res.Ended || slices.Contains(res.Cues, games.CueGameOver) || !res.GameOver {
			t.Errorf("frame %d after end (%d) = %+v", res.Frame, endFrame, res)
		}
	}

	a.Reset()
	if a.GameOver() || a.Score() != 0 {
		t.Error("Reset() should restart the slicer")
	}
}

func TestArcade_RPSTakesFreshGesturesOnly(t *testing.T) {
	a := newTestArcade(t, games.KindRPS)
	fist := detector.FistLandmarks()

	res := a.Step(&fist)
	if res.Gesture.Fresh() != "fist" {
		t.Fatalf("first fist = %+v, want fresh fist", res.Gesture)
	}
	if res.Pointer != nil {
		t.Error("rps frames carry no pointer")
	}

	s := a.Snapshot().RPS
	if s.State != rps.StateCountdown || s.Player != rps.Rock {
		t.Fatalf("after fresh fist: %+v", s)
	}

	// Held and repeated fists must not start anything new.
	for i := 0; i < 88; i++ {
		a.Step(&fist)
	}
	if got := a.Snapshot().RPS; got.State != rps.StateCountdown || got.Rounds != 0 {
		t.Fatalf("before resolution: %+v", got)
	}

	res = a.Step(&fist)
	s = a.Snapshot().RPS
	if s.State != rps.StateShowResult || s.Rounds != 1 {
		t.Fatalf("after 90 frames: %+v", s)
	}
	if (s.Result == rps.Win) != (res.Points == 1) {
		t.Errorf("Points = %d for result %s", res.Points, s.Result)
	}
	if res.Score != s.PlayerScore {
		t.Errorf("Score = %d, want player score %d", res.Score, s.PlayerScore)
	}
}

func TestArcade_DrawingPinchTogglesPen(t *testing.T) {
	a := newTestArcade(t, games.KindDrawing)
	pinch := detector.PinchLandmarks()
	point := detector.PointLandmarks()

	a.Step(&pinch)
	if !a.Snapshot().PenDown {
		t.Fatal("a fresh pinch should put the pen down")
	}

	// Ten held frames, then a fresh point, then its cooldown.
	for i := 0; i < 10; i++ {
		a.Step(&pinch)
	}
	for i := 0; i < 11; i++ {
		a.Step(&point)
	}
	if !a.Snapshot().PenDown {
		t.Fatal("other gestures must not lift the pen")
	}
	strokes := a.Snapshot().Drawing.Strokes
	if len(strokes) != 1 || len(strokes[0].Points) != 22 {
		t.Fatalf("strokes = %d, want one stroke of 22 points", len(strokes))
	}

	a.Step(&pinch)
	s := a.Snapshot()
	if s.PenDown || s.Drawing.Drawing {
		t.Error("a second fresh pinch should lift the pen")
	}
}

func TestArcade_PauseFreezesGame(t *testing.T) {
	a := newTestArcade(t, games.KindSlicer)

	a.SetPaused(true)
	for i := 0; i < 100; i++ {
		a.Step(nil)
	}
	if n := len(a.Snapshot().Slicer.Fruits); n != 0 {
		t.Fatalf("%d fruits spawned while paused", n)
	}

	a.TogglePause()
	if a.Paused() {
		t.Fatal("TogglePause() should resume")
	}
	for i := 0; i < 60; i++ {
		a.Step(nil)
	}
	if n := len(a.Snapshot().Slicer.Fruits); n != 1 {
		t.Errorf("fruits after resuming = %d, want 1", n)
	}
}

func TestArcade_PausedRPSKeepsThrow(t *testing.T) {
	a := newTestArcade(t, games.KindRPS)
	fist := detector.FistLandmarks()

	a.SetPaused(true)
	for i := 0; i < 5; i++ {
		if res := a.Step(&fist); res.Gesture.Kind != gesture.KindNone {
			t.Fatalf("paused frame gesture = %+v, want none", res.Gesture)
		}
	}
	if a.Classifier().Last() != gesture.None {
		t.Fatalf("classifier saw %s while paused", a.Classifier().Last())
	}

	a.SetPaused(false)
	res := a.Step(&fist)
	if res.Gesture.Fresh() != gesture.Fist {
		t.Fatalf("first fist after resume = %+v, want fresh fist", res.Gesture)
	}
	if s := a.Snapshot().RPS; s.State != rps.StateCountdown || s.Player != rps.Rock {
		t.Errorf("rps after resume = %+v, want countdown with rock", s)
	}
}

func TestArcade_PausedSnakeHoldsStill(t *testing.T) {
	a := newTestArcade(t, games.KindSnake)
	food := a.Snapshot().Snake.Food
	hand := handAt(cellPixel(food))

	a.SetPaused(true)
	for i := 0; i < 40; i++ {
		a.Step(hand)
	}
	if a.Score() != 0 || !a.Snapshot().Snake.Paused {
		t.Fatal("paused snake moved")
	}

	a.SetPaused(false)
	for i := 0; i < 8; i++ {
		a.Step(hand)
	}
	if a.Score() != 10 {
		t.Errorf("Score() = %d after resuming, want 10", a.Score())
	}
}

func TestArcade_DifficultyAppliesOnReset(t *testing.T) {
	a := newTestArcade(t, games.KindSnake)

	a.SetDifficulty(config.Hard)
	if a.Playing() != config.Medium || a.Snapshot().Difficulty != config.Medium {
		t.Fatal("difficulty changed mid-game")
	}

	a.Reset()
	if a.Playing() != config.Hard {
		t.Fatalf("Playing() = %s after reset, want hard", a.Playing())
	}

	hand := handAt(cellPixel(a.Snapshot().Snake.Food))
	for i := 0; i < 3; i++ {
		a.Step(hand)
	}
	if a.Score() != 10 {
		t.Errorf("hard snake should eat on the third frame, score = %d", a.Score())
	}
}

func TestArcade_DrawingControl(t *testing.T) {
	a := newTestArcade(t, games.KindSnake)
	if err := a.DrawingControl("undo"); !errors.Is(err, ErrNotDrawing) {
		t.Errorf("DrawingControl() on snake error = %v, want ErrNotDrawing", err)
	}

	a.Switch(games.KindDrawing)
	tests := []struct {
		control string
		wantErr bool
	}{
		{"color:3", false},
		{"toggle_tool", false},
		{"bigger", false},
		{"undo", false},
		{"clear", false},
		{"palette", false},
		{"color:99", true},
		{"color:x", true},
		{"explode", true},
	}
	for _, tt := range tests {
		err := a.DrawingControl(tt.control)
		if (err != nil) != tt.wantErr {
			t.Errorf("DrawingControl(%q) error = %v, wantErr %v", tt.control, err, tt.wantErr)
		}
		if tt.wantErr && !errors.Is(err, ErrUnknownControl) {
			t.Errorf("DrawingControl(%q) error = %v, want ErrUnknownControl", tt.control, err)
		}
	}

	d := a.Snapshot().Drawing
	if d.Color.Name != "Yellow" || d.Tool != "eraser" || d.Size != 35 || !d.ShowPalette {
		t.Errorf("drawing = %+v", d)
	}
}

func TestArcade_Deterministic(t *testing.T) {
	run := func() []Snapshot {
		a := newTestArcade(t, games.KindSnake)
		var out []Snapshot
		for i := 0; i < 400; i++ {
			food := a.Snapshot().Snake.Food
			var hand *detector.HandLandmarks
			if i%5 != 0 {
				hand = handAt(cellPixel(food))
			}
			a.Step(hand)
			if i == 200 {
				a.Switch(games.KindSlicer)
			}
			out = append(out, a.Snapshot())
		}
		return out
	}

	first, second := run(), run()
	if !reflect.DeepEqual(first, second) {
		t.Fatal("two arcades with the same seed and input diverged")
	}
	if first[199].Score == 0 {
		t.Error("snake should have scored while chasing food")
	}
}
