package app

import (
	"errors"
	"fmt"
	"image"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/ayusman/arcade/internal/config"
	"github.com/ayusman/arcade/internal/detector"
	"github.com/ayusman/arcade/internal/games"
	"github.com/ayusman/arcade/internal/games/drawing"
	"github.com/ayusman/arcade/internal/games/flappy"
	"github.com/ayusman/arcade/internal/games/rps"
	"github.com/ayusman/arcade/internal/games/slicer"
	"github.com/ayusman/arcade/internal/games/snake"
	"github.com/ayusman/arcade/internal/geom"
	"github.com/ayusman/arcade/internal/gesture"
)

var (
	// ErrUnknownGame is returned when switching to a game that does not exist.
	ErrUnknownGame = errors.New("unknown game")
	// ErrNotDrawing is returned for drawing controls while another game is active.
	ErrNotDrawing = errors.New("drawing is not active")
	// ErrUnknownControl is returned for a drawing control that does not exist.
	ErrUnknownControl = errors.New("unknown drawing control")
)

// DrawingControls lists the tool controls DrawingControl accepts, besides
// "color:<index>".
var DrawingControls = []string{"undo", "clear", "next_color", "toggle_tool", "bigger", "smaller", "palette", "help"}

// levelUpEvery is the snake score interval that raises a level-up cue.
const levelUpEvery = 50

// FrameResult is everything one frame produced.
type FrameResult struct {
	Frame   int64          `json:"frame"`
	Game    games.Kind     `json:"game"`
	Gesture gesture.Result `json:"gesture"`
	// Pointer is the index fingertip in frame pixels, when a hand was seen.
	Pointer  *image.Point `json:"pointer,omitempty"`
	Points   int          `json:"points"`
	Score    int          `json:"score"`
	GameOver bool         `json:"game_over"`
	// Ended is set only on the frame the game became over.
	Ended bool        `json:"ended"`
	Cues  []games.Cue `json:"cues,omitempty"`
}

// Snapshot is the read-only state of the arcade for rendering. Exactly one
// of the per-game views is set.
type Snapshot struct {
	Frame      int64             `json:"frame"`
	Game       games.Kind        `json:"game"`
	Title      string            `json:"title"`
	Difficulty config.Difficulty `json:"difficulty"`
	Paused     bool              `json:"paused"`
	Score      int               `json:"score"`
	GameOver   bool              `json:"game_over"`
	Gesture    gesture.Gesture   `json:"gesture"`
	PenDown    bool              `json:"pen_down,omitempty"`

	Snake   *snake.Snapshot   `json:"snake,omitempty"`
	Slicer  *slicer.Snapshot  `json:"slicer,omitempty"`
	Flappy  *flappy.Snapshot  `json:"flappy,omitempty"`
	RPS     *rps.Snapshot     `json:"rps,omitempty"`
	Drawing *drawing.Snapshot `json:"drawing,omitempty"`
}

// Arcade owns the classifier and the one active game. Kind tags which of
// the engine pointers is live; the others are nil.
//
// Arcade is not safe for concurrent use. App serializes access to it.
type Arcade struct {
	config     config.Config
	difficulty config.Difficulty
	playing    config.Difficulty
	seed       uint64
	rng        *rand.Rand
	classifier *gesture.Classifier

	kind    games.Kind
	snake   *snake.Game
	slicer  *slicer.Game
	flappy  *flappy.Game
	rps     *rps.Game
	drawing *drawing.Game

	frame       int64
	paused      bool
	penDown     bool
	wasOver     bool
	lastGesture gesture.Gesture
	pending     []games.Cue
}

// NewArcade creates an arcade playing kind. The seed fixes every random
// draw the games make.
func NewArcade(cfg config.Config, difficulty config.Difficulty, seed uint64, kind games.Kind) (*Arcade, error) {
	a := &Arcade{
		config:     cfg,
		difficulty: difficulty,
		seed:       seed,
		rng:        rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		classifier: gesture.NewClassifier(cfg.Classifier),
	}
	if err := a.start(kind); err != nil {
		return nil, err
	}
	a.pending = nil
	return a, nil
}

// Switch discards the active game and starts a fresh kind.
func (a *Arcade) Switch(kind games.Kind) error {
	return a.start(kind)
}

func (a *Arcade) start(kind games.Kind) error {
	var (
		sn *snake.Game
		sl *slicer.Game
		fl *flappy.Game
		rp *rps.Game
		dr *drawing.Game
	)

	switch kind {
	case games.KindSnake:
		sn = snake.New(a.config.SnakeConfig(a.difficulty), a.rng)
	case games.KindSlicer:
		sl = slicer.New(a.config.Slicer, a.rng)
	case games.KindFlappy:
		fl = flappy.New(a.config.Flappy, a.rng)
	case games.KindRPS:
		rp = rps.New(a.config.RPS, a.rng)
	case games.KindDrawing:
		dr = drawing.New(a.config.Drawing)
	default:
		return ErrUnknownGame
	}

	a.kind = kind
	a.playing = a.difficulty
	a.snake, a.slicer, a.flappy, a.rps, a.drawing = sn, sl, fl, rp, dr
	a.classifier.Reset()
	a.paused = false
	a.penDown = false
	a.wasOver = false
	a.lastGesture = gesture.None
	a.pending = append(a.pending, games.CueMenu)
	return nil
}

// Step runs one frame: classify if the game takes gestures, then exactly one
// engine update. hand is nil when no hand was found.
func (a *Arcade) Step(hand *detector.HandLandmarks) FrameResult {
	a.frame++
	res := FrameResult{
		Frame: a.frame,
		Game:  a.kind,
		Cues:  a.pending,
	}
	a.pending = nil

	// A paused game leaves the classifier alone so no throw is spent on it.
	if a.kind.NeedsGestures() && !a.paused {
		res.Gesture = a.classifier.Classify(hand)
		if g := res.Gesture.Active(); g != gesture.None {
			a.lastGesture = g
		}
	} else {
		res.Gesture = gesture.Result{Kind: gesture.KindNone, Gesture: gesture.None}
	}

	if hand != nil && a.kind.NeedsPointer() {
		x, y := hand.TipPixel(detector.Index, a.config.Camera.Width, a.config.Camera.Height)
		res.Pointer = &image.Point{X: x, Y: y}
	}

	if !a.paused || a.kind == games.KindSnake {
		res.Points, res.Cues = a.update(res.Pointer, res.Gesture, res.Cues)
	}

	res.Score = a.Score()
	res.GameOver = a.GameOver()
	if res.GameOver && !a.wasOver {
		res.Ended = true
		res.Cues = append(res.Cues, games.CueGameOver)
	}
	a.wasOver = res.GameOver
	return res
}

// update feeds the active engine and returns the points scored.
func (a *Arcade) update(pointer *image.Point, g gesture.Result, cues []games.Cue) (int, []games.Cue) {
	switch a.kind {
	case games.KindSnake:
		var board *image.Point
		if pointer != nil {
			p := pointer.Sub(image.Pt(a.config.Board.OffsetX, a.config.Board.OffsetY))
			board = &p
		}
		before := a.snake.Score()
		if _, ate := a.snake.Update(board); ate {
			cues = append(cues, games.CueEat)
			if a.snake.Score()%levelUpEvery == 0 {
				cues = append(cues, games.CueLevelUp)
			}
			return a.snake.Score() - before, cues
		}

	case games.KindSlicer:
		var p *geom.Point
		if pointer != nil {
			gp := geom.Pt(float64(pointer.X), float64(pointer.Y))
			p = &gp
		}
		if pts := a.slicer.Update(p); pts > 0 {
			return pts, append(cues, games.CueEat)
		}

	case games.KindFlappy:
		var y *float64
		if pointer != nil {
			fy := float64(pointer.Y)
			y = &fy
		}
		if pts := a.flappy.Update(y); pts > 0 {
			return pts, append(cues, games.CueEat)
		}

	case games.KindRPS:
		if fresh := g.Fresh(); fresh != gesture.None {
			a.rps.Input(fresh)
		}
		if outcome, done := a.rps.Update(); done && outcome == rps.Win {
			return 1, cues
		}

	case games.KindDrawing:
		if g.Fresh() == gesture.Pinch {
			a.penDown = !a.penDown
		}
		a.drawing.Update(pointer, a.penDown)
	}

	return 0, cues
}

// SetPaused pauses or resumes the active game.
func (a *Arcade) SetPaused(paused bool) {
	a.paused = paused
	if a.kind == games.KindSnake {
		if paused {
			a.snake.Pause()
		} else {
			a.snake.Resume()
		}
	}
}

// TogglePause flips the pause state.
func (a *Arcade) TogglePause() {
	a.SetPaused(!a.paused)
}

// Reset restarts the active game in place. A snake restarts at the current
// difficulty.
func (a *Arcade) Reset() {
	switch a.kind {
	case games.KindSnake:
		a.snake = snake.New(a.config.SnakeConfig(a.difficulty), a.rng)
		a.playing = a.difficulty
	case games.KindSlicer:
		a.slicer.Reset()
	case games.KindFlappy:
		a.flappy.Reset()
	case games.KindRPS:
		a.rps.Reset()
	case games.KindDrawing:
		a.drawing.Reset()
	}
	a.classifier.Reset()
	a.paused = false
	a.penDown = false
	a.wasOver = false
}

// SetDifficulty changes the snake pace. It takes effect the next time a
// game starts or resets.
func (a *Arcade) SetDifficulty(d config.Difficulty) {
	a.difficulty = d
}

// Score returns the active game's score. Drawing has none.
func (a *Arcade) Score() int {
	switch a.kind {
	case games.KindSnake:
		return a.snake.Score()
	case games.KindSlicer:
		return a.slicer.Score()
	case games.KindFlappy:
		return a.flappy.Score()
	case games.KindRPS:
		return a.rps.Score()
	default:
		return 0
	}
}

// GameOver reports whether the active game has ended. RPS and drawing never do.
func (a *Arcade) GameOver() bool {
	switch a.kind {
	case games.KindSnake:
		return a.snake.GameOver()
	case games.KindSlicer:
		return a.slicer.GameOver()
	case games.KindFlappy:
		return a.flappy.GameOver()
	default:
		return false
	}
}

func (a *Arcade) Kind() games.Kind                { return a.kind }
func (a *Arcade) Frame() int64                    { return a.frame }
func (a *Arcade) Paused() bool                    { return a.paused }
func (a *Arcade) Seed() uint64                    { return a.seed }
func (a *Arcade) Difficulty() config.Difficulty   { return a.difficulty }
func (a *Arcade) Classifier() *gesture.Classifier { return a.classifier }

// Playing returns the difficulty the active game was started with.
func (a *Arcade) Playing() config.Difficulty { return a.playing }

// Drawing returns the drawing game when it is active.
func (a *Arcade) Drawing() *drawing.Game { return a.drawing }

// DrawingControl applies a tool control to the active drawing game.
func (a *Arcade) DrawingControl(control string) error {
	if a.kind != games.KindDrawing {
		return ErrNotDrawing
	}

	if idx, ok := strings.CutPrefix(control, "color:"); ok {
		i, err := strconv.Atoi(idx)
		if err != nil || i < 0 || i >= len(drawing.Palette) {
			return fmt.Errorf("%w: %s", ErrUnknownControl, control)
		}
		a.drawing.SetColor(i)
		return nil
	}

	switch control {
	case "undo":
		a.drawing.Undo()
	case "clear":
		a.drawing.Clear()
	case "next_color":
		a.drawing.NextColor()
	case "toggle_tool":
		a.drawing.ToggleTool()
	case "bigger":
		a.drawing.IncreaseSize()
	case "smaller":
		a.drawing.DecreaseSize()
	case "palette":
		a.drawing.TogglePalette()
	case "help":
		a.drawing.ToggleHelp()
	default:
		return fmt.Errorf("%w: %s", ErrUnknownControl, control)
	}
	return nil
}

// Snapshot captures the arcade and the active game's visual state.
func (a *Arcade) Snapshot() Snapshot {
	s := Snapshot{
		Frame:      a.frame,
		Game:       a.kind,
		Title:      a.kind.Title(),
		Difficulty: a.playing,
		Paused:     a.paused,
		Score:      a.Score(),
		GameOver:   a.GameOver(),
		Gesture:    a.lastGesture,
		PenDown:    a.penDown,
	}

	switch a.kind {
	case games.KindSnake:
		v := a.snake.Snapshot()
		s.Snake = &v
	case games.KindSlicer:
		v := a.slicer.Snapshot()
		s.Slicer = &v
	case games.KindFlappy:
		v := a.flappy.Snapshot()
		s.Flappy = &v
	case games.KindRPS:
		v := a.rps.Snapshot()
		s.RPS = &v
	case games.KindDrawing:
		v := a.drawing.Snapshot()
		s.Drawing = &v
	}
	return s
}
