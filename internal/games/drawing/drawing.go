// Package drawing implements air drawing: the fingertip lays down pen or
// eraser strokes while the pen is down. The canvas is kept as vector strokes;
// rasterizing them is up to the renderer.
package drawing

import (
	"image"
	"slices"
)

// Config holds the tool size limits and the undo depth.
type Config struct {
	BrushSize  int `yaml:"brush_size"`
	BrushStep  int `yaml:"brush_step"`
	BrushMin   int `yaml:"brush_min"`
	BrushMax   int `yaml:"brush_max"`
	EraserSize int `yaml:"eraser_size"`
	EraserStep int `yaml:"eraser_step"`
	EraserMin  int `yaml:"eraser_min"`
	EraserMax  int `yaml:"eraser_max"`
	MaxHistory int `yaml:"max_history"`
}

// DefaultConfig returns a 5px brush, a 30px eraser and 20 undo steps.
func DefaultConfig() Config {
	return Config{
		BrushSize:  5,
		BrushStep:  2,
		BrushMin:   1,
		BrushMax:   30,
		EraserSize: 30,
		EraserStep: 5,
		EraserMin:  10,
		EraserMax:  100,
		MaxHistory: 20,
	}
}

// Tool is the active drawing tool.
type Tool string

const (
	Pen    Tool = "pen"
	Eraser Tool = "eraser"
)

// Color is a named palette entry.
type Color struct {
	Name string `json:"name"`
	R    uint8  `json:"r"`
	G    uint8  `json:"g"`
	B    uint8  `json:"b"`
}

// Palette is the fixed set of pen colors.
var Palette = []Color{
	{"Red", 255, 0, 0},
	{"Green", 0, 255, 0},
	{"Blue", 0, 0, 255},
	{"Yellow", 255, 255, 0},
	{"Magenta", 255, 0, 255},
	{"Cyan", 0, 255, 255},
	{"Black", 0, 0, 0},
	{"Gray", 128, 128, 128},
}

// Stroke is one continuous pen-down path.
type Stroke struct {
	Tool   Tool          `json:"tool"`
	Color  Color         `json:"color"`
	Size   int           `json:"size"`
	Points []image.Point `json:"points"`
}

// Game is one drawing session. It is not safe for concurrent use.
type Game struct {
	config Config

	strokes     []Stroke
	history     [][]Stroke
	drawing     bool
	tool        Tool
	color       int
	brushSize   int
	eraserSize  int
	showPalette bool
	showHelp    bool
}

// New creates an empty canvas with the pen selected.
func New(config Config) *Game {
	g := &Game{
		config:   config,
		showHelp: true,
	}
	g.Reset()
	return g
}

// Reset empties the canvas, drops the undo history and restores the default tools.
func (g *Game) Reset() {
	g.strokes = nil
	g.history = nil
	g.drawing = false
	g.tool = Pen
	g.color = 0
	g.brushSize = g.config.BrushSize
	g.eraserSize = g.config.EraserSize
}

// Update extends the current stroke while the pen is down and a pointer is
// present; otherwise it ends the stroke. Each new stroke is an undo step.
func (g *Game) Update(pointer *image.Point, down bool) {
	if pointer == nil || !down {
		g.drawing = false
		return
	}

	if !g.drawing {
		g.save()
		g.strokes = append(g.strokes, Stroke{
			Tool:  g.tool,
			Color: Palette[g.color],
			Size:  g.Size(),
		})
		g.drawing = true
	}

	last := &g.strokes[len(g.strokes)-1]
	last.Points = append(last.Points, *pointer)
}

// save pushes the current canvas onto the undo history.
func (g *Game) save() {
	g.history = append(g.history, slices.Clip(g.strokes))
	if len(g.history) > g.config.MaxHistory {
		g.history = slices.Delete(g.history, 0, len(g.history)-g.config.MaxHistory)
	}
}

// Undo restores the canvas from before the last stroke or clear.
func (g *Game) Undo() {
	if len(g.history) == 0 {
		return
	}
	g.strokes = g.history[len(g.history)-1]
	g.history = g.history[:len(g.history)-1]
	g.drawing = false
}

// Clear wipes the canvas. It can be undone.
func (g *Game) Clear() {
	g.save()
	g.strokes = nil
	g.drawing = false
}

// SetColor selects a palette entry; out-of-range indexes are ignored.
func (g *Game) SetColor(i int) {
	if i >= 0 && i < len(Palette) {
		g.color = i
	}
}

// NextColor cycles through the palette.
func (g *Game) NextColor() {
	g.color = (g.color + 1) % len(Palette)
}

// ToggleTool switches between pen and eraser.
func (g *Game) ToggleTool() {
	if g.tool == Pen {
		g.tool = Eraser
	} else {
		g.tool = Pen
	}
}

// IncreaseSize grows the active tool.
func (g *Game) IncreaseSize() {
	if g.tool == Pen {
		g.brushSize = min(g.brushSize+g.config.BrushStep, g.config.BrushMax)
	} else {
		g.eraserSize = min(g.eraserSize+g.config.EraserStep, g.config.EraserMax)
	}
}

// DecreaseSize shrinks the active tool.
func (g *Game) DecreaseSize() {
	if g.tool == Pen {
		g.brushSize = max(g.brushSize-g.config.BrushStep, g.config.BrushMin)
	} else {
		g.eraserSize = max(g.eraserSize-g.config.EraserStep, g.config.EraserMin)
	}
}

func (g *Game) TogglePalette() { g.showPalette = !g.showPalette }
func (g *Game) ToggleHelp()    { g.showHelp = !g.showHelp }

// Size returns the size of the active tool.
func (g *Game) Size() int {
	if g.tool == Pen {
		return g.brushSize
	}
	return g.eraserSize
}

// Strokes returns a copy of the canvas.
func (g *Game) Strokes() []Stroke {
	out := make([]Stroke, len(g.strokes))
	for i, s := range g.strokes {
		s.Points = slices.Clone(s.Points)
		out[i] = s
	}
	return out
}

func (g *Game) Tool() Tool        { return g.tool }
func (g *Game) Color() Color      { return Palette[g.color] }
func (g *Game) ColorIndex() int   { return g.color }
func (g *Game) BrushSize() int    { return g.brushSize }
func (g *Game) EraserSize() int   { return g.eraserSize }
func (g *Game) Drawing() bool     { return g.drawing }
func (g *Game) ShowPalette() bool { return g.showPalette }
func (g *Game) ShowHelp() bool    { return g.showHelp }
func (g *Game) HistoryLen() int   { return len(g.history) }

// Snapshot is the read-only view a renderer draws from.
type Snapshot struct {
	Strokes     []Stroke `json:"strokes"`
	Tool        Tool     `json:"tool"`
	Color       Color    `json:"color"`
	Size        int      `json:"size"`
	Drawing     bool     `json:"drawing"`
	ShowPalette bool     `json:"show_palette"`
	ShowHelp    bool     `json:"show_help"`
}

// Snapshot captures the canvas and tool state.
func (g *Game) Snapshot() Snapshot {
	return Snapshot{
		Strokes:     g.Strokes(),
		Tool:        g.tool,
		Color:       g.Color(),
		Size:        g.Size(),
		Drawing:     g.drawing,
		ShowPalette: g.showPalette,
		ShowHelp:    g.showHelp,
	}
}
