// Package snake implements the grid-movement game: the snake's head follows
// the grid cell under the player's fingertip, one step per movement tick.
package snake

import (
	"image"
	"math/rand/v2"
	"slices"

	"github.com/ayusman/arcade/internal/games"
	"github.com/ayusman/arcade/internal/geom"
)

// Config sizes the board and paces the snake.
type Config struct {
	GridWidth  int `yaml:"grid_width"`
	GridHeight int `yaml:"grid_height"`
	CellSize   int `yaml:"cell_size"`
	// SpeedDelay is the number of Update calls per movement step.
	SpeedDelay int `yaml:"speed_delay"`
	Reward     int `yaml:"reward"`
	// GraceLength is the length the snake must exceed before it can bite itself.
	GraceLength int `yaml:"grace_length"`
}

// DefaultConfig returns a 20x15 board of 30px cells at medium speed.
func DefaultConfig() Config {
	return Config{
		GridWidth:   20,
		GridHeight:  15,
		CellSize:    30,
		SpeedDelay:  8,
		Reward:      10,
		GraceLength: 4,
	}
}

// Cell is a grid coordinate.
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Game is one snake session. It is not safe for concurrent use.
type Game struct {
	config Config
	rng    *rand.Rand

	snake    []Cell // head first
	food     Cell
	score    int
	gameOver bool
	paused   bool
	move     games.Counter
}

// New creates a game with the snake centered and food placed.
func New(config Config, rng *rand.Rand) *Game {
	g := &Game{
		config: config,
		rng:    rng,
	}
	g.Reset()
	return g
}

// Reset restores the single-segment snake at the grid center with fresh food.
func (g *Game) Reset() {
	g.snake = []Cell{{X: g.config.GridWidth / 2, Y: g.config.GridHeight / 2}}
	g.score = 0
	g.gameOver = false
	g.paused = false
	g.move = games.NewCounter(g.config.SpeedDelay)
	g.spawnFood()
}

// Update advances one frame toward the pixel under pointer.
// continues is false once the game is over; ateFood reports growth this frame.
func (g *Game) Update(pointer *image.Point) (continues, ateFood bool) {
	if g.gameOver || g.paused || pointer == nil {
		return !g.gameOver, false
	}

	if !g.move.Tick() {
		return true, false
	}

	head := g.CellAt(*pointer)
	if head == g.snake[0] {
		return true, false
	}

	g.snake = slices.Insert(g.snake, 0, head)

	if head == g.food {
		g.score += g.config.Reward
		g.spawnFood()
		ateFood = true
	} else {
		g.snake = g.snake[:len(g.snake)-1]
	}

	if len(g.snake) > g.config.GraceLength && slices.Contains(g.snake[1:], head) {
		g.gameOver = true
		return false, false
	}

	return true, ateFood
}

// CellAt maps a board pixel onto the grid, clamping to the edges.
func (g *Game) CellAt(p image.Point) Cell {
	return Cell{
		X: geom.ClampInt(floorDiv(p.X, g.config.CellSize), 0, g.config.GridWidth-1),
		Y: geom.ClampInt(floorDiv(p.Y, g.config.CellSize), 0, g.config.GridHeight-1),
	}
}

// floorDiv rounds toward negative infinity so pixels left of the board
// land in negative cells before clamping.
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// spawnFood places food uniformly on a free cell. A full board leaves the
// food where it was.
func (g *Game) spawnFood() {
	free := make([]Cell, 0, g.config.GridWidth*g.config.GridHeight)
	for y := 0; y < g.config.GridHeight; y++ {
		for x := 0; x < g.config.GridWidth; x++ {
			c := Cell{X: x, Y: y}
			if !slices.Contains(g.snake, c) {
				free = append(free, c)
			}
		}
	}
	if len(free) == 0 {
		return
	}
	g.food = free[g.rng.IntN(len(free))]
}

// Pause freezes updates.
func (g *Game) Pause() { g.paused = true }

// Resume lifts a pause.
func (g *Game) Resume() { g.paused = false }

// TogglePause flips the pause flag.
func (g *Game) TogglePause() { g.paused = !g.paused }

// Head returns the head cell.
func (g *Game) Head() Cell { return g.snake[0] }

// Body returns the segments behind the head.
func (g *Game) Body() []Cell { return slices.Clone(g.snake[1:]) }

// Cells returns every segment, head first.
func (g *Game) Cells() []Cell { return slices.Clone(g.snake) }

// Len returns the number of segments.
func (g *Game) Len() int { return len(g.snake) }

func (g *Game) Food() Cell     { return g.food }
func (g *Game) Score() int     { return g.score }
func (g *Game) GameOver() bool { return g.gameOver }
func (g *Game) Paused() bool   { return g.paused }

// PixelSize returns the board size in pixels.
func (g *Game) PixelSize() (width, height int) {
	return g.config.GridWidth * g.config.CellSize, g.config.GridHeight * g.config.CellSize
}

// Snapshot is the read-only view a renderer draws from.
type Snapshot struct {
	Cells      []Cell `json:"cells"`
	Food       Cell   `json:"food"`
	Score      int    `json:"score"`
	GameOver   bool   `json:"game_over"`
	Paused     bool   `json:"paused"`
	GridWidth  int    `json:"grid_width"`
	GridHeight int    `json:"grid_height"`
	CellSize   int    `json:"cell_size"`
}

// Snapshot captures the current board.
func (g *Game) Snapshot() Snapshot {
	return Snapshot{
		Cells:      g.Cells(),
		Food:       g.food,
		Score:      g.score,
		GameOver:   g.gameOver,
		Paused:     g.paused,
		GridWidth:  g.config.GridWidth,
		GridHeight: g.config.GridHeight,
		CellSize:   g.config.CellSize,
	}
}
