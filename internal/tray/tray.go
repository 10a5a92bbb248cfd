// Package tray provides a system tray menu for the gesture arcade.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/arcade/internal/games"
)

// Tray represents the system tray application.
type Tray struct {
	onToggle func(enabled bool)
	onPause  func()
	onGame   func(kind games.Kind)
	onOpen   func()
	onQuit   func()
	enabled  bool
	mu       sync.RWMutex

	// Menu items stored for later updates
	menuToggle      *systray.MenuItem
	menuPause       *systray.MenuItem
	menuGames       map[games.Kind]*systray.MenuItem
	menuLastGesture *systray.MenuItem
	menuScore       *systray.MenuItem
}

// New creates a new Tray instance with enabled state set to true by default.
func New() *Tray {
	return &Tray{
		enabled:   true,
		menuGames: make(map[games.Kind]*systray.MenuItem),
	}
}

// OnToggle sets the callback function to be called when the enabled state is toggled.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnPause sets the callback function to be called when pause is clicked.
func (t *Tray) OnPause(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onPause = fn
}

// OnGame sets the callback function to be called when a game is picked.
func (t *Tray) OnGame(fn func(kind games.Kind)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onGame = fn
}

// OnOpen sets the callback function to be called when the open menu item is clicked.
func (t *Tray) OnOpen(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit stops the tray from outside the menu.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Arcade")
	systray.SetTooltip("Gesture Arcade")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem("● Enabled", "Toggle hand tracking")
	t.menuPause = systray.AddMenuItem("Pause", "Pause or resume the game")
	systray.AddSeparator()

	menuPlay := systray.AddMenuItem("Play", "Switch game")
	for _, k := range games.Kinds() {
		t.menuGames[k] = menuPlay.AddSubMenuItemCheckbox(k.Title(), "Play "+k.Title(), false)
	}
	systray.AddSeparator()

	t.menuLastGesture = systray.AddMenuItem("Last: none", "Last detected gesture")
	t.menuLastGesture.Disable()
	t.menuScore = systray.AddMenuItem("Score: 0", "Score of the running game")
	t.menuScore.Disable()
	systray.AddSeparator()

	menuOpen := systray.AddMenuItem("Open Arcade...", "Open the arcade in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit the arcade")
	t.mu.Unlock()

	for k, item := range t.menuGames {
		go func() {
			for range item.ClickedCh {
				t.handleGame(k)
			}
		}()
	}

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-t.menuPause.ClickedCh:
				t.handlePause()
			case <-menuOpen.ClickedCh:
				t.handleOpen()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {}

// handleToggle handles the toggle menu item click.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled

	if enabled {
		t.menuToggle.SetTitle("● Enabled")
	} else {
		t.menuToggle.SetTitle("○ Disabled")
	}

	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

func (t *Tray) handlePause() {
	t.mu.RLock()
	callback := t.onPause
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handleGame(kind games.Kind) {
	t.mu.RLock()
	callback := t.onGame
	t.mu.RUnlock()

	if callback != nil {
		callback(kind)
	}
}

func (t *Tray) handleOpen() {
	t.mu.RLock()
	callback := t.onOpen
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetLastGesture updates the last gesture display in the menu.
func (t *Tray) SetLastGesture(name string) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuLastGesture != nil {
		t.menuLastGesture.SetTitle(LastGestureTitle(name))
	}
}

// SetGame checks the running game in the Play menu.
func (t *Tray) SetGame(kind games.Kind) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for k, item := range t.menuGames {
		if k == kind {
			item.Check()
		} else {
			item.Uncheck()
		}
	}
}

// SetScore updates the score line.
func (t *Tray) SetScore(score int, gameOver bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuScore != nil {
		t.menuScore.SetTitle(ScoreTitle(score, gameOver))
	}
}

// SetPaused updates the pause item's label.
func (t *Tray) SetPaused(paused bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuPause == nil {
		return
	}
	if paused {
		t.menuPause.SetTitle("Resume")
	} else {
		t.menuPause.SetTitle("Pause")
	}
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

// LastGestureTitle is the label of the last gesture line.
func LastGestureTitle(name string) string {
	if name == "" || name == "none" {
		return "Last: none"
	}
	return "Last: " + name
}

// ScoreTitle is the label of the score line.
func ScoreTitle(score int, gameOver bool) string {
	if gameOver {
		return fmt.Sprintf("Score: %d (game over)", score)
	}
	return fmt.Sprintf("Score: %d", score)
}
