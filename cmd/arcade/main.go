package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/ayusman/arcade/internal/app"
	"github.com/ayusman/arcade/internal/audio"
	"github.com/ayusman/arcade/internal/config"
	"github.com/ayusman/arcade/internal/games"
	"github.com/ayusman/arcade/internal/plugin"
	"github.com/ayusman/arcade/internal/replay"
	"github.com/ayusman/arcade/internal/server"
	"github.com/ayusman/arcade/internal/store"
	"github.com/ayusman/arcade/internal/tray"
)

// pluginTimeout bounds a single sound cue.
const pluginTimeout = 2 * time.Second

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	addr := flag.String("addr", "", "HTTP listen address (overrides config)")
	game := flag.String("game", string(games.KindSnake), "game to start with")
	useTray := flag.Bool("tray", false, "show the system tray menu")
	verify := flag.String("verify", "", "verify a replay log and exit")
	flag.Parse()

	fmt.Println("Arcade - Hand Gesture Games")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}

	if *verify != "" {
		os.Exit(runVerify(cfg, *verify))
	}

	kind, err := games.ParseKind(*game)
	if err != nil {
		log.Fatalf("Invalid -game: %v", err)
	}

	dataDir, err := resolveDataDir(cfg.DataDir)
	if err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}
	if cfg.ReplayDir == "" {
		cfg.ReplayDir = filepath.Join(dataDir, "replays")
	}

	st, err := store.New(filepath.Join(dataDir, "arcade.db"))
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	application, err := app.New(app.Config{
		Arcade: cfg,
		Game:   kind,
		Store:  st,
		Sink:   newSink(cfg.PluginDir),
	})
	if err != nil {
		log.Fatalf("Failed to start arcade: %v", err)
	}
	defer func() {
		if err := application.Close(); err != nil {
			log.Printf("Error closing arcade: %v", err)
		}
	}()

	webDir := cfg.StaticDir
	if webDir == "" {
		webDir = findWebDir(dataDir)
	}
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}
	srv := server.New(server.Config{StaticDir: webDir, App: application})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		run(ctx, stop, application, srv, cfg.Addr)
	}()

	if *useTray {
		t := newTray(ctx, stop, application, cfg.Addr)
		go func() {
			<-ctx.Done()
			t.Quit()
		}()
		t.Run()
		stop()
	}
	<-done
}

// run serves HTTP and the frame loop until ctx is done or either fails.
func run(ctx context.Context, stop context.CancelFunc, a *app.App, srv *server.Server, addr string) {
	fmt.Printf("Starting server on %s\n", addr)

	errCh := make(chan error, 2)
	go func() { errCh <- srv.Run(ctx, addr) }()
	go func() { errCh <- a.Run(ctx) }()

	for i := 0; i < 2; i++ {
		if err := <-errCh; err != nil {
			log.Printf("Shutting down: %v", err)
			stop()
		}
	}
}

// newSink plays cues through a plugin that handles "cue", falling back to
// the terminal bell.
func newSink(pluginDir string) audio.Sink {
	manager := plugin.NewManager(pluginDir)
	if err := manager.Discover(); err != nil {
		log.Printf("Plugin discovery failed: %v", err)
	}
	if p, err := manager.ForAction("cue"); err == nil {
		log.Printf("Playing sounds through plugin %s", p.Manifest.Name)
		return audio.NewPluginSink(manager, plugin.NewExecutor(pluginTimeout))
	}
	log.Println("No sound plugin found, using terminal bell")
	return audio.NewBellSink(os.Stdout)
}

// newTray builds the tray menu and keeps it in sync with the arcade.
func newTray(ctx context.Context, stop context.CancelFunc, a *app.App, addr string) *tray.Tray {
	t := tray.New()
	t.OnToggle(a.SetEnabled)
	t.OnPause(func() { a.TogglePause() })
	t.OnGame(func(kind games.Kind) {
		if err := a.Switch(kind); err != nil {
			log.Printf("Switch to %s failed: %v", kind, err)
		}
	})
	t.OnOpen(func() { openBrowser(localURL(addr)) })
	t.OnQuit(stop)

	updates, unsubscribe := a.Subscribe()
	go func() {
		defer unsubscribe()
		var last app.Snapshot
		for {
			select {
			case <-ctx.Done():
				return
			case u := <-updates:
				s := u.State
				if s.Game != last.Game {
					t.SetGame(s.Game)
				}
				if s.Gesture != last.Gesture {
					t.SetLastGesture(string(s.Gesture))
				}
				if s.Score != last.Score || s.GameOver != last.GameOver {
					t.SetScore(s.Score, s.GameOver)
				}
				if s.Paused != last.Paused {
					t.SetPaused(s.Paused)
				}
				last = s
			}
		}
	}()
	return t
}

// runVerify replays a log and reports whether it reproduces.
func runVerify(cfg config.Config, path string) int {
	l, err := replay.Open(path)
	if err != nil {
		log.Printf("Failed to open replay: %v", err)
		return 1
	}

	err = app.VerifyReplay(cfg, l)
	var div *replay.Divergence
	switch {
	case errors.As(err, &div):
		fmt.Printf("Replay %s diverged: %v\n", l.Header.Session, div)
		return 2
	case err != nil:
		log.Printf("Replay failed: %v", err)
		return 1
	}

	fmt.Printf("Replay %s reproduced %d frames\n", l.Header.Session, len(l.Frames()))
	return 0
}

// resolveDataDir returns dir, or ~/.arcade when empty, creating it.
func resolveDataDir(dir string) (string, error) {
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(homeDir, ".arcade")
	}
	return dir, os.MkdirAll(dir, 0755)
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and <dataDir>/web.
// Returns the first existing directory or empty string if none found.
func findWebDir(dataDir string) string {
	for _, p := range []string{"web", "../web", "../../web", filepath.Join(dataDir, "web")} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if absPath, err := filepath.Abs(p); err == nil {
				return absPath
			}
			return p
		}
	}
	return ""
}

// localURL turns a listen address into a browsable URL.
func localURL(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "http://localhost" + addr
	}
	return "http://" + addr
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Printf("Failed to open browser: %v", err)
	}
}
