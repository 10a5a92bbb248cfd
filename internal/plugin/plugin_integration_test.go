package plugin

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestPlugin_Beep_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	pluginDir := findPluginDir("beep")
	if pluginDir == "" {
		t.Skip("beep plugin not built")
	}

	mgr := NewManager(filepath.Dir(pluginDir))
	if err := mgr.Discover(); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	plug, err := mgr.ForAction("cue")
	if err != nil {
		t.Fatalf("ForAction() error = %v", err)
	}

	executor := NewExecutor(5 * time.Second)

	resp, err := executor.Execute(context.Background(), plug, &Request{Action: "cue", Cue: "no-such-cue"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if resp.Success {
		t.Error("expected failure for unknown cue")
	}
}

// findPluginDir returns the plugin's directory when its binary is built.
func findPluginDir(name string) string {
	for _, dir := range []string{
		filepath.Join("../../plugins", name),
		filepath.Join("../../../plugins", name),
	} {
		if _, err := os.Stat(filepath.Join(dir, "plugin.json")); err != nil {
			continue
		}
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return dir
		}
	}
	return ""
}
