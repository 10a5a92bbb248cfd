package plugin

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

// scriptPlugin writes a shell script plugin into a temp dir.
func scriptPlugin(t *testing.T, name, script string) *Plugin {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, name+".sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0755); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}

	return &Plugin{
		Manifest: Manifest{
			Name:       name,
			Version:    "1.0.0",
			Executable: name + ".sh",
			Actions:    []string{"cue"},
		},
		Path:       dir,
		Executable: path,
	}
}

func TestExecutor_Execute(t *testing.T) {
	plugin := scriptPlugin(t, "ok", `echo '{"success":true,"data":{"message":"played"}}'
`)

	resp, err := NewExecutor(5*time.Second).Execute(context.Background(), plugin, &Request{Action: "cue", Cue: "eat"})
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}
	if !resp.Success || resp.Error != "" {
		t.Errorf("response = %+v, want success", resp)
	}

	var data map[string]string
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("failed to unmarshal response data: %v", err)
	}
	if data["message"] != "played" {
		t.Errorf("message = %q, want played", data["message"])
	}
}

func TestExecutor_Execute_ReadsStdin(t *testing.T) {
	plugin := scriptPlugin(t, "echo", `INPUT=$(cat)
echo "{\"success\":true,\"data\":$INPUT}"
`)

	req := &Request{Action: "cue", Cue: "game_over", Game: "snake", Score: 40}
	resp, err := NewExecutor(5*time.Second).Execute(context.Background(), plugin, req)
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}

	var got Request
	if err := json.Unmarshal(resp.Data, &got); err != nil {
		t.Fatalf("failed to unmarshal echoed request: %v", err)
	}
	if got.Action != "cue" || got.Cue != "game_over" || got.Game != "snake" || got.Score != 40 {
		t.Errorf("plugin received %+v", got)
	}
}

func TestExecutor_Timeout(t *testing.T) {
	plugin := scriptPlugin(t, "slow", `sleep 10
echo '{"success":true}'
`)

	_, err := NewExecutor(100*time.Millisecond).Execute(context.Background(), plugin, &Request{Action: "cue"})
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("Execute() error = %v, want ErrTimeout", err)
	}
}

func TestExecutor_Cancelled(t *testing.T) {
	plugin := scriptPlugin(t, "slow", `sleep 10
echo '{"success":true}'
`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewExecutor(5*time.Second).Execute(ctx, plugin, &Request{Action: "cue"}); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}

func TestExecutor_Execute_Failures(t *testing.T) {
	tests := []struct {
		name    string
		script  string
		wantErr bool
	}{
		{"error response", `echo '{"success":false,"error":"no speaker"}'` + "\n", false},
		{"invalid json", "echo 'not valid json'\n", true},
		{"non-zero exit", "echo 'boom' >&2\nexit 1\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plugin := scriptPlugin(t, "fail", tt.script)
			resp, err := NewExecutor(5*time.Second).Execute(context.Background(), plugin, &Request{Action: "cue"})
			if (err != nil) != tt.wantErr {
				t.Fatalf("Execute() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && (resp.Success || resp.Error != "no speaker") {
				t.Errorf("response = %+v", resp)
			}
		})
	}
}

func TestNewExecutor(t *testing.T) {
	if got := NewExecutor(3 * time.Second).Timeout(); got != 3*time.Second {
		t.Errorf("Timeout() = %v, want 3s", got)
	}
}
