package plugin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// ErrTimeout is returned when a plugin outlives the executor's timeout.
var ErrTimeout = errors.New("plugin execution timeout")

// Executor runs plugins with a per-call timeout.
type Executor struct {
	timeout time.Duration
}

// NewExecutor creates an Executor that kills plugins after timeout.
func NewExecutor(timeout time.Duration) *Executor {
	return &Executor{timeout: timeout}
}

// Timeout returns the per-call limit.
func (e *Executor) Timeout() time.Duration {
	return e.timeout
}

// Execute runs plugin in its own directory, writes req to its stdin and
// parses stdout as a Response. A plugin that reports failure is not an
// error; check Response.Success.
func (e *Executor) Execute(ctx context.Context, plugin *Plugin, req *Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	reqJSON, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	cmd := exec.CommandContext(ctx, plugin.Executable)
	cmd.Dir = plugin.Path
	cmd.Stdin = bytes.NewReader(reqJSON)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("%s: %w after %v", plugin.Manifest.Name, ErrTimeout, e.timeout)
	}
	if err != nil {
		if msg := stderr.String(); msg != "" {
			return nil, fmt.Errorf("plugin %s failed: %w, stderr: %s", plugin.Manifest.Name, err, msg)
		}
		return nil, fmt.Errorf("plugin %s failed: %w", plugin.Manifest.Name, err)
	}

	var resp Response
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		return nil, fmt.Errorf("failed to parse plugin response: %w, stdout: %s", err, stdout.String())
	}
	return &resp, nil
}
