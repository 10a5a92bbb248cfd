// Package main is the arcade's audio plugin. It turns a cue into a short
// tone sequence using whatever the platform offers: afplay on macOS, the
// beep utility when installed, otherwise the terminal bell.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"time"
)

// Request is the input from the plugin executor.
type Request struct {
	Action string `json:"action"`
	Cue    string `json:"cue"`
	Game   string `json:"game"`
	Score  int    `json:"score"`
}

// Response is the output to the plugin executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type tone struct {
	freq int
	dur  time.Duration
}

const toneGap = 50 * time.Millisecond

// sequences maps a cue to its tones.
var sequences = map[string][]tone{
	"eat":       {{800, 100 * time.Millisecond}},
	"game_over": {{800, 150 * time.Millisecond}, {600, 150 * time.Millisecond}, {400, 150 * time.Millisecond}, {200, 150 * time.Millisecond}},
	"level_up":  {{400, 100 * time.Millisecond}, {600, 100 * time.Millisecond}, {800, 100 * time.Millisecond}, {1000, 100 * time.Millisecond}},
	"menu":      {{1000, 50 * time.Millisecond}},
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	if req.Action != "cue" {
		writeErrorResponse(fmt.Sprintf("unknown action: %s", req.Action))
		return
	}

	tones, ok := sequences[req.Cue]
	if !ok {
		writeErrorResponse(fmt.Sprintf("unknown cue: %s", req.Cue))
		return
	}

	for i, t := range tones {
		if i > 0 {
			time.Sleep(toneGap)
		}
		play(t)
	}

	data, _ := json.Marshal(map[string]any{"cue": req.Cue, "tones": len(tones)})
	json.NewEncoder(os.Stdout).Encode(Response{Success: true, Data: data})
}

// play sounds one tone. Failures are ignored; a missing speaker is not an error.
func play(t tone) {
	switch {
	case runtime.GOOS == "darwin":
		exec.Command("afplay", "/System/Library/Sounds/Tink.aiff").Run()
	case hasBeep():
		exec.Command("beep", "-f", strconv.Itoa(t.freq), "-l", strconv.Itoa(int(t.dur.Milliseconds()))).Run()
	default:
		bell()
		time.Sleep(t.dur)
	}
}

func hasBeep() bool {
	_, err := exec.LookPath("beep")
	return err == nil
}

// bell rings the terminal bell. Stdout carries the response, so it goes to the tty.
func bell() {
	tty, err := os.OpenFile("/dev/tty", os.O_WRONLY, 0)
	if err != nil {
		return
	}
	defer tty.Close()
	tty.Write([]byte("\a"))
}

// writeErrorResponse writes an error response to stdout.
func writeErrorResponse(errMsg string) {
	json.NewEncoder(os.Stdout).Encode(Response{Success: false, Error: errMsg})
}
