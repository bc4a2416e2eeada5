package orrery

import (
	"encoding/json"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
)

// rehearsalStep represents a single action in a rehearsal script.
type rehearsalStep struct {
	Action string `json:"action"`
	Label  string `json:"label,omitempty"`
	Mode   string `json:"mode,omitempty"`
	Frames int    `json:"frames,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// rehearsalScript is the top-level JSON structure for a rehearsal script.
type rehearsalScript struct {
	Steps []rehearsalStep `json:"steps"`
}

// Rehearsal sequences scripted actions across frames for automated visual
// verification of the cinematic choreography: wait a frame count or for a
// camera mode, capture labeled screenshots, resize the viewport, dispose
// the engine. Attach to an Engine via SetRehearsal.
//
// Supported actions:
//
//	{"action": "wait", "frames": 120}
//	{"action": "wait-mode", "mode": "orbiting"}
//	{"action": "screenshot", "label": "zoom-done"}
//	{"action": "resize", "width": 400, "height": 300}
//	{"action": "dispose"}
type Rehearsal struct {
	steps     []rehearsalStep
	cursor    int
	waitCount int
	waitMode  string
	done      bool
}

// LoadRehearsal parses a JSON rehearsal script.
func LoadRehearsal(jsonData []byte) (*Rehearsal, error) {
	var script rehearsalScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("orrery: parse rehearsal script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("orrery: parse rehearsal script: no steps")
	}
	return &Rehearsal{steps: script.Steps}, nil
}

// SetRehearsal attaches a rehearsal script to the engine. The script's step
// method is called from Engine.Update once per frame.
func (e *Engine) SetRehearsal(r *Rehearsal) {
	e.rehearsal = r
}

// Done reports whether all steps in the script have been executed.
func (r *Rehearsal) Done() bool {
	return r.done
}

// step advances the rehearsal by one frame. Called from Engine.Update.
func (r *Rehearsal) step(e *Engine) {
	if r.done {
		return
	}
	// Count down wait frames.
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	// Block until the camera reaches the awaited mode.
	if r.waitMode != "" {
		if e.cine.Mode.String() != r.waitMode {
			return
		}
		r.waitMode = ""
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "screenshot":
		e.Screenshot(st.Label)
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	case "wait-mode":
		r.waitMode = st.Mode
	case "resize":
		// Resize the window too, or the next Layout call would put the
		// viewport right back.
		ebiten.SetWindowSize(st.Width, st.Height)
		e.Resize(st.Width, st.Height)
	case "dispose":
		e.Dispose()
	}

	// Check if we've reached the end after executing.
	if r.cursor >= len(r.steps) && r.waitCount == 0 && r.waitMode == "" {
		r.done = true
	}
}
