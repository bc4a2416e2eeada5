package orrery

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// statsOverlay renders frame timing and scene counters in the top-left
// corner. The text refreshes every half second to stay readable.
type statsOverlay struct {
	acc  float64
	text string
}

func (s *statsOverlay) update() {
	s.acc += 1.0 / float64(ebiten.TPS())
}

func (s *statsOverlay) draw(screen *ebiten.Image, e *Engine) {
	if s.text == "" || s.acc >= 0.5 {
		s.acc = 0
		s.text = fmt.Sprintf("FPS %5.1f  TPS %5.1f\ncamera %s\ndraws %d  stars %d",
			ebiten.ActualFPS(), ebiten.ActualTPS(),
			e.cine.Mode, len(e.rend.items), e.starRoot.Cloud.Count())
	}
	ebitenutil.DebugPrintAt(screen, s.text, 8, 8)
}

// handleDebugKeys services the debug keyboard shortcuts: F3 toggles the
// stats overlay, F12 captures a screenshot.
func handleDebugKeys(e *Engine) {
	if inpututil.IsKeyJustPressed(ebiten.KeyF3) {
		e.showStats = !e.showStats
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		e.Screenshot("manual")
	}
}
