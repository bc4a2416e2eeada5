package orrery

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
)

// RunConfig configures the window Run opens. Zero values fall back to
// sensible defaults; the scene itself has no runtime configuration, every
// visual parameter is a fixed constant.
type RunConfig struct {
	Title  string
	Width  int
	Height int

	// ShowStats enables the debug overlay from the start (F3 toggles it
	// at runtime).
	ShowStats bool

	// ScreenshotDir, when set, enables F12 screenshots into that
	// directory.
	ScreenshotDir string
}

// Run opens a resizable window and drives the engine until the window is
// closed or the engine is disposed. For full control, hand the Engine to
// ebiten.RunGame yourself; it implements ebiten.Game.
func Run(e *Engine, cfg RunConfig) error {
	if cfg.Title == "" {
		cfg.Title = "orrery"
	}
	if cfg.Width <= 0 {
		cfg.Width = 1280
	}
	if cfg.Height <= 0 {
		cfg.Height = 720
	}

	e.SetShowStats(cfg.ShowStats)
	e.SetScreenshotDir(cfg.ScreenshotDir)

	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(e); err != nil {
		return fmt.Errorf("orrery: run: %w", err)
	}
	return nil
}
