package orrery

import (
	"fmt"
	"image"
	"image/color"
	"log"
	"math/rand"
	"os"
	"time"

	_ "image/jpeg"
	_ "image/png"

	"github.com/hajimehoshi/ebiten/v2"
)

// exoplanetTexturePath is the fixed relative path of the optional surface
// texture. If the file is missing or undecodable the procedural fallback
// material stays in place permanently; there is no retry.
const exoplanetTexturePath = "assets/exoplanet.jpg"

// Engine is the visualization core: the scene (star field, planetary
// system, exoplanet), the cinematic camera, the renderer, and the on-screen
// label. It implements ebiten.Game; construct it with New and hand it to
// Run or ebiten.RunGame.
//
// All mutable state is touched only from Update/Draw on the game loop
// goroutine. The texture load is the single asynchronous operation and
// communicates through a buffered channel drained by Update.
type Engine struct {
	cam  *Camera
	rend *renderer

	starRoot *Node
	system   *solarSystem
	planet   *exoplanet

	cine       cinematicState
	title      *label
	labelShown bool

	texCh <-chan textureResult

	clearColor color.RGBA
	showStats  bool
	stats      statsOverlay

	screenshotDir   string
	screenshotQueue []string

	rehearsal *Rehearsal

	updateFunc func(dt float64)

	frameCount uint64
	disposed   bool
}

// New constructs the full scene and begins the texture fetch. The engine
// animates from the first Update: the startup delay before the cinematic
// zoom counts from there.
func New(width, height int) *Engine {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	e := &Engine{
		cam:        newCamera(width, height),
		rend:       newRenderer(),
		starRoot:   NewPointCloud("stars", generateStarfield(rng, starCount)),
		system:     buildSolarSystem(rng),
		planet:     buildExoplanet(rng),
		cine:       newCinematicState(),
		title:      newLabel(labelText),
		clearColor: color.RGBA{R: 2, G: 2, B: 8, A: 255},
		texCh:      loadTextureAsync(exoplanetTexturePath),
	}
	applyCinematicPose(e.cine, e.cam)
	return e
}

// SetUpdateFunc installs a callback invoked once per frame after the scene
// has advanced but before transforms are finalized. Pass nil to remove.
func (e *Engine) SetUpdateFunc(f func(dt float64)) {
	e.updateFunc = f
}

// SetShowStats toggles the debug overlay.
func (e *Engine) SetShowStats(show bool) {
	e.showStats = show
}

// SetScreenshotDir sets the directory screenshots are written to.
// An empty dir disables Screenshot.
func (e *Engine) SetScreenshotDir(dir string) {
	e.screenshotDir = dir
}

// Screenshot queues a labeled capture of the next drawn frame. The PNG is
// written to the screenshot directory with a timestamped filename. Safe to
// call from Update or a rehearsal script.
func (e *Engine) Screenshot(label string) {
	if e.screenshotDir != "" {
		e.screenshotQueue = append(e.screenshotQueue, label)
	}
}

// Mode returns the cinematic camera's current state.
func (e *Engine) Mode() CameraMode {
	return e.cine.Mode
}

// Update advances the simulation by one fixed tick: drain the texture
// fetch, step orbital kinematics, step the camera state machine, then
// recompute world transforms. Returns ebiten.Termination once the engine
// has been disposed, which stops the frame loop.
func (e *Engine) Update() error {
	if e.disposed {
		return ebiten.Termination
	}

	handleDebugKeys(e)
	e.pollTexture()

	dt := 1.0 / float64(ebiten.TPS())
	e.frameCount++

	advanceSystem(e.system, dt)
	advanceExoplanet(e.planet, dt)
	advanceStarDrift(e.starRoot, dt)

	e.cine = stepCinematic(e.cine, dt)
	if !e.labelShown && zoomCompleted(e.cine) {
		e.title.show()
		e.labelShown = true
	}
	e.title.update(dt)
	applyCinematicPose(e.cine, e.cam)

	if e.showStats {
		e.stats.update()
	}
	if e.updateFunc != nil {
		e.updateFunc(dt)
	}
	if e.rehearsal != nil {
		e.rehearsal.step(e)
		if e.disposed {
			return nil
		}
	}

	updateWorldMatrix(e.starRoot, identityMatrix, 1, false)
	updateWorldMatrix(e.system.Root, identityMatrix, 1, false)
	updateWorldMatrix(e.planet.Node, identityMatrix, 1, false)

	return nil
}

// Draw rasterizes the scene and overlays.
func (e *Engine) Draw(screen *ebiten.Image) {
	if e.disposed {
		return
	}
	screen.Fill(e.clearColor)
	e.rend.render(screen, e.cam, e.system.lightPosition(), e.starRoot, e.system.Root, e.planet.Node)
	e.title.draw(screen)
	if e.showStats {
		e.stats.draw(screen, e)
	}
	e.flushScreenshots(screen)
}

// Layout reports the logical screen size and keeps the camera's aspect
// ratio in sync with the window. Called by Ebitengine on every resize.
func (e *Engine) Layout(outsideWidth, outsideHeight int) (int, int) {
	e.Resize(outsideWidth, outsideHeight)
	return outsideWidth, outsideHeight
}

// Resize updates the camera viewport. Idempotent and cheap: unchanged or
// degenerate dimensions are ignored, so it is safe to call on every resize
// event, including before the cinematic sequence has started.
func (e *Engine) Resize(width, height int) {
	e.cam.SetViewport(width, height)
}

// Dispose releases everything the engine owns: the exoplanet's geometry and
// material, the celestial body registry, the star field, and the renderer's
// GPU resources. After Dispose, Update returns ebiten.Termination and Draw
// is a no-op. Safe to call more than once.
//
// An in-flight texture fetch is not cancelled; its late result is simply
// never applied, since the material refuses swaps once disposed.
func (e *Engine) Dispose() {
	if e.disposed {
		return
	}
	e.disposed = true
	e.planet.dispose()
	e.system.dispose()
	e.starRoot.Dispose()
	e.rend.dispose()
}

// IsDisposed reports whether Dispose has run.
func (e *Engine) IsDisposed() bool {
	return e.disposed
}

// pollTexture applies the asynchronous texture result if it has arrived.
// Non-blocking; at most one result ever arrives.
func (e *Engine) pollTexture() {
	if e.texCh == nil {
		return
	}
	select {
	case res := <-e.texCh:
		e.texCh = nil
		if res.err != nil {
			log.Printf("orrery: texture load failed, keeping procedural fallback: %v", res.err)
			return
		}
		e.planet.applyTexture(res.img)
	default:
	}
}

// textureResult is the outcome of the background texture fetch.
type textureResult struct {
	img image.Image
	err error
}

// loadTextureAsync decodes the image at path on its own goroutine and
// delivers the result through a 1-buffered channel, so the sender never
// blocks even if the engine is disposed before the load resolves.
func loadTextureAsync(path string) <-chan textureResult {
	ch := make(chan textureResult, 1)
	go func() {
		img, err := decodeImageFile(path)
		if err != nil {
			err = fmt.Errorf("orrery: load texture %s: %w", path, err)
		}
		ch <- textureResult{img: img, err: err}
	}()
	return ch
}

func decodeImageFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	return img, nil
}
