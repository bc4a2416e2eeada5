package orrery

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Camera projects world-space positions onto the screen through a standard
// perspective transform. View and projection matrices are cached and only
// recomputed when a pose or viewport field changes.
type Camera struct {
	// Position is the camera's world-space location.
	Position mgl64.Vec3
	// Target is the world-space point the camera looks at.
	Target mgl64.Vec3
	// Up is the camera's up direction, normally +Y.
	Up mgl64.Vec3

	// Fovy is the vertical field of view in radians.
	Fovy float64
	// Aspect is width/height of the output surface.
	Aspect float64
	// Near and Far are the clip plane distances.
	Near, Far float64

	width  float64
	height float64

	viewMatrix mgl64.Mat4
	projMatrix mgl64.Mat4
	viewProj   mgl64.Mat4
	dirty      bool
}

// newCamera creates a camera for an output surface of the given pixel size.
func newCamera(width, height int) *Camera {
	c := &Camera{
		Up:    mgl64.Vec3{0, 1, 0},
		Fovy:  mgl64.DegToRad(55),
		Near:  0.1,
		Far:   2000,
		dirty: true,
	}
	c.SetViewport(width, height)
	return c
}

// SetViewport updates the output dimensions and aspect ratio. Zero or
// negative dimensions are ignored, so resize events from a collapsed window
// are harmless. Idempotent and cheap: unchanged dimensions do not invalidate
// the cached matrices.
func (c *Camera) SetViewport(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	w, h := float64(width), float64(height)
	if w == c.width && h == c.height {
		return
	}
	c.width = w
	c.height = h
	c.Aspect = w / h
	c.dirty = true
}

// MoveTo places the camera and marks the cached matrices stale.
func (c *Camera) MoveTo(pos mgl64.Vec3) {
	if pos == c.Position {
		return
	}
	c.Position = pos
	c.dirty = true
}

// LookAt aims the camera at the given world-space point.
func (c *Camera) LookAt(target mgl64.Vec3) {
	if target == c.Target {
		return
	}
	c.Target = target
	c.dirty = true
}

// MarkDirty forces a recomputation of the cached matrices.
func (c *Camera) MarkDirty() {
	c.dirty = true
}

// computeMatrices recomputes the cached view/projection matrices if dirty.
func (c *Camera) computeMatrices() {
	if !c.dirty {
		return
	}
	c.dirty = false
	c.viewMatrix = mgl64.LookAtV(c.Position, c.Target, c.Up)
	c.projMatrix = mgl64.Perspective(c.Fovy, c.Aspect, c.Near, c.Far)
	c.viewProj = c.projMatrix.Mul4(c.viewMatrix)
}

// project transforms a world-space point into screen space.
// Returns the pixel coordinates, the view-space depth (distance along the
// viewing direction, larger = farther), and whether the point lies in front
// of the near plane.
func (c *Camera) project(world mgl64.Vec3) (sx, sy, depth float64, visible bool) {
	c.computeMatrices()
	clip := c.viewProj.Mul4x1(world.Vec4(1))
	w := clip.W()
	if w <= c.Near {
		return 0, 0, w, false
	}
	inv := 1 / w
	sx = (clip.X()*inv*0.5 + 0.5) * c.width
	sy = (1 - (clip.Y()*inv*0.5 + 0.5)) * c.height
	return sx, sy, w, true
}

// pixelsPerUnit returns the on-screen size in pixels of one world unit at
// the given view-space depth. Used to scale billboards and star points.
func (c *Camera) pixelsPerUnit(depth float64) float64 {
	if depth <= 0 {
		return 0
	}
	return (c.height / 2) / (math.Tan(c.Fovy/2) * depth)
}
