package orrery

import (
	"image"
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// System placement and sun presentation constants. Speeds and distances are
// presentation-tuned, not derived from any physical model.
const (
	sunRadius   = 2.6
	sunGlowSize = 11.0

	atmosphereScale = 1.18
	atmosphereAlpha = 0.2

	ringHalfWidth = 0.06
	ringAlpha     = 0.16
	ringSegments  = 96

	exoplanetRadius   = 1.2
	exoplanetTiltDeg  = 14.0
	exoplanetSpinRate = 0.18
)

// systemOffset places the decorative planetary system up, left and behind
// the exoplanet, which alone occupies the world origin as the camera's
// focal subject.
var systemOffset = mgl64.Vec3{-26, 8, -60}

var sunColor = Color{R: 1.0, G: 0.93, B: 0.78, A: 1}

// bodyDescriptor is the construction recipe for one orbiting body.
type bodyDescriptor struct {
	Name           string
	Distance       float64 // orbit radius in world units
	Size           float64 // sphere radius
	Color          Color
	Speed          float64 // orbital angular speed, rad/s before damping
	RotationSpeed  float64 // self-rotation speed, rad/s
	InclinationDeg float64
}

// planetDescriptors is the fixed recipe list the registry is built from.
// Names are only used for node naming and the debug overlay.
var planetDescriptors = []bodyDescriptor{
	{Name: "cinder", Distance: 6.5, Size: 0.42, Color: Color{R: 0.76, G: 0.62, B: 0.52, A: 1}, Speed: 0.52, RotationSpeed: 0.9, InclinationDeg: 4},
	{Name: "jade", Distance: 9.0, Size: 0.58, Color: Color{R: 0.56, G: 0.78, B: 0.62, A: 1}, Speed: 0.38, RotationSpeed: 0.7, InclinationDeg: 7},
	{Name: "azure", Distance: 12.0, Size: 0.80, Color: Color{R: 0.42, G: 0.60, B: 0.92, A: 1}, Speed: 0.27, RotationSpeed: 1.1, InclinationDeg: 3},
	{Name: "rust", Distance: 15.5, Size: 0.66, Color: Color{R: 0.86, G: 0.48, B: 0.34, A: 1}, Speed: 0.21, RotationSpeed: 0.8, InclinationDeg: 9},
	{Name: "ochre", Distance: 19.5, Size: 1.15, Color: Color{R: 0.85, G: 0.74, B: 0.52, A: 1}, Speed: 0.15, RotationSpeed: 1.4, InclinationDeg: 6},
	{Name: "slate", Distance: 24.0, Size: 0.95, Color: Color{R: 0.58, G: 0.64, B: 0.74, A: 1}, Speed: 0.11, RotationSpeed: 0.6, InclinationDeg: 11},
}

// CelestialBody is one orbiting planet: a tilted pivot whose yaw carries the
// body mesh around the sun. The angle accumulators live here, not on the
// nodes, so the kinematics step owns all motion state.
type CelestialBody struct {
	Name string

	// Pivot carries the orbital plane tilt on X/Z; its Y rotation is the
	// animated orbit angle.
	Pivot *Node
	// Mesh is the sphere, placed at (Distance, 0, 0) inside Pivot.
	Mesh *Node

	OrbitAngle   float64
	AngularSpeed float64
	SelfAngle    float64
	SelfSpeed    float64
}

// solarSystem is the celestial body registry: the sun, its glow, the
// orbiting bodies, and their orbit-path rings, all under one root group that
// the kinematics step slowly rotates for parallax.
type solarSystem struct {
	Root   *Node
	Sun    *Node
	Bodies []*CelestialBody

	// Parallax drift accumulators for the root group.
	driftX, driftY float64

	glowImg *ebiten.Image
}

// buildSolarSystem constructs the registry from planetDescriptors. Each
// body's orbital angle starts at an independent random phase so bodies do
// not line up; rng provides those phases.
func buildSolarSystem(rng *rand.Rand) *solarSystem {
	root := NewGroup("system")
	root.SetPosition(systemOffset.X(), systemOffset.Y(), systemOffset.Z())

	sun := NewMeshNode("sun", buildUVSphere(sunRadius, 32, 24), nil)
	sun.Color = sunColor
	sun.Emissive = true
	root.AddChild(sun)

	glowImg := buildGlowImage(128, sunColor.WithAlpha(0.85))
	glow := NewBillboard("sun-glow", glowImg, sunGlowSize)
	glow.BlendMode = BlendAdd
	root.AddChild(glow)

	sys := &solarSystem{Root: root, Sun: sun, glowImg: glowImg}

	for _, d := range planetDescriptors {
		phase := rng.Float64() * 2 * math.Pi
		tilt := mgl64.DegToRad(d.InclinationDeg)

		pivot := NewGroup("pivot-" + d.Name)
		pivot.SetRotation(tilt, phase, tilt*0.5)
		root.AddChild(pivot)

		mesh := NewMeshNode("body-"+d.Name, buildUVSphere(d.Size, 24, 18), nil)
		mesh.Color = d.Color
		mesh.SetPosition(d.Distance, 0, 0)
		pivot.AddChild(mesh)

		atmo := NewMeshNode("atmo-"+d.Name, buildUVSphere(d.Size*atmosphereScale, 24, 18), nil)
		atmo.Color = atmosphereTint(d.Color)
		atmo.Alpha = atmosphereAlpha
		atmo.BlendMode = BlendAdd
		atmo.Emissive = true
		mesh.AddChild(atmo)

		// Orbit-path ring: same tilt as the pivot but no animated yaw,
		// since the path itself does not move.
		ringPivot := NewGroup("orbit-" + d.Name)
		ringPivot.SetRotation(tilt, 0, tilt*0.5)
		root.AddChild(ringPivot)

		ring := NewMeshNode("ring-"+d.Name, buildRing(d.Distance-ringHalfWidth, d.Distance+ringHalfWidth, ringSegments), nil)
		ring.Color = d.Color
		ring.Alpha = ringAlpha
		ring.Emissive = true
		ring.TwoSided = true
		ringPivot.AddChild(ring)

		sys.Bodies = append(sys.Bodies, &CelestialBody{
			Name:         d.Name,
			Pivot:        pivot,
			Mesh:         mesh,
			OrbitAngle:   phase,
			AngularSpeed: d.Speed,
			SelfSpeed:    d.RotationSpeed,
		})
	}

	return sys
}

// lightPosition returns the sun's world position, the scene's single point
// light. Valid after the frame's transform pass.
func (s *solarSystem) lightPosition() mgl64.Vec3 {
	return s.Sun.WorldPosition()
}

// dispose releases the registry subtree and the GPU images it owns.
func (s *solarSystem) dispose() {
	s.Root.Dispose()
	if s.glowImg != nil {
		s.glowImg.Deallocate()
		s.glowImg = nil
	}
	s.Bodies = nil
}

// atmosphereTint derives a lighter, less saturated shell color from the body
// color via HCL so hue is preserved perceptually.
func atmosphereTint(c Color) Color {
	h, ch, l := colorful.Color{R: clamp01(c.R), G: clamp01(c.G), B: clamp01(c.B)}.Hcl()
	t := colorful.Hcl(h, ch*0.65, math.Min(1, l*1.35)).Clamped()
	return Color{R: t.R, G: t.G, B: t.B, A: 1}
}

// --- Exoplanet ---

// exoplanet is the highlighted subject at the world origin. It is not part
// of the registry's orbit system: it never revolves, only spins in place at
// its own rate.
type exoplanet struct {
	Node *Node
	mat  *material

	Spin float64
}

// buildExoplanet constructs the subject sphere with the procedural fallback
// material. The external texture, if it ever arrives, is applied through
// applyTexture.
func buildExoplanet(rng *rand.Rand) *exoplanet {
	mat := newFallbackMaterial(rng)
	node := NewMeshNode("exoplanet", buildUVSphere(exoplanetRadius, 48, 32), mat.texture)
	node.SetRotation(0, 0, mgl64.DegToRad(exoplanetTiltDeg))
	return &exoplanet{Node: node, mat: mat}
}

// applyTexture swaps the loaded image into the material and repoints the
// mesh at the new GPU texture. No-op after dispose.
func (e *exoplanet) applyTexture(src image.Image) {
	if e.mat.disposed || src == nil {
		return
	}
	e.mat.swap(src)
	e.Node.MeshImage = e.mat.texture
}

// dispose releases the subject's node and material.
func (e *exoplanet) dispose() {
	e.Node.Dispose()
	e.mat.dispose()
}
