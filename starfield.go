package orrery

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// starCount is the number of stars in the background shell.
	starCount = 2600
	// starShellRadius bounds the spherical volume the stars occupy.
	starShellRadius = 320.0
	// starDriftRate is the slow rotation of the whole star field, rad/s
	// about the world Y axis.
	starDriftRate = 0.004
)

// starPalette holds the tints stars are drawn in. Every generated star uses
// one of these verbatim.
var starPalette = [...]Color{
	{R: 1.00, G: 1.00, B: 1.00, A: 1}, // white
	{R: 0.62, G: 0.75, B: 1.00, A: 1}, // blue
	{R: 0.64, G: 1.00, B: 0.76, A: 1}, // green
	{R: 1.00, G: 0.93, B: 0.60, A: 1}, // yellow
	{R: 0.80, G: 0.62, B: 1.00, A: 1}, // purple
}

// Starfield is a static point cloud of tinted stars. Positions are parallel
// to Colors and Sizes; the cloud itself never mutates after generation, all
// apparent motion comes from the owning node's transform.
type Starfield struct {
	Positions []mgl64.Vec3
	Colors    []Color
	Sizes     []float64
}

// Count returns the number of stars in the field.
func (s *Starfield) Count() int {
	return len(s.Positions)
}

// generateStarfield samples count star positions uniformly inside a sphere
// of starShellRadius. Radius uses a cube-root transform and the polar angle
// an arccos transform, so density is uniform per unit volume rather than
// clustered at the center or poles. Colors are drawn from starPalette and
// sizes (screen-space radii in pixels at reference depth) vary slightly.
func generateStarfield(rng *rand.Rand, count int) *Starfield {
	if count <= 0 {
		count = starCount
	}
	s := &Starfield{
		Positions: make([]mgl64.Vec3, count),
		Colors:    make([]Color, count),
		Sizes:     make([]float64, count),
	}

	for i := 0; i < count; i++ {
		radius := starShellRadius * math.Cbrt(rng.Float64())
		theta := 2 * math.Pi * rng.Float64()
		phi := math.Acos(2*rng.Float64() - 1)

		sinPhi := math.Sin(phi)
		s.Positions[i] = mgl64.Vec3{
			radius * sinPhi * math.Cos(theta),
			radius * math.Cos(phi),
			radius * sinPhi * math.Sin(theta),
		}
		s.Colors[i] = starPalette[rng.Intn(len(starPalette))]
		s.Sizes[i] = 0.6 + rng.Float64()*1.6
	}

	return s
}
