package orrery

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// MeshVertex is one vertex of a MeshData: model-space position, outward
// normal, and texture coordinates in [0, 1].
type MeshVertex struct {
	Position mgl64.Vec3
	Normal   mgl64.Vec3
	U, V     float64
}

// MeshData holds immutable model-space geometry shared by mesh nodes.
// For N vertices the index list holds 3 entries per triangle.
type MeshData struct {
	Vertices []MeshVertex
	Indices  []uint16
}

// buildUVSphere generates a latitude/longitude sphere of the given radius.
// segments is the slice count around the equator, rings the stack count from
// pole to pole. Vertices: (rings+1)*(segments+1); the seam column is
// duplicated so texture U wraps cleanly. Triangles wind so that outward
// faces survive the renderer's backface cull.
func buildUVSphere(radius float64, segments, rings int) *MeshData {
	if segments < 3 {
		segments = 3
	}
	if rings < 2 {
		rings = 2
	}

	numVerts := (rings + 1) * (segments + 1)
	verts := make([]MeshVertex, 0, numVerts)
	inds := make([]uint16, 0, rings*segments*6)

	for ring := 0; ring <= rings; ring++ {
		theta := float64(ring) * math.Pi / float64(rings)
		sinTheta, cosTheta := math.Sincos(theta)

		for seg := 0; seg <= segments; seg++ {
			phi := float64(seg) * 2 * math.Pi / float64(segments)
			sinPhi, cosPhi := math.Sincos(phi)

			// Unit-sphere position doubles as the outward normal.
			n := mgl64.Vec3{cosPhi * sinTheta, cosTheta, sinPhi * sinTheta}
			verts = append(verts, MeshVertex{
				Position: n.Mul(radius),
				Normal:   n,
				U:        float64(seg) / float64(segments),
				V:        float64(ring) / float64(rings),
			})
		}
	}

	for ring := 0; ring < rings; ring++ {
		for seg := 0; seg < segments; seg++ {
			current := uint16(ring*(segments+1) + seg)
			next := current + uint16(segments) + 1

			inds = append(inds, current, next, current+1)
			inds = append(inds, current+1, next, next+1)
		}
	}

	return &MeshData{Vertices: verts, Indices: inds}
}

// buildRing generates a flat annulus in the XZ plane (y = 0), used as the
// visual orbit-path indicator. The seam column is duplicated to close the
// loop. Ring nodes render two-sided, so winding is not significant.
func buildRing(innerRadius, outerRadius float64, segments int) *MeshData {
	if segments < 3 {
		segments = 3
	}
	if outerRadius < innerRadius {
		innerRadius, outerRadius = outerRadius, innerRadius
	}

	numVerts := (segments + 1) * 2
	verts := make([]MeshVertex, 0, numVerts)
	inds := make([]uint16, 0, segments*6)
	up := mgl64.Vec3{0, 1, 0}

	for seg := 0; seg <= segments; seg++ {
		phi := float64(seg) * 2 * math.Pi / float64(segments)
		sinPhi, cosPhi := math.Sincos(phi)
		u := float64(seg) / float64(segments)

		verts = append(verts,
			MeshVertex{
				Position: mgl64.Vec3{cosPhi * innerRadius, 0, sinPhi * innerRadius},
				Normal:   up,
				U:        u,
				V:        0,
			},
			MeshVertex{
				Position: mgl64.Vec3{cosPhi * outerRadius, 0, sinPhi * outerRadius},
				Normal:   up,
				U:        u,
				V:        1,
			},
		)
	}

	for seg := 0; seg < segments; seg++ {
		v := uint16(seg * 2)
		inds = append(inds, v, v+1, v+2)
		inds = append(inds, v+1, v+3, v+2)
	}

	return &MeshData{Vertices: verts, Indices: inds}
}
