package orrery

import "github.com/go-gl/mathgl/mgl64"

// identityMatrix is the identity transform.
var identityMatrix = mgl64.Ident4()

// computeLocalMatrix computes the local transform from the node's properties.
//
// Composition order:
//
//	Translate(Position) * RotZ * RotX * RotY * Scale
//
// Y rotation is innermost so that an orbit pivot's per-frame yaw moves its
// children along a circle that the fixed X/Z inclination then tilts.
func computeLocalMatrix(n *Node) mgl64.Mat4 {
	m := mgl64.Translate3D(n.Position.X(), n.Position.Y(), n.Position.Z())
	if n.Rotation.Z() != 0 {
		m = m.Mul4(mgl64.HomogRotate3DZ(n.Rotation.Z()))
	}
	if n.Rotation.X() != 0 {
		m = m.Mul4(mgl64.HomogRotate3DX(n.Rotation.X()))
	}
	if n.Rotation.Y() != 0 {
		m = m.Mul4(mgl64.HomogRotate3DY(n.Rotation.Y()))
	}
	if n.Scale != (mgl64.Vec3{1, 1, 1}) {
		m = m.Mul4(mgl64.Scale3D(n.Scale.X(), n.Scale.Y(), n.Scale.Z()))
	}
	return m
}

// updateWorldMatrix recomputes a node's worldMatrix and worldAlpha.
// parentRecomputed indicates whether the parent was recomputed this frame,
// which forces recomputation of this node even if it's not dirty.
func updateWorldMatrix(n *Node, parentMatrix mgl64.Mat4, parentAlpha float64, parentRecomputed bool) {
	recompute := n.transformDirty || parentRecomputed
	if recompute {
		local := computeLocalMatrix(n)
		n.worldMatrix = parentMatrix.Mul4(local)
		n.worldAlpha = parentAlpha * n.Alpha
		n.transformDirty = false
	}

	for _, child := range n.children {
		updateWorldMatrix(child, n.worldMatrix, n.worldAlpha, recompute)
	}
}

// --- Transform property setters ---

// SetPosition sets the node's local position and marks it dirty.
func (n *Node) SetPosition(x, y, z float64) {
	n.Position = mgl64.Vec3{x, y, z}
	n.transformDirty = true
}

// SetRotation sets the node's Euler rotation (radians) and marks it dirty.
func (n *Node) SetRotation(x, y, z float64) {
	n.Rotation = mgl64.Vec3{x, y, z}
	n.transformDirty = true
}

// SetRotationY sets only the Y (yaw) component, preserving the X/Z tilt.
// This is the per-frame path for orbit pivots and spinning bodies.
func (n *Node) SetRotationY(y float64) {
	n.Rotation[1] = y
	n.transformDirty = true
}

// SetScale sets a uniform scale and marks the node dirty.
func (n *Node) SetScale(s float64) {
	n.Scale = mgl64.Vec3{s, s, s}
	n.transformDirty = true
}

// SetAlpha sets the node's alpha and marks it dirty.
func (n *Node) SetAlpha(a float64) {
	n.Alpha = a
	n.transformDirty = true
}

// MarkDirty marks the node's transform as dirty, forcing recomputation
// on the next frame. Useful after bulk-setting fields directly.
func (n *Node) MarkDirty() {
	n.transformDirty = true
}

// WorldPosition returns the node's world-space origin from the last computed
// world matrix. Valid after the frame's transform pass.
func (n *Node) WorldPosition() mgl64.Vec3 {
	return mgl64.Vec3{n.worldMatrix[12], n.worldMatrix[13], n.worldMatrix[14]}
}

// transformDirection applies only the rotation/scale part of m to v.
func transformDirection(m mgl64.Mat4, v mgl64.Vec3) mgl64.Vec3 {
	return m.Mat3().Mul3x1(v)
}
