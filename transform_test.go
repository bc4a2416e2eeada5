package orrery

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

const epsilon = 1e-9

func assertNear(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > epsilon {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

// assertNearTol is assertNear with an explicit tolerance, for values that
// pass through float32 easing.
func assertNearTol(t *testing.T, name string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s = %v, want %v (tolerance %v)", name, got, want, tol)
	}
}

func assertVec3(t *testing.T, name string, got, want mgl64.Vec3) {
	t.Helper()
	for i := range got {
		if math.Abs(got[i]-want[i]) > epsilon {
			t.Errorf("%s[%d] = %v, want %v (full: %v vs %v)", name, i, got[i], want[i], got, want)
			return
		}
	}
}

// transformPoint applies the full homogeneous transform to a point.
func transformPoint(m mgl64.Mat4, p mgl64.Vec3) mgl64.Vec3 {
	return m.Mul4x1(p.Vec4(1)).Vec3()
}

// --- computeLocalMatrix ---

func TestLocalMatrixIdentity(t *testing.T) {
	n := NewGroup("test")
	got := computeLocalMatrix(n)
	want := mgl64.Ident4()
	for i := range got {
		assertNear(t, "identity", got[i], want[i])
	}
}

func TestLocalMatrixTranslation(t *testing.T) {
	n := NewGroup("test")
	n.SetPosition(10, 20, 30)
	m := computeLocalMatrix(n)
	assertVec3(t, "translation", mgl64.Vec3{m[12], m[13], m[14]}, mgl64.Vec3{10, 20, 30})
}

func TestLocalMatrixScale(t *testing.T) {
	n := NewGroup("test")
	n.SetScale(2)
	m := computeLocalMatrix(n)
	got := transformPoint(m, mgl64.Vec3{1, 1, 1})
	assertVec3(t, "scale", got, mgl64.Vec3{2, 2, 2})
}

// Rotation composes Z·X·Y with Y innermost. For rotation {X: 90°, Y: 90°}
// the +X axis must first yaw to -Z, then pitch to +Y. The reverse
// composition would leave it at -Z.
func TestLocalMatrixRotationOrder(t *testing.T) {
	n := NewGroup("test")
	n.SetRotation(math.Pi/2, math.Pi/2, 0)
	m := computeLocalMatrix(n)
	got := transformPoint(m, mgl64.Vec3{1, 0, 0})
	assertVec3(t, "rotation order", got, mgl64.Vec3{0, 1, 0})
}

// An orbit pivot's animated yaw must move a child at (d, 0, 0) along a
// circle inside the fixed inclination tilt: with a 90° X tilt, yawing 90°
// sends the child to the tilted image of (0, 0, -d), which is (0, d, 0).
func TestPivotYawSpinsInsideTilt(t *testing.T) {
	pivot := NewGroup("pivot")
	pivot.SetRotation(math.Pi/2, 0, 0)
	pivot.SetRotationY(math.Pi / 2)

	m := computeLocalMatrix(pivot)
	got := transformPoint(m, mgl64.Vec3{3, 0, 0})
	assertVec3(t, "tilted orbit", got, mgl64.Vec3{0, 3, 0})
}

// --- Setters ---

func TestSetRotationYPreservesTilt(t *testing.T) {
	n := NewGroup("test")
	n.SetRotation(0.3, 1.0, 0.15)
	n.SetRotationY(2.5)
	assertVec3(t, "rotation", n.Rotation, mgl64.Vec3{0.3, 2.5, 0.15})
}

func TestSettersMarkDirty(t *testing.T) {
	n := NewGroup("test")
	updateWorldMatrix(n, identityMatrix, 1, false)
	if n.transformDirty {
		t.Fatal("transformDirty should clear after update")
	}

	n.SetPosition(1, 0, 0)
	if !n.transformDirty {
		t.Error("SetPosition should mark dirty")
	}
	updateWorldMatrix(n, identityMatrix, 1, false)

	n.SetAlpha(0.5)
	if !n.transformDirty {
		t.Error("SetAlpha should mark dirty")
	}
}

// --- updateWorldMatrix ---

func TestWorldMatrixChaining(t *testing.T) {
	parent := NewGroup("parent")
	parent.SetPosition(10, 0, 0)
	child := NewGroup("child")
	child.SetPosition(5, 0, 0)
	parent.AddChild(child)

	updateWorldMatrix(parent, identityMatrix, 1, false)
	assertVec3(t, "child world", child.WorldPosition(), mgl64.Vec3{15, 0, 0})
}

func TestWorldMatrixCachedUntilDirty(t *testing.T) {
	n := NewGroup("test")
	n.SetPosition(1, 2, 3)
	updateWorldMatrix(n, identityMatrix, 1, false)

	// Direct field write without a setter: the cached matrix must not
	// change until MarkDirty.
	n.Position = mgl64.Vec3{9, 9, 9}
	updateWorldMatrix(n, identityMatrix, 1, false)
	assertVec3(t, "cached world", n.WorldPosition(), mgl64.Vec3{1, 2, 3})

	n.MarkDirty()
	updateWorldMatrix(n, identityMatrix, 1, false)
	assertVec3(t, "recomputed world", n.WorldPosition(), mgl64.Vec3{9, 9, 9})
}

func TestParentRecomputePropagatesToCleanChild(t *testing.T) {
	parent := NewGroup("parent")
	child := NewGroup("child")
	child.SetPosition(1, 0, 0)
	parent.AddChild(child)
	updateWorldMatrix(parent, identityMatrix, 1, false)

	parent.SetPosition(0, 0, 7)
	updateWorldMatrix(parent, identityMatrix, 1, false)
	assertVec3(t, "child follows parent", child.WorldPosition(), mgl64.Vec3{1, 0, 7})
}

func TestWorldAlphaCascade(t *testing.T) {
	parent := NewGroup("parent")
	parent.SetAlpha(0.5)
	child := NewGroup("child")
	child.SetAlpha(0.5)
	parent.AddChild(child)

	updateWorldMatrix(parent, identityMatrix, 1, false)
	assertNear(t, "worldAlpha", child.worldAlpha, 0.25)
}

// --- transformDirection ---

func TestTransformDirectionIgnoresTranslation(t *testing.T) {
	m := mgl64.Translate3D(5, 6, 7).Mul4(mgl64.HomogRotate3DZ(math.Pi / 2))
	got := transformDirection(m, mgl64.Vec3{1, 0, 0})
	assertVec3(t, "direction", got, mgl64.Vec3{0, 1, 0})
}
