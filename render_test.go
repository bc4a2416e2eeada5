package orrery

import (
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

// testCamera returns a camera 10 units out on +Z, aimed at the origin.
func testCamera() *Camera {
	cam := newCamera(800, 600)
	cam.MoveTo(mgl64.Vec3{0, 0, 10})
	cam.LookAt(mgl64.Vec3{})
	return cam
}

var testLight = mgl64.Vec3{100, 0, 0}

// --- Collection ---

func TestCollectMesh(t *testing.T) {
	r := &renderer{}
	n := NewMeshNode("m", buildUVSphere(1, 12, 8), nil)
	updateWorldMatrix(n, identityMatrix, 1, false)

	r.collect(n, testCamera(), testLight)

	if len(r.items) != 1 {
		t.Fatalf("items = %d, want 1", len(r.items))
	}
	assertNear(t, "depth", r.items[0].depth, 10)
}

func TestCollectInvisibleSubtreeSkipped(t *testing.T) {
	r := &renderer{}
	parent := NewGroup("parent")
	parent.Visible = false
	child := NewMeshNode("child", buildUVSphere(1, 12, 8), nil)
	parent.AddChild(child)
	updateWorldMatrix(parent, identityMatrix, 1, false)

	r.collect(parent, testCamera(), testLight)

	if len(r.items) != 0 {
		t.Errorf("items = %d, want 0 for an invisible subtree", len(r.items))
	}
}

func TestCollectDisposedSkipped(t *testing.T) {
	r := &renderer{}
	n := NewMeshNode("m", buildUVSphere(1, 12, 8), nil)
	updateWorldMatrix(n, identityMatrix, 1, false)
	n.Dispose()

	r.collect(n, testCamera(), testLight)

	if len(r.items) != 0 {
		t.Errorf("items = %d, want 0 for a disposed node", len(r.items))
	}
}

func TestCollectStarsSeparately(t *testing.T) {
	r := &renderer{}
	root := NewGroup("root")
	root.AddChild(NewPointCloud("stars", generateStarfield(rand.New(rand.NewSource(1)), 10)))
	root.AddChild(NewMeshNode("m", buildUVSphere(1, 12, 8), nil))
	updateWorldMatrix(root, identityMatrix, 1, false)

	r.collect(root, testCamera(), testLight)

	if len(r.stars) != 1 {
		t.Errorf("stars = %d, want 1", len(r.stars))
	}
	// The cloud goes to the background pre-pass, not the sorted items.
	if len(r.items) != 1 {
		t.Errorf("items = %d, want 1", len(r.items))
	}
}

func TestCollectBillboard(t *testing.T) {
	r := &renderer{}
	n := NewBillboard("glow", nil, 4)
	n.SetPosition(0, 0, 5)
	updateWorldMatrix(n, identityMatrix, 1, false)

	r.collect(n, testCamera(), testLight)

	if len(r.items) != 1 {
		t.Fatalf("items = %d, want 1", len(r.items))
	}
	assertNear(t, "depth", r.items[0].depth, 5)
}

// --- Mesh preparation ---

func TestPrepareMeshCullsBackfaces(t *testing.T) {
	r := &renderer{}
	n := NewMeshNode("m", buildUVSphere(1, 16, 12), nil)
	updateWorldMatrix(n, identityMatrix, 1, false)

	depth, ok := r.prepareMesh(n, testCamera(), testLight)
	if !ok {
		t.Fatal("sphere in front of the camera should survive")
	}
	assertNear(t, "depth", depth, 10)

	// A closed sphere has roughly half its faces turned away.
	total := len(n.Mesh.Indices)
	kept := len(n.screenInds)
	if kept == 0 || kept >= total {
		t.Errorf("culling kept %d of %d indices, want a proper subset", kept, total)
	}
}

func TestPrepareMeshTwoSidedKeepsAll(t *testing.T) {
	r := &renderer{}
	n := NewMeshNode("m", buildUVSphere(1, 16, 12), nil)
	n.TwoSided = true
	updateWorldMatrix(n, identityMatrix, 1, false)

	if _, ok := r.prepareMesh(n, testCamera(), testLight); !ok {
		t.Fatal("two-sided sphere should survive")
	}
	if len(n.screenInds) != len(n.Mesh.Indices) {
		t.Errorf("kept %d of %d indices, want all without culling", len(n.screenInds), len(n.Mesh.Indices))
	}
}

func TestPrepareMeshBehindCamera(t *testing.T) {
	r := &renderer{}
	n := NewMeshNode("m", buildUVSphere(1, 12, 8), nil)
	n.SetPosition(0, 0, 20)
	updateWorldMatrix(n, identityMatrix, 1, false)

	if _, ok := r.prepareMesh(n, testCamera(), testLight); ok {
		t.Error("mesh behind the camera should be rejected")
	}
}

func TestPrepareMeshEmissiveSkipsShading(t *testing.T) {
	r := &renderer{}
	n := NewMeshNode("m", buildUVSphere(1, 12, 8), nil)
	n.Emissive = true
	n.Color = Color{R: 0.5, G: 0.25, B: 1, A: 1}
	updateWorldMatrix(n, identityMatrix, 1, false)

	if _, ok := r.prepareMesh(n, testCamera(), testLight); !ok {
		t.Fatal("mesh should survive")
	}
	for i := range n.screenVerts {
		sv := &n.screenVerts[i]
		if sv.ColorR != 0.5 || sv.ColorG != 0.25 || sv.ColorB != 1 || sv.ColorA != 1 {
			t.Fatalf("vertex %d color = (%f, %f, %f, %f), want the node color unshaded",
				i, sv.ColorR, sv.ColorG, sv.ColorB, sv.ColorA)
		}
	}
}

func TestPrepareMeshLambertShading(t *testing.T) {
	r := &renderer{}
	n := NewMeshNode("m", buildUVSphere(1, 16, 12), nil)
	updateWorldMatrix(n, identityMatrix, 1, false)

	// Light far out on +X: the +X-most vertex faces it head on, the
	// -X-most vertex sees only the ambient floor.
	if _, ok := r.prepareMesh(n, testCamera(), testLight); !ok {
		t.Fatal("mesh should survive")
	}

	lit, dark := -1, -1
	for i, v := range n.Mesh.Vertices {
		if lit < 0 || v.Position.X() > n.Mesh.Vertices[lit].Position.X() {
			lit = i
		}
		if dark < 0 || v.Position.X() < n.Mesh.Vertices[dark].Position.X() {
			dark = i
		}
	}

	assertNearTol(t, "lit vertex", float64(n.screenVerts[lit].ColorR), 1, 1e-3)
	assertNearTol(t, "dark vertex", float64(n.screenVerts[dark].ColorR), ambientLight, 1e-3)
}

func TestPrepareMeshWhiteTexelForUntextured(t *testing.T) {
	r := &renderer{}
	n := NewMeshNode("m", buildUVSphere(1, 12, 8), nil)
	updateWorldMatrix(n, identityMatrix, 1, false)

	if _, ok := r.prepareMesh(n, testCamera(), testLight); !ok {
		t.Fatal("mesh should survive")
	}
	// Untextured vertices all sample the interior texel of the white image.
	for i := range n.screenVerts {
		if n.screenVerts[i].SrcX != 1 || n.screenVerts[i].SrcY != 1 {
			t.Fatalf("vertex %d src = (%f, %f), want (1, 1)", i, n.screenVerts[i].SrcX, n.screenVerts[i].SrcY)
		}
	}
}

func TestPrepareMeshAlphaCascade(t *testing.T) {
	r := &renderer{}
	parent := NewGroup("parent")
	parent.Alpha = 0.5
	n := NewMeshNode("m", buildUVSphere(1, 12, 8), nil)
	n.Alpha = 0.5
	n.Color.A = 0.8
	parent.AddChild(n)
	updateWorldMatrix(parent, identityMatrix, 1, false)

	if _, ok := r.prepareMesh(n, testCamera(), testLight); !ok {
		t.Fatal("mesh should survive")
	}
	// 0.5 * 0.5 * 0.8
	assertNearTol(t, "vertex alpha", float64(n.screenVerts[0].ColorA), 0.2, 1e-6)
}

// --- Merge sort ---

func TestMergeSortMatchesStdlib(t *testing.T) {
	depths := []float64{3, 1, 4, 1, 5, 9, 2, 6, 5, 3, 5}

	items := make([]drawItem, len(depths))
	for i, d := range depths {
		items[i] = drawItem{node: NewGroup(fmt.Sprintf("n%d", i)), depth: d}
	}

	// Reference: stdlib stable sort, far to near.
	ref := make([]drawItem, len(items))
	copy(ref, items)
	sort.SliceStable(ref, func(i, j int) bool {
		return ref[i].depth > ref[j].depth
	})

	r := &renderer{items: items}
	r.mergeSort()

	for i := range r.items {
		if r.items[i].node != ref[i].node {
			t.Errorf("index %d: mergeSort=%s depth %f, stdlib=%s depth %f",
				i, r.items[i].node.Name, r.items[i].depth, ref[i].node.Name, ref[i].depth)
		}
	}
}

func TestMergeSortStable(t *testing.T) {
	// All depths equal: collection order must be preserved, or translucent
	// shells would flicker against their parent meshes.
	r := &renderer{}
	nodes := make([]*Node, 100)
	for i := range nodes {
		nodes[i] = NewGroup(fmt.Sprintf("n%d", i))
		r.items = append(r.items, drawItem{node: nodes[i], depth: 7})
	}

	r.mergeSort()

	for i := range r.items {
		if r.items[i].node != nodes[i] {
			t.Fatalf("stability broken at index %d", i)
		}
	}
}

func TestMergeSortDescending(t *testing.T) {
	rng := rand.New(rand.NewSource(13))
	r := &renderer{}
	for i := 0; i < 257; i++ {
		r.items = append(r.items, drawItem{depth: rng.Float64() * 100})
	}

	r.mergeSort()

	for i := 1; i < len(r.items); i++ {
		if r.items[i].depth > r.items[i-1].depth {
			t.Fatalf("index %d out of order: %f after %f", i, r.items[i].depth, r.items[i-1].depth)
		}
	}
}

func TestMergeSortBufferReuse(t *testing.T) {
	r := &renderer{}
	for i := 0; i < 50; i++ {
		r.items = append(r.items, drawItem{depth: float64(50 - i)})
	}
	r.mergeSort()
	bufCap := cap(r.sortBuf)

	r.items = r.items[:0]
	for i := 0; i < 30; i++ {
		r.items = append(r.items, drawItem{depth: float64(30 - i)})
	}
	r.mergeSort()

	if cap(r.sortBuf) != bufCap {
		t.Errorf("sortBuf reallocated: was %d, now %d", bufCap, cap(r.sortBuf))
	}
}

func TestMergeSortEmpty(t *testing.T) {
	r := &renderer{}
	r.mergeSort() // should not panic
}

func TestMergeSortSingleElement(t *testing.T) {
	r := &renderer{items: []drawItem{{depth: 1}}}
	r.mergeSort()
	assertNear(t, "depth", r.items[0].depth, 1)
}

// --- Disposal ---

func TestRendererDisposeIdempotent(t *testing.T) {
	r := newRenderer()
	r.dispose()
	r.dispose()

	if !r.disposed || r.whiteImg != nil || r.whiteSub != nil {
		t.Error("disposed renderer should release its images")
	}
	// render on a disposed renderer is a no-op, even with a nil target.
	r.render(nil, testCamera(), testLight)
}
