package orrery

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
)

// nodeIDCounter is a plain counter; all node churn happens on the game
// loop goroutine.
var nodeIDCounter uint32

func nextNodeID() uint32 {
	nodeIDCounter++
	return nodeIDCounter
}

// Node is the fundamental scene graph element. A single flat struct is used
// for all node types to avoid interface dispatch on the hot path.
//
// Nodes form an ownership tree: a parent exclusively owns its children and
// disposing a node disposes its whole subtree. The orbit hierarchy
// (system group → orbit pivot → body mesh) is built from plain nodes.
type Node struct {
	// Identity
	ID   uint32
	Name string
	Type NodeType

	// Hierarchy
	Parent   *Node
	children []*Node

	// Transform (local). Rotation is Euler angles in radians, composed
	// Z·X·Y so that a pivot's Y rotation spins its children inside the
	// X/Z inclination tilt.
	Position mgl64.Vec3
	Rotation mgl64.Vec3
	Scale    mgl64.Vec3

	// Computed during traversal
	worldMatrix    mgl64.Mat4
	worldAlpha     float64
	transformDirty bool

	// Visibility & shading
	Alpha     float64
	Visible   bool
	Color     Color
	BlendMode BlendMode
	// Emissive nodes skip point-light shading (the sun, rings, glows).
	Emissive bool
	// TwoSided disables backface culling (flat ring geometry).
	TwoSided bool

	// Mesh fields (NodeTypeMesh)
	Mesh      *MeshData
	MeshImage *ebiten.Image

	// Billboard fields (NodeTypeBillboard)
	BillboardSize  float64
	BillboardImage *ebiten.Image

	// Point cloud fields (NodeTypePointCloud)
	Cloud *Starfield

	// Preallocated per-frame buffers (render.go)
	screenVerts []ebiten.Vertex
	screenInds  []uint16

	// Internal
	disposed bool
}

// nodeDefaults sets the common default field values shared by all constructors.
func nodeDefaults(n *Node) {
	n.ID = nextNodeID()
	n.Scale = mgl64.Vec3{1, 1, 1}
	n.Alpha = 1
	n.Color = ColorWhite
	n.Visible = true
	n.transformDirty = true
}

// NewGroup creates a transform-only node with no visual representation.
func NewGroup(name string) *Node {
	n := &Node{Name: name, Type: NodeTypeGroup}
	nodeDefaults(n)
	return n
}

// NewMeshNode creates a node that renders the given geometry via DrawTriangles.
// img may be nil for untextured (vertex-colored) meshes.
func NewMeshNode(name string, mesh *MeshData, img *ebiten.Image) *Node {
	n := &Node{Name: name, Type: NodeTypeMesh, Mesh: mesh, MeshImage: img}
	nodeDefaults(n)
	return n
}

// NewBillboard creates a node that renders img as a screen-aligned sprite
// spanning size world units, scaled by perspective distance.
func NewBillboard(name string, img *ebiten.Image, size float64) *Node {
	n := &Node{Name: name, Type: NodeTypeBillboard, BillboardImage: img, BillboardSize: size}
	nodeDefaults(n)
	return n
}

// NewPointCloud creates a node that renders a star field.
func NewPointCloud(name string, cloud *Starfield) *Node {
	n := &Node{Name: name, Type: NodeTypePointCloud, Cloud: cloud}
	nodeDefaults(n)
	return n
}

// --- Tree manipulation ---

// AddChild appends child to this node's children.
// If child already has a parent, it is removed from that parent first.
// Panics if child is nil or child is an ancestor of this node (cycle).
func (n *Node) AddChild(child *Node) {
	if child == nil {
		panic("orrery: cannot add nil child")
	}
	if isAncestor(child, n) {
		panic("orrery: adding child would create a cycle")
	}
	if child.Parent != nil {
		child.Parent.removeChildByPtr(child)
	}
	child.Parent = n
	n.children = append(n.children, child)
	markSubtreeDirty(child)
}

// RemoveChild detaches child from this node.
// Panics if child.Parent != n.
func (n *Node) RemoveChild(child *Node) {
	if child.Parent != n {
		panic("orrery: child's parent is not this node")
	}
	n.removeChildByPtr(child)
	child.Parent = nil
	markSubtreeDirty(child)
}

// RemoveFromParent detaches this node from its parent.
// No-op if this node has no parent.
func (n *Node) RemoveFromParent() {
	if n.Parent == nil {
		return
	}
	n.Parent.RemoveChild(n)
}

// Children returns the child list. The returned slice MUST NOT be mutated by the caller.
func (n *Node) Children() []*Node {
	return n.children
}

// NumChildren returns the number of children.
func (n *Node) NumChildren() int {
	return len(n.children)
}

// --- Disposal ---

// Dispose removes this node from its parent, marks it as disposed, and
// recursively disposes all descendants. Children are released with their
// parent, never after it. Safe to call more than once.
//
// GPU images referenced by nodes are shared (built once by the engine), so
// disposal drops the references; releasing the images themselves is the
// engine's job.
func (n *Node) Dispose() {
	if n.disposed {
		return
	}
	n.RemoveFromParent()
	n.dispose()
}

func (n *Node) dispose() {
	n.disposed = true
	n.ID = 0
	for _, child := range n.children {
		child.Parent = nil
		child.dispose()
	}
	n.children = nil
	n.Parent = nil
	n.Mesh = nil
	n.MeshImage = nil
	n.BillboardImage = nil
	n.Cloud = nil
	n.screenVerts = nil
	n.screenInds = nil
}

// IsDisposed returns true if this node has been disposed.
func (n *Node) IsDisposed() bool {
	return n.disposed
}

// --- Helpers ---

// isAncestor reports whether candidate is an ancestor of node.
func isAncestor(candidate, node *Node) bool {
	for p := node; p != nil; p = p.Parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr removes child from n.children without clearing child.Parent.
// Uses copy+nil to avoid retaining a dangling pointer in the backing array.
func (n *Node) removeChildByPtr(child *Node) {
	for i, c := range n.children {
		if c == child {
			copy(n.children[i:], n.children[i+1:])
			n.children[len(n.children)-1] = nil
			n.children = n.children[:len(n.children)-1]
			return
		}
	}
}

// markSubtreeDirty sets transformDirty on node and all its descendants.
func markSubtreeDirty(node *Node) {
	node.transformDirty = true
	for _, child := range node.children {
		markSubtreeDirty(child)
	}
}
