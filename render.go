package orrery

import (
	"image"
	"image/color"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// ambientLight is the shading floor for lit meshes, so night sides stay
// faintly readable instead of going fully black.
const ambientLight = 0.18

// Star point radii are clamped to this range after perspective scaling.
const (
	starMinRadius = 0.35
	starMaxRadius = 2.8
)

// drawItem is a single depth-sorted draw emitted during scene traversal: a
// mesh or billboard node whose screen geometry was prepared by collect.
type drawItem struct {
	node  *Node
	depth float64
}

// renderer rasterizes node trees with a painter's algorithm: project every
// drawable, sort far to near, draw. Star clouds are a background pre-pass
// drawn before everything else; convex meshes rely on backface culling for
// self-occlusion, so no per-triangle depth handling is needed.
//
// All scratch slices grow to a high-water mark and are reused across frames.
type renderer struct {
	items   []drawItem
	sortBuf []drawItem
	stars   []*Node
	vertOK  []bool

	// 3x3 white source with a 1x1 interior sub-image, so untextured
	// triangles sample a solid texel without filtering artifacts at the
	// image border.
	whiteImg *ebiten.Image
	whiteSub *ebiten.Image

	triOpts *ebiten.DrawTrianglesOptions
	imgOpts *ebiten.DrawImageOptions

	disposed bool
}

func newRenderer() *renderer {
	white := ebiten.NewImage(3, 3)
	white.Fill(color.White)
	return &renderer{
		whiteImg: white,
		whiteSub: white.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image),
		triOpts:  &ebiten.DrawTrianglesOptions{},
		imgOpts:  &ebiten.DrawImageOptions{},
	}
}

// dispose releases the renderer's GPU resources. Safe to call more than once.
func (r *renderer) dispose() {
	if r.disposed {
		return
	}
	r.disposed = true
	r.whiteSub = nil
	if r.whiteImg != nil {
		r.whiteImg.Deallocate()
		r.whiteImg = nil
	}
	r.items = nil
	r.sortBuf = nil
	r.stars = nil
	r.vertOK = nil
}

// render draws the given roots into dst. World matrices must be current:
// the engine runs the transform pass before rendering. lightPos is the
// scene's single point light in world space.
func (r *renderer) render(dst *ebiten.Image, cam *Camera, lightPos mgl64.Vec3, roots ...*Node) {
	if r.disposed {
		return
	}
	r.items = r.items[:0]
	r.stars = r.stars[:0]

	for _, root := range roots {
		if root != nil {
			r.collect(root, cam, lightPos)
		}
	}

	for _, n := range r.stars {
		r.drawStars(dst, cam, n)
	}

	r.mergeSort()
	for _, it := range r.items {
		switch it.node.Type {
		case NodeTypeMesh:
			r.drawMesh(dst, it.node)
		case NodeTypeBillboard:
			r.drawBillboard(dst, cam, it)
		}
	}
}

// collect walks a subtree depth-first, prepares screen geometry for
// drawable nodes and queues them for the sorted draw pass. An invisible
// node suppresses its whole subtree.
func (r *renderer) collect(n *Node, cam *Camera, lightPos mgl64.Vec3) {
	if !n.Visible || n.disposed {
		return
	}

	switch n.Type {
	case NodeTypeMesh:
		if depth, ok := r.prepareMesh(n, cam, lightPos); ok {
			r.items = append(r.items, drawItem{node: n, depth: depth})
		}
	case NodeTypeBillboard:
		if _, _, depth, ok := cam.project(n.WorldPosition()); ok {
			r.items = append(r.items, drawItem{node: n, depth: depth})
		}
	case NodeTypePointCloud:
		if n.Cloud != nil {
			r.stars = append(r.stars, n)
		}
	}

	for _, child := range n.children {
		r.collect(child, cam, lightPos)
	}
}

// prepareMesh projects and shades a mesh node's vertices into its reusable
// screen buffers, then culls triangles that face away from the camera or
// touch a vertex behind the near plane. Returns the node's view depth and
// whether any triangle survived.
func (r *renderer) prepareMesh(n *Node, cam *Camera, lightPos mgl64.Vec3) (float64, bool) {
	mesh := n.Mesh
	if mesh == nil || len(mesh.Indices) == 0 {
		return 0, false
	}
	_, _, depth, ok := cam.project(n.WorldPosition())
	if !ok {
		return 0, false
	}

	nv := len(mesh.Vertices)
	if cap(n.screenVerts) < nv {
		n.screenVerts = make([]ebiten.Vertex, nv)
	}
	n.screenVerts = n.screenVerts[:nv]
	if cap(r.vertOK) < nv {
		r.vertOK = make([]bool, nv)
	}
	vertOK := r.vertOK[:nv]

	srcW, srcH := 1.0, 1.0
	textured := n.MeshImage != nil
	if textured {
		b := n.MeshImage.Bounds()
		srcW, srcH = float64(b.Dx()), float64(b.Dy())
	}

	alpha := float32(clamp01(n.worldAlpha * n.Color.A))
	for i := range mesh.Vertices {
		v := &mesh.Vertices[i]
		world := n.worldMatrix.Mul4x1(v.Position.Vec4(1)).Vec3()
		sx, sy, _, ok := cam.project(world)
		vertOK[i] = ok
		if !ok {
			continue
		}

		shade := 1.0
		if !n.Emissive {
			normal := transformDirection(n.worldMatrix, v.Normal)
			if l := normal.Len(); l > 0 {
				normal = normal.Mul(1 / l)
			}
			lightDir := lightPos.Sub(world)
			if l := lightDir.Len(); l > 0 {
				lightDir = lightDir.Mul(1 / l)
			}
			diff := normal.Dot(lightDir)
			if diff < 0 {
				diff = 0
			}
			shade = ambientLight + (1-ambientLight)*diff
		}

		sv := &n.screenVerts[i]
		sv.DstX = float32(sx)
		sv.DstY = float32(sy)
		if textured {
			sv.SrcX = float32(v.U * srcW)
			sv.SrcY = float32(v.V * srcH)
		} else {
			sv.SrcX = 1
			sv.SrcY = 1
		}
		sv.ColorR = float32(clamp01(n.Color.R * shade))
		sv.ColorG = float32(clamp01(n.Color.G * shade))
		sv.ColorB = float32(clamp01(n.Color.B * shade))
		sv.ColorA = alpha
	}

	if cap(n.screenInds) < len(mesh.Indices) {
		n.screenInds = make([]uint16, 0, len(mesh.Indices))
	}
	n.screenInds = n.screenInds[:0]
	for i := 0; i+2 < len(mesh.Indices); i += 3 {
		i0, i1, i2 := mesh.Indices[i], mesh.Indices[i+1], mesh.Indices[i+2]
		if !vertOK[i0] || !vertOK[i1] || !vertOK[i2] {
			continue
		}
		if !n.TwoSided {
			v0, v1, v2 := &n.screenVerts[i0], &n.screenVerts[i1], &n.screenVerts[i2]
			// Signed screen area. Front faces wind positive in
			// y-down screen space.
			area := (v1.DstX-v0.DstX)*(v2.DstY-v0.DstY) - (v2.DstX-v0.DstX)*(v1.DstY-v0.DstY)
			if area <= 0 {
				continue
			}
		}
		n.screenInds = append(n.screenInds, i0, i1, i2)
	}
	if len(n.screenInds) == 0 {
		return 0, false
	}
	return depth, true
}

// drawMesh submits a prepared mesh node's triangles.
func (r *renderer) drawMesh(dst *ebiten.Image, n *Node) {
	src := r.whiteSub
	filter := ebiten.FilterNearest
	if n.MeshImage != nil {
		src = n.MeshImage
		filter = ebiten.FilterLinear
	}
	r.triOpts.Blend = n.BlendMode.EbitenBlend()
	r.triOpts.Filter = filter
	dst.DrawTriangles(n.screenVerts, n.screenInds, src, r.triOpts)
}

// drawBillboard draws a screen-aligned sprite centered on the node's
// projected position, scaled so it spans BillboardSize world units at the
// node's depth.
func (r *renderer) drawBillboard(dst *ebiten.Image, cam *Camera, it drawItem) {
	n := it.node
	img := n.BillboardImage
	if img == nil {
		return
	}
	sx, sy, _, ok := cam.project(n.WorldPosition())
	if !ok {
		return
	}
	b := img.Bounds()
	if b.Dx() == 0 {
		return
	}
	px := n.BillboardSize * cam.pixelsPerUnit(it.depth)
	if px < 1 {
		return
	}
	scale := px / float64(b.Dx())

	op := r.imgOpts
	op.GeoM.Reset()
	op.GeoM.Translate(-float64(b.Dx())/2, -float64(b.Dy())/2)
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(sx, sy)
	op.ColorScale.Reset()
	op.ColorScale.ScaleAlpha(float32(clamp01(n.worldAlpha * n.Color.A)))
	op.Blend = n.BlendMode.EbitenBlend()
	op.Filter = ebiten.FilterLinear
	dst.DrawImage(img, op)
}

// drawStars renders a star cloud as filled circles. Point radius scales
// with perspective from each star's base size, clamped so near stars stay
// points rather than discs. No depth sorting between stars; they are tiny
// and mutually far apart.
func (r *renderer) drawStars(dst *ebiten.Image, cam *Camera, n *Node) {
	cloud := n.Cloud
	bounds := dst.Bounds()
	maxX := float64(bounds.Max.X) + starMaxRadius
	maxY := float64(bounds.Max.Y) + starMaxRadius
	alpha := n.worldAlpha * n.Color.A

	for i := range cloud.Positions {
		world := n.worldMatrix.Mul4x1(cloud.Positions[i].Vec4(1)).Vec3()
		sx, sy, depth, ok := cam.project(world)
		if !ok || sx < -starMaxRadius || sy < -starMaxRadius || sx > maxX || sy > maxY {
			continue
		}

		radius := cloud.Sizes[i] * starShellRadius / depth
		if radius < starMinRadius {
			radius = starMinRadius
		} else if radius > starMaxRadius {
			radius = starMaxRadius
		}

		c := cloud.Colors[i]
		if alpha < 1 {
			c = c.WithAlpha(c.A * alpha)
		}
		vector.DrawFilledCircle(dst, float32(sx), float32(sy), float32(radius), c.toRGBA(), false)
	}
}

// --- Merge sort ---

// itemBeforeOrEqual returns true if a should draw before or at the same
// position as b. Greater depth draws first; <= on ties keeps the sort
// stable, so a body's atmosphere shell (collected after its parent mesh)
// always draws over the mesh.
func itemBeforeOrEqual(a, b drawItem) bool {
	return a.depth >= b.depth
}

// mergeSort sorts r.items in-place using r.sortBuf as scratch space.
// Bottom-up merge sort: zero allocations after the sort buffer reaches its
// high-water mark.
func (r *renderer) mergeSort() {
	n := len(r.items)
	if n <= 1 {
		return
	}
	if cap(r.sortBuf) < n {
		r.sortBuf = make([]drawItem, n)
	}
	r.sortBuf = r.sortBuf[:n]

	a := r.items
	b := r.sortBuf
	swapped := false

	for width := 1; width < n; width *= 2 {
		for i := 0; i < n; i += 2 * width {
			lo := i
			mid := lo + width
			if mid > n {
				mid = n
			}
			hi := lo + 2*width
			if hi > n {
				hi = n
			}
			mergeRun(a, b, lo, mid, hi)
		}
		a, b = b, a
		swapped = !swapped
	}

	if swapped {
		copy(r.items, r.sortBuf)
	}
}

// mergeRun merges two sorted runs [lo, mid) and [mid, hi) from src into dst.
func mergeRun(src, dst []drawItem, lo, mid, hi int) {
	i, j, k := lo, mid, lo
	for i < mid && j < hi {
		if itemBeforeOrEqual(src[i], src[j]) {
			dst[k] = src[i]
			i++
		} else {
			dst[k] = src[j]
			j++
		}
		k++
	}
	for i < mid {
		dst[k] = src[i]
		i++
		k++
	}
	for j < hi {
		dst[k] = src[j]
		j++
		k++
	}
}
