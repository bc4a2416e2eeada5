package orrery

import (
	"image"
	"image/draw"
	"math"
	"math/rand"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	colorful "github.com/lucasb-eyer/go-colorful"
)

const (
	// defaultTextureSize is the edge length of synthesized square textures.
	defaultTextureSize = 512
	// normalIntensity scales luminance derivatives in the normal map.
	normalIntensity = 0.8
)

// Fallback gradient stops, blended pairwise in HCL space: light purple
// center, deep purple mid, near-black edge.
var (
	gradCenter = colorful.Color{R: 0.804, G: 0.690, B: 1.000}
	gradMid    = colorful.Color{R: 0.239, G: 0.102, B: 0.471}
	gradEdge   = colorful.Color{R: 0.020, G: 0.012, B: 0.059}

	speckleWarm = colorful.Color{R: 1.000, G: 0.851, B: 0.949}
	speckleCool = colorful.Color{R: 0.722, G: 0.800, B: 1.000}
)

// gradMidStop is the radial position of the middle gradient stop.
const gradMidStop = 0.55

// synthesizeBaseTexture builds the fallback surface texture: a radial
// gradient overlaid with faint random speckle in two hues, imitating
// stellar/nebular noise. Structure is deterministic; exact pixel values
// depend on rng. Never fails.
func synthesizeBaseTexture(rng *rand.Rand, size int) *image.RGBA {
	if size <= 0 {
		size = defaultTextureSize
	}
	img := image.NewRGBA(image.Rect(0, 0, size, size))

	center := float64(size) / 2
	maxDist := center * math.Sqrt2

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := float64(x) - center
			dy := float64(y) - center
			t := math.Sqrt(dx*dx+dy*dy) / maxDist

			var c colorful.Color
			if t < gradMidStop {
				c = gradCenter.BlendHcl(gradMid, t/gradMidStop).Clamped()
			} else {
				c = gradMid.BlendHcl(gradEdge, (t-gradMidStop)/(1-gradMidStop)).Clamped()
			}
			setPixel(img, x, y, c)
		}
	}

	// Speckle: several hundred faint dots in two hues.
	for i := 0; i < 420; i++ {
		blendPixel(img, rng.Intn(size), rng.Intn(size), speckleWarm, 0.06+rng.Float64()*0.16)
	}
	for i := 0; i < 260; i++ {
		blendPixel(img, rng.Intn(size), rng.Intn(size), speckleCool, 0.06+rng.Float64()*0.16)
	}

	return img
}

// synthesizeNormalMap derives an approximate tangent-space normal map from a
// color image using forward-difference luminance derivatives. At the right
// and bottom borders the current pixel's luminance is reused, so the
// derivative there is zero. Each component v is packed as (v*2+1)*0.5
// clamped to [0, 1] and mapped to [0, 255]; the Z component is constant 1,
// so the blue channel saturates at 255.
//
// Never fails: a nil or empty source falls back to a freshly synthesized
// base texture, yielding a normal map derived from noise rather than an
// error.
func synthesizeNormalMap(src image.Image, intensity float64) *image.RGBA {
	if src == nil || src.Bounds().Dx() <= 0 || src.Bounds().Dy() <= 0 {
		src = synthesizeBaseTexture(rand.New(rand.NewSource(time.Now().UnixNano())), defaultTextureSize)
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := image.NewRGBA(image.Rect(0, 0, w, h))

	// Precompute luminance in [0, 1].
	lum := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := src.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			lum[y*w+x] = (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 0xffff
		}
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			here := lum[y*w+x]
			right := here
			if x < w-1 {
				right = lum[y*w+x+1]
			}
			below := here
			if y < h-1 {
				below = lum[(y+1)*w+x]
			}

			dx := (right - here) * intensity
			dy := (below - here) * intensity

			i := out.PixOffset(x, y)
			out.Pix[i+0] = packNormal(dx)
			out.Pix[i+1] = packNormal(dy)
			out.Pix[i+2] = packNormal(1)
			out.Pix[i+3] = 0xff
		}
	}

	return out
}

// packNormal maps a normal component to a byte with mid-gray bias.
func packNormal(v float64) uint8 {
	return uint8(clamp01((v*2 + 1) * 0.5) * 255)
}

// applyRelief bakes the normal map's surface tilt into the base texture as a
// per-pixel brightness modulation against a fixed oblique light, faking fine
// relief without geometry or a fragment shader.
func applyRelief(base, normal *image.RGBA) *image.RGBA {
	b := base.Bounds()
	n := normal.Bounds()
	w, h := b.Dx(), b.Dy()
	if w != n.Dx() || h != n.Dy() {
		return base
	}

	const lx, ly, lz = -0.57735, -0.57735, 0.57735
	out := image.NewRGBA(image.Rect(0, 0, w, h))

	for i := 0; i+3 < len(base.Pix); i += 4 {
		nx := float64(normal.Pix[i+0])/127.5 - 1
		ny := float64(normal.Pix[i+1])/127.5 - 1
		nz := float64(normal.Pix[i+2])/127.5 - 1

		shade := clamp01(0.72 + 0.55*(nx*lx+ny*ly+nz*lz))
		out.Pix[i+0] = uint8(clamp01(float64(base.Pix[i+0])/255*shade) * 255)
		out.Pix[i+1] = uint8(clamp01(float64(base.Pix[i+1])/255*shade) * 255)
		out.Pix[i+2] = uint8(clamp01(float64(base.Pix[i+2])/255*shade) * 255)
		out.Pix[i+3] = base.Pix[i+3]
	}

	return out
}

// --- Material ---

// material owns the exoplanet's GPU-resident texture pair: the surface
// texture (with relief baked in) and its derived normal map. The pair is
// swapped in place at most once, when the background asset load resolves.
type material struct {
	texture   *ebiten.Image
	normalMap *ebiten.Image
	disposed  bool
}

// newFallbackMaterial builds the procedural substitute material used until
// (and unless) the external texture arrives.
func newFallbackMaterial(rng *rand.Rand) *material {
	base := synthesizeBaseTexture(rng, defaultTextureSize)
	return newMaterialFrom(base)
}

// newMaterialFrom derives the normal map from base, bakes relief, and
// uploads both images.
func newMaterialFrom(base *image.RGBA) *material {
	normal := synthesizeNormalMap(base, normalIntensity)
	return &material{
		texture:   ebiten.NewImageFromImage(applyRelief(base, normal)),
		normalMap: ebiten.NewImageFromImage(normal),
	}
}

// swap replaces the material's texture pair with one derived from src.
// No-op on a disposed material: a texture load resolving after engine
// teardown must not touch released resources.
func (m *material) swap(src image.Image) {
	if m.disposed || src == nil {
		return
	}
	base := rgbaImage(src)
	normal := synthesizeNormalMap(base, normalIntensity)

	old := [...]*ebiten.Image{m.texture, m.normalMap}
	m.texture = ebiten.NewImageFromImage(applyRelief(base, normal))
	m.normalMap = ebiten.NewImageFromImage(normal)
	for _, img := range old {
		if img != nil {
			img.Deallocate()
		}
	}
}

// dispose releases both GPU images. Safe to call more than once.
func (m *material) dispose() {
	if m.disposed {
		return
	}
	m.disposed = true
	if m.texture != nil {
		m.texture.Deallocate()
		m.texture = nil
	}
	if m.normalMap != nil {
		m.normalMap.Deallocate()
		m.normalMap = nil
	}
}

// --- Sprite synthesis helpers ---

// buildGlowImage uploads a soft radial falloff sprite used by glow
// billboards.
func buildGlowImage(diameter int, tint Color) *ebiten.Image {
	return ebiten.NewImageFromImage(glowRGBA(diameter, tint))
}

// glowRGBA renders the falloff: alpha fades quadratically from the center
// to zero at the rim. Pixels are premultiplied.
func glowRGBA(diameter int, tint Color) *image.RGBA {
	if diameter < 2 {
		diameter = 2
	}
	img := image.NewRGBA(image.Rect(0, 0, diameter, diameter))
	center := float64(diameter-1) / 2

	for y := 0; y < diameter; y++ {
		for x := 0; x < diameter; x++ {
			dx := (float64(x) - center) / center
			dy := (float64(y) - center) / center
			d := math.Sqrt(dx*dx + dy*dy)
			if d > 1 {
				continue
			}
			fall := (1 - d) * (1 - d)
			a := clamp01(fall * tint.A)
			i := img.PixOffset(x, y)
			img.Pix[i+0] = uint8(clamp01(tint.R*a) * 255)
			img.Pix[i+1] = uint8(clamp01(tint.G*a) * 255)
			img.Pix[i+2] = uint8(clamp01(tint.B*a) * 255)
			img.Pix[i+3] = uint8(a * 255)
		}
	}

	return img
}

// setPixel writes an opaque color into img at (x, y).
func setPixel(img *image.RGBA, x, y int, c colorful.Color) {
	i := img.PixOffset(x, y)
	img.Pix[i+0] = uint8(clamp01(c.R) * 255)
	img.Pix[i+1] = uint8(clamp01(c.G) * 255)
	img.Pix[i+2] = uint8(clamp01(c.B) * 255)
	img.Pix[i+3] = 0xff
}

// blendPixel alpha-blends c over img at (x, y).
func blendPixel(img *image.RGBA, x, y int, c colorful.Color, alpha float64) {
	if !(image.Point{x, y}).In(img.Bounds()) {
		return
	}
	i := img.PixOffset(x, y)
	img.Pix[i+0] = blendByte(img.Pix[i+0], c.R, alpha)
	img.Pix[i+1] = blendByte(img.Pix[i+1], c.G, alpha)
	img.Pix[i+2] = blendByte(img.Pix[i+2], c.B, alpha)
}

func blendByte(dst uint8, src, alpha float64) uint8 {
	v := float64(dst)/255*(1-alpha) + src*alpha
	return uint8(clamp01(v) * 255)
}

// rgbaImage converts any image.Image into an *image.RGBA with origin (0, 0).
func rgbaImage(src image.Image) *image.RGBA {
	if rgba, ok := src.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := src.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), src, b.Min, draw.Src)
	return out
}
