package orrery

import (
	"bytes"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
	"golang.org/x/image/font/gofont/goregular"
)

// Label timing. The three phases sum to the label's total on-screen life;
// the orbit transition is scheduled against these in cinematic.go.
const (
	labelFadeIn  = 0.9
	labelHold    = 2.6
	labelFadeOut = 1.7

	labelText     = "Kepler-452b"
	labelFontSize = 36.0
)

var labelFaceSource *text.GoTextFaceSource

// labelFace returns a face over the embedded Go Regular font, parsing it on
// first use. The font ships with the binary, so a parse failure is a
// programming error, not a runtime condition.
func labelFace(size float64) *text.GoTextFace {
	if labelFaceSource == nil {
		src, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
		if err != nil {
			panic("orrery: parse embedded label font: " + err.Error())
		}
		labelFaceSource = src
	}
	return &text.GoTextFace{Source: labelFaceSource, Size: size}
}

// label is the timed on-screen title shown when the camera zoom completes:
// fade/scale in, hold, fade/scale out, then it deactivates for good. It is a
// pure overlay; it never affects camera motion.
type label struct {
	str  string
	face *text.GoTextFace

	alpha *gween.Sequence
	scale *gween.Sequence

	curAlpha float64
	curScale float64
	active   bool
}

func newLabel(str string) *label {
	return &label{str: str, face: labelFace(labelFontSize)}
}

// show starts the display sequence from the beginning.
func (l *label) show() {
	l.alpha = gween.NewSequence(
		gween.New(0, 1, labelFadeIn, ease.OutQuad),
		gween.New(1, 1, labelHold, ease.Linear),
		gween.New(1, 0, labelFadeOut, ease.InQuad),
	)
	l.scale = gween.NewSequence(
		gween.New(0.85, 1, labelFadeIn, ease.OutQuad),
		gween.New(1, 1, labelHold, ease.Linear),
		gween.New(1, 0.92, labelFadeOut, ease.InQuad),
	)
	l.curAlpha = 0
	l.curScale = 0.85
	l.active = true
}

// update advances the envelopes. After the fade-out completes the label
// deactivates and draws nothing further.
func (l *label) update(dt float64) {
	if !l.active {
		return
	}
	a, _, done := l.alpha.Update(float32(dt))
	s, _, _ := l.scale.Update(float32(dt))
	l.curAlpha = float64(a)
	l.curScale = float64(s)
	if done {
		l.active = false
	}
}

// visible reports whether the label currently draws.
func (l *label) visible() bool {
	return l.active
}

// draw renders the label centered horizontally in the lower third of dst.
func (l *label) draw(dst *ebiten.Image) {
	if !l.active || l.curAlpha <= 0 {
		return
	}

	bounds := dst.Bounds()
	cx := float64(bounds.Dx()) / 2
	cy := float64(bounds.Dy()) * 0.78

	w, h := text.Measure(l.str, l.face, l.face.Size*1.2)

	op := &text.DrawOptions{}
	op.GeoM.Translate(-w/2, -h/2)
	op.GeoM.Scale(l.curScale, l.curScale)
	op.GeoM.Translate(cx, cy)
	op.ColorScale.ScaleAlpha(float32(l.curAlpha))
	text.Draw(dst, l.str, l.face, op)
}
