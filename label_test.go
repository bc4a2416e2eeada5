package orrery

import "testing"

func TestLabelInactiveUntilShow(t *testing.T) {
	l := newLabel("test")
	if l.visible() {
		t.Error("label should start hidden")
	}
	// Updating a never-shown label is a no-op.
	l.update(1)
	if l.visible() {
		t.Error("update should not activate a hidden label")
	}
}

func TestLabelShowStartsEnvelope(t *testing.T) {
	l := newLabel("test")
	l.show()
	if !l.visible() {
		t.Fatal("label should be visible after show")
	}
	assertNearTol(t, "initial alpha", l.curAlpha, 0, 1e-6)
	assertNearTol(t, "initial scale", l.curScale, 0.85, 1e-6)
}

func TestLabelEnvelopeProgression(t *testing.T) {
	l := newLabel("test")
	l.show()

	// Mid fade-in.
	l.update(0.45)
	if l.curAlpha <= 0 || l.curAlpha >= 1 {
		t.Errorf("mid fade-in alpha = %f, want in (0, 1)", l.curAlpha)
	}
	if l.curScale <= 0.85 || l.curScale > 1 {
		t.Errorf("mid fade-in scale = %f, want in (0.85, 1]", l.curScale)
	}

	// Into the hold: fully opaque at natural size.
	l.update(1.0)
	assertNearTol(t, "hold alpha", l.curAlpha, 1, 1e-3)
	assertNearTol(t, "hold scale", l.curScale, 1, 1e-3)

	// Into the fade-out: dimming but still visible.
	l.update(2.5)
	if l.curAlpha <= 0 || l.curAlpha >= 0.999 {
		t.Errorf("fade-out alpha = %f, want in (0, 1)", l.curAlpha)
	}
	if !l.visible() {
		t.Error("label should stay visible during fade-out")
	}

	// Past the end: deactivated for good.
	l.update(1.5)
	if l.visible() {
		t.Error("label should deactivate after the fade-out")
	}
	assertNearTol(t, "final alpha", l.curAlpha, 0, 1e-3)

	l.update(1)
	if l.visible() {
		t.Error("finished label should stay hidden")
	}
}

func TestLabelTotalLifetime(t *testing.T) {
	// The three phases are tuned to a 5.2 second on-screen life; the orbit
	// handoff in the cinematic timing leans on this.
	assertNear(t, "lifetime", labelFadeIn+labelHold+labelFadeOut, 5.2)

	l := newLabel("test")
	l.show()
	for i := 0; i < 60; i++ {
		l.update(0.1)
	}
	if l.visible() {
		t.Error("label should be gone after 6 seconds of updates")
	}
}

func TestLabelShowRestarts(t *testing.T) {
	l := newLabel("test")
	l.show()
	for i := 0; i < 80; i++ {
		l.update(0.1)
	}
	if l.visible() {
		t.Fatal("label should have finished")
	}

	l.show()
	if !l.visible() {
		t.Error("show should restart a finished label")
	}
	assertNearTol(t, "restarted alpha", l.curAlpha, 0, 1e-6)
}
