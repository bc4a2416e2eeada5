package orrery

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/tanema/gween/ease"
)

// CameraMode identifies the cinematic state machine's current state.
// Transitions are one-directional: Idle → ZoomingIn → Orbiting.
type CameraMode uint8

const (
	CameraIdle CameraMode = iota
	CameraZoomingIn
	CameraOrbiting
)

func (m CameraMode) String() string {
	switch m {
	case CameraIdle:
		return "idle"
	case CameraZoomingIn:
		return "zooming-in"
	case CameraOrbiting:
		return "orbiting"
	default:
		return "unknown"
	}
}

// Cinematic choreography constants. The zoom starts from the idle pose and
// ends on the orbit circle; the orbit transition fires a fixed interval
// after the zoom completes, timed to land shortly after the label's hold
// phase ends.
const (
	startupDelay = 2.0 // seconds in Idle before the zoom begins
	zoomDuration = 6.0

	zoomStartRadius  = 26.0
	zoomStartHeight  = 7.0
	zoomStartAzimuth = 0.0
	zoomSweep        = math.Pi / 4

	orbitRadius          = 4.6
	orbitHeight          = 1.5
	orbitRate            = 0.12 // rad/s azimuth advance while orbiting
	bobAmplitude         = 0.35
	bobFrequency         = 2.0
	orbitTransitionDelay = 3.8 // seconds after zoom end
)

// idlePose is the wide establishing position; identical to the zoom's start
// pose so the Idle → ZoomingIn handoff is seamless.
var idlePose = mgl64.Vec3{zoomStartRadius * math.Sin(zoomStartAzimuth), zoomStartHeight, zoomStartRadius * math.Cos(zoomStartAzimuth)}

// cinematicState is the camera state machine's full mutable state. Elapsed
// counts time within the current mode and is discarded on transition;
// Azimuth only accumulates while orbiting.
type cinematicState struct {
	Mode     CameraMode
	Elapsed  float64
	Duration float64 // zoom duration; zero means the zoom completes instantly
	Azimuth  float64
}

// newCinematicState returns the initial Idle state.
func newCinematicState() cinematicState {
	return cinematicState{Mode: CameraIdle, Duration: zoomDuration}
}

// stepCinematic advances the state machine by dt seconds and returns the new
// state. Pure: no camera or scene access, so the transition logic is
// testable in isolation from rendering.
//
// A single oversized dt (a long suspend) may cross several transitions at
// once: the branches run in sequence, with the Idle handoff carrying its
// leftover time into the zoom.
func stepCinematic(s cinematicState, dt float64) cinematicState {
	s.Elapsed += dt

	if s.Mode == CameraIdle && s.Elapsed >= startupDelay {
		s.Mode = CameraZoomingIn
		s.Elapsed -= startupDelay
	}
	if s.Mode == CameraZoomingIn && s.Elapsed >= s.Duration+orbitTransitionDelay {
		s.Mode = CameraOrbiting
		s.Elapsed = 0
		s.Azimuth = zoomStartAzimuth + zoomSweep
	}
	if s.Mode == CameraOrbiting {
		s.Azimuth += dt * orbitRate
	}

	return s
}

// zoomProgress returns the clamped zoom time fraction t in [0, 1]. A zero or
// negative duration yields 1 immediately, so a degenerate zoom applies the
// terminal pose on its first frame instead of animating through invalid
// states.
func zoomProgress(s cinematicState) float64 {
	if s.Mode != CameraZoomingIn {
		if s.Mode == CameraOrbiting {
			return 1
		}
		return 0
	}
	if s.Duration <= 0 {
		return 1
	}
	return clamp01(s.Elapsed / s.Duration)
}

// zoomCompleted reports whether the zoom-in has reached its end pose.
func zoomCompleted(s cinematicState) bool {
	return s.Mode == CameraOrbiting || (s.Mode == CameraZoomingIn && zoomProgress(s) >= 1)
}

// easeZoom maps the zoom time fraction through a symmetric quadratic
// ease-in/ease-out. t must already be clamped to [0, 1].
func easeZoom(t float64) float64 {
	return float64(ease.InOutQuad(float32(t), 0, 1, 1))
}

// orbitPose returns the camera position for a given orbit azimuth. The
// vertical bob is a sinusoid of azimuth rather than wall-clock time, phased
// so that it is zero where the zoom hands over.
func orbitPose(azimuth float64) mgl64.Vec3 {
	y := orbitHeight + bobAmplitude*math.Sin((azimuth-(zoomStartAzimuth+zoomSweep))*bobFrequency)
	return azimuthPosition(orbitRadius, azimuth, y)
}

// zoomEndPose is the analytically computed terminal pose of the zoom,
// identical to orbitPose at the handover azimuth.
func zoomEndPose() mgl64.Vec3 {
	return azimuthPosition(orbitRadius, zoomStartAzimuth+zoomSweep, orbitHeight)
}

// applyCinematicPose positions and aims the camera for the given state. Side
// effects are confined here; stepCinematic never touches the camera. The
// camera re-aims at the world origin every call, so any stray placement
// still frames the subject.
func applyCinematicPose(s cinematicState, cam *Camera) {
	switch s.Mode {
	case CameraIdle:
		cam.MoveTo(idlePose)

	case CameraZoomingIn:
		t := zoomProgress(s)
		if t >= 1 {
			// Snap to the exact end pose rather than trusting the
			// eased interpolation's final step.
			cam.MoveTo(zoomEndPose())
		} else {
			k := easeZoom(t)
			radius := zoomStartRadius + (orbitRadius-zoomStartRadius)*k
			height := zoomStartHeight + (orbitHeight-zoomStartHeight)*k
			azimuth := zoomStartAzimuth + zoomSweep*k
			cam.MoveTo(azimuthPosition(radius, azimuth, height))
		}

	case CameraOrbiting:
		cam.MoveTo(orbitPose(s.Azimuth))
	}

	cam.LookAt(mgl64.Vec3{0, 0, 0})
}

// azimuthPosition converts polar camera coordinates to a world position.
// Azimuth zero looks down the +Z axis toward the origin.
func azimuthPosition(radius, azimuth, y float64) mgl64.Vec3 {
	return mgl64.Vec3{radius * math.Sin(azimuth), y, radius * math.Cos(azimuth)}
}
