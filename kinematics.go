package orrery

// Motion rates. orbitRateScale damps every body's nominal angular speed so
// orbits read as slow ambient motion; the drift rates rotate the whole
// system for parallax.
const (
	orbitRateScale   = 0.25
	selfWobbleRatio  = 0.1
	systemDriftRateY = 0.02
	systemDriftRateX = 0.008
)

// advanceSystem steps every body's orbit and self-rotation by dt seconds and
// applies the accumulated angles to the scene nodes. Bodies are mutually
// independent; the only state carried across calls is the angle accumulators.
func advanceSystem(s *solarSystem, dt float64) {
	for _, b := range s.Bodies {
		b.OrbitAngle += dt * b.AngularSpeed * orbitRateScale
		b.Pivot.SetRotationY(b.OrbitAngle)

		b.SelfAngle += dt * b.SelfSpeed
		// Secondary wobble at one tenth the spin rate, about X.
		b.Mesh.SetRotation(b.SelfAngle*selfWobbleRatio, b.SelfAngle, 0)
	}

	s.driftX += dt * systemDriftRateX
	s.driftY += dt * systemDriftRateY
	s.Root.SetRotation(s.driftX, s.driftY, 0)
}

// advanceExoplanet spins the subject in place at its fixed rate, independent
// of the system bodies. Yaw only, so the axial tilt set at construction holds.
func advanceExoplanet(e *exoplanet, dt float64) {
	e.Spin += dt * exoplanetSpinRate
	e.Node.SetRotationY(e.Spin)
}

// advanceStarDrift rotates the star field root as a rigid whole.
func advanceStarDrift(starRoot *Node, dt float64) {
	starRoot.SetRotationY(starRoot.Rotation.Y() + dt*starDriftRate)
}
