// Package orrery renders a real-time 3D exoplanet scene with [Ebitengine]:
// a colored star field, a multi-body planetary system with orbit rings and
// a glowing sun, and a single highlighted exoplanet that a scripted
// cinematic camera zooms in on and then orbits indefinitely.
//
// The renderer is a software-projection pipeline over Ebitengine's 2D draw
// primitives: spheres and rings are projected per vertex, depth-sorted far
// to near, and submitted as triangles; stars draw as perspective-scaled
// points. There is no user camera control; the choreography is fixed.
//
// # Quick start
//
// The simplest way to get started is [Run], which creates a window and game
// loop for you:
//
//	e := orrery.New(1280, 720)
//	if err := orrery.Run(e, orrery.RunConfig{Title: "Orrery"}); err != nil {
//		log.Fatal(err)
//	}
//
// For full control, [Engine] implements [ebiten.Game], so it can be handed
// to ebiten.RunGame directly or embedded in a larger game:
//
//	e := orrery.New(1280, 720)
//	defer e.Dispose()
//	if err := ebiten.RunGame(e); err != nil {
//		log.Fatal(err)
//	}
//
// # Scene
//
// The scene is built once at construction from fixed descriptors. Nodes
// form an ownership tree (system group → orbit pivot → body mesh); a parent
// exclusively owns its children, and [Engine.Dispose] releases the whole
// scene exactly once no matter how often it is called.
//
// The exoplanet's surface texture is loaded asynchronously from
// assets/exoplanet.jpg. Until the load resolves (and permanently, if it
// fails) the engine renders a procedurally synthesized substitute texture
// with a derived normal map.
//
// [Ebitengine]: https://ebitengine.org
package orrery
