// Package render is the boundary between the simulation core and the
// graphics layer.
//
// The core never issues draw calls itself. It talks to the graphics layer
// through a small set of services:
//
//   - [Camera]: view and projection matrices, world/screen conversion
//   - [PickPass]: off-screen id pass used to resolve a pointer to a particle
//   - [Mesh]: flat vertex position and normal buffers of the cloth
//   - [Renderer]: opaque "draw with shader X, input Y, count Z" dispatch
//
// The pick pass is rasterised in software into an [image.RGBA] target, each
// face filled with its id encoded in the colour channels, so picking works
// the same headless, in the terminal view and behind a real GL renderer.
package render
