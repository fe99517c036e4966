// Package viz is the terminal front end: a braille wireframe of the cloth
// that can be grabbed and dragged with the mouse.
//
// # Key Bindings
//
//	Mouse    - press to grab, drag to move, release to let go
//	Space    - Pause/Resume
//	R        - Rebuild the demo
//	Arrows   - Orbit the camera
//	+/-      - Zoom
//	P        - Toggle release policy (unpin / keep)
//	T        - Cycle color themes
//	G        - Toggle GIF recording
//	?        - Show help overlay
package viz
