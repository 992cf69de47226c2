// Package viz draws cloth bodies in the terminal.
//
// A [Camera] projects world points orthographically for one of the named
// [View]s, [Fit] frames them into a pixel rectangle and a [Scene] draws the
// structural links, sphere colliders and ground footprint onto a braille
// [Canvas]. The same projection backs the SVG and PNG exporters.
//
// [Model] is a Bubble Tea program that steps a body at a fixed rate and
// shows the mesh next to a metrics panel. [NewPicker] wraps it with a
// scenario menu.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	S     - Single step while paused
//	R     - Rebuild the cloth
//	V     - Cycle views
//	Tab   - Select parameter, Up/Down to scale it
//	T     - Cycle color themes
//	G     - Toggle GIF recording
//	?     - Show help overlay
package viz
