// Package viz renders blob fields in the terminal.
//
// [Player] is a Bubble Tea program that animates a stored realization as
// a colored heatmap, or as a line plot when the field has a single row.
// [Canvas] is a braille dot matrix for masks and line plots.
//
// # Key Bindings
//
//	Space  - Pause/Resume
//	R      - Restart
//	[ ]    - Step one frame
//	Arrows - Move the probe
//	Tab    - Toggle density/labels
//	T      - Cycle color themes
//	G      - Toggle GIF recording
//	?      - Show help overlay
package viz
