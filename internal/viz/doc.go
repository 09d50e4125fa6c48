// Package viz renders a running minimization in the terminal.
//
// [Model] is a Bubble Tea program that advances a minimizer on every tick
// and draws the particles on a braille [Canvas] next to an energy chart.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	N     - Single step while paused
//	+/-   - More/fewer steps per frame
//	R     - Restart from the initial configuration
//	T     - Cycle color themes
//	?     - Show help overlay
//	Q     - Quit
package viz
