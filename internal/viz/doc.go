// Package viz renders a running world in the terminal.
//
// [Model] is a Bubble Tea program that steps a world built by a [Factory]
// and draws balls, cuboids, joints and contact points on a braille
// [Canvas]. A side panel shows the clock, an energy chart and the pipeline
// counters. The last frames are kept so the run can be replayed.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	N     - Single step
//	R     - Rebuild the scene
//	[ ]   - Replay history
//	Tab   - Select the next tracked body
//	D     - Remove the selected body
//	C     - Remove the selected body's first collider
//	I     - Kick the selected body upwards
//	T     - Cycle color themes
//	?     - Show help overlay
package viz
