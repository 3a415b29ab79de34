// Package analysis inspects recorded trajectories.
//
// [PowerSpectrum] and [DominantFrequency] find the oscillation frequency of
// a sampled series, [Crossings] and [Period] measure it in the time domain,
// and [PhasePortrait] pairs a series with its finite-difference velocity.
// [PathASCII] draws any of these paths for the terminal.
//
//	f, ok := analysis.DominantFrequency(traj.Column("b0_y"), dt)
package analysis
