// Package analysis post-processes cloth runs:
//
//   - [PowerSpectrum] and [DominantFrequency]: oscillation of a sampled signal
//   - [PhasePortrait]: position against velocity for one particle axis
//   - [Convergence]: error of an iterative solver against the direct solve
//   - [Sweep]: a metric as a function of one config parameter
package analysis
