// Package analysis provides statistics of realized fields.
//
// The package includes:
//
//   - [TimeAverage] and [RowProfile]: mean field and mean x profile over time
//   - [AnalyticalProfile]: closed-form mean profile of a 1-D exponential pulse train
//   - [FitDecayLength]: e-folding length of a profile by log-linear regression
//   - [ComputeMoments]: mean, spread, skewness, flatness and intermittency of a series
//   - [PowerSpectrum]: one-sided power spectral density of a series
//   - [Histogram]: normalized amplitude distribution of a series
//
// # Drainage check
//
// A one-dimensional realization with constant velocity and amplitude should
// reproduce the analytical drainage profile:
//
//	got := analysis.RowProfile(r.Density, 0)
//	want := analysis.AnalyticalProfile(r.Grid.X, params)
//	err := analysis.MeanAbsError(got, want)
package analysis
