package analysis

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

// PowerSpectrum returns the one-sided power spectral density of a series
// sampled every dt, with its mean removed. Frequencies are in cycles per
// unit time.
func PowerSpectrum(series []float64, dt float64) (freq, psd []float64) {
	n := len(series)
	if n < 2 || dt <= 0 {
		return nil, nil
	}

	mean := stat.Mean(series, nil)
	centered := make([]float64, n)
	for i, v := range series {
		centered[i] = v - mean
	}

	fft := fourier.NewFFT(n)
	coeff := fft.Coefficients(nil, centered)

	freq = make([]float64, len(coeff))
	psd = make([]float64, len(coeff))
	norm := dt / float64(n)
	for k, c := range coeff {
		freq[k] = fft.Freq(k) / dt
		p := cmplx.Abs(c)
		psd[k] = p * p * norm
		// Fold the negative frequencies, except DC and Nyquist.
		if k > 0 && !(n%2 == 0 && k == n/2) {
			psd[k] *= 2
		}
	}
	return freq, psd
}
