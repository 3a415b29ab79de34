package analysis

import (
	"math"
	"math/cmplx"
)

// NextPow2 returns the smallest power of two not below n.
func NextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// fft is a recursive radix-2 transform. len(data) must be a power of two.
func fft(data []complex128) []complex128 {
	n := len(data)
	if n <= 1 {
		return append([]complex128(nil), data...)
	}

	even := make([]complex128, n/2)
	odd := make([]complex128, n/2)
	for i := 0; i < n/2; i++ {
		even[i] = data[2*i]
		odd[i] = data[2*i+1]
	}
	fe, fo := fft(even), fft(odd)

	out := make([]complex128, n)
	for k := 0; k < n/2; k++ {
		w := cmplx.Exp(complex(0, -2*math.Pi*float64(k)/float64(n))) * fo[k]
		out[k] = fe[k] + w
		out[k+n/2] = fe[k] - w
	}
	return out
}

// PowerSpectrum returns the magnitude of the first half of the spectrum of
// samples after removing their mean and zero padding to a power of two.
func PowerSpectrum(samples []float64) []float64 {
	if len(samples) == 0 {
		return nil
	}
	mean := 0.0
	for _, v := range samples {
		mean += v
	}
	mean /= float64(len(samples))

	padded := make([]complex128, NextPow2(len(samples)))
	for i, v := range samples {
		padded[i] = complex(v-mean, 0)
	}

	spectrum := fft(padded)
	ps := make([]float64, len(spectrum)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}
	return ps
}

// DominantFrequency returns the frequency in Hz of the strongest non-zero
// bin for samples taken every dt seconds. It reports false for a flat
// series.
func DominantFrequency(samples []float64, dt float64) (float64, bool) {
	ps := PowerSpectrum(samples)
	best, idx := 0.0, 0
	for i := 1; i < len(ps); i++ {
		if ps[i] > best {
			best, idx = ps[i], i
		}
	}
	if idx == 0 || best < 1e-12 {
		return 0, false
	}
	return float64(idx) / (float64(2*len(ps)) * dt), true
}
