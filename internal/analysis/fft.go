package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// PowerSpectrum returns the one-sided power spectrum of a signal sampled
// every dt. The mean is removed and the signal zero-padded to a power of
// two. freqs[k] is in Hz.
func PowerSpectrum(signal []float64, dt float64) (freqs, power []float64) {
	if len(signal) < 2 || !(dt > 0) {
		return nil, nil
	}
	n := 1
	for n < len(signal) {
		n <<= 1
	}
	var mean float64
	for _, v := range signal {
		mean += v
	}
	mean /= float64(len(signal))

	padded := make([]float64, n)
	for i, v := range signal {
		padded[i] = v - mean
	}
	spec := fft.FFTReal(padded)

	half := n/2 + 1
	freqs = make([]float64, half)
	power = make([]float64, half)
	for k := 0; k < half; k++ {
		freqs[k] = float64(k) / (float64(n) * dt)
		a := cmplx.Abs(spec[k])
		power[k] = a * a / float64(n)
	}
	return freqs, power
}

// DominantFrequency is the non-DC frequency with the most power, refined by
// parabolic interpolation between neighbouring bins. It returns 0 for a
// flat signal.
func DominantFrequency(signal []float64, dt float64) float64 {
	freqs, power := PowerSpectrum(signal, dt)
	if len(power) < 2 {
		return 0
	}
	best := 1
	for k := 2; k < len(power); k++ {
		if power[k] > power[best] {
			best = k
		}
	}
	if power[best] <= 1e-24 {
		return 0
	}
	f := freqs[best]
	if best > 0 && best < len(power)-1 {
		a, b, c := power[best-1], power[best], power[best+1]
		if den := a - 2*b + c; den != 0 {
			shift := 0.5 * (a - c) / den
			if math.Abs(shift) <= 0.5 {
				f += shift * (freqs[1] - freqs[0])
			}
		}
	}
	return f
}
