package train

import (
	"math"
	"slices"
	"sort"
)

// SPResolution is the threshold step used by SP.
const SPResolution = 0.001

// SP returns the maximum normalized sum-product index of a two-class
// discriminator.
//
// For every threshold λ from noiseTarget up to signalTarget in steps of
// SPResolution, the signal efficiency ε_s is the fraction of signal outputs
// at or above λ and the noise efficiency ε_n the fraction of noise outputs
// below it. SP is the largest ((ε_s+ε_n)/2)·sqrt(ε_s·ε_n) found, 1 for a
// perfect separation. Returns 0 when either class is empty or the targets
// leave no threshold to sweep.
func SP(signal, noise []float64, signalTarget, noiseTarget float64) float64 {
	if len(signal) == 0 || len(noise) == 0 {
		return 0
	}
	sig := slices.Clone(signal)
	nse := slices.Clone(noise)
	slices.Sort(sig)
	slices.Sort(nse)

	nSig, nNoise := float64(len(sig)), float64(len(nse))
	best := 0.0
	for k := 0; ; k++ {
		pos := noiseTarget + float64(k)*SPResolution
		if pos >= signalTarget {
			break
		}
		// SearchFloat64s returns the first index with value >= pos.
		sigEffic := float64(len(sig)-sort.SearchFloat64s(sig, pos)) / nSig
		noiseEffic := float64(sort.SearchFloat64s(nse, pos)) / nNoise

		sp := ((sigEffic + noiseEffic) / 2) * math.Sqrt(sigEffic*noiseEffic)
		if sp > best {
			best = sp
		}
	}
	return best
}
