package review

import "math"

const maxScoreMagnitude = 10000

// WinProbability maps a mover-perspective centipawn score onto [0,1] with a
// logistic curve. Symmetric: WinProbability(cp) + WinProbability(-cp) == 1.
func WinProbability(cp int) float64 {
	if cp > maxScoreMagnitude {
		cp = maxScoreMagnitude
	} else if cp < -maxScoreMagnitude {
		cp = -maxScoreMagnitude
	}
	return 1 / (1 + math.Exp(-0.004*float64(cp)))
}
