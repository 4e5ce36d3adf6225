package review

import "math"

const defaultAccuracyK = 120

// Accuracy folds per-move centipawn losses into a single (0,100] score via
// exponential decay. An empty list scores a perfect 100.
func Accuracy(losses []int, k float64) float64 {
	if len(losses) == 0 {
		return 100
	}
	if k <= 0 {
		k = defaultAccuracyK
	}
	total := 0.0
	for _, loss := range losses {
		if loss < 0 {
			loss = -loss
		}
		total += 100 * math.Exp(-float64(loss)/k)
	}
	return round2(total / float64(len(losses)))
}

// MoveAccuracy scores a single ply on the same scale.
func MoveAccuracy(loss int, k float64) float64 {
	return Accuracy([]int{loss}, k)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
