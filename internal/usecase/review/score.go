package review

import (
	"github.com/notnil/chess"

	"github.com/H0NEYP0T-466/ChessReviewEngine/internal/domain/analysis"
)

// NewFixedScore builds a white-viewpoint sample from a raw engine eval.
// Mate indicators are mapped onto a saturating centipawn magnitude so the
// classifier never sees a mate distance as a small integer.
func NewFixedScore(s analysis.EvalScore) analysis.ScoreSample {
	if s.Kind == analysis.ScoreMate {
		return analysis.ScoreSample{
			CP:          mateToCentipawns(s.Value),
			Perspective: analysis.FixedWhite,
			FromMate:    true,
		}
	}
	return analysis.ScoreSample{CP: s.Value, Perspective: analysis.FixedWhite}
}

func mateToCentipawns(distance int) int {
	if distance > 0 {
		return maxScoreMagnitude - 10*distance
	}
	return -maxScoreMagnitude - 10*distance
}

// ToMover re-expresses a white-viewpoint sample from the mover's side.
func ToMover(s analysis.ScoreSample, mover chess.Color) analysis.ScoreSample {
	out := s
	out.Perspective = analysis.MoverPerspective
	if mover == chess.Black {
		out.CP = -s.CP
	}
	return out
}

// MateDelivered is the terminal sample for a ply that checkmates: the best
// possible outcome regardless of what the raw numbers said.
func MateDelivered() analysis.ScoreSample {
	return analysis.ScoreSample{
		CP:          maxScoreMagnitude,
		Perspective: analysis.MoverPerspective,
		FromMate:    true,
	}
}

// NewLossMetrics derives both loss flavors from two mover-perspective
// samples. Both values are clamped at zero.
func NewLossMetrics(best, played analysis.ScoreSample) analysis.LossMetrics {
	loss := best.CP - played.CP
	if loss < 0 {
		loss = 0
	}
	wpl := WinProbability(best.CP) - WinProbability(played.CP)
	if wpl < 0 {
		wpl = 0
	}
	return analysis.LossMetrics{ScoreLoss: loss, WinProbLoss: wpl}
}
