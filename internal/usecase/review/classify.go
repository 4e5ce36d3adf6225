package review

import (
	"github.com/notnil/chess"

	"github.com/H0NEYP0T-466/ChessReviewEngine/internal/domain/analysis"
)

const (
	// Above this magnitude the game is considered decided ("garbage time")
	// and fine-grained praise is suppressed.
	garbageTimeThreshold = 700

	// A brilliancy may not actually throw material away.
	brilliantLossBound = 50

	// Win-probability tolerance for a move to still count as book theory.
	theoryTolerance = 0.02
)

// ClassificationMemory carries, per player, the label assigned to that
// player's most recent ply. It lives for exactly one game analysis and is
// updated once per ply, after the label is decided.
type ClassificationMemory struct {
	white analysis.Classification
	black analysis.Classification
}

func (m *ClassificationMemory) Previous(c chess.Color) analysis.Classification {
	if c == chess.White {
		return m.white
	}
	return m.black
}

func (m *ClassificationMemory) Record(c chess.Color, label analysis.Classification) {
	if c == chess.White {
		m.white = label
	} else {
		m.black = label
	}
}

// MoveContext gathers everything the decision procedure needs for one ply.
type MoveContext struct {
	Loss             analysis.LossMetrics
	IsEngineBest     bool
	DeliversMate     bool
	AllowsMateInOne  bool
	GarbageTime      bool
	Opening          bool
	Pattern          PatternTag
	OwnPrevious      analysis.Classification
	OpponentPrevious analysis.Classification
}

// Classify runs the decision ladder. The rule order matters: earlier rules
// take precedence over everything below them.
func Classify(mc MoveContext) analysis.Classification {
	// A winning mate is never penalized, whatever the raw deltas say.
	if mc.DeliversMate {
		return analysis.ClassBest
	}
	if mc.AllowsMateInOne {
		return analysis.ClassBlunder
	}
	if mc.IsEngineBest && !mc.GarbageTime && mc.Pattern != PatternNone && mc.Loss.ScoreLoss <= brilliantLossBound {
		return analysis.ClassBrilliant
	}
	// Sequential memory: the strongest continuation after one's own
	// brilliancy, or after the opponent stumbled, earns "great".
	if mc.IsEngineBest && !mc.Opening && !mc.GarbageTime {
		if mc.OwnPrevious == analysis.ClassBrilliant || wasPunishable(mc.OpponentPrevious) {
			return analysis.ClassGreat
		}
	}
	if mc.Opening && mc.Loss.WinProbLoss < theoryTolerance {
		return analysis.ClassTheory
	}
	if mc.IsEngineBest {
		return analysis.ClassBest
	}

	pct := mc.Loss.WinProbLoss * 100
	if mc.GarbageTime {
		// Coarse bands only: once the game is decided, "great" and
		// "brilliant" spam is not meaningful.
		switch {
		case pct <= 2:
			return analysis.ClassExcellent
		case pct <= 10:
			return analysis.ClassGood
		default:
			return analysis.ClassInaccuracy
		}
	}

	switch {
	case pct <= 1:
		return analysis.ClassBest
	case pct <= 2:
		return analysis.ClassExcellent
	case pct <= 5:
		return analysis.ClassGreat
	case pct <= 10:
		return analysis.ClassGood
	case pct <= 20:
		return analysis.ClassInaccuracy
	case pct <= 30:
		return analysis.ClassMistake
	default:
		return analysis.ClassBlunder
	}
}

func wasPunishable(c analysis.Classification) bool {
	return c == analysis.ClassInaccuracy || c == analysis.ClassMistake || c == analysis.ClassBlunder
}
