package ranking

import (
	"github.com/voleai/padelpro/internal/config"
	"github.com/voleai/padelpro/internal/padel"
)

// PointsFormula decides how many points a win is worth. The exact curve is
// tour business logic, so it is a strategy rather than hard-coded math.
type PointsFormula interface {
	// Points returns the winner's gain given the tournament category and
	// both subjects' rolling totals at the match date.
	Points(category padel.Category, winnerPts, loserPts float64) float64
}

// StrengthScaledFormula awards base(category) scaled by an opponent-strength
// multiplier: beating an equally rated opponent pays the base exactly,
// beating a stronger one pays more, a weaker one less, clamped to
// [MinMultiplier, MaxMultiplier].
type StrengthScaledFormula struct {
	Base          map[padel.Category]float64
	DefaultBase   float64
	MinMultiplier float64
	MaxMultiplier float64
}

// NewFormula builds the default strength-scaled formula from configuration.
func NewFormula(cfg config.RankingConfig) *StrengthScaledFormula {
	return &StrengthScaledFormula{
		Base:          cfg.BasePoints,
		DefaultBase:   cfg.BasePoints[padel.CategoryP2],
		MinMultiplier: cfg.MinMultiplier,
		MaxMultiplier: cfg.MaxMultiplier,
	}
}

func (f *StrengthScaledFormula) Points(category padel.Category, winnerPts, loserPts float64) float64 {
	base, ok := f.Base[category]
	if !ok {
		base = f.DefaultBase
	}
	return base * f.multiplier(winnerPts, loserPts)
}

func (f *StrengthScaledFormula) multiplier(winnerPts, loserPts float64) float64 {
	switch {
	case winnerPts <= 0 && loserPts <= 0:
		// Neither subject has rated history yet.
		return 1.0
	case winnerPts <= 0:
		// Unrated winner beating a rated opponent: maximum upset credit.
		return f.MaxMultiplier
	}
	m := 0.5 + 0.5*loserPts/winnerPts
	if m < f.MinMultiplier {
		m = f.MinMultiplier
	}
	if m > f.MaxMultiplier {
		m = f.MaxMultiplier
	}
	return m
}
