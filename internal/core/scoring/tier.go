package scoring

import "tanda-xntrust/internal/core/domain"

// Thresholds holds the minimum score for each tier above Critical.
// Boundaries are policy and come from configuration.
type Thresholds struct {
	Elite     float64
	Excellent float64
	Good      float64
	Fair      float64
	Poor      float64
}

// DefaultThresholds returns the standard tier boundaries.
func DefaultThresholds() Thresholds {
	return Thresholds{Elite: 88, Excellent: 75, Good: 60, Fair: 45, Poor: 25}
}

// ResolveTier maps a score to its tier. Transitions are purely score-driven;
// there is no hysteresis.
func ResolveTier(score float64, t Thresholds) domain.Tier {
	switch {
	case score >= t.Elite:
		return domain.TierElite
	case score >= t.Excellent:
		return domain.TierExcellent
	case score >= t.Good:
		return domain.TierGood
	case score >= t.Fair:
		return domain.TierFair
	case score >= t.Poor:
		return domain.TierPoor
	default:
		return domain.TierCritical
	}
}

// ScoreFloor returns the minimum score of a tier (0 for Critical).
func ScoreFloor(tier domain.Tier, t Thresholds) float64 {
	switch tier {
	case domain.TierElite:
		return t.Elite
	case domain.TierExcellent:
		return t.Excellent
	case domain.TierGood:
		return t.Good
	case domain.TierFair:
		return t.Fair
	case domain.TierPoor:
		return t.Poor
	default:
		return 0
	}
}

// benefits per tier. Critical blocks new circle joins entirely until the
// score recovers; only the top two tiers may vouch.
var tierBenefits = map[domain.Tier]domain.TierBenefits{
	domain.TierElite: {
		PayoutSlotFloor:      1,
		EarlyWithdrawFeePct:  1.0,
		OnTimeBonusPct:       2.0,
		AdvanceCeiling:       2000,
		CanVouch:             true,
		MaxConcurrentVouches: 5,
		MaxPointsPerVouch:    10,
		CanJoinCircles:       true,
	},
	domain.TierExcellent: {
		PayoutSlotFloor:      2,
		EarlyWithdrawFeePct:  2.0,
		OnTimeBonusPct:       1.5,
		AdvanceCeiling:       1000,
		CanVouch:             true,
		MaxConcurrentVouches: 3,
		MaxPointsPerVouch:    5,
		CanJoinCircles:       true,
	},
	domain.TierGood: {
		PayoutSlotFloor:     3,
		EarlyWithdrawFeePct: 3.5,
		OnTimeBonusPct:      1.0,
		AdvanceCeiling:      500,
		CanJoinCircles:      true,
	},
	domain.TierFair: {
		PayoutSlotFloor:     5,
		EarlyWithdrawFeePct: 5.0,
		OnTimeBonusPct:      0.5,
		AdvanceCeiling:      200,
		CanJoinCircles:      true,
	},
	domain.TierPoor: {
		PayoutSlotFloor:     8,
		EarlyWithdrawFeePct: 7.5,
		AdvanceCeiling:      0,
		CanJoinCircles:      true,
	},
	domain.TierCritical: {
		PayoutSlotFloor:     0,
		EarlyWithdrawFeePct: 10.0,
		AdvanceCeiling:      0,
		CanJoinCircles:      false,
	},
}

// BenefitsFor returns the fixed benefits record for a tier.
func BenefitsFor(tier domain.Tier) domain.TierBenefits {
	return tierBenefits[tier]
}
