package scoring

import (
	"time"

	"tanda-xntrust/internal/core/domain"
)

// Factor names as shown on the score breakdown screens
const (
	FactorPaymentHistory   = "payment_history"
	FactorCircleCompletion = "circle_completion"
	FactorTimeReliability  = "time_reliability"
	FactorSecurityDeposit  = "security_deposit"
	FactorDiversitySocial  = "diversity_social"
	FactorEngagement       = "engagement"
)

// FactorScore is the bounded sub-score produced by one calculator.
type FactorScore struct {
	Name string  `json:"name"`
	Raw  float64 `json:"raw"`
	Max  float64 `json:"max"`
}

// All calculators are pure: they consume an event history sorted by
// OccurredAt ascending plus the account age, and touch no shared state.

// PaymentHistory scores on-time rate plus a diminishing streak bonus.
// An unresolved default inside the lookback window collapses the factor
// to DefaultPenaltyRatio of its value.
func PaymentHistory(events []domain.ScoreEvent, now time.Time, p Policy) FactorScore {
	f := FactorScore{Name: FactorPaymentHistory, Max: p.PaymentHistoryMax}

	var onTime, total, streak int
	for _, e := range events {
		switch e.Kind {
		case domain.EventOnTimePayment:
			onTime++
			total++
			streak++
		case domain.EventLatePayment, domain.EventMissedPayment:
			total++
			streak = 0
		}
	}
	if total == 0 {
		return f
	}

	onTimeRate := float64(onTime) / float64(total)
	if streak > p.StreakCap {
		streak = p.StreakCap
	}
	raw := onTimeRate*p.OnTimeRateWeight + float64(streak)*p.StreakPointPerUnit

	if hasUnresolvedDefault(events, now, p.DefaultLookbackDays) {
		raw *= p.DefaultPenaltyRatio
	}

	f.Raw = clamp(raw, 0, f.Max)
	return f
}

// CircleCompletion scores the completed/finished ratio plus a capped bonus
// per full cycle completed.
func CircleCompletion(events []domain.ScoreEvent, _ time.Time, p Policy) FactorScore {
	f := FactorScore{Name: FactorCircleCompletion, Max: p.CircleCompletionMax}

	var completed, defaulted int
	for _, e := range events {
		switch e.Kind {
		case domain.EventCircleCompleted:
			completed++
		case domain.EventCircleDefaulted:
			defaulted++
		}
	}
	finished := completed + defaulted
	if finished == 0 {
		return f
	}

	rate := float64(completed) / float64(finished)
	bonus := float64(completed)
	if bonus > p.CycleBonusCap {
		bonus = p.CycleBonusCap
	}

	f.Raw = clamp(rate*p.CompletionRateWeight+bonus, 0, f.Max)
	return f
}

// TimeReliability grows asymptotically with account age and is discounted
// when the history shows a dormancy gap longer than DormancyGapDays.
func TimeReliability(events []domain.ScoreEvent, accountAgeDays int, now time.Time, p Policy) FactorScore {
	f := FactorScore{Name: FactorTimeReliability, Max: p.TimeReliabilityMax}
	if accountAgeDays <= 0 {
		return f
	}

	age := float64(accountAgeDays)
	raw := p.TimeReliabilityMax * age / (age + p.AgeHalfLifeDays)

	if longestGapDays(events, now) > p.DormancyGapDays {
		raw *= p.DormancyDecay
	}

	f.Raw = clamp(raw, 0, f.Max)
	return f
}

// SecurityDeposit scores the net locked deposit against the reference
// amount. Released deposits stop counting immediately.
func SecurityDeposit(events []domain.ScoreEvent, _ time.Time, p Policy) FactorScore {
	f := FactorScore{Name: FactorSecurityDeposit, Max: p.SecurityDepositMax}

	var locked float64
	for _, e := range events {
		switch e.Kind {
		case domain.EventDepositLocked:
			locked += e.Magnitude
		case domain.EventDepositReleased:
			locked -= e.Magnitude
		}
	}
	if locked <= 0 || p.ReferenceDeposit <= 0 {
		return f
	}

	ratio := locked / p.ReferenceDeposit
	if ratio > 1 {
		ratio = 1
	}
	f.Raw = clamp(ratio*p.SecurityDepositMax, 0, f.Max)
	return f
}

// DiversitySocial scores active circle count plus a capped endorsement
// aggregate. Endorsements never contribute points individually.
func DiversitySocial(events []domain.ScoreEvent, _ time.Time, p Policy) FactorScore {
	f := FactorScore{Name: FactorDiversitySocial, Max: p.DiversitySocialMax}

	var joined, ended, endorsements int
	for _, e := range events {
		switch e.Kind {
		case domain.EventCircleJoined:
			joined++
		case domain.EventCircleLeft, domain.EventCircleCompleted, domain.EventCircleDefaulted:
			ended++
		case domain.EventEndorsement:
			endorsements++
		}
	}

	active := joined - ended
	if active < 0 {
		active = 0
	}
	if active > p.ActiveCirclesCap {
		active = p.ActiveCirclesCap
	}

	endorsementBonus := float64(endorsements) * p.EndorsementPoints
	if endorsementBonus > p.EndorsementBonusCap {
		endorsementBonus = p.EndorsementBonusCap
	}

	f.Raw = clamp(float64(active)+endorsementBonus, 0, f.Max)
	return f
}

// Engagement awards flat one-time milestones.
func Engagement(events []domain.ScoreEvent, accountAgeDays int, _ time.Time, p Policy) FactorScore {
	f := FactorScore{Name: FactorEngagement, Max: p.EngagementMax}

	var profileDone, kycDone bool
	for _, e := range events {
		switch e.Kind {
		case domain.EventProfileCompleted:
			profileDone = true
		case domain.EventKYCVerified:
			kycDone = true
		}
	}

	var raw float64
	if profileDone {
		raw++
	}
	if kycDone {
		raw++
	}
	if accountAgeDays >= p.LongevityMilestoneDays {
		raw++
	}

	f.Raw = clamp(raw, 0, f.Max)
	return f
}

// hasUnresolvedDefault reports whether a CIRCLE_DEFAULTED event inside the
// lookback window has no DEFAULT_RESOLVED event after it.
func hasUnresolvedDefault(events []domain.ScoreEvent, now time.Time, lookbackDays int) bool {
	cutoff := now.AddDate(0, 0, -lookbackDays)
	var lastDefault, lastResolved time.Time
	for _, e := range events {
		switch e.Kind {
		case domain.EventCircleDefaulted:
			if e.OccurredAt.After(cutoff) && e.OccurredAt.After(lastDefault) {
				lastDefault = e.OccurredAt
			}
		case domain.EventDefaultResolved:
			if e.OccurredAt.After(lastResolved) {
				lastResolved = e.OccurredAt
			}
		}
	}
	return !lastDefault.IsZero() && lastResolved.Before(lastDefault)
}

// longestGapDays returns the longest stretch of days with zero events,
// including the stretch from the last event until now. No events at all
// yields 0 so brand-new accounts are not penalized for dormancy.
func longestGapDays(events []domain.ScoreEvent, now time.Time) int {
	if len(events) == 0 {
		return 0
	}
	longest := 0.0
	for i := 1; i < len(events); i++ {
		gap := events[i].OccurredAt.Sub(events[i-1].OccurredAt).Hours() / 24
		if gap > longest {
			longest = gap
		}
	}
	tail := now.Sub(events[len(events)-1].OccurredAt).Hours() / 24
	if tail > longest {
		longest = tail
	}
	return int(longest)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
