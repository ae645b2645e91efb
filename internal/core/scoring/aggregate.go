package scoring

import (
	"math"
	"sort"
	"time"

	"tanda-xntrust/internal/core/domain"
)

// Result is the outcome of one aggregation pass. Score keeps full precision
// for streak math; Display is rounded to the nearest 0.5 for the UI.
type Result struct {
	Score            float64       `json:"score"`
	Display          float64       `json:"display"`
	Factors          []FactorScore `json:"factors"`
	FirstCircleBonus float64       `json:"first_circle_bonus"`
	VouchBonus       float64       `json:"vouch_bonus"`
	AgeCap           float64       `json:"age_cap"`
	Capped           bool          `json:"capped"`
}

// Aggregate combines the six factor sub-scores into a single 0-100 score.
// It sorts a copy of the history by timestamp so streak math stays correct
// even when events were appended out of order. Deterministic: the same
// history always yields the same result.
func Aggregate(history []domain.ScoreEvent, accountAgeDays int, activeVouchPoints float64, now time.Time, p Policy) Result {
	events := make([]domain.ScoreEvent, len(history))
	copy(events, history)
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].OccurredAt.Before(events[j].OccurredAt)
	})

	factors := []FactorScore{
		PaymentHistory(events, now, p),
		CircleCompletion(events, now, p),
		TimeReliability(events, accountAgeDays, now, p),
		SecurityDeposit(events, now, p),
		DiversitySocial(events, now, p),
		Engagement(events, accountAgeDays, now, p),
	}

	var sum float64
	for _, f := range factors {
		sum += f.Raw
	}

	// First-circle bonus is derived from history, so recomputing can never
	// double-credit it.
	var firstCircle float64
	for _, e := range events {
		if e.Kind == domain.EventCircleCompleted {
			firstCircle = p.FirstCircleBonus
			break
		}
	}

	vouchBonus := activeVouchPoints
	if vouchBonus > p.VouchPointsCap {
		vouchBonus = p.VouchPointsCap
	}
	if vouchBonus < 0 {
		vouchBonus = 0
	}

	score := sum + firstCircle + vouchBonus

	ageCap := p.AgeCapFor(accountAgeDays)
	capped := false
	if score > ageCap {
		score = ageCap
		capped = true
	}
	score = clamp(score, 0, 100)

	return Result{
		Score:            score,
		Display:          RoundHalf(score),
		Factors:          factors,
		FirstCircleBonus: firstCircle,
		VouchBonus:       vouchBonus,
		AgeCap:           ageCap,
		Capped:           capped,
	}
}

// RoundHalf rounds to the nearest 0.5 for display.
func RoundHalf(v float64) float64 {
	return math.Round(v*2) / 2
}
