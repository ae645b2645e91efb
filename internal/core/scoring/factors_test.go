package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"tanda-xntrust/internal/core/domain"
)

var testNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func evt(kind domain.EventKind, daysAgo int, magnitude float64) domain.ScoreEvent {
	return domain.ScoreEvent{
		Kind:       kind,
		Magnitude:  magnitude,
		OccurredAt: testNow.AddDate(0, 0, -daysAgo),
	}
}

// paymentSeries builds n on-time payments, one per day, ending yesterday.
func paymentSeries(n int) []domain.ScoreEvent {
	events := make([]domain.ScoreEvent, 0, n)
	for i := n; i >= 1; i-- {
		events = append(events, evt(domain.EventOnTimePayment, i, 50))
	}
	return events
}

func TestFactorMaximaSumToHundred(t *testing.T) {
	p := DefaultPolicy()
	sum := p.PaymentHistoryMax + p.CircleCompletionMax + p.TimeReliabilityMax +
		p.SecurityDepositMax + p.DiversitySocialMax + p.EngagementMax
	assert.Equal(t, 100.0, sum)
}

func TestPaymentHistory(t *testing.T) {
	p := DefaultPolicy()

	t.Run("no payments scores zero", func(t *testing.T) {
		f := PaymentHistory(nil, testNow, p)
		assert.Zero(t, f.Raw)
		assert.Equal(t, p.PaymentHistoryMax, f.Max)
	})

	t.Run("perfect history with short streak", func(t *testing.T) {
		f := PaymentHistory(paymentSeries(10), testNow, p)
		// 1.0*26 + 10*0.04
		assert.InDelta(t, 26.4, f.Raw, 0.001)
	})

	t.Run("streak bonus is capped", func(t *testing.T) {
		f := PaymentHistory(paymentSeries(80), testNow, p)
		// streak counts only up to 50
		assert.InDelta(t, 28.0, f.Raw, 0.001)
	})

	t.Run("long streaks keep marginal value below the factor max", func(t *testing.T) {
		year := PaymentHistory(paymentSeries(52), testNow, p)
		assert.InDelta(t, 28.0, year.Raw, 0.001)
		assert.Less(t, year.Raw, p.PaymentHistoryMax)

		short := PaymentHistory(paymentSeries(40), testNow, p)
		assert.Greater(t, year.Raw, short.Raw)
	})

	t.Run("late payment resets the streak", func(t *testing.T) {
		events := []domain.ScoreEvent{
			evt(domain.EventOnTimePayment, 9, 50),
			evt(domain.EventOnTimePayment, 8, 50),
			evt(domain.EventOnTimePayment, 7, 50),
			evt(domain.EventOnTimePayment, 6, 50),
			evt(domain.EventOnTimePayment, 5, 50),
			evt(domain.EventLatePayment, 4, 50),
			evt(domain.EventOnTimePayment, 3, 50),
			evt(domain.EventOnTimePayment, 2, 50),
			evt(domain.EventOnTimePayment, 1, 50),
		}
		f := PaymentHistory(events, testNow, p)
		// 8/9*26 + 3*0.04
		assert.InDelta(t, 8.0/9.0*26+0.12, f.Raw, 0.001)
	})

	t.Run("unresolved default collapses the factor", func(t *testing.T) {
		events := append(paymentSeries(10), evt(domain.EventCircleDefaulted, 100, 1))
		f := PaymentHistory(events, testNow, p)
		assert.InDelta(t, 26.4*p.DefaultPenaltyRatio, f.Raw, 0.001)
	})

	t.Run("resolved default lifts the penalty", func(t *testing.T) {
		events := append(paymentSeries(10),
			evt(domain.EventCircleDefaulted, 100, 1),
			evt(domain.EventDefaultResolved, 40, 1),
		)
		f := PaymentHistory(events, testNow, p)
		assert.InDelta(t, 26.4, f.Raw, 0.001)
	})

	t.Run("default outside lookback window is ignored", func(t *testing.T) {
		events := append(paymentSeries(10), evt(domain.EventCircleDefaulted, 400, 1))
		f := PaymentHistory(events, testNow, p)
		assert.InDelta(t, 26.4, f.Raw, 0.001)
	})
}

func TestCircleCompletion(t *testing.T) {
	p := DefaultPolicy()

	t.Run("no finished circles scores zero", func(t *testing.T) {
		f := CircleCompletion([]domain.ScoreEvent{evt(domain.EventCircleJoined, 30, 1)}, testNow, p)
		assert.Zero(t, f.Raw)
	})

	t.Run("one completed circle", func(t *testing.T) {
		f := CircleCompletion([]domain.ScoreEvent{evt(domain.EventCircleCompleted, 10, 1)}, testNow, p)
		// 1.0*20 + 1 cycle bonus
		assert.InDelta(t, 21.0, f.Raw, 0.001)
	})

	t.Run("default drags the completion rate", func(t *testing.T) {
		events := []domain.ScoreEvent{
			evt(domain.EventCircleCompleted, 200, 1),
			evt(domain.EventCircleCompleted, 100, 1),
			evt(domain.EventCircleDefaulted, 50, 1),
		}
		f := CircleCompletion(events, testNow, p)
		assert.InDelta(t, 2.0/3.0*20+2, f.Raw, 0.001)
	})

	t.Run("cycle bonus is capped at five", func(t *testing.T) {
		var events []domain.ScoreEvent
		for i := 0; i < 8; i++ {
			events = append(events, evt(domain.EventCircleCompleted, 300-i*30, 1))
		}
		f := CircleCompletion(events, testNow, p)
		assert.InDelta(t, 25.0, f.Raw, 0.001)
	})
}

func TestTimeReliability(t *testing.T) {
	p := DefaultPolicy()

	t.Run("zero age scores zero", func(t *testing.T) {
		f := TimeReliability(nil, 0, testNow, p)
		assert.Zero(t, f.Raw)
	})

	t.Run("asymptotic growth", func(t *testing.T) {
		f := TimeReliability(nil, 180, testNow, p)
		assert.InDelta(t, 10.0, f.Raw, 0.001)

		f = TimeReliability(nil, 1800, testNow, p)
		assert.Greater(t, f.Raw, 18.0)
		assert.Less(t, f.Raw, 20.0)
	})

	t.Run("dormancy gap applies decay", func(t *testing.T) {
		events := []domain.ScoreEvent{
			evt(domain.EventOnTimePayment, 150, 50),
			evt(domain.EventOnTimePayment, 2, 50), // 148-day gap
		}
		f := TimeReliability(events, 180, testNow, p)
		assert.InDelta(t, 6.0, f.Raw, 0.001)
	})

	t.Run("recent steady activity has no decay", func(t *testing.T) {
		f := TimeReliability(paymentSeries(30), 180, testNow, p)
		assert.InDelta(t, 10.0, f.Raw, 0.001)
	})
}

func TestSecurityDeposit(t *testing.T) {
	p := DefaultPolicy()

	t.Run("half the reference deposit", func(t *testing.T) {
		f := SecurityDeposit([]domain.ScoreEvent{evt(domain.EventDepositLocked, 10, 250)}, testNow, p)
		assert.InDelta(t, 5.0, f.Raw, 0.001)
	})

	t.Run("over-reference deposit is capped", func(t *testing.T) {
		f := SecurityDeposit([]domain.ScoreEvent{evt(domain.EventDepositLocked, 10, 2000)}, testNow, p)
		assert.InDelta(t, 10.0, f.Raw, 0.001)
	})

	t.Run("released deposit stops counting", func(t *testing.T) {
		events := []domain.ScoreEvent{
			evt(domain.EventDepositLocked, 60, 500),
			evt(domain.EventDepositReleased, 5, 500),
		}
		f := SecurityDeposit(events, testNow, p)
		assert.Zero(t, f.Raw)
	})
}

func TestDiversitySocial(t *testing.T) {
	p := DefaultPolicy()

	t.Run("active circles capped at three", func(t *testing.T) {
		var events []domain.ScoreEvent
		for i := 0; i < 5; i++ {
			events = append(events, evt(domain.EventCircleJoined, 40-i, 1))
		}
		f := DiversitySocial(events, testNow, p)
		assert.InDelta(t, 3.0, f.Raw, 0.001)
	})

	t.Run("finished circles are no longer active", func(t *testing.T) {
		events := []domain.ScoreEvent{
			evt(domain.EventCircleJoined, 200, 1),
			evt(domain.EventCircleJoined, 100, 1),
			evt(domain.EventCircleCompleted, 20, 1),
		}
		f := DiversitySocial(events, testNow, p)
		assert.InDelta(t, 1.0, f.Raw, 0.001)
	})

	t.Run("endorsement bonus is capped", func(t *testing.T) {
		var events []domain.ScoreEvent
		for i := 0; i < 12; i++ {
			events = append(events, evt(domain.EventEndorsement, 30-i, 1))
		}
		f := DiversitySocial(events, testNow, p)
		// 12*0.5 capped at 4
		assert.InDelta(t, 4.0, f.Raw, 0.001)
	})
}

func TestEngagement(t *testing.T) {
	p := DefaultPolicy()

	t.Run("new member has no milestones", func(t *testing.T) {
		f := Engagement(nil, 10, testNow, p)
		assert.Zero(t, f.Raw)
	})

	t.Run("all milestones awarded once", func(t *testing.T) {
		events := []domain.ScoreEvent{
			evt(domain.EventProfileCompleted, 300, 1),
			evt(domain.EventKYCVerified, 290, 1),
			evt(domain.EventProfileCompleted, 100, 1), // duplicate milestone
		}
		f := Engagement(events, 400, testNow, p)
		assert.InDelta(t, 3.0, f.Raw, 0.001)
	})
}
