package services

import (
	"context"
	"testing"
	"time"

	"tanda-xntrust/internal/adapters/persistence/models"
	"tanda-xntrust/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEventFixture() (*EventService, *stubEventRepo, *stubInvalidator) {
	members := newStubMemberRepo(testMember("M0001", 400))
	events := &stubEventRepo{}
	invalidator := &stubInvalidator{}
	return NewEventService(events, members, invalidator), events, invalidator
}

func TestAppendStoresEventAndInvalidates(t *testing.T) {
	svc, events, invalidator := newEventFixture()

	event, err := svc.Append(context.Background(), &AppendEventInput{
		MembNo:     "M0001",
		Kind:       string(domain.EventOnTimePayment),
		Magnitude:  250,
		OccurredAt: time.Now().Add(-time.Hour),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, event.ID)

	require.Len(t, events.events, 1)
	assert.Equal(t, []string{"M0001"}, invalidator.calls())
}

func TestAppendRejectsUnknownKind(t *testing.T) {
	svc, events, invalidator := newEventFixture()

	_, err := svc.Append(context.Background(), &AppendEventInput{
		MembNo:     "M0001",
		Kind:       "LOAN_APPROVED",
		Magnitude:  1,
		OccurredAt: time.Now(),
	})
	assert.ErrorIs(t, err, domain.ErrUnknownEventKind)
	assert.Empty(t, events.events)
	assert.Empty(t, invalidator.calls())
}

func TestAppendRejectsMagnitudeOutOfRange(t *testing.T) {
	svc, events, _ := newEventFixture()

	cases := []struct {
		name      string
		kind      domain.EventKind
		magnitude float64
	}{
		{"negative payment", domain.EventOnTimePayment, -1},
		{"payment above ceiling", domain.EventOnTimePayment, 10_000_001},
		{"zero deposit", domain.EventDepositLocked, 0},
		{"vouch points above cap", domain.EventVouchReceived, 26},
		{"milestone not one", domain.EventKYCVerified, 2},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Append(context.Background(), &AppendEventInput{
				MembNo:     "M0001",
				Kind:       string(tc.kind),
				Magnitude:  tc.magnitude,
				OccurredAt: time.Now(),
			})
			assert.ErrorIs(t, err, domain.ErrMagnitudeOutOfRange)
		})
	}
	assert.Empty(t, events.events)
}

func TestAppendRejectsFutureEvents(t *testing.T) {
	svc, _, _ := newEventFixture()

	_, err := svc.Append(context.Background(), &AppendEventInput{
		MembNo:     "M0001",
		Kind:       string(domain.EventOnTimePayment),
		Magnitude:  100,
		OccurredAt: time.Now().Add(10 * time.Minute),
	})
	assert.ErrorIs(t, err, domain.ErrEventInFuture)
}

func TestAppendAllowsMinorClockSkew(t *testing.T) {
	svc, _, _ := newEventFixture()

	_, err := svc.Append(context.Background(), &AppendEventInput{
		MembNo:     "M0001",
		Kind:       string(domain.EventOnTimePayment),
		Magnitude:  100,
		OccurredAt: time.Now().Add(time.Minute),
	})
	assert.NoError(t, err)
}

func TestAppendRejectsUnknownMember(t *testing.T) {
	svc, events, _ := newEventFixture()

	_, err := svc.Append(context.Background(), &AppendEventInput{
		MembNo:     "GHOST",
		Kind:       string(domain.EventOnTimePayment),
		Magnitude:  100,
		OccurredAt: time.Now(),
	})
	assert.ErrorIs(t, err, domain.ErrEventMemberNotFound)
	assert.Empty(t, events.events)
}

func TestHistoryFiltersByKindAndSince(t *testing.T) {
	svc, events, _ := newEventFixture()
	now := time.Now()
	seedPayments(events, "M0001", 3)
	events.events = append(events.events, &models.ScoreEvent{
		ID:         "late-1",
		MembNo:     "M0001",
		Kind:       string(domain.EventLatePayment),
		Magnitude:  100,
		OccurredAt: now.Add(-time.Hour),
	})

	got, err := svc.History(context.Background(), "M0001", string(domain.EventLatePayment), time.Time{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, string(domain.EventLatePayment), got[0].Kind)

	since := now.Add(-30 * time.Minute)
	got, err = svc.History(context.Background(), "M0001", "", since)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestHistoryRejectsUnknownKindFilter(t *testing.T) {
	svc, _, _ := newEventFixture()

	_, err := svc.History(context.Background(), "M0001", "BOGUS", time.Time{})
	assert.ErrorIs(t, err, domain.ErrUnknownEventKind)
}

func TestHistoryUnknownMember(t *testing.T) {
	svc, _, _ := newEventFixture()

	_, err := svc.History(context.Background(), "GHOST", "", time.Time{})
	assert.ErrorIs(t, err, ErrUnknownMember)
}
