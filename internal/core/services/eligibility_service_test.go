package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"tanda-xntrust/internal/adapters/persistence/models"
	"tanda-xntrust/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type eligibilityFixture struct {
	svc     *EligibilityService
	members *stubMemberRepo
	circles *stubCircleRepo
	events  *stubEventRepo
}

func newEligibilityFixture(member *models.Member, circle *models.Circle) *eligibilityFixture {
	f := &eligibilityFixture{
		members: newStubMemberRepo(member),
		circles: newStubCircleRepo(circle),
		events:  &stubEventRepo{},
	}
	score := NewScoreService(f.members, f.events, newStubSnapshotRepo(), newStubVouchRepo(), testConfig(), nil)
	f.svc = NewEligibilityService(f.members, f.circles, f.events, score)
	return f
}

func testCircle(id uint, minScore float64, maxMembers int) *models.Circle {
	return &models.Circle{
		ID:         id,
		Name:       "Test Circle",
		MinXnScore: minScore,
		MaxMembers: maxMembers,
		IsActive:   true,
	}
}

func hasReason(result *EligibilityResult, code string) bool {
	for _, r := range result.Reasons {
		if r.Code == code {
			return true
		}
	}
	return false
}

func TestCanJoinAllChecksPass(t *testing.T) {
	f := newEligibilityFixture(testMember("M0001", 400), testCircle(7, 30, 12))
	seedPayments(f.events, "M0001", 20) // solid on-time history, well above 30

	result, err := f.svc.CanJoin(context.Background(), "M0001", 7)
	require.NoError(t, err)
	assert.True(t, result.CanJoin)
	assert.Empty(t, result.Reasons)
	require.NotNil(t, result.Score)
	require.NotNil(t, result.Tier)
	assert.Greater(t, *result.Score, 30.0)
}

func TestCanJoinCollectsEveryFailingReason(t *testing.T) {
	member := testMember("M0001", 400)
	member.IsActive = false
	circle := testCircle(7, 30, 10)
	circle.IsActive = false

	f := newEligibilityFixture(member, circle)
	f.circles.setMember(7, "M0001")
	f.circles.memberCount[7] = 10 // full

	result, err := f.svc.CanJoin(context.Background(), "M0001", 7)
	require.NoError(t, err)
	assert.False(t, result.CanJoin)

	// Every failing rule is reported, not just the first. An empty history
	// also leaves the member in the Critical tier and below the minimum.
	assert.True(t, hasReason(result, domain.ReasonMemberInactive))
	assert.True(t, hasReason(result, domain.ReasonCircleInactive))
	assert.True(t, hasReason(result, domain.ReasonAlreadyMember))
	assert.True(t, hasReason(result, domain.ReasonCircleFull))
	assert.True(t, hasReason(result, domain.ReasonCriticalTier))
	assert.True(t, hasReason(result, domain.ReasonScoreBelowMinimum))
}

func TestCanJoinCriticalTierBlocked(t *testing.T) {
	f := newEligibilityFixture(testMember("M0001", 400), testCircle(7, 0, 12))

	result, err := f.svc.CanJoin(context.Background(), "M0001", 7)
	require.NoError(t, err)
	assert.False(t, result.CanJoin)
	assert.True(t, hasReason(result, domain.ReasonCriticalTier))
}

func TestCanJoinUnresolvedDefault(t *testing.T) {
	f := newEligibilityFixture(testMember("M0001", 400), testCircle(7, 30, 12))
	seedPayments(f.events, "M0001", 20)

	defaultedAt := time.Now().AddDate(0, 0, -700) // outside the factor lookback
	f.events.events = append(f.events.events, &models.ScoreEvent{
		ID:         "d1",
		MembNo:     "M0001",
		Kind:       string(domain.EventCircleDefaulted),
		Magnitude:  1,
		OccurredAt: defaultedAt,
	})

	result, err := f.svc.CanJoin(context.Background(), "M0001", 7)
	require.NoError(t, err)
	assert.False(t, result.CanJoin)
	assert.True(t, hasReason(result, domain.ReasonUnresolvedDefault))

	// The gate blocks on any unresolved default regardless of age; only a
	// resolution clears it.
	f.events.events = append(f.events.events, &models.ScoreEvent{
		ID:         "r1",
		MembNo:     "M0001",
		Kind:       string(domain.EventDefaultResolved),
		Magnitude:  1,
		OccurredAt: defaultedAt.AddDate(0, 0, 30),
	})

	result, err = f.svc.CanJoin(context.Background(), "M0001", 7)
	require.NoError(t, err)
	assert.False(t, hasReason(result, domain.ReasonUnresolvedDefault))
}

func TestCanJoinFailsClosedWhenScoreUnavailable(t *testing.T) {
	f := newEligibilityFixture(testMember("M0001", 400), testCircle(7, 30, 12))
	f.events.readErr = errors.New("event store down")

	result, err := f.svc.CanJoin(context.Background(), "M0001", 7)
	require.NoError(t, err)
	assert.False(t, result.CanJoin)
	assert.True(t, hasReason(result, domain.ReasonScoreUnavailable))
	assert.Nil(t, result.Score)
}

func TestCanJoinFailsClosedWhenMembershipCheckFails(t *testing.T) {
	f := newEligibilityFixture(testMember("M0001", 400), testCircle(7, 30, 12))
	seedPayments(f.events, "M0001", 20)
	f.circles.memberErr = errors.New("circle engine unreachable")

	result, err := f.svc.CanJoin(context.Background(), "M0001", 7)
	require.NoError(t, err)
	assert.False(t, result.CanJoin)
	assert.True(t, hasReason(result, domain.ReasonCheckUnavailable))

	// The remaining rules still run: the score is computed and reported
	// even though one check could not be verified.
	require.NotNil(t, result.Score)
	assert.Greater(t, *result.Score, 30.0)
}

func TestCanJoinFailsClosedWhenCapacityCheckFails(t *testing.T) {
	f := newEligibilityFixture(testMember("M0001", 400), testCircle(7, 30, 12))
	seedPayments(f.events, "M0001", 20)
	f.circles.countErr = errors.New("count query timeout")

	result, err := f.svc.CanJoin(context.Background(), "M0001", 7)
	require.NoError(t, err)
	assert.False(t, result.CanJoin)
	assert.True(t, hasReason(result, domain.ReasonCheckUnavailable))
}

func TestCanJoinUnknownMember(t *testing.T) {
	f := newEligibilityFixture(testMember("M0001", 400), testCircle(7, 30, 12))

	_, err := f.svc.CanJoin(context.Background(), "GHOST", 7)
	assert.ErrorIs(t, err, ErrUnknownMember)
}

func TestCanJoinUnknownCircle(t *testing.T) {
	f := newEligibilityFixture(testMember("M0001", 400), testCircle(7, 30, 12))

	_, err := f.svc.CanJoin(context.Background(), "M0001", 99)
	assert.ErrorIs(t, err, ErrCircleNotFound)
}
