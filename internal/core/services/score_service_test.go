package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"tanda-xntrust/internal/adapters/persistence/models"
	"tanda-xntrust/internal/core/domain"
	"tanda-xntrust/internal/core/scoring"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scoreFixture struct {
	svc       *ScoreService
	members   *stubMemberRepo
	events    *stubEventRepo
	snapshots *stubSnapshotRepo
	vouches   *stubVouchRepo
	listener  *stubListener
}

func newScoreFixture(member *models.Member) *scoreFixture {
	f := &scoreFixture{
		members:   newStubMemberRepo(member),
		events:    &stubEventRepo{},
		snapshots: newStubSnapshotRepo(),
		vouches:   newStubVouchRepo(),
		listener:  &stubListener{},
	}
	f.svc = NewScoreService(f.members, f.events, f.snapshots, f.vouches, testConfig(), f.listener)
	return f
}

func testMember(membNo string, ageDays int) *models.Member {
	return &models.Member{
		MembNo:           membNo,
		FullName:         "Test Member",
		IsActive:         true,
		AccountCreatedAt: time.Now().AddDate(0, 0, -ageDays),
		CurrentTier:      int(domain.TierCritical),
	}
}

// seedPayments appends n weekly on-time payments ending roughly now.
func seedPayments(events *stubEventRepo, membNo string, n int) {
	now := time.Now()
	for i := 0; i < n; i++ {
		events.events = append(events.events, &models.ScoreEvent{
			ID:         fmt.Sprintf("evt-%d", i),
			MembNo:     membNo,
			Kind:       string(domain.EventOnTimePayment),
			Magnitude:  100,
			OccurredAt: now.AddDate(0, 0, -7*(n-i)),
		})
	}
}

func TestPolicyFromConfigOverrides(t *testing.T) {
	cfg := testConfig()
	cfg.Scoring.OnTimeRateWeight = 30
	cfg.Scoring.ReferenceDeposit = 1000
	cfg.Scoring.VouchPointsCap = 10

	p := policyFromConfig(cfg)
	assert.Equal(t, 30.0, p.OnTimeRateWeight)
	assert.Equal(t, 1000.0, p.ReferenceDeposit)
	assert.Equal(t, 10.0, p.VouchPointsCap)

	// Unset overrides fall back to the standard policy.
	cfg.Scoring.OnTimeRateWeight = 0
	p = policyFromConfig(cfg)
	assert.Equal(t, scoring.DefaultPolicy().OnTimeRateWeight, p.OnTimeRateWeight)
}

func TestRecomputeHonorsConfiguredVouchCap(t *testing.T) {
	cfg := testConfig()
	cfg.Scoring.VouchPointsCap = 5

	members := newStubMemberRepo(testMember("M0001", 400))
	vouches := newStubVouchRepo(activeVouch("v1", "ELDER1", "M0001", 9))
	svc := NewScoreService(members, &stubEventRepo{}, newStubSnapshotRepo(), vouches, cfg, nil)

	detail, err := svc.Recompute(context.Background(), "M0001")
	require.NoError(t, err)
	assert.Equal(t, 5.0, detail.VouchBonus)
}

func TestGetScoreUnknownMember(t *testing.T) {
	f := newScoreFixture(testMember("M0001", 400))

	_, err := f.svc.GetScore(context.Background(), "NOBODY")
	assert.ErrorIs(t, err, domain.ErrMemberNotFound)
}

func TestGetScoreServesFreshSnapshotWithoutRecompute(t *testing.T) {
	f := newScoreFixture(testMember("M0001", 400))
	f.snapshots.snapshots["M0001"] = &models.ScoreSnapshot{
		MembNo:       "M0001",
		Score:        62.5,
		DisplayScore: 62.5,
		Tier:         int(domain.TierGood),
		AgeCap:       85,
		Version:      2,
		ComputedAt:   time.Now().Add(-5 * time.Minute),
	}
	// A fresh snapshot must short-circuit before the event log is touched.
	f.events.readErr = errors.New("event store down")

	detail, err := f.svc.GetScore(context.Background(), "M0001")
	require.NoError(t, err)
	assert.Equal(t, 62.5, detail.Score)
	assert.Equal(t, int(domain.TierGood), detail.Tier)
	assert.Equal(t, "Good", detail.TierName)
	assert.False(t, detail.Stale)
	assert.Empty(t, f.snapshots.savedWith)
}

func TestGetScoreRecomputesExpiredSnapshot(t *testing.T) {
	f := newScoreFixture(testMember("M0001", 400))
	f.snapshots.snapshots["M0001"] = &models.ScoreSnapshot{
		MembNo:     "M0001",
		Score:      10,
		Tier:       int(domain.TierCritical),
		Version:    3,
		ComputedAt: time.Now().Add(-2 * time.Hour),
	}
	seedPayments(f.events, "M0001", 20)

	detail, err := f.svc.GetScore(context.Background(), "M0001")
	require.NoError(t, err)
	assert.False(t, detail.Stale)
	assert.Greater(t, detail.Score, 10.0)

	// CAS save must carry the previous version.
	require.Len(t, f.snapshots.savedWith, 1)
	assert.Equal(t, 3, f.snapshots.savedWith[0])
	assert.Equal(t, 4, f.snapshots.snapshots["M0001"].Version)
}

func TestGetScoreDegradesToStaleSnapshot(t *testing.T) {
	f := newScoreFixture(testMember("M0001", 400))
	f.snapshots.snapshots["M0001"] = &models.ScoreSnapshot{
		MembNo:       "M0001",
		Score:        48,
		DisplayScore: 48,
		Tier:         int(domain.TierFair),
		Version:      1,
		ComputedAt:   time.Now().Add(-3 * time.Hour),
	}
	f.events.readErr = errors.New("event store down")

	detail, err := f.svc.GetScore(context.Background(), "M0001")
	require.NoError(t, err)
	assert.True(t, detail.Stale)
	assert.Equal(t, 48.0, detail.Score)
	assert.Equal(t, int(domain.TierFair), detail.Tier)
}

func TestGetScoreFailsClosedWithNothingToServe(t *testing.T) {
	f := newScoreFixture(testMember("M0001", 400))
	f.events.readErr = errors.New("event store down")

	_, err := f.svc.GetScore(context.Background(), "M0001")
	assert.ErrorIs(t, err, domain.ErrStaleData)
}

func TestRecomputeUpdatesMemberScoreCache(t *testing.T) {
	member := testMember("M0001", 400)
	f := newScoreFixture(member)
	seedPayments(f.events, "M0001", 20)

	detail, err := f.svc.Recompute(context.Background(), "M0001")
	require.NoError(t, err)

	cached, err := f.members.GetByMembNo(context.Background(), "M0001")
	require.NoError(t, err)
	assert.Equal(t, detail.Display, cached.CurrentScore)
	assert.Equal(t, detail.Tier, cached.CurrentTier)
}

func TestRecomputeNotifiesTierChange(t *testing.T) {
	member := testMember("M0001", 400)
	member.CurrentTier = int(domain.TierElite) // stale cache about to be corrected
	f := newScoreFixture(member)

	_, err := f.svc.Recompute(context.Background(), "M0001")
	require.NoError(t, err)

	changes := f.listener.all()
	require.Len(t, changes, 1)
	assert.Equal(t, "M0001", changes[0].membNo)
	assert.Equal(t, domain.TierElite, changes[0].oldTier)
	assert.Equal(t, domain.TierCritical, changes[0].newTier)
}

func TestRecomputeSilentWhenTierUnchanged(t *testing.T) {
	f := newScoreFixture(testMember("M0001", 400))

	_, err := f.svc.Recompute(context.Background(), "M0001")
	require.NoError(t, err)
	assert.Empty(t, f.listener.all())
}

func TestRecomputeToleratesLostSnapshotRace(t *testing.T) {
	f := newScoreFixture(testMember("M0001", 400))
	f.snapshots.saveErr = domain.ErrStaleData
	seedPayments(f.events, "M0001", 5)

	detail, err := f.svc.Recompute(context.Background(), "M0001")
	require.NoError(t, err)
	assert.NotNil(t, detail)
}

func TestRecomputeCountsOnlyActiveVouchPoints(t *testing.T) {
	f := newScoreFixture(testMember("M0001", 400))
	now := time.Now()
	f.vouches.vouches["v1"] = &models.Vouch{
		ID: "v1", VoucherNo: "ELDER1", RecipientNo: "M0001",
		Points: 5, ExpiresAt: now.Add(24 * time.Hour), Status: domain.VouchStatusActive,
	}
	f.vouches.vouches["v2"] = &models.Vouch{
		ID: "v2", VoucherNo: "ELDER2", RecipientNo: "M0001",
		Points: 8, ExpiresAt: now.Add(-time.Hour), Status: domain.VouchStatusActive, // lapsed
	}

	detail, err := f.svc.Recompute(context.Background(), "M0001")
	require.NoError(t, err)
	assert.Equal(t, 5.0, detail.VouchBonus)
}

func TestInvalidateNeverBlocks(t *testing.T) {
	f := newScoreFixture(testMember("M0001", 400))

	// No worker running: once the queue fills, further sends must be dropped
	// rather than blocking the caller.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 5000; i++ {
			f.svc.Invalidate("M0001")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Invalidate blocked with a full queue")
	}
}

func TestWorkerDrainsInvalidations(t *testing.T) {
	f := newScoreFixture(testMember("M0001", 400))
	seedPayments(f.events, "M0001", 5)

	f.svc.StartWorker()
	defer f.svc.Stop()

	f.svc.Invalidate("M0001")

	assert.Eventually(t, func() bool {
		_, err := f.snapshots.Get(context.Background(), "M0001")
		return err == nil
	}, 3*time.Second, 10*time.Millisecond, "worker never recomputed the snapshot")
}
