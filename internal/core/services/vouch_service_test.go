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

type vouchFixture struct {
	svc          *VouchService
	vouches      *stubVouchRepo
	endorsements *stubEndorsementRepo
	members      *stubMemberRepo
	circles      *stubCircleRepo
	events       *stubEventRepo
	invalidator  *stubInvalidator
}

func newVouchFixture(members ...*models.Member) *vouchFixture {
	f := &vouchFixture{
		vouches:      newStubVouchRepo(),
		endorsements: &stubEndorsementRepo{},
		members:      newStubMemberRepo(members...),
		circles:      newStubCircleRepo(),
		events:       &stubEventRepo{},
		invalidator:  &stubInvalidator{},
	}
	f.svc = NewVouchService(f.vouches, f.endorsements, f.members, f.circles, f.events, f.invalidator, testConfig())
	return f
}

func elderMember(membNo string) *models.Member {
	m := testMember(membNo, 800)
	m.CurrentTier = int(domain.TierElite)
	return m
}

func activeVouch(id, voucher, recipient string, points float64) *models.Vouch {
	now := time.Now()
	return &models.Vouch{
		ID:          id,
		VoucherNo:   voucher,
		RecipientNo: recipient,
		Points:      points,
		IssuedAt:    now,
		ExpiresAt:   now.Add(30 * 24 * time.Hour),
		Status:      domain.VouchStatusActive,
	}
}

func TestIssueVouch(t *testing.T) {
	f := newVouchFixture(elderMember("ELDER1"), testMember("M0002", 100))

	vouch, err := f.svc.Issue(context.Background(), &IssueVouchInput{
		VoucherNo:   "ELDER1",
		RecipientNo: "M0002",
		Points:      5,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.VouchStatusActive, vouch.Status)
	assert.WithinDuration(t, time.Now().Add(90*24*time.Hour), vouch.ExpiresAt, time.Minute)

	// The recipient's timeline records the vouch and the cached score is
	// marked stale.
	audit := f.events.byKind(domain.EventVouchReceived)
	require.Len(t, audit, 1)
	assert.Equal(t, "M0002", audit[0].MembNo)
	assert.Equal(t, []string{"M0002"}, f.invalidator.calls())
}

func TestIssueVouchSelf(t *testing.T) {
	f := newVouchFixture(elderMember("ELDER1"))

	_, err := f.svc.Issue(context.Background(), &IssueVouchInput{
		VoucherNo:   "ELDER1",
		RecipientNo: "ELDER1",
		Points:      5,
	})
	assert.ErrorIs(t, err, domain.ErrSelfVouch)
}

func TestIssueVouchRequiresVouchingTier(t *testing.T) {
	voucher := testMember("M0001", 400)
	voucher.CurrentTier = int(domain.TierGood) // Good tier cannot vouch
	f := newVouchFixture(voucher, testMember("M0002", 100))

	_, err := f.svc.Issue(context.Background(), &IssueVouchInput{
		VoucherNo:   "M0001",
		RecipientNo: "M0002",
		Points:      3,
	})
	assert.ErrorIs(t, err, domain.ErrNotAnElder)
}

func TestIssueVouchPointsAboveTierLimit(t *testing.T) {
	f := newVouchFixture(elderMember("ELDER1"), testMember("M0002", 100))

	// Elite allows at most 10 points per vouch.
	_, err := f.svc.Issue(context.Background(), &IssueVouchInput{
		VoucherNo:   "ELDER1",
		RecipientNo: "M0002",
		Points:      11,
	})
	assert.ErrorIs(t, err, domain.ErrVouchPointsTooHigh)
}

func TestIssueVouchConcurrentQuota(t *testing.T) {
	f := newVouchFixture(elderMember("ELDER1"), testMember("M0009", 100))

	// Elite allows 5 concurrent vouches.
	for i := 0; i < 5; i++ {
		id := string(rune('a' + i))
		f.vouches.vouches[id] = activeVouch(id, "ELDER1", "R"+id, 2)
	}

	_, err := f.svc.Issue(context.Background(), &IssueVouchInput{
		VoucherNo:   "ELDER1",
		RecipientNo: "M0009",
		Points:      2,
	})
	assert.ErrorIs(t, err, domain.ErrVouchQuotaExceeded)
}

func TestIssueVouchRecipientCap(t *testing.T) {
	f := newVouchFixture(elderMember("ELDER1"), testMember("M0002", 100))

	// 12 active points already on the recipient; 4 more would cross the
	// 15-point cap and must be rejected outright, not truncated.
	f.vouches.vouches["v1"] = activeVouch("v1", "ELDER2", "M0002", 7)
	f.vouches.vouches["v2"] = activeVouch("v2", "ELDER3", "M0002", 5)

	_, err := f.svc.Issue(context.Background(), &IssueVouchInput{
		VoucherNo:   "ELDER1",
		RecipientNo: "M0002",
		Points:      4,
	})
	assert.ErrorIs(t, err, domain.ErrVouchCapReached)

	// Expired points no longer count against the cap.
	f.vouches.vouches["v2"].ExpiresAt = time.Now().Add(-time.Hour)
	_, err = f.svc.Issue(context.Background(), &IssueVouchInput{
		VoucherNo:   "ELDER1",
		RecipientNo: "M0002",
		Points:      4,
	})
	assert.NoError(t, err)
}

func TestRevokeVouchByIssuer(t *testing.T) {
	f := newVouchFixture(elderMember("ELDER1"), testMember("M0002", 100))
	f.vouches.vouches["v1"] = activeVouch("v1", "ELDER1", "M0002", 5)

	err := f.svc.Revoke(context.Background(), "v1", "ELDER1", false)
	require.NoError(t, err)

	stored, err := f.vouches.GetByID(context.Background(), "v1")
	require.NoError(t, err)
	assert.Equal(t, domain.VouchStatusRevoked, stored.Status)

	audit := f.events.byKind(domain.EventVouchRevoked)
	require.Len(t, audit, 1)
	assert.Equal(t, "M0002", audit[0].MembNo)
	assert.Equal(t, []string{"M0002"}, f.invalidator.calls())
}

func TestRevokeVouchByAdmin(t *testing.T) {
	f := newVouchFixture(elderMember("ELDER1"), testMember("M0002", 100))
	f.vouches.vouches["v1"] = activeVouch("v1", "ELDER1", "M0002", 5)

	err := f.svc.Revoke(context.Background(), "v1", "ADMIN001", true)
	assert.NoError(t, err)
}

func TestRevokeVouchForbiddenForOthers(t *testing.T) {
	f := newVouchFixture(elderMember("ELDER1"), testMember("M0002", 100))
	f.vouches.vouches["v1"] = activeVouch("v1", "ELDER1", "M0002", 5)

	err := f.svc.Revoke(context.Background(), "v1", "M0002", false)
	assert.ErrorIs(t, err, domain.ErrVouchRevokeForbidden)
}

func TestRevokeLapsedVouch(t *testing.T) {
	f := newVouchFixture(elderMember("ELDER1"), testMember("M0002", 100))
	v := activeVouch("v1", "ELDER1", "M0002", 5)
	v.ExpiresAt = time.Now().Add(-time.Hour) // stored ACTIVE, effectively expired
	f.vouches.vouches["v1"] = v

	err := f.svc.Revoke(context.Background(), "v1", "ELDER1", false)
	assert.ErrorIs(t, err, domain.ErrVouchNotActive)
}

func TestRevokeUnknownVouch(t *testing.T) {
	f := newVouchFixture(elderMember("ELDER1"))

	err := f.svc.Revoke(context.Background(), "missing", "ELDER1", false)
	assert.ErrorIs(t, err, domain.ErrVouchNotFound)
}

func TestListByMemberReportsLazyExpiry(t *testing.T) {
	f := newVouchFixture(elderMember("ELDER1"), testMember("M0002", 100))
	v := activeVouch("v1", "ELDER1", "M0002", 5)
	v.ExpiresAt = time.Now().Add(-time.Hour)
	f.vouches.vouches["v1"] = v

	got, err := f.svc.ListByMember(context.Background(), "M0002")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.VouchStatusExpired, got[0].Status)
}

func TestEndorse(t *testing.T) {
	f := newVouchFixture(testMember("M0001", 400), testMember("M0002", 300))
	f.circles.setSharedSince(7, "M0001", "M0002", time.Now().AddDate(0, 0, -60))

	endorsement, err := f.svc.Endorse(context.Background(), &EndorseInput{
		FromNo:   "M0001",
		ToNo:     "M0002",
		CircleID: 7,
		Message:  "Always pays on time",
	})
	require.NoError(t, err)
	assert.Equal(t, "M0002", endorsement.ToNo)

	// Endorsements reach the diversity factor through the event log.
	audit := f.events.byKind(domain.EventEndorsement)
	require.Len(t, audit, 1)
	assert.Equal(t, "M0002", audit[0].MembNo)
	assert.Equal(t, []string{"M0002"}, f.invalidator.calls())
}

func TestEndorseSelf(t *testing.T) {
	f := newVouchFixture(testMember("M0001", 400))

	_, err := f.svc.Endorse(context.Background(), &EndorseInput{
		FromNo:   "M0001",
		ToNo:     "M0001",
		CircleID: 7,
	})
	assert.ErrorIs(t, err, domain.ErrSelfEndorsement)
}

func TestEndorseRequiresSharedTenure(t *testing.T) {
	f := newVouchFixture(testMember("M0001", 400), testMember("M0002", 300))

	// Not in the same circle at all.
	_, err := f.svc.Endorse(context.Background(), &EndorseInput{
		FromNo:   "M0001",
		ToNo:     "M0002",
		CircleID: 7,
	})
	assert.ErrorIs(t, err, domain.ErrNoSharedCircleTenure)

	// Shared, but only for ten days.
	f.circles.setSharedSince(7, "M0001", "M0002", time.Now().AddDate(0, 0, -10))
	_, err = f.svc.Endorse(context.Background(), &EndorseInput{
		FromNo:   "M0001",
		ToNo:     "M0002",
		CircleID: 7,
	})
	assert.ErrorIs(t, err, domain.ErrNoSharedCircleTenure)
}

func TestEndorseDuplicate(t *testing.T) {
	f := newVouchFixture(testMember("M0001", 400), testMember("M0002", 300))
	f.circles.setSharedSince(7, "M0001", "M0002", time.Now().AddDate(0, 0, -60))

	input := &EndorseInput{FromNo: "M0001", ToNo: "M0002", CircleID: 7}
	_, err := f.svc.Endorse(context.Background(), input)
	require.NoError(t, err)

	_, err = f.svc.Endorse(context.Background(), input)
	assert.ErrorIs(t, err, domain.ErrDuplicateEndorsement)
}
