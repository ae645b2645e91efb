package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"tanda-xntrust/internal/adapters/persistence/models"
	"tanda-xntrust/internal/config"
	"tanda-xntrust/internal/core/domain"

	"gorm.io/gorm"
)

// In-memory repository stubs shared by the service tests.

func testConfig() *config.Config {
	return &config.Config{
		AppMode: "test",
		Scoring: config.ScoringConfig{
			TierElite:       88,
			TierExcellent:   75,
			TierGood:        60,
			TierFair:        45,
			TierPoor:        25,
			VouchTTLDays:    90,
			SweepSchedule:   "0 15 3 * * *",
			SnapshotMaxMins: 60,

			OnTimeRateWeight:    26,
			DefaultPenaltyRatio: 0.3,
			ReferenceDeposit:    500,
			FirstCircleBonus:    5,
			VouchPointsCap:      15,
		},
	}
}

// ------------------------------------------------------------
// Members
// ------------------------------------------------------------

type stubMemberRepo struct {
	mu      sync.Mutex
	members map[string]*models.Member
	err     error
}

func newStubMemberRepo(members ...*models.Member) *stubMemberRepo {
	r := &stubMemberRepo{members: make(map[string]*models.Member)}
	for _, m := range members {
		r.members[m.MembNo] = m
	}
	return r
}

func (r *stubMemberRepo) Create(_ context.Context, member *models.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members[member.MembNo] = member
	return r.err
}

func (r *stubMemberRepo) GetByMembNo(_ context.Context, membNo string) (*models.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	m, ok := r.members[membNo]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *m
	return &copied, nil
}

func (r *stubMemberRepo) Exists(_ context.Context, membNo string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return false, r.err
	}
	_, ok := r.members[membNo]
	return ok, nil
}

func (r *stubMemberRepo) List(_ context.Context, offset, limit int) ([]*models.Member, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Member, 0, len(r.members))
	for _, m := range r.members {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MembNo < out[j].MembNo })
	total := int64(len(out))
	if offset >= len(out) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], total, nil
}

func (r *stubMemberRepo) SetActive(_ context.Context, membNo string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[membNo]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	m.IsActive = active
	return nil
}

func (r *stubMemberRepo) UpdateScoreCache(_ context.Context, membNo string, score float64, tier int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[membNo]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	m.CurrentScore = score
	m.CurrentTier = tier
	return nil
}

// ------------------------------------------------------------
// Events
// ------------------------------------------------------------

type stubEventRepo struct {
	mu        sync.Mutex
	events    []*models.ScoreEvent
	appendErr error
	readErr   error
}

func (r *stubEventRepo) Append(_ context.Context, event *models.ScoreEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.appendErr != nil {
		return r.appendErr
	}
	copied := *event
	r.events = append(r.events, &copied)
	return nil
}

func (r *stubEventRepo) History(_ context.Context, membNo string, kind string, since time.Time) ([]*models.ScoreEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.readErr != nil {
		return nil, r.readErr
	}
	var out []*models.ScoreEvent
	for _, e := range r.events {
		if e.MembNo != membNo {
			continue
		}
		if kind != "" && e.Kind != kind {
			continue
		}
		if !since.IsZero() && e.OccurredAt.Before(since) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OccurredAt.Before(out[j].OccurredAt) })
	return out, nil
}

func (r *stubEventRepo) Recent(_ context.Context, membNo string, offset, limit int) ([]*models.ScoreEvent, int64, error) {
	all, err := r.History(context.Background(), membNo, "", time.Time{})
	if err != nil {
		return nil, 0, err
	}
	sort.Slice(all, func(i, j int) bool { return all[i].OccurredAt.After(all[j].OccurredAt) })
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *stubEventRepo) CountByKind(_ context.Context) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int64)
	for _, e := range r.events {
		counts[e.Kind]++
	}
	return counts, nil
}

func (r *stubEventRepo) byKind(kind domain.EventKind) []*models.ScoreEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.ScoreEvent
	for _, e := range r.events {
		if e.Kind == string(kind) {
			out = append(out, e)
		}
	}
	return out
}

// ------------------------------------------------------------
// Snapshots
// ------------------------------------------------------------

type stubSnapshotRepo struct {
	mu        sync.Mutex
	snapshots map[string]*models.ScoreSnapshot
	saveErr   error
	savedWith []int // expectedVersion of each Save call
}

func newStubSnapshotRepo() *stubSnapshotRepo {
	return &stubSnapshotRepo{snapshots: make(map[string]*models.ScoreSnapshot)}
}

func (r *stubSnapshotRepo) Get(_ context.Context, membNo string) (*models.ScoreSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.snapshots[membNo]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *stubSnapshotRepo) Save(_ context.Context, snapshot *models.ScoreSnapshot, expectedVersion int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.savedWith = append(r.savedWith, expectedVersion)
	if r.saveErr != nil {
		return r.saveErr
	}
	copied := *snapshot
	copied.Version = expectedVersion + 1
	r.snapshots[snapshot.MembNo] = &copied
	return nil
}

// ------------------------------------------------------------
// Vouches
// ------------------------------------------------------------

type stubVouchRepo struct {
	mu      sync.Mutex
	vouches map[string]*models.Vouch
}

func newStubVouchRepo(vouches ...*models.Vouch) *stubVouchRepo {
	r := &stubVouchRepo{vouches: make(map[string]*models.Vouch)}
	for _, v := range vouches {
		r.vouches[v.ID] = v
	}
	return r
}

func (r *stubVouchRepo) Create(_ context.Context, vouch *models.Vouch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *vouch
	r.vouches[vouch.ID] = &copied
	return nil
}

func (r *stubVouchRepo) GetByID(_ context.Context, id string) (*models.Vouch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.vouches[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *v
	return &copied, nil
}

func (r *stubVouchRepo) Revoke(_ context.Context, id string, actorNo string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.vouches[id]
	if !ok || v.Status != domain.VouchStatusActive {
		return gorm.ErrRecordNotFound
	}
	v.Status = domain.VouchStatusRevoked
	v.RevokedAt = &at
	v.RevokedBy = &actorNo
	return nil
}

func (r *stubVouchRepo) active(now time.Time, match func(*models.Vouch) bool) []*models.Vouch {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Vouch
	for _, v := range r.vouches {
		if v.Status == domain.VouchStatusActive && v.ExpiresAt.After(now) && match(v) {
			out = append(out, v)
		}
	}
	return out
}

func (r *stubVouchRepo) ActiveByVoucher(_ context.Context, voucherNo string, now time.Time) ([]*models.Vouch, error) {
	return r.active(now, func(v *models.Vouch) bool { return v.VoucherNo == voucherNo }), nil
}

func (r *stubVouchRepo) ActiveByRecipient(_ context.Context, recipientNo string, now time.Time) ([]*models.Vouch, error) {
	return r.active(now, func(v *models.Vouch) bool { return v.RecipientNo == recipientNo }), nil
}

func (r *stubVouchRepo) ListByMember(_ context.Context, membNo string) ([]*models.Vouch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Vouch
	for _, v := range r.vouches {
		if v.VoucherNo == membNo || v.RecipientNo == membNo {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *stubVouchRepo) ExpireLapsed(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, v := range r.vouches {
		if v.Status == domain.VouchStatusActive && !v.ExpiresAt.After(now) {
			v.Status = domain.VouchStatusExpired
			n++
		}
	}
	return n, nil
}

func (r *stubVouchRepo) CountActive(_ context.Context, now time.Time) (int64, error) {
	return int64(len(r.active(now, func(*models.Vouch) bool { return true }))), nil
}

// ------------------------------------------------------------
// Endorsements
// ------------------------------------------------------------

type stubEndorsementRepo struct {
	mu           sync.Mutex
	endorsements []*models.Endorsement
}

func (r *stubEndorsementRepo) Create(_ context.Context, endorsement *models.Endorsement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *endorsement
	r.endorsements = append(r.endorsements, &copied)
	return nil
}

func (r *stubEndorsementRepo) Exists(_ context.Context, fromNo, toNo string, circleID uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.endorsements {
		if e.FromNo == fromNo && e.ToNo == toNo && e.CircleID == circleID {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubEndorsementRepo) CountByRecipient(_ context.Context, toNo string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, e := range r.endorsements {
		if e.ToNo == toNo {
			n++
		}
	}
	return n, nil
}

// ------------------------------------------------------------
// Circles
// ------------------------------------------------------------

type stubCircleRepo struct {
	circles     map[uint]*models.Circle
	memberCount map[uint]int64
	memberships map[uint]map[string]bool
	sharedSince map[string]*time.Time // key: "circleID/a/b" both orders
	memberErr   error
	countErr    error
}

func newStubCircleRepo(circles ...*models.Circle) *stubCircleRepo {
	r := &stubCircleRepo{
		circles:     make(map[uint]*models.Circle),
		memberCount: make(map[uint]int64),
		memberships: make(map[uint]map[string]bool),
		sharedSince: make(map[string]*time.Time),
	}
	for _, c := range circles {
		r.circles[c.ID] = c
	}
	return r
}

func (r *stubCircleRepo) setMember(circleID uint, membNo string) {
	if r.memberships[circleID] == nil {
		r.memberships[circleID] = make(map[string]bool)
	}
	r.memberships[circleID][membNo] = true
}

func sharedKey(circleID uint, a, b string) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d/%s/%s", circleID, a, b)
}

func (r *stubCircleRepo) setSharedSince(circleID uint, a, b string, since time.Time) {
	r.sharedSince[sharedKey(circleID, a, b)] = &since
}

func (r *stubCircleRepo) GetByID(_ context.Context, id uint) (*models.Circle, error) {
	c, ok := r.circles[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *stubCircleRepo) List(_ context.Context, offset, limit int) ([]*models.Circle, int64, error) {
	out := make([]*models.Circle, 0, len(r.circles))
	for _, c := range r.circles {
		out = append(out, c)
	}
	return out, int64(len(out)), nil
}

func (r *stubCircleRepo) ActiveMemberCount(_ context.Context, circleID uint) (int64, error) {
	if r.countErr != nil {
		return 0, r.countErr
	}
	return r.memberCount[circleID], nil
}

func (r *stubCircleRepo) IsMember(_ context.Context, circleID uint, membNo string) (bool, error) {
	if r.memberErr != nil {
		return false, r.memberErr
	}
	return r.memberships[circleID][membNo], nil
}

func (r *stubCircleRepo) SharedTenureSince(_ context.Context, circleID uint, a, b string) (*time.Time, error) {
	return r.sharedSince[sharedKey(circleID, a, b)], nil
}

// ------------------------------------------------------------
// Collaborator stubs
// ------------------------------------------------------------

type stubInvalidator struct {
	mu     sync.Mutex
	membNo []string
}

func (s *stubInvalidator) Invalidate(membNo string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.membNo = append(s.membNo, membNo)
}

func (s *stubInvalidator) calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.membNo...)
}

type tierChange struct {
	membNo  string
	oldTier domain.Tier
	newTier domain.Tier
	score   float64
}

type stubListener struct {
	mu      sync.Mutex
	changes []tierChange
}

func (s *stubListener) TierChanged(membNo string, oldTier, newTier domain.Tier, score float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.changes = append(s.changes, tierChange{membNo, oldTier, newTier, score})
}

func (s *stubListener) all() []tierChange {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]tierChange(nil), s.changes...)
}
