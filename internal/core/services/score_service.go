package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"tanda-xntrust/internal/adapters/persistence/models"
	"tanda-xntrust/internal/adapters/persistence/repositories"
	"tanda-xntrust/internal/config"
	"tanda-xntrust/internal/core/domain"
	"tanda-xntrust/internal/core/scoring"

	"gorm.io/gorm"
)

// policyFromConfig starts from the standard scoring policy and applies the
// per-deployment weight overrides.
func policyFromConfig(cfg *config.Config) scoring.Policy {
	p := scoring.DefaultPolicy()
	if cfg.Scoring.OnTimeRateWeight > 0 {
		p.OnTimeRateWeight = cfg.Scoring.OnTimeRateWeight
	}
	if cfg.Scoring.DefaultPenaltyRatio > 0 {
		p.DefaultPenaltyRatio = cfg.Scoring.DefaultPenaltyRatio
	}
	if cfg.Scoring.ReferenceDeposit > 0 {
		p.ReferenceDeposit = cfg.Scoring.ReferenceDeposit
	}
	if cfg.Scoring.FirstCircleBonus > 0 {
		p.FirstCircleBonus = cfg.Scoring.FirstCircleBonus
	}
	if cfg.Scoring.VouchPointsCap > 0 {
		p.VouchPointsCap = cfg.Scoring.VouchPointsCap
	}
	return p
}

// TierChangeListener is notified after a recomputation moves a member to a
// different tier. Called outside the member lock.
type TierChangeListener interface {
	TierChanged(membNo string, oldTier, newTier domain.Tier, score float64)
}

// ScoreService owns score computation, the snapshot cache and the derived
// score columns on members. No other component writes any of those.
type ScoreService struct {
	memberRepo   repositories.MemberRepository
	eventRepo    repositories.EventRepository
	snapshotRepo repositories.SnapshotRepository
	vouchRepo    repositories.VouchRepository
	policy       scoring.Policy
	thresholds   scoring.Thresholds
	maxAge       time.Duration
	listener     TierChangeListener

	mu    sync.Mutex
	locks map[string]*sync.Mutex

	invalidations chan string
	done          chan struct{}
}

// NewScoreService creates a new score service
func NewScoreService(
	memberRepo repositories.MemberRepository,
	eventRepo repositories.EventRepository,
	snapshotRepo repositories.SnapshotRepository,
	vouchRepo repositories.VouchRepository,
	cfg *config.Config,
	listener TierChangeListener,
) *ScoreService {
	return &ScoreService{
		memberRepo:   memberRepo,
		eventRepo:    eventRepo,
		snapshotRepo: snapshotRepo,
		vouchRepo:    vouchRepo,
		policy:       policyFromConfig(cfg),
		thresholds: scoring.Thresholds{
			Elite:     cfg.Scoring.TierElite,
			Excellent: cfg.Scoring.TierExcellent,
			Good:      cfg.Scoring.TierGood,
			Fair:      cfg.Scoring.TierFair,
			Poor:      cfg.Scoring.TierPoor,
		},
		maxAge:        time.Duration(cfg.Scoring.SnapshotMaxMins) * time.Minute,
		listener:      listener,
		locks:         make(map[string]*sync.Mutex),
		invalidations: make(chan string, 1024),
		done:          make(chan struct{}),
	}
}

// ScoreDetail is the full score report for a member
type ScoreDetail struct {
	MembNo     string                `json:"memb_no"`
	Score      float64               `json:"score"`
	Display    float64               `json:"display_score"`
	Tier       int                   `json:"tier"`
	TierName   string                `json:"tier_name"`
	Benefits   domain.TierBenefits   `json:"benefits"`
	Factors    []scoring.FactorScore `json:"factors"`
	FirstBonus float64               `json:"first_circle_bonus"`
	VouchBonus float64               `json:"vouch_bonus"`
	AgeCap     float64               `json:"age_cap"`
	Capped     bool                  `json:"capped"`
	Stale      bool                  `json:"stale"`
	ComputedAt time.Time             `json:"computed_at"`
}

// Invalidate queues a member for recomputation. Never blocks the caller: if
// the queue is full the send is dropped and the snapshot max-age check picks
// the member up on the next read.
func (s *ScoreService) Invalidate(membNo string) {
	select {
	case s.invalidations <- membNo:
	default:
		log.Printf("⚠️ Invalidation queue full, dropping %s", membNo)
	}
}

// StartWorker consumes the invalidation queue until Stop is called
func (s *ScoreService) StartWorker() {
	go func() {
		log.Println("🚀 Score invalidation worker started")
		for {
			select {
			case membNo := <-s.invalidations:
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				if _, err := s.Recompute(ctx, membNo); err != nil {
					log.Printf("⚠️ Recompute failed for %s: %v", membNo, err)
				}
				cancel()
			case <-s.done:
				log.Println("🛑 Score invalidation worker stopped")
				return
			}
		}
	}()
}

// Stop shuts down the invalidation worker
func (s *ScoreService) Stop() {
	close(s.done)
}

// GetScore returns a member's score, recomputing when the snapshot is
// missing or older than the configured max age. If recomputation fails but a
// snapshot exists, the snapshot is returned flagged stale; with no snapshot
// either, the caller gets ErrStaleData.
func (s *ScoreService) GetScore(ctx context.Context, membNo string) (*ScoreDetail, error) {
	exists, err := s.memberRepo.Exists(ctx, membNo)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrMemberNotFound
	}

	snapshot, err := s.snapshotRepo.Get(ctx, membNo)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if snapshot != nil && time.Since(snapshot.ComputedAt) <= s.maxAge {
		return s.detailFromSnapshot(snapshot, false), nil
	}

	detail, recomputeErr := s.Recompute(ctx, membNo)
	if recomputeErr == nil {
		return detail, nil
	}

	// Degrade to the stale snapshot rather than failing the read.
	if snapshot != nil {
		log.Printf("⚠️ Serving stale snapshot for %s: %v", membNo, recomputeErr)
		return s.detailFromSnapshot(snapshot, true), nil
	}

	return nil, domain.ErrStaleData
}

// Recompute replays a member's full history and saves a fresh snapshot.
// Serialized per member; concurrent recomputations of different members
// proceed independently.
func (s *ScoreService) Recompute(ctx context.Context, membNo string) (*ScoreDetail, error) {
	lock := s.memberLock(membNo)
	lock.Lock()
	defer lock.Unlock()

	member, err := s.memberRepo.GetByMembNo(ctx, membNo)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMemberNotFound
		}
		return nil, err
	}

	rows, err := s.eventRepo.History(ctx, membNo, "", time.Time{})
	if err != nil {
		return nil, err
	}
	history := make([]domain.ScoreEvent, len(rows))
	for i, r := range rows {
		history[i] = r.ToDomain()
	}

	now := time.Now()

	vouches, err := s.vouchRepo.ActiveByRecipient(ctx, membNo, now)
	if err != nil {
		return nil, err
	}
	var vouchPoints float64
	for _, v := range vouches {
		vouchPoints += v.Points
	}

	ageDays := member.ToDomain().AccountAgeDays(now)
	result := scoring.Aggregate(history, ageDays, vouchPoints, now, s.policy)
	tier := scoring.ResolveTier(result.Score, s.thresholds)

	breakdown, err := json.Marshal(result.Factors)
	if err != nil {
		return nil, err
	}

	expectedVersion := 0
	if prev, err := s.snapshotRepo.Get(ctx, membNo); err == nil {
		expectedVersion = prev.Version
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	snapshot := &models.ScoreSnapshot{
		MembNo:           membNo,
		Score:            result.Score,
		DisplayScore:     result.Display,
		Tier:             int(tier),
		FactorBreakdown:  string(breakdown),
		FirstCircleBonus: result.FirstCircleBonus,
		VouchBonus:       result.VouchBonus,
		AgeCap:           result.AgeCap,
		ComputedAt:       now,
	}

	if err := s.snapshotRepo.Save(ctx, snapshot, expectedVersion); err != nil {
		if errors.Is(err, domain.ErrStaleData) {
			// Another writer won the race; its snapshot is at least as fresh.
			log.Printf("⚠️ Snapshot race lost for %s, keeping winner", membNo)
		} else {
			return nil, err
		}
	}

	oldTier := domain.Tier(member.CurrentTier)
	if err := s.memberRepo.UpdateScoreCache(ctx, membNo, result.Display, int(tier)); err != nil {
		return nil, err
	}

	if s.listener != nil && oldTier != tier {
		s.listener.TierChanged(membNo, oldTier, tier, result.Score)
	}

	return &ScoreDetail{
		MembNo:     membNo,
		Score:      result.Score,
		Display:    result.Display,
		Tier:       int(tier),
		TierName:   tier.Name(),
		Benefits:   scoring.BenefitsFor(tier),
		Factors:    result.Factors,
		FirstBonus: result.FirstCircleBonus,
		VouchBonus: result.VouchBonus,
		AgeCap:     result.AgeCap,
		Capped:     result.Capped,
		ComputedAt: now,
	}, nil
}

// Thresholds exposes the configured tier boundaries
func (s *ScoreService) Thresholds() scoring.Thresholds {
	return s.thresholds
}

// detailFromSnapshot rebuilds a ScoreDetail from a stored snapshot
func (s *ScoreService) detailFromSnapshot(snapshot *models.ScoreSnapshot, stale bool) *ScoreDetail {
	tier := domain.Tier(snapshot.Tier)

	var factors []scoring.FactorScore
	if snapshot.FactorBreakdown != "" {
		if err := json.Unmarshal([]byte(snapshot.FactorBreakdown), &factors); err != nil {
			log.Printf("⚠️ Corrupt factor breakdown for %s: %v", snapshot.MembNo, err)
		}
	}

	return &ScoreDetail{
		MembNo:     snapshot.MembNo,
		Score:      snapshot.Score,
		Display:    snapshot.DisplayScore,
		Tier:       snapshot.Tier,
		TierName:   tier.Name(),
		Benefits:   scoring.BenefitsFor(tier),
		Factors:    factors,
		FirstBonus: snapshot.FirstCircleBonus,
		VouchBonus: snapshot.VouchBonus,
		AgeCap:     snapshot.AgeCap,
		Capped:     snapshot.Score >= snapshot.AgeCap && snapshot.AgeCap < 100,
		Stale:      stale,
		ComputedAt: snapshot.ComputedAt,
	}
}

// memberLock returns the mutex serializing recomputation for one member
func (s *ScoreService) memberLock(membNo string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[membNo]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[membNo] = lock
	}
	return lock
}
