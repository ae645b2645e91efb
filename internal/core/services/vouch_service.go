package services

import (
	"context"
	"errors"
	"log"
	"time"

	"tanda-xntrust/internal/adapters/persistence/models"
	"tanda-xntrust/internal/adapters/persistence/repositories"
	"tanda-xntrust/internal/config"
	"tanda-xntrust/internal/core/domain"
	"tanda-xntrust/internal/core/scoring"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// minSharedTenure is how long two members must have been in the same circle
// together before one may endorse the other.
const minSharedTenure = 30 * 24 * time.Hour

// VouchService handles the vouch ledger and peer endorsements
type VouchService struct {
	vouchRepo       repositories.VouchRepository
	endorsementRepo repositories.EndorsementRepository
	memberRepo      repositories.MemberRepository
	circleRepo      repositories.CircleRepository
	eventRepo       repositories.EventRepository
	invalidator     Invalidator
	ttl             time.Duration
	policy          scoring.Policy
}

// NewVouchService creates a new vouch service
func NewVouchService(
	vouchRepo repositories.VouchRepository,
	endorsementRepo repositories.EndorsementRepository,
	memberRepo repositories.MemberRepository,
	circleRepo repositories.CircleRepository,
	eventRepo repositories.EventRepository,
	invalidator Invalidator,
	cfg *config.Config,
) *VouchService {
	return &VouchService{
		vouchRepo:       vouchRepo,
		endorsementRepo: endorsementRepo,
		memberRepo:      memberRepo,
		circleRepo:      circleRepo,
		eventRepo:       eventRepo,
		invalidator:     invalidator,
		ttl:             time.Duration(cfg.Scoring.VouchTTLDays) * 24 * time.Hour,
		policy:          policyFromConfig(cfg),
	}
}

// IssueVouchInput represents vouch creation input
type IssueVouchInput struct {
	VoucherNo   string  `json:"-"`
	RecipientNo string  `json:"recipient_no" validate:"required"`
	Points      float64 `json:"points" validate:"required,gt=0"`
}

// EndorseInput represents endorsement creation input
type EndorseInput struct {
	FromNo   string `json:"-"`
	ToNo     string `json:"to_no" validate:"required"`
	CircleID uint   `json:"circle_id" validate:"required"`
	Message  string `json:"message" validate:"max=500"`
}

// Issue creates a new vouch from an elder-tier member. Every rule failure
// rejects the whole request; no partial state is written.
func (s *VouchService) Issue(ctx context.Context, input *IssueVouchInput) (*models.Vouch, error) {
	if input.VoucherNo == input.RecipientNo {
		return nil, domain.ErrSelfVouch
	}

	voucher, err := s.memberRepo.GetByMembNo(ctx, input.VoucherNo)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownMember
		}
		return nil, err
	}

	exists, err := s.memberRepo.Exists(ctx, input.RecipientNo)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrUnknownMember
	}

	// Vouching rights come from the voucher's current tier benefits.
	benefits := scoring.BenefitsFor(domain.Tier(voucher.CurrentTier))
	if !benefits.CanVouch {
		return nil, domain.ErrNotAnElder
	}
	if input.Points > benefits.MaxPointsPerVouch {
		return nil, domain.ErrVouchPointsTooHigh
	}

	now := time.Now()

	outstanding, err := s.vouchRepo.ActiveByVoucher(ctx, input.VoucherNo, now)
	if err != nil {
		return nil, err
	}
	if len(outstanding) >= benefits.MaxConcurrentVouches {
		return nil, domain.ErrVouchQuotaExceeded
	}

	// Recipient-side cap: the total active points on a member never exceeds
	// the policy cap, so a new vouch that would cross it is rejected up front
	// rather than silently truncated.
	received, err := s.vouchRepo.ActiveByRecipient(ctx, input.RecipientNo, now)
	if err != nil {
		return nil, err
	}
	var receivedPoints float64
	for _, v := range received {
		receivedPoints += v.Points
	}
	if receivedPoints+input.Points > s.policy.VouchPointsCap {
		return nil, domain.ErrVouchCapReached
	}

	vouch := &models.Vouch{
		ID:          uuid.New().String(),
		VoucherNo:   input.VoucherNo,
		RecipientNo: input.RecipientNo,
		Points:      input.Points,
		IssuedAt:    now,
		ExpiresAt:   now.Add(s.ttl),
		Status:      domain.VouchStatusActive,
	}

	if err := s.vouchRepo.Create(ctx, vouch); err != nil {
		return nil, err
	}

	s.appendAuditEvent(ctx, input.RecipientNo, domain.EventVouchReceived, input.Points, now)

	if s.invalidator != nil {
		s.invalidator.Invalidate(input.RecipientNo)
	}

	log.Printf("🤝 Vouch issued: %s → %s (%.1f pts)", vouch.VoucherNo, vouch.RecipientNo, vouch.Points)
	return vouch, nil
}

// Revoke withdraws an active vouch. Only the issuing elder or an admin may
// revoke; the boost disappears on the recipient's next recomputation.
func (s *VouchService) Revoke(ctx context.Context, vouchID, actorNo string, isAdmin bool) error {
	vouch, err := s.vouchRepo.GetByID(ctx, vouchID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrVouchNotFound
		}
		return err
	}

	if !isAdmin && vouch.VoucherNo != actorNo {
		return domain.ErrVouchRevokeForbidden
	}

	now := time.Now()
	if vouch.ToDomain().EffectiveStatus(now) != domain.VouchStatusActive {
		return domain.ErrVouchNotActive
	}

	if err := s.vouchRepo.Revoke(ctx, vouchID, actorNo, now); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrVouchNotActive
		}
		return err
	}

	s.appendAuditEvent(ctx, vouch.RecipientNo, domain.EventVouchRevoked, vouch.Points, now)

	if s.invalidator != nil {
		s.invalidator.Invalidate(vouch.RecipientNo)
	}

	log.Printf("🚫 Vouch revoked: %s by %s", vouchID, actorNo)
	return nil
}

// ListByMember returns every vouch a member is party to, with lazily
// evaluated status
func (s *VouchService) ListByMember(ctx context.Context, membNo string) ([]*models.VouchResponse, error) {
	exists, err := s.memberRepo.Exists(ctx, membNo)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrUnknownMember
	}

	vouches, err := s.vouchRepo.ListByMember(ctx, membNo)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	responses := make([]*models.VouchResponse, len(vouches))
	for i, v := range vouches {
		responses[i] = v.ToResponse(now)
	}
	return responses, nil
}

// Endorse records a peer testimonial. Requires 30 days of shared active
// tenure in the named circle and is unique per (from, to, circle).
func (s *VouchService) Endorse(ctx context.Context, input *EndorseInput) (*models.Endorsement, error) {
	if input.FromNo == input.ToNo {
		return nil, domain.ErrSelfEndorsement
	}

	exists, err := s.memberRepo.Exists(ctx, input.ToNo)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrUnknownMember
	}

	since, err := s.circleRepo.SharedTenureSince(ctx, input.CircleID, input.FromNo, input.ToNo)
	if err != nil {
		return nil, err
	}
	if since == nil || time.Since(*since) < minSharedTenure {
		return nil, domain.ErrNoSharedCircleTenure
	}

	dup, err := s.endorsementRepo.Exists(ctx, input.FromNo, input.ToNo, input.CircleID)
	if err != nil {
		return nil, err
	}
	if dup {
		return nil, domain.ErrDuplicateEndorsement
	}

	endorsement := &models.Endorsement{
		FromNo:   input.FromNo,
		ToNo:     input.ToNo,
		CircleID: input.CircleID,
		Message:  input.Message,
	}

	if err := s.endorsementRepo.Create(ctx, endorsement); err != nil {
		return nil, err
	}

	// Endorsements feed the diversity factor through the event log.
	s.appendAuditEvent(ctx, input.ToNo, domain.EventEndorsement, 1, time.Now())

	if s.invalidator != nil {
		s.invalidator.Invalidate(input.ToNo)
	}

	log.Printf("👍 Endorsement: %s → %s (circle %d)", input.FromNo, input.ToNo, input.CircleID)
	return endorsement, nil
}

// appendAuditEvent records a vouch or endorsement action in the member's
// event timeline. Failures are logged, not propagated: the ledger row is
// already committed.
func (s *VouchService) appendAuditEvent(ctx context.Context, membNo string, kind domain.EventKind, magnitude float64, at time.Time) {
	event := &models.ScoreEvent{
		ID:         uuid.New().String(),
		MembNo:     membNo,
		Kind:       string(kind),
		Magnitude:  magnitude,
		OccurredAt: at.UTC(),
	}
	if err := s.eventRepo.Append(ctx, event); err != nil {
		log.Printf("⚠️ Audit event append failed for %s: %v", membNo, err)
	}
}
