package services

import (
	"context"
	"errors"
	"log"
	"time"

	"tanda-xntrust/internal/adapters/persistence/models"
	"tanda-xntrust/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

// Member errors
var (
	ErrUnknownMember     = errors.New("member not found")
	ErrMemberNumberTaken = errors.New("member number already exists")
	ErrMemberDeactivated = errors.New("member is deactivated")
)

// MemberService handles member registry business logic
type MemberService struct {
	memberRepo repositories.MemberRepository
	eventRepo  repositories.EventRepository
}

// NewMemberService creates a new member service
func NewMemberService(
	memberRepo repositories.MemberRepository,
	eventRepo repositories.EventRepository,
) *MemberService {
	return &MemberService{
		memberRepo: memberRepo,
		eventRepo:  eventRepo,
	}
}

// CreateMemberInput represents member creation input
type CreateMemberInput struct {
	MembNo   string `json:"memb_no" validate:"required"`
	FullName string `json:"full_name" validate:"required"`
	Phone    string `json:"phone"`
}

// Create registers a new member record. Score starts at zero and tier at
// Critical; the first aggregation moves both.
func (s *MemberService) Create(ctx context.Context, input *CreateMemberInput) (*models.Member, error) {
	exists, err := s.memberRepo.Exists(ctx, input.MembNo)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrMemberNumberTaken
	}

	member := &models.Member{
		MembNo:           input.MembNo,
		FullName:         input.FullName,
		Phone:            input.Phone,
		IsActive:         true,
		AccountCreatedAt: time.Now(),
		CurrentTier:      6,
	}

	if err := s.memberRepo.Create(ctx, member); err != nil {
		return nil, err
	}

	log.Printf("✅ Member created: %s", member.MembNo)
	return member, nil
}

// GetByMembNo gets a member by member number
func (s *MemberService) GetByMembNo(ctx context.Context, membNo string) (*models.Member, error) {
	member, err := s.memberRepo.GetByMembNo(ctx, membNo)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownMember
		}
		return nil, err
	}
	return member, nil
}

// List lists members with pagination
func (s *MemberService) List(ctx context.Context, offset, limit int) ([]*models.Member, int64, error) {
	return s.memberRepo.List(ctx, offset, limit)
}

// SetActive activates or deactivates a member
func (s *MemberService) SetActive(ctx context.Context, membNo string, active bool) error {
	if err := s.memberRepo.SetActive(ctx, membNo, active); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUnknownMember
		}
		return err
	}

	log.Printf("✅ Member %s active=%v", membNo, active)
	return nil
}

// RecentEvents returns a member's newest events, paginated
func (s *MemberService) RecentEvents(ctx context.Context, membNo string, offset, limit int) ([]*models.ScoreEvent, int64, error) {
	exists, err := s.memberRepo.Exists(ctx, membNo)
	if err != nil {
		return nil, 0, err
	}
	if !exists {
		return nil, 0, ErrUnknownMember
	}

	return s.eventRepo.Recent(ctx, membNo, offset, limit)
}
