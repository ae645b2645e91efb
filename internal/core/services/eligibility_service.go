package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"tanda-xntrust/internal/adapters/persistence/repositories"
	"tanda-xntrust/internal/core/domain"

	"gorm.io/gorm"
)

// Eligibility errors
var (
	ErrCircleNotFound = errors.New("circle not found")
)

// EligibilityService decides whether a member may join a circle. It fails
// closed: when the score cannot be determined at all, the answer is no.
type EligibilityService struct {
	memberRepo   repositories.MemberRepository
	circleRepo   repositories.CircleRepository
	eventRepo    repositories.EventRepository
	scoreService *ScoreService
}

// NewEligibilityService creates a new eligibility service
func NewEligibilityService(
	memberRepo repositories.MemberRepository,
	circleRepo repositories.CircleRepository,
	eventRepo repositories.EventRepository,
	scoreService *ScoreService,
) *EligibilityService {
	return &EligibilityService{
		memberRepo:   memberRepo,
		circleRepo:   circleRepo,
		eventRepo:    eventRepo,
		scoreService: scoreService,
	}
}

// EligibilityResult is the gate's verdict with every failing reason, not
// just the first, so the UI can show the member the full picture.
type EligibilityResult struct {
	MembNo   string          `json:"memb_no"`
	CircleID uint            `json:"circle_id"`
	CanJoin  bool            `json:"can_join"`
	Score    *float64        `json:"score,omitempty"`
	Tier     *int            `json:"tier,omitempty"`
	Reasons  []domain.Reason `json:"reasons"`
}

// CanJoin evaluates all join rules for a member against a circle
func (s *EligibilityService) CanJoin(ctx context.Context, membNo string, circleID uint) (*EligibilityResult, error) {
	member, err := s.memberRepo.GetByMembNo(ctx, membNo)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownMember
		}
		return nil, err
	}

	circle, err := s.circleRepo.GetByID(ctx, circleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCircleNotFound
		}
		return nil, err
	}

	result := &EligibilityResult{
		MembNo:   membNo,
		CircleID: circleID,
		Reasons:  []domain.Reason{},
	}

	if !member.IsActive {
		result.addReason(domain.ReasonMemberInactive, "member account is deactivated")
	}

	if !circle.IsActive {
		result.addReason(domain.ReasonCircleInactive, "circle is not accepting members")
	}

	// Every rule below fails closed: a check that cannot run counts as a
	// failing reason, never as an approval and never as a 500.
	alreadyIn, err := s.circleRepo.IsMember(ctx, circleID, membNo)
	if err != nil {
		log.Printf("🔒 Eligibility fail-closed for %s: membership check: %v", membNo, err)
		result.addReason(domain.ReasonCheckUnavailable, "circle membership could not be verified")
	} else if alreadyIn {
		result.addReason(domain.ReasonAlreadyMember, "member already belongs to this circle")
	}

	count, err := s.circleRepo.ActiveMemberCount(ctx, circleID)
	if err != nil {
		log.Printf("🔒 Eligibility fail-closed for %s: capacity check: %v", membNo, err)
		result.addReason(domain.ReasonCheckUnavailable, "circle capacity could not be verified")
	} else if count >= int64(circle.MaxMembers) {
		result.addReason(domain.ReasonCircleFull,
			fmt.Sprintf("circle is full (%d/%d members)", count, circle.MaxMembers))
	}

	// Score checks. A stale snapshot is still usable; any failure to get a
	// score at all blocks the join and the remaining rules keep running.
	detail, err := s.scoreService.GetScore(ctx, membNo)
	if err != nil {
		log.Printf("🔒 Eligibility fail-closed for %s: score unavailable: %v", membNo, err)
		result.addReason(domain.ReasonScoreUnavailable, "score could not be determined")
	} else {
		result.Score = &detail.Display
		result.Tier = &detail.Tier

		if domain.Tier(detail.Tier) == domain.TierCritical {
			result.addReason(domain.ReasonCriticalTier, "critical tier members cannot join circles")
		}

		if detail.Score < circle.MinXnScore {
			result.addReason(domain.ReasonScoreBelowMinimum,
				fmt.Sprintf("score %.1f is below the circle minimum %.1f", detail.Display, circle.MinXnScore))
		}
	}

	unresolved, err := s.hasUnresolvedDefault(ctx, membNo)
	if err != nil {
		log.Printf("🔒 Eligibility fail-closed for %s: default check: %v", membNo, err)
		result.addReason(domain.ReasonCheckUnavailable, "default history could not be verified")
	} else if unresolved {
		result.addReason(domain.ReasonUnresolvedDefault, "member has an unresolved circle default")
	}

	result.CanJoin = len(result.Reasons) == 0
	return result, nil
}

// hasUnresolvedDefault reports whether the member's most recent default
// remains unresolved (no DEFAULT_RESOLVED event at or after it)
func (s *EligibilityService) hasUnresolvedDefault(ctx context.Context, membNo string) (bool, error) {
	defaults, err := s.eventRepo.History(ctx, membNo, string(domain.EventCircleDefaulted), time.Time{})
	if err != nil {
		return false, err
	}
	if len(defaults) == 0 {
		return false, nil
	}
	lastDefault := defaults[len(defaults)-1].OccurredAt

	resolutions, err := s.eventRepo.History(ctx, membNo, string(domain.EventDefaultResolved), lastDefault)
	if err != nil {
		return false, err
	}
	return len(resolutions) == 0, nil
}

func (r *EligibilityResult) addReason(code, message string) {
	r.Reasons = append(r.Reasons, domain.Reason{Code: code, Message: message})
}
