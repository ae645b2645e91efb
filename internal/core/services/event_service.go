package services

import (
	"context"
	"log"
	"time"

	"tanda-xntrust/internal/adapters/persistence/models"
	"tanda-xntrust/internal/adapters/persistence/repositories"
	"tanda-xntrust/internal/core/domain"

	"github.com/google/uuid"
)

// clockSkewTolerance allows for minor clock drift between the publishing
// engines and this service when rejecting future-dated events.
const clockSkewTolerance = 2 * time.Minute

// EventService handles the append-only score event log
type EventService struct {
	eventRepo   repositories.EventRepository
	memberRepo  repositories.MemberRepository
	invalidator Invalidator
}

// Invalidator receives member numbers whose cached score is now stale.
// Delivery is best-effort; the snapshot max-age check catches missed sends.
type Invalidator interface {
	Invalidate(membNo string)
}

// NewEventService creates a new event service
func NewEventService(
	eventRepo repositories.EventRepository,
	memberRepo repositories.MemberRepository,
	invalidator Invalidator,
) *EventService {
	return &EventService{
		eventRepo:   eventRepo,
		memberRepo:  memberRepo,
		invalidator: invalidator,
	}
}

// AppendEventInput represents an incoming score event
type AppendEventInput struct {
	MembNo     string    `json:"memb_no" validate:"required"`
	Kind       string    `json:"kind" validate:"required"`
	Magnitude  float64   `json:"magnitude" validate:"required"`
	OccurredAt time.Time `json:"occurred_at" validate:"required"`
	Metadata   string    `json:"metadata"`
}

// Append validates and stores a new event. Validation failures reject the
// whole event; nothing is stored and no score changes.
func (s *EventService) Append(ctx context.Context, input *AppendEventInput) (*models.ScoreEvent, error) {
	kind := domain.EventKind(input.Kind)
	if !kind.Valid() {
		return nil, domain.ErrUnknownEventKind
	}

	min, max := kind.MagnitudeRange()
	if input.Magnitude < min || input.Magnitude > max {
		return nil, domain.ErrMagnitudeOutOfRange
	}

	if input.OccurredAt.After(time.Now().Add(clockSkewTolerance)) {
		return nil, domain.ErrEventInFuture
	}

	exists, err := s.memberRepo.Exists(ctx, input.MembNo)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrEventMemberNotFound
	}

	event := &models.ScoreEvent{
		ID:         uuid.New().String(),
		MembNo:     input.MembNo,
		Kind:       string(kind),
		Magnitude:  input.Magnitude,
		OccurredAt: input.OccurredAt.UTC(),
		Metadata:   input.Metadata,
	}

	if err := s.eventRepo.Append(ctx, event); err != nil {
		return nil, err
	}

	// Mark the cached score stale. Fire-and-forget: appending must not wait
	// on recomputation.
	if s.invalidator != nil {
		s.invalidator.Invalidate(input.MembNo)
	}

	log.Printf("📥 Event appended: %s %s (%.2f)", event.MembNo, event.Kind, event.Magnitude)
	return event, nil
}

// History returns a member's full event timeline, oldest first, with
// optional kind and since filters
func (s *EventService) History(ctx context.Context, membNo, kind string, since time.Time) ([]*models.ScoreEvent, error) {
	if kind != "" && !domain.EventKind(kind).Valid() {
		return nil, domain.ErrUnknownEventKind
	}

	exists, err := s.memberRepo.Exists(ctx, membNo)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrUnknownMember
	}

	return s.eventRepo.History(ctx, membNo, kind, since)
}
