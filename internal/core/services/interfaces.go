package services

import (
	"context"
	"time"

	"tanda-xntrust/internal/adapters/persistence/models"
)

// Note: concrete implementations live in their *_service.go files. These
// interfaces exist so handlers and tests can swap implementations.

// EventAppender defines the write side of the event log
type EventAppender interface {
	Append(ctx context.Context, input *AppendEventInput) (*models.ScoreEvent, error)
	History(ctx context.Context, membNo, kind string, since time.Time) ([]*models.ScoreEvent, error)
}

// ScoreReader defines score lookup
type ScoreReader interface {
	GetScore(ctx context.Context, membNo string) (*ScoreDetail, error)
	Recompute(ctx context.Context, membNo string) (*ScoreDetail, error)
}

// VouchLedger defines vouch and endorsement operations
type VouchLedger interface {
	Issue(ctx context.Context, input *IssueVouchInput) (*models.Vouch, error)
	Revoke(ctx context.Context, vouchID, actorNo string, isAdmin bool) error
	ListByMember(ctx context.Context, membNo string) ([]*models.VouchResponse, error)
	Endorse(ctx context.Context, input *EndorseInput) (*models.Endorsement, error)
}

// EligibilityGate defines the join gate
type EligibilityGate interface {
	CanJoin(ctx context.Context, membNo string, circleID uint) (*EligibilityResult, error)
}
