package repositories

import (
	"context"
	"time"

	"tanda-xntrust/internal/adapters/persistence/models"
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByMembNo(ctx context.Context, membNo string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	List(ctx context.Context, offset, limit int) ([]*models.User, int64, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByMembNo(ctx context.Context, membNo string) (bool, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) error
}

// MemberRepository defines member repository interface
type MemberRepository interface {
	Create(ctx context.Context, member *models.Member) error
	GetByMembNo(ctx context.Context, membNo string) (*models.Member, error)
	Exists(ctx context.Context, membNo string) (bool, error)
	List(ctx context.Context, offset, limit int) ([]*models.Member, int64, error)
	SetActive(ctx context.Context, membNo string, active bool) error
	// UpdateScoreCache is reserved for the score service; no other caller
	// may write the derived score columns.
	UpdateScoreCache(ctx context.Context, membNo string, score float64, tier int) error
}

// EventRepository defines the append-only score event log interface.
// Append never updates existing rows; History returns events ordered by
// occurred_at ascending so streak math sees them in timeline order.
type EventRepository interface {
	Append(ctx context.Context, event *models.ScoreEvent) error
	History(ctx context.Context, membNo string, kind string, since time.Time) ([]*models.ScoreEvent, error)
	Recent(ctx context.Context, membNo string, offset, limit int) ([]*models.ScoreEvent, int64, error)
	CountByKind(ctx context.Context) (map[string]int64, error)
}

// SnapshotRepository defines the score snapshot cache interface.
// Save is a compare-and-swap on Version; a stale writer loses silently.
type SnapshotRepository interface {
	Get(ctx context.Context, membNo string) (*models.ScoreSnapshot, error)
	Save(ctx context.Context, snapshot *models.ScoreSnapshot, expectedVersion int) error
}

// VouchRepository defines vouch ledger repository interface
type VouchRepository interface {
	Create(ctx context.Context, vouch *models.Vouch) error
	GetByID(ctx context.Context, id string) (*models.Vouch, error)
	Revoke(ctx context.Context, id string, actorNo string, at time.Time) error
	ActiveByVoucher(ctx context.Context, voucherNo string, now time.Time) ([]*models.Vouch, error)
	ActiveByRecipient(ctx context.Context, recipientNo string, now time.Time) ([]*models.Vouch, error)
	ListByMember(ctx context.Context, membNo string) ([]*models.Vouch, error)
	ExpireLapsed(ctx context.Context, now time.Time) (int64, error)
	CountActive(ctx context.Context, now time.Time) (int64, error)
}

// EndorsementRepository defines endorsement repository interface
type EndorsementRepository interface {
	Create(ctx context.Context, endorsement *models.Endorsement) error
	Exists(ctx context.Context, fromNo, toNo string, circleID uint) (bool, error)
	CountByRecipient(ctx context.Context, toNo string) (int64, error)
}

// CircleRepository defines circle repository interface.
// Read-only: circles and circle_memberships belong to the circle engine.
type CircleRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Circle, error)
	List(ctx context.Context, offset, limit int) ([]*models.Circle, int64, error)
	ActiveMemberCount(ctx context.Context, circleID uint) (int64, error)
	IsMember(ctx context.Context, circleID uint, membNo string) (bool, error)
	SharedTenureSince(ctx context.Context, circleID uint, a, b string) (*time.Time, error)
}
