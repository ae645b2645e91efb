package models

import (
	"time"

	"gorm.io/gorm"

	"tanda-xntrust/internal/core/domain"
)

// ============================================================
// Auth & Account Tables
// ============================================================

// User represents users table (login accounts for members, elders, admins
// and trusted internal service callers)
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	MembNo    string         `gorm:"uniqueIndex;size:20;not null" json:"memb_no"`
	Username  string         `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email     string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password  string         `gorm:"size:255;not null" json:"-"`
	Role      string         `gorm:"size:20;default:'MEMBER'" json:"role"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO
type UserResponse struct {
	ID        uint      `json:"id"`
	MembNo    string    `json:"memb_no"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		MembNo:    u.MembNo,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Member & Score Tables
// ============================================================

// Member represents members table. CurrentScore and CurrentTier are derived
// caches written exclusively by the score service; everything else in the
// system treats them as read-only.
type Member struct {
	MembNo           string    `gorm:"primaryKey;size:20" json:"memb_no"`
	FullName         string    `gorm:"size:100;not null" json:"full_name"`
	Phone            string    `gorm:"size:20" json:"phone"`
	IsActive         bool      `gorm:"default:true" json:"is_active"`
	AccountCreatedAt time.Time `gorm:"not null" json:"account_created_at"`
	CurrentScore     float64   `gorm:"type:decimal(5,2);default:0" json:"current_score"`
	CurrentTier      int       `gorm:"default:6" json:"current_tier"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Member) TableName() string {
	return "members"
}

func (m *Member) ToDomain() *domain.Member {
	return &domain.Member{
		MembNo:           m.MembNo,
		FullName:         m.FullName,
		Phone:            m.Phone,
		IsActive:         m.IsActive,
		AccountCreatedAt: m.AccountCreatedAt,
		CurrentScore:     m.CurrentScore,
		CurrentTier:      domain.Tier(m.CurrentTier),
	}
}

// ScoreEvent represents score_events table (append-only; rows are never
// updated or deleted — corrections arrive as compensating events)
type ScoreEvent struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	MembNo     string    `gorm:"size:20;not null;index:idx_events_member_time,priority:1" json:"memb_no"`
	Kind       string    `gorm:"size:30;not null;index" json:"kind"`
	Magnitude  float64   `gorm:"type:decimal(15,2);not null" json:"magnitude"`
	OccurredAt time.Time `gorm:"not null;index:idx_events_member_time,priority:2" json:"occurred_at"`
	Metadata   string    `gorm:"type:text" json:"metadata,omitempty"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (ScoreEvent) TableName() string {
	return "score_events"
}

func (e *ScoreEvent) ToDomain() domain.ScoreEvent {
	return domain.ScoreEvent{
		ID:         e.ID,
		MembNo:     e.MembNo,
		Kind:       domain.EventKind(e.Kind),
		Magnitude:  e.Magnitude,
		OccurredAt: e.OccurredAt,
		Metadata:   e.Metadata,
		CreatedAt:  e.CreatedAt,
	}
}

// ScoreSnapshot represents score_snapshots table. Owned and overwritten by
// the score service only; Version guards concurrent recomputations.
type ScoreSnapshot struct {
	MembNo           string    `gorm:"primaryKey;size:20" json:"memb_no"`
	Score            float64   `gorm:"type:decimal(7,4);not null" json:"score"`
	DisplayScore     float64   `gorm:"type:decimal(5,1);not null" json:"display_score"`
	Tier             int       `gorm:"not null" json:"tier"`
	FactorBreakdown  string    `gorm:"type:text" json:"-"`
	FirstCircleBonus float64   `gorm:"type:decimal(4,1)" json:"first_circle_bonus"`
	VouchBonus       float64   `gorm:"type:decimal(4,1)" json:"vouch_bonus"`
	AgeCap           float64   `gorm:"type:decimal(5,1)" json:"age_cap"`
	Version          int       `gorm:"not null;default:0" json:"-"`
	ComputedAt       time.Time `gorm:"not null" json:"computed_at"`
}

func (ScoreSnapshot) TableName() string {
	return "score_snapshots"
}

// ============================================================
// Vouch & Endorsement Tables
// ============================================================

// Vouch represents vouches table
type Vouch struct {
	ID          string     `gorm:"primaryKey;size:36" json:"id"`
	VoucherNo   string     `gorm:"size:20;not null;index" json:"voucher_no"`
	RecipientNo string     `gorm:"size:20;not null;index" json:"recipient_no"`
	Points      float64    `gorm:"type:decimal(4,1);not null" json:"points"`
	IssuedAt    time.Time  `gorm:"not null" json:"issued_at"`
	ExpiresAt   time.Time  `gorm:"not null;index" json:"expires_at"`
	Status      string     `gorm:"size:10;not null;default:'ACTIVE';index" json:"status"`
	RevokedAt   *time.Time `json:"revoked_at"`
	RevokedBy   *string    `gorm:"size:20" json:"revoked_by"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Vouch) TableName() string {
	return "vouches"
}

func (v *Vouch) ToDomain() *domain.Vouch {
	return &domain.Vouch{
		ID:          v.ID,
		VoucherNo:   v.VoucherNo,
		RecipientNo: v.RecipientNo,
		Points:      v.Points,
		IssuedAt:    v.IssuedAt,
		ExpiresAt:   v.ExpiresAt,
		Status:      v.Status,
		RevokedAt:   v.RevokedAt,
		RevokedBy:   v.RevokedBy,
	}
}

// VouchResponse DTO with lazily evaluated status
type VouchResponse struct {
	ID          string    `json:"id"`
	VoucherNo   string    `json:"voucher_no"`
	RecipientNo string    `json:"recipient_no"`
	Points      float64   `json:"points"`
	IssuedAt    time.Time `json:"issued_at"`
	ExpiresAt   time.Time `json:"expires_at"`
	Status      string    `json:"status"`
}

func (v *Vouch) ToResponse(now time.Time) *VouchResponse {
	return &VouchResponse{
		ID:          v.ID,
		VoucherNo:   v.VoucherNo,
		RecipientNo: v.RecipientNo,
		Points:      v.Points,
		IssuedAt:    v.IssuedAt,
		ExpiresAt:   v.ExpiresAt,
		Status:      v.ToDomain().EffectiveStatus(now),
	}
}

// Endorsement represents endorsements table
type Endorsement struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	FromNo    string    `gorm:"size:20;not null;index" json:"from_no"`
	ToNo      string    `gorm:"size:20;not null;index" json:"to_no"`
	CircleID  uint      `gorm:"not null" json:"circle_id"`
	Message   string    `gorm:"size:500" json:"message"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Endorsement) TableName() string {
	return "endorsements"
}

// ============================================================
// Circle Tables (owned by the circle engine — Read Only!)
// ============================================================

// Circle represents the circles table. The circle engine owns these rows;
// this service only reads min_xn_score / max_members for eligibility.
type Circle struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	Name               string    `gorm:"size:100;not null" json:"name"`
	MinXnScore         float64   `gorm:"type:decimal(5,2);not null" json:"min_xn_score"`
	MaxMembers         int       `gorm:"not null" json:"max_members"`
	ContributionAmount float64   `gorm:"type:decimal(15,2)" json:"contribution_amount"`
	FrequencyDays      int       `json:"frequency_days"`
	IsActive           bool      `gorm:"default:true" json:"is_active"`
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Circle) TableName() string {
	return "circles"
}

func (c *Circle) ToDomain() *domain.Circle {
	return &domain.Circle{
		ID:                 c.ID,
		Name:               c.Name,
		MinXnScore:         c.MinXnScore,
		MaxMembers:         c.MaxMembers,
		ContributionAmount: c.ContributionAmount,
		FrequencyDays:      c.FrequencyDays,
		IsActive:           c.IsActive,
	}
}

// CircleMembership represents circle_memberships table (Read Only!)
type CircleMembership struct {
	ID       uint       `gorm:"primaryKey" json:"id"`
	CircleID uint       `gorm:"not null;index" json:"circle_id"`
	MembNo   string     `gorm:"size:20;not null;index" json:"memb_no"`
	JoinedAt time.Time  `gorm:"not null" json:"joined_at"`
	LeftAt   *time.Time `json:"left_at"`
}

func (CircleMembership) TableName() string {
	return "circle_memberships"
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables.
// circles and circle_memberships are included so dev environments come up
// self-contained, but outside the dev seeder this service never writes them.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&Member{},
		&ScoreEvent{},
		&ScoreSnapshot{},
		&Vouch{},
		&Endorsement{},
		&Circle{},
		&CircleMembership{},
	)
}
