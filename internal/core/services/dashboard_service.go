package services

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// DashboardService handles dashboard operations
type DashboardService struct {
	db *gorm.DB
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

// ============================================================
// Admin Dashboard
// ============================================================

// AdminDashboardData represents admin dashboard data
type AdminDashboardData struct {
	// Member Statistics
	TotalMembers    int64   `json:"total_members"`
	ActiveMembers   int64   `json:"active_members"`
	AverageScore    float64 `json:"average_score"`
	MembersThisWeek int64   `json:"members_this_week"`

	// Tier Distribution
	TierDistribution []TierCount `json:"tier_distribution"`

	// Event Statistics
	TotalEvents    int64        `json:"total_events"`
	EventsThisWeek int64        `json:"events_this_week"`
	EventsByKind   []KindCount  `json:"events_by_kind"`
	RecentEvents   []EventBrief `json:"recent_events"`

	// Vouch Statistics
	ActiveVouches  int64 `json:"active_vouches"`
	RevokedVouches int64 `json:"revoked_vouches"`
	ExpiredVouches int64 `json:"expired_vouches"`
}

// TierCount represents member count per tier
type TierCount struct {
	Tier    int   `json:"tier"`
	Members int64 `json:"members"`
}

// KindCount represents event count per kind
type KindCount struct {
	Kind   string `json:"kind"`
	Events int64  `json:"events"`
}

// EventBrief represents a recent event line
type EventBrief struct {
	ID         string    `json:"id"`
	MembNo     string    `json:"memb_no"`
	Kind       string    `json:"kind"`
	Magnitude  float64   `json:"magnitude"`
	OccurredAt time.Time `json:"occurred_at"`
}

// GetAdminDashboard returns admin dashboard data
func (s *DashboardService) GetAdminDashboard(ctx context.Context) (*AdminDashboardData, error) {
	data := &AdminDashboardData{}

	// Member counts
	s.db.WithContext(ctx).Table("members").Count(&data.TotalMembers)
	s.db.WithContext(ctx).Table("members").Where("is_active = ?", true).Count(&data.ActiveMembers)

	s.db.WithContext(ctx).Table("members").
		Select("COALESCE(AVG(current_score), 0)").
		Where("is_active = ?", true).
		Scan(&data.AverageScore)

	startOfWeek := time.Now().AddDate(0, 0, -7)
	s.db.WithContext(ctx).Table("members").
		Where("created_at >= ?", startOfWeek).
		Count(&data.MembersThisWeek)

	// Tier distribution
	var tiers []TierCount
	s.db.WithContext(ctx).Table("members").
		Select("current_tier as tier, COUNT(*) as members").
		Where("is_active = ?", true).
		Group("current_tier").
		Order("current_tier ASC").
		Scan(&tiers)
	data.TierDistribution = tiers

	// Event counts
	s.db.WithContext(ctx).Table("score_events").Count(&data.TotalEvents)
	s.db.WithContext(ctx).Table("score_events").
		Where("occurred_at >= ?", startOfWeek).
		Count(&data.EventsThisWeek)

	var kinds []KindCount
	s.db.WithContext(ctx).Table("score_events").
		Select("kind, COUNT(*) as events").
		Group("kind").
		Order("events DESC").
		Scan(&kinds)
	data.EventsByKind = kinds

	// Recent events
	var recent []EventBrief
	s.db.WithContext(ctx).Table("score_events").
		Select("id, memb_no, kind, magnitude, occurred_at").
		Order("occurred_at DESC").
		Limit(10).
		Scan(&recent)
	data.RecentEvents = recent

	// Vouch counts by status
	now := time.Now()
	s.db.WithContext(ctx).Table("vouches").
		Where("status = ? AND expires_at > ?", "ACTIVE", now).
		Count(&data.ActiveVouches)
	s.db.WithContext(ctx).Table("vouches").
		Where("status = ?", "REVOKED").
		Count(&data.RevokedVouches)
	s.db.WithContext(ctx).Table("vouches").
		Where("status = ? OR (status = ? AND expires_at <= ?)", "EXPIRED", "ACTIVE", now).
		Count(&data.ExpiredVouches)

	return data, nil
}

// ============================================================
// Member Dashboard
// ============================================================

// MemberDashboardData represents a member's own dashboard data
type MemberDashboardData struct {
	// Score Summary
	Score    float64 `json:"score"`
	Tier     int     `json:"tier"`
	TierName string  `json:"tier_name"`

	// Activity Summary
	TotalEvents     int64 `json:"total_events"`
	OnTimePayments  int64 `json:"on_time_payments"`
	LatePayments    int64 `json:"late_payments"`
	MissedPayments  int64 `json:"missed_payments"`
	CompletedCycles int64 `json:"completed_cycles"`

	// Vouches
	VouchesReceived int64 `json:"vouches_received"`
	VouchesGiven    int64 `json:"vouches_given"`

	// Recent Activity
	RecentEvents []EventBrief `json:"recent_events"`
}

// GetMemberDashboard returns a member's own dashboard data
func (s *DashboardService) GetMemberDashboard(ctx context.Context, membNo string) (*MemberDashboardData, error) {
	data := &MemberDashboardData{}

	var member struct {
		CurrentScore float64
		CurrentTier  int
	}
	if err := s.db.WithContext(ctx).Table("members").
		Select("current_score, current_tier").
		Where("memb_no = ?", membNo).
		First(&member).Error; err != nil {
		return nil, err
	}
	data.Score = member.CurrentScore
	data.Tier = member.CurrentTier

	switch member.CurrentTier {
	case 1:
		data.TierName = "Elite"
	case 2:
		data.TierName = "Excellent"
	case 3:
		data.TierName = "Good"
	case 4:
		data.TierName = "Fair"
	case 5:
		data.TierName = "Poor"
	default:
		data.TierName = "Critical"
	}

	// Event counts
	s.db.WithContext(ctx).Table("score_events").
		Where("memb_no = ?", membNo).
		Count(&data.TotalEvents)
	s.db.WithContext(ctx).Table("score_events").
		Where("memb_no = ? AND kind = ?", membNo, "ON_TIME_PAYMENT").
		Count(&data.OnTimePayments)
	s.db.WithContext(ctx).Table("score_events").
		Where("memb_no = ? AND kind = ?", membNo, "LATE_PAYMENT").
		Count(&data.LatePayments)
	s.db.WithContext(ctx).Table("score_events").
		Where("memb_no = ? AND kind = ?", membNo, "MISSED_PAYMENT").
		Count(&data.MissedPayments)
	s.db.WithContext(ctx).Table("score_events").
		Where("memb_no = ? AND kind = ?", membNo, "CIRCLE_COMPLETED").
		Count(&data.CompletedCycles)

	// Vouch counts
	now := time.Now()
	s.db.WithContext(ctx).Table("vouches").
		Where("recipient_no = ? AND status = ? AND expires_at > ?", membNo, "ACTIVE", now).
		Count(&data.VouchesReceived)
	s.db.WithContext(ctx).Table("vouches").
		Where("voucher_no = ? AND status = ? AND expires_at > ?", membNo, "ACTIVE", now).
		Count(&data.VouchesGiven)

	// Recent events
	var recent []EventBrief
	s.db.WithContext(ctx).Table("score_events").
		Select("id, memb_no, kind, magnitude, occurred_at").
		Where("memb_no = ?", membNo).
		Order("occurred_at DESC").
		Limit(10).
		Scan(&recent)
	data.RecentEvents = recent

	return data, nil
}
