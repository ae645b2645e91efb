package repositories

import (
	"context"
	"time"

	"tanda-xntrust/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// circleRepository implements CircleRepository interface. The circle engine
// owns these tables; every method here is a read.
type circleRepository struct {
	db *gorm.DB
}

// NewCircleRepository creates a new circle repository
func NewCircleRepository(db *gorm.DB) CircleRepository {
	return &circleRepository{db: db}
}

// GetByID gets a circle by ID
func (r *circleRepository) GetByID(ctx context.Context, id uint) (*models.Circle, error) {
	var circle models.Circle
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&circle).Error
	if err != nil {
		return nil, err
	}
	return &circle, nil
}

// List lists circles with pagination
func (r *circleRepository) List(ctx context.Context, offset, limit int) ([]*models.Circle, int64, error) {
	var circles []*models.Circle
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Circle{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := r.db.WithContext(ctx).
		Order("id ASC").
		Offset(offset).Limit(limit).
		Find(&circles).Error; err != nil {
		return nil, 0, err
	}

	return circles, total, nil
}

// ActiveMemberCount counts members currently in a circle (left_at unset)
func (r *circleRepository) ActiveMemberCount(ctx context.Context, circleID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CircleMembership{}).
		Where("circle_id = ? AND left_at IS NULL", circleID).
		Count(&count).Error
	return count, err
}

// IsMember checks whether a member is currently in a circle
func (r *circleRepository) IsMember(ctx context.Context, circleID uint, membNo string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CircleMembership{}).
		Where("circle_id = ? AND memb_no = ? AND left_at IS NULL", circleID, membNo).
		Count(&count).Error
	return count > 0, err
}

// SharedTenureSince returns the moment both members were active in the
// circle together (the later of their joined_at values), or nil if either
// is absent
func (r *circleRepository) SharedTenureSince(ctx context.Context, circleID uint, a, b string) (*time.Time, error) {
	var memberships []models.CircleMembership
	err := r.db.WithContext(ctx).
		Where("circle_id = ? AND memb_no IN ? AND left_at IS NULL", circleID, []string{a, b}).
		Find(&memberships).Error
	if err != nil {
		return nil, err
	}
	if len(memberships) < 2 {
		return nil, nil
	}

	since := memberships[0].JoinedAt
	for _, m := range memberships[1:] {
		if m.JoinedAt.After(since) {
			since = m.JoinedAt
		}
	}
	return &since, nil
}
