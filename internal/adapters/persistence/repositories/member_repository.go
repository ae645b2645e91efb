package repositories

import (
	"context"

	"tanda-xntrust/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// memberRepository implements MemberRepository interface
type memberRepository struct {
	db *gorm.DB
}

// NewMemberRepository creates a new member repository
func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &memberRepository{db: db}
}

// Create creates a new member
func (r *memberRepository) Create(ctx context.Context, member *models.Member) error {
	return r.db.WithContext(ctx).Create(member).Error
}

// GetByMembNo gets a member by member number
func (r *memberRepository) GetByMembNo(ctx context.Context, membNo string) (*models.Member, error) {
	var member models.Member
	err := r.db.WithContext(ctx).Where("memb_no = ?", membNo).First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// Exists checks if a member number exists
func (r *memberRepository) Exists(ctx context.Context, membNo string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Member{}).Where("memb_no = ?", membNo).Count(&count).Error
	return count > 0, err
}

// List lists members with pagination
func (r *memberRepository) List(ctx context.Context, offset, limit int) ([]*models.Member, int64, error) {
	var members []*models.Member
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Member{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := r.db.WithContext(ctx).
		Order("memb_no ASC").
		Offset(offset).Limit(limit).
		Find(&members).Error; err != nil {
		return nil, 0, err
	}

	return members, total, nil
}

// SetActive activates or deactivates a member
func (r *memberRepository) SetActive(ctx context.Context, membNo string, active bool) error {
	result := r.db.WithContext(ctx).
		Model(&models.Member{}).
		Where("memb_no = ?", membNo).
		Update("is_active", active)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateScoreCache writes the derived score columns on the member row
func (r *memberRepository) UpdateScoreCache(ctx context.Context, membNo string, score float64, tier int) error {
	return r.db.WithContext(ctx).
		Model(&models.Member{}).
		Where("memb_no = ?", membNo).
		Updates(map[string]interface{}{
			"current_score": score,
			"current_tier":  tier,
		}).Error
}
