package repositories

import (
	"context"

	"tanda-xntrust/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// endorsementRepository implements EndorsementRepository interface
type endorsementRepository struct {
	db *gorm.DB
}

// NewEndorsementRepository creates a new endorsement repository
func NewEndorsementRepository(db *gorm.DB) EndorsementRepository {
	return &endorsementRepository{db: db}
}

// Create creates a new endorsement
func (r *endorsementRepository) Create(ctx context.Context, endorsement *models.Endorsement) error {
	return r.db.WithContext(ctx).Create(endorsement).Error
}

// Exists checks whether from already endorsed to for a circle
func (r *endorsementRepository) Exists(ctx context.Context, fromNo, toNo string, circleID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Endorsement{}).
		Where("from_no = ? AND to_no = ? AND circle_id = ?", fromNo, toNo, circleID).
		Count(&count).Error
	return count > 0, err
}

// CountByRecipient counts endorsements a member has received
func (r *endorsementRepository) CountByRecipient(ctx context.Context, toNo string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Endorsement{}).
		Where("to_no = ?", toNo).
		Count(&count).Error
	return count, err
}
