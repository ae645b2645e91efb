package repositories

import (
	"context"

	"tanda-xntrust/internal/adapters/persistence/models"
	"tanda-xntrust/internal/core/domain"

	"gorm.io/gorm"
)

// snapshotRepository implements SnapshotRepository interface
type snapshotRepository struct {
	db *gorm.DB
}

// NewSnapshotRepository creates a new score snapshot repository
func NewSnapshotRepository(db *gorm.DB) SnapshotRepository {
	return &snapshotRepository{db: db}
}

// Get gets a member's cached snapshot
func (r *snapshotRepository) Get(ctx context.Context, membNo string) (*models.ScoreSnapshot, error) {
	var snapshot models.ScoreSnapshot
	err := r.db.WithContext(ctx).Where("memb_no = ?", membNo).First(&snapshot).Error
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// Save upserts a snapshot guarded by version. expectedVersion 0 means no
// snapshot existed; a non-zero expectedVersion must match the stored row or
// the write is rejected with ErrStaleData.
func (r *snapshotRepository) Save(ctx context.Context, snapshot *models.ScoreSnapshot, expectedVersion int) error {
	if expectedVersion == 0 {
		snapshot.Version = 1
		return r.db.WithContext(ctx).Create(snapshot).Error
	}

	snapshot.Version = expectedVersion + 1
	result := r.db.WithContext(ctx).
		Model(&models.ScoreSnapshot{}).
		Where("memb_no = ? AND version = ?", snapshot.MembNo, expectedVersion).
		Updates(map[string]interface{}{
			"score":              snapshot.Score,
			"display_score":      snapshot.DisplayScore,
			"tier":               snapshot.Tier,
			"factor_breakdown":   snapshot.FactorBreakdown,
			"first_circle_bonus": snapshot.FirstCircleBonus,
			"vouch_bonus":        snapshot.VouchBonus,
			"age_cap":            snapshot.AgeCap,
			"version":            snapshot.Version,
			"computed_at":        snapshot.ComputedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrStaleData
	}
	return nil
}
