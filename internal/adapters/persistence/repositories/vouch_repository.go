package repositories

import (
	"context"
	"time"

	"tanda-xntrust/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// vouchRepository implements VouchRepository interface
type vouchRepository struct {
	db *gorm.DB
}

// NewVouchRepository creates a new vouch repository
func NewVouchRepository(db *gorm.DB) VouchRepository {
	return &vouchRepository{db: db}
}

// Create creates a new vouch
func (r *vouchRepository) Create(ctx context.Context, vouch *models.Vouch) error {
	return r.db.WithContext(ctx).Create(vouch).Error
}

// GetByID gets a vouch by ID
func (r *vouchRepository) GetByID(ctx context.Context, id string) (*models.Vouch, error) {
	var vouch models.Vouch
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&vouch).Error
	if err != nil {
		return nil, err
	}
	return &vouch, nil
}

// Revoke marks a vouch revoked. Only ACTIVE rows transition; a lapsed or
// already-revoked vouch is left untouched and the caller sees zero rows.
func (r *vouchRepository) Revoke(ctx context.Context, id string, actorNo string, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.Vouch{}).
		Where("id = ? AND status = ?", id, "ACTIVE").
		Updates(map[string]interface{}{
			"status":     "REVOKED",
			"revoked_at": &at,
			"revoked_by": &actorNo,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ActiveByVoucher returns a voucher's live vouches (status ACTIVE and not
// past expiry). Expiry is checked against now rather than relying on the
// sweep having run.
func (r *vouchRepository) ActiveByVoucher(ctx context.Context, voucherNo string, now time.Time) ([]*models.Vouch, error) {
	var vouches []*models.Vouch
	err := r.db.WithContext(ctx).
		Where("voucher_no = ? AND status = ? AND expires_at > ?", voucherNo, "ACTIVE", now).
		Order("issued_at DESC").
		Find(&vouches).Error
	if err != nil {
		return nil, err
	}
	return vouches, nil
}

// ActiveByRecipient returns a recipient's live vouches
func (r *vouchRepository) ActiveByRecipient(ctx context.Context, recipientNo string, now time.Time) ([]*models.Vouch, error) {
	var vouches []*models.Vouch
	err := r.db.WithContext(ctx).
		Where("recipient_no = ? AND status = ? AND expires_at > ?", recipientNo, "ACTIVE", now).
		Order("issued_at DESC").
		Find(&vouches).Error
	if err != nil {
		return nil, err
	}
	return vouches, nil
}

// ListByMember returns every vouch a member is party to, either side
func (r *vouchRepository) ListByMember(ctx context.Context, membNo string) ([]*models.Vouch, error) {
	var vouches []*models.Vouch
	err := r.db.WithContext(ctx).
		Where("voucher_no = ? OR recipient_no = ?", membNo, membNo).
		Order("issued_at DESC").
		Find(&vouches).Error
	if err != nil {
		return nil, err
	}
	return vouches, nil
}

// ExpireLapsed flips ACTIVE rows past their expiry to EXPIRED and returns
// how many rows changed (sweep job)
func (r *vouchRepository) ExpireLapsed(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Vouch{}).
		Where("status = ? AND expires_at <= ?", "ACTIVE", now).
		Update("status", "EXPIRED")
	return result.RowsAffected, result.Error
}

// CountActive counts live vouches system-wide (dashboard statistics)
func (r *vouchRepository) CountActive(ctx context.Context, now time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Vouch{}).
		Where("status = ? AND expires_at > ?", "ACTIVE", now).
		Count(&count).Error
	return count, err
}
