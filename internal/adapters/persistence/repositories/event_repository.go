package repositories

import (
	"context"
	"time"

	"tanda-xntrust/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// eventRepository implements EventRepository interface
type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository creates a new score event repository
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

// Append inserts a new event row. There is no Update or Delete on this
// repository; the log is append-only.
func (r *eventRepository) Append(ctx context.Context, event *models.ScoreEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// History returns a member's events in timeline order (occurred_at ascending,
// created_at as tiebreaker). kind and since are optional filters; pass the
// zero values to disable them.
func (r *eventRepository) History(ctx context.Context, membNo string, kind string, since time.Time) ([]*models.ScoreEvent, error) {
	query := r.db.WithContext(ctx).Where("memb_no = ?", membNo)
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}
	if !since.IsZero() {
		query = query.Where("occurred_at >= ?", since)
	}

	var events []*models.ScoreEvent
	err := query.Order("occurred_at ASC, created_at ASC").Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

// Recent returns a member's newest events first, paginated
func (r *eventRepository) Recent(ctx context.Context, membNo string, offset, limit int) ([]*models.ScoreEvent, int64, error) {
	var events []*models.ScoreEvent
	var total int64

	if err := r.db.WithContext(ctx).
		Model(&models.ScoreEvent{}).
		Where("memb_no = ?", membNo).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := r.db.WithContext(ctx).
		Where("memb_no = ?", membNo).
		Order("occurred_at DESC, created_at DESC").
		Offset(offset).Limit(limit).
		Find(&events).Error; err != nil {
		return nil, 0, err
	}

	return events, total, nil
}

// CountByKind returns event counts grouped by kind (dashboard statistics)
func (r *eventRepository) CountByKind(ctx context.Context) (map[string]int64, error) {
	type row struct {
		Kind  string
		Count int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.ScoreEvent{}).
		Select("kind, COUNT(*) as count").
		Group("kind").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Kind] = r.Count
	}
	return counts, nil
}
