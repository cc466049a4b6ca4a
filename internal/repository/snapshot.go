package repository

import (
	"context"
	"errors"
	"time"

	"github.com/rodpaiva/mensageiro-fit/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SnapshotRepository handles daily health metric snapshots
type SnapshotRepository struct {
	db *gorm.DB
}

// NewSnapshotRepository creates a new snapshot repository
func NewSnapshotRepository(db *gorm.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// UpsertDaily inserts or overwrites the snapshot for (user, date).
// Last write wins within a day.
func (r *SnapshotRepository) UpsertDaily(ctx context.Context, snapshot *domain.HealthMetricSnapshot) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"steps", "updated_at"}),
	}).Create(snapshot).Error
}

// GetByUserAndDate gets one day's snapshot, domain.ErrNotFound when absent
func (r *SnapshotRepository) GetByUserAndDate(ctx context.Context, userID uint, date time.Time) (*domain.HealthMetricSnapshot, error) {
	var snapshot domain.HealthMetricSnapshot
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date.Format("2006-01-02")).
		First(&snapshot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &snapshot, nil
}
