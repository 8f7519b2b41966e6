package db

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"meterlog/internal/meter"
)

// ReadingStore implements meter.Store on top of GORM/Postgres.
type ReadingStore struct {
	db *gorm.DB
}

func NewReadingStore(db *gorm.DB) *ReadingStore {
	return &ReadingStore{db: db}
}

func (s *ReadingStore) Insert(ctx context.Context, r *meter.Reading) error {
	row := fromDomain(r)
	return s.db.WithContext(ctx).Create(&row).Error
}

func (s *ReadingStore) MostRecent(ctx context.Context) (*meter.Reading, error) {
	var row Reading
	err := s.db.WithContext(ctx).
		Where("global_pk = ?", meter.GlobalPK).
		Order("timestamp_ms DESC").
		First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	r := row.toDomain()
	return &r, nil
}

func (s *ReadingStore) QueryRange(ctx context.Context, startMs, endMs int64) ([]meter.Reading, error) {
	var rows []Reading
	err := s.db.WithContext(ctx).
		Where("global_pk = ? AND timestamp_ms >= ? AND timestamp_ms < ?", meter.GlobalPK, startMs, endMs).
		Order("timestamp_ms DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]meter.Reading, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}

func (s *ReadingStore) Get(ctx context.Context, id string) (*meter.Reading, error) {
	var row Reading
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("%w: reading %s", meter.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	r := row.toDomain()
	return &r, nil
}

// DeleteIfOwned issues a single conditional DELETE so the ownership check
// cannot race with the row changing underneath it. Rows with a CreatedBy are
// deletable only by their creator; legacy rows only by a user matching the
// stored display name. When nothing was deleted, a follow-up existence probe
// only classifies the failure as forbidden vs. not found.
func (s *ReadingStore) DeleteIfOwned(ctx context.Context, id, requester string) error {
	// Legacy rows may carry '' or NULL in created_by depending on how they
	// were imported; both fall back to the display-name match.
	res := s.db.WithContext(ctx).
		Where("id = ? AND (created_by = ? OR ((created_by = '' OR created_by IS NULL) AND username = ?))", id, requester, requester).
		Delete(&Reading{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&Reading{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: reading %s is not owned by %s", meter.ErrForbidden, id, requester)
	}
	return fmt.Errorf("%w: reading %s", meter.ErrNotFound, id)
}

// UpsertMonthlyAggregate adds deltaKWh to the (owner, period) rollup row in
// one statement, creating it on first write for the period.
func (s *ReadingStore) UpsertMonthlyAggregate(ctx context.Context, owner, period string, deltaKWh float64, nowMs int64) error {
	row := MonthlyAggregate{
		OwnerUsername: owner,
		Period:        period,
		TotalKWh:      deltaKWh,
		UpdatedAtMs:   nowMs,
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "owner_username"}, {Name: "period"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"total_kwh":     gorm.Expr("monthly_aggregates.total_kwh + ?", deltaKWh),
			"updated_at_ms": nowMs,
		}),
	}).Create(&row).Error
}

func (s *ReadingStore) MonthlyAggregateTotal(ctx context.Context, owner, period string) (float64, error) {
	var row MonthlyAggregate
	err := s.db.WithContext(ctx).
		Where("owner_username = ? AND period = ?", owner, period).
		First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return row.TotalKWh, nil
}
