package db

import (
	"log"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"meterlog/internal/meter"
)

// reconcileRows computes the MonthlyAggregate rows for one month from its
// raw readings. An owner with no surviving readings gets no row; the caller
// prunes such rows so deletions do not leave stale totals behind.
func reconcileRows(readings []meter.Reading, period string, nowMs int64) []MonthlyAggregate {
	totals := meter.RollupByOwner(readings)
	rows := make([]MonthlyAggregate, 0, len(totals))
	for _, t := range totals {
		rows = append(rows, MonthlyAggregate{
			OwnerUsername: t.Owner,
			Period:        period,
			TotalKWh:      t.TotalKWh,
			UpdatedAtMs:   nowMs,
		})
	}
	return rows
}

// runReconcileOnce recomputes the MonthlyAggregate rows for the calendar
// month starting at monthStart (UTC) from the raw readings in that month.
// The rollup is a cache: the additive writes on create can drift (a crash
// between insert and rollup update, deleted readings), and recomputing from
// readings is always authoritative. Rows for owners with no readings left in
// the month are removed, so a fully deleted history reads as zero again.
func runReconcileOnce(db *gorm.DB, monthStart time.Time) error {
	monthEnd := monthStart.AddDate(0, 1, 0)
	startMs := monthStart.UnixMilli()
	endMs := monthEnd.UnixMilli()

	var dbRows []Reading
	if err := db.Where("global_pk = ? AND timestamp_ms >= ? AND timestamp_ms < ?", meter.GlobalPK, startMs, endMs).
		Select("owner_username", "username", "delta_kwh", "timestamp_ms").
		Find(&dbRows).Error; err != nil {
		return err
	}

	readings := make([]meter.Reading, 0, len(dbRows))
	for i := range dbRows {
		readings = append(readings, dbRows[i].toDomain())
	}

	period := meter.PeriodOf(startMs)
	nowMs := time.Now().UTC().UnixMilli()
	rows := reconcileRows(readings, period, nowMs)

	owners := make([]string, 0, len(rows))
	for _, row := range rows {
		owners = append(owners, row.OwnerUsername)
		err := db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "owner_username"}, {Name: "period"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"total_kwh":     row.TotalKWh,
				"updated_at_ms": nowMs,
			}),
		}).Create(&row).Error
		if err != nil {
			return err
		}
	}

	stale := db.Where("period = ?", period)
	if len(owners) > 0 {
		stale = stale.Where("owner_username NOT IN ?", owners)
	}
	return stale.Delete(&MonthlyAggregate{}).Error
}

// StartReconcileWorker launches a background goroutine that reconciles the
// current and previous month's rollup rows once at startup and then on every
// tick. Months are UTC.
func StartReconcileWorker(db *gorm.DB, interval time.Duration) {
	reconcile := func(now time.Time) {
		current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		previous := current.AddDate(0, -1, 0)
		for _, monthStart := range []time.Time{previous, current} {
			if err := runReconcileOnce(db, monthStart); err != nil {
				log.Printf("aggregate reconcile error for %s: %v", monthStart.Format("2006-01"), err)
			}
		}
	}

	go func() {
		reconcile(time.Now().UTC())

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for t := range ticker.C {
			reconcile(t.UTC())
		}
	}()
}
