package db

import (
	"time"

	"gorm.io/datatypes"

	"meterlog/internal/meter"
)

// Reading is one meter observation as stored in Postgres. GlobalPK is a
// constant partition marker: the composite (global_pk, timestamp_ms) index is
// what serves "most recent reading" and all range queries without a scan.
type Reading struct {
	ID string `gorm:"primaryKey;size:36"`

	GlobalPK    string `gorm:"index:idx_readings_global_ts,priority:1;size:16;not null"`
	TimestampMs int64  `gorm:"index:idx_readings_global_ts,priority:2,sort:desc;not null"`

	// CreatedBy is empty on rows that predate identity tracking; the
	// legacy Username display name is all those rows have.
	CreatedBy     string `gorm:"size:64;index"`
	OwnerUsername string `gorm:"size:64;index"`
	OnBehalf      bool
	Username      string `gorm:"size:64"`

	// Explicit column names: the default namer would split KWh into k_wh.
	StartKWh float64 `gorm:"column:start_kwh;not null"`
	EndKWh   float64 `gorm:"column:end_kwh;not null"`
	DeltaKWh float64 `gorm:"column:delta_kwh;not null"`

	Notes string

	// Attributes holds arbitrary key/value pairs supplied by the client,
	// so readings can carry extra context (e.g. meter photo URL, tariff
	// hint) without schema changes.
	Attributes datatypes.JSONMap `gorm:"type:json"`
}

func (r *Reading) toDomain() meter.Reading {
	return meter.Reading{
		ID:            r.ID,
		CreatedBy:     r.CreatedBy,
		OwnerUsername: r.OwnerUsername,
		OnBehalf:      r.OnBehalf,
		Username:      r.Username,
		StartKWh:      r.StartKWh,
		EndKWh:        r.EndKWh,
		DeltaKWh:      r.DeltaKWh,
		Notes:         r.Notes,
		TimestampMs:   r.TimestampMs,
		Attributes:    r.Attributes,
	}
}

func fromDomain(r *meter.Reading) Reading {
	attrs := datatypes.JSONMap{}
	for k, v := range r.Attributes {
		attrs[k] = v
	}
	return Reading{
		ID:            r.ID,
		GlobalPK:      meter.GlobalPK,
		TimestampMs:   r.TimestampMs,
		CreatedBy:     r.CreatedBy,
		OwnerUsername: r.OwnerUsername,
		OnBehalf:      r.OnBehalf,
		Username:      r.Username,
		StartKWh:      r.StartKWh,
		EndKWh:        r.EndKWh,
		DeltaKWh:      r.DeltaKWh,
		Notes:         r.Notes,
		Attributes:    attrs,
	}
}

// MonthlyAggregate is the materialized per-(owner, month) rollup. It is a
// cache over raw readings: written additively on create and recomputed by
// the reconcile worker, never treated as a source of truth.
type MonthlyAggregate struct {
	ID uint `gorm:"primaryKey"`

	OwnerUsername string `gorm:"uniqueIndex:idx_monthly_aggregate_unique,priority:1;size:64;not null"`
	// Period is the "YYYY-MM" label of the calendar month (UTC).
	Period string `gorm:"uniqueIndex:idx_monthly_aggregate_unique,priority:2;size:7;not null"`

	TotalKWh    float64 `gorm:"column:total_kwh;not null"`
	UpdatedAtMs int64   `gorm:"not null"`
}

// User represents a household member that can sign in and record readings.
// The bootstrap user (from env) will be created as a row in this table on
// startup.
type User struct {
	ID uint `gorm:"primaryKey"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Username     string `gorm:"uniqueIndex;size:64;not null"`
	PasswordHash string `gorm:"size:255;not null"`
}
