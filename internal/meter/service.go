package meter

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service implements the reading rules: delta computation against the most
// recent reading, on-behalf ownership resolution, delete authorization and
// the optional monthly-aggregate rollup. It holds no state of its own beyond
// configuration; the store's ordered index is the single source of truth for
// "the last reading".
//
// The read-then-insert in Create is deliberately unguarded: two concurrent
// submissions can both compute their delta against the same prior reading and
// produce overlapping ranges. Callers that need strict chaining pass the
// PreviousID guard.
type Service struct {
	store Store

	// allowZeroDelta relaxes the strictly-positive delta rule to >= 0.
	allowZeroDelta bool

	// maintainAggregates enables the additive monthly rollup cache on
	// create. The cache is never authoritative; see the reconcile worker.
	maintainAggregates bool

	now   func() time.Time
	newID func() string
}

// Option configures a Service.
type Option func(*Service)

// WithAllowZeroDelta switches the service to the permissive variant that
// accepts an unchanged meter value (delta == 0).
func WithAllowZeroDelta(allow bool) Option {
	return func(s *Service) { s.allowZeroDelta = allow }
}

// WithAggregates toggles maintenance of the monthly rollup cache on create.
func WithAggregates(maintain bool) Option {
	return func(s *Service) { s.maintainAggregates = maintain }
}

// WithClock overrides wall-clock time, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator overrides reading id generation, for tests.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:              store,
		maintainAggregates: true,
		now:                time.Now,
		newID:              uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// CreateInput is a validated-on-entry submission of a new meter value.
type CreateInput struct {
	// CurrentKWh is the cumulative value read off the physical meter.
	CurrentKWh float64

	Notes string

	// ForUsername attributes the reading to another household member.
	ForUsername string

	// PreviousID, when set, is the id of the reading the client saw as
	// latest. The create fails with ErrConflict if it is no longer the
	// most recent reading, giving callers an opt-in guard against the
	// concurrent-submission race.
	PreviousID string

	Attributes map[string]any
}

// Create validates the submission, derives the delta from the most recent
// reading across all owners (one physical meter per household), and persists
// the new reading.
func (s *Service) Create(ctx context.Context, principal string, in CreateInput) (*Reading, error) {
	if math.IsNaN(in.CurrentKWh) || math.IsInf(in.CurrentKWh, 0) || in.CurrentKWh <= 0 {
		return nil, fmt.Errorf("%w: currentKWh must be a positive number, got %v", ErrValidation, in.CurrentKWh)
	}

	last, err := s.store.MostRecent(ctx)
	if err != nil {
		return nil, err
	}

	if in.PreviousID != "" {
		latestID := ""
		if last != nil {
			latestID = last.ID
		}
		if in.PreviousID != latestID {
			return nil, fmt.Errorf("%w: reading %s is no longer the latest", ErrConflict, in.PreviousID)
		}
	}

	startKWh := 0.0
	if last != nil {
		startKWh = last.EndKWh
	}

	delta := RoundKWh(in.CurrentKWh - startKWh)
	if delta < 0 || (delta == 0 && !s.allowZeroDelta) {
		return nil, fmt.Errorf("%w: currentKWh %v does not exceed the last recorded value %v", ErrValidation, in.CurrentKWh, startKWh)
	}

	owner := principal
	onBehalf := false
	if v := strings.TrimSpace(in.ForUsername); v != "" && v != principal {
		owner = v
		onBehalf = true
	}

	r := &Reading{
		ID:            s.newID(),
		CreatedBy:     principal,
		OwnerUsername: owner,
		OnBehalf:      onBehalf,
		Username:      owner,
		StartKWh:      startKWh,
		EndKWh:        in.CurrentKWh,
		DeltaKWh:      delta,
		Notes:         in.Notes,
		TimestampMs:   s.now().UTC().UnixMilli(),
		Attributes:    in.Attributes,
	}

	if err := s.store.Insert(ctx, r); err != nil {
		return nil, err
	}

	if s.maintainAggregates {
		// The rollup is a cache and the reading is already persisted: a
		// failed update must not fail the create (a client retry would
		// double-record consumption). The reconcile worker repairs it.
		period := PeriodOf(r.TimestampMs)
		if err := s.store.UpsertMonthlyAggregate(ctx, owner, period, delta, r.TimestampMs); err != nil {
			log.Printf("monthly aggregate update failed for %s %s: %v", owner, period, err)
		}
	}

	return r, nil
}

// List returns readings in the resolved window, newest first. An empty
// window is a valid result, not an error.
func (s *Service) List(ctx context.Context, yearStr, monthStr string) ([]Reading, error) {
	w := ResolveWindow(yearStr, monthStr, s.now())
	return s.store.QueryRange(ctx, w.StartMs, w.EndMs)
}

// LatestKWh returns the cumulative value of the most recent reading, or 0
// when no readings exist.
func (s *Service) LatestKWh(ctx context.Context) (float64, error) {
	last, err := s.store.MostRecent(ctx)
	if err != nil {
		return 0, err
	}
	if last == nil {
		return 0, nil
	}
	return last.EndKWh, nil
}

// Get returns one reading. Only the creator or the effective owner may see
// the detail view.
func (s *Service) Get(ctx context.Context, id, principal string) (*Reading, error) {
	r, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.CreatedBy != principal && r.EffectiveOwner() != principal {
		return nil, fmt.Errorf("%w: reading %s", ErrForbidden, id)
	}
	return r, nil
}

// Delete removes a reading if the principal is allowed to. ErrForbidden is a
// normal outcome here, not an infrastructure failure.
func (s *Service) Delete(ctx context.Context, id, principal string) error {
	return s.store.DeleteIfOwned(ctx, id, principal)
}

// AccountSummaryResult is the legacy aggregate response for one owner and
// period.
type AccountSummaryResult struct {
	Username string  `json:"username"`
	Period   string  `json:"period"`
	TotalKWh float64 `json:"totalKWh"`
}

// AccountSummary reads the monthly rollup row for the owner and the period
// selected by year/month. A missing row reads as zero.
func (s *Service) AccountSummary(ctx context.Context, owner, yearStr, monthStr string) (AccountSummaryResult, error) {
	w := ResolveWindow(yearStr, monthStr, s.now())
	period := w.PeriodLabel()
	total, err := s.store.MonthlyAggregateTotal(ctx, owner, period)
	if err != nil {
		return AccountSummaryResult{}, err
	}
	return AccountSummaryResult{
		Username: owner,
		Period:   period,
		TotalKWh: RoundKWh(total),
	}, nil
}
