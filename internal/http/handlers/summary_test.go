package handlers

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/valyala/fasthttp"

	"meterlog/internal/meter"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestAccountSummaryHandler(t *testing.T) {
	t.Parallel()

	store := meter.NewMemStore()
	svc := meter.NewService(store,
		meter.WithClock(fixedClock(time.Date(2025, time.June, 10, 8, 0, 0, 0, time.UTC))))

	if _, err := svc.Create(context.Background(), "alice", meter.CreateInput{CurrentKWh: 12.5}); err != nil {
		t.Fatal(err)
	}

	handler := AccountSummary(svc)
	ctx := newRequestCtx("GET", "/accounts/alice/summary?year=2025&month=6", nil)
	ctx.SetUserValue("username", "alice")
	asPrincipal(ctx, "alice")
	handler(ctx)

	if got := ctx.Response.StatusCode(); got != fasthttp.StatusOK {
		t.Fatalf("status = %d; body=%s", got, ctx.Response.Body())
	}

	var res meter.AccountSummaryResult
	if err := json.Unmarshal(ctx.Response.Body(), &res); err != nil {
		t.Fatal(err)
	}
	want := meter.AccountSummaryResult{Username: "alice", Period: "2025-06", TotalKWh: 12.5}
	if res != want {
		t.Fatalf("summary = %+v, want %+v", res, want)
	}
}

func TestAccountSummaryHandlerRequiresUsername(t *testing.T) {
	t.Parallel()

	handler := AccountSummary(meter.NewService(meter.NewMemStore()))
	ctx := newRequestCtx("GET", "/accounts//summary", nil)
	asPrincipal(ctx, "alice")
	handler(ctx)

	if got := ctx.Response.StatusCode(); got != fasthttp.StatusBadRequest {
		t.Fatalf("status = %d, want 400", got)
	}
}

func TestYearReportHandler(t *testing.T) {
	t.Parallel()

	store := meter.NewMemStore()
	svc := meter.NewService(store,
		meter.WithClock(fixedClock(time.Date(2025, time.June, 10, 8, 0, 0, 0, time.UTC))))

	seed := []meter.Reading{
		{ID: "a", OwnerUsername: "alice", DeltaKWh: 2.0,
			TimestampMs: time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC).UnixMilli()},
		{ID: "b", OwnerUsername: "bob", DeltaKWh: 3.0,
			TimestampMs: time.Date(2025, time.June, 5, 0, 0, 0, 0, time.UTC).UnixMilli()},
		{ID: "c", OwnerUsername: "alice", DeltaKWh: 1.0,
			TimestampMs: time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC).UnixMilli()},
	}
	for i := range seed {
		if err := store.Insert(context.Background(), &seed[i]); err != nil {
			t.Fatal(err)
		}
	}

	handler := YearReport(svc)
	ctx := newRequestCtx("GET", "/report?year=2025", nil)
	asPrincipal(ctx, "alice")
	handler(ctx)

	var res struct {
		Months  []meter.MonthTotal `json:"months"`
		Owners  []meter.OwnerTotal `json:"owners"`
		Summary meter.Summary      `json:"summary"`
	}
	if err := json.Unmarshal(ctx.Response.Body(), &res); err != nil {
		t.Fatal(err)
	}

	// The 2024 reading is outside the report year.
	if res.Summary.Count != 2 || res.Summary.TotalKWh != 5.0 {
		t.Fatalf("summary = %+v, want count=2 total=5", res.Summary)
	}
	wantMonths := []meter.MonthTotal{
		{Month: 1, Owner: "alice", TotalKWh: 2.0, Count: 1},
		{Month: 6, Owner: "bob", TotalKWh: 3.0, Count: 1},
	}
	if len(res.Months) != len(wantMonths) {
		t.Fatalf("months = %+v, want %+v", res.Months, wantMonths)
	}
	for i := range wantMonths {
		if res.Months[i] != wantMonths[i] {
			t.Errorf("month row %d = %+v, want %+v", i, res.Months[i], wantMonths[i])
		}
	}
}

func TestReadingsSummaryHandler(t *testing.T) {
	t.Parallel()

	store := meter.NewMemStore()
	svc := meter.NewService(store,
		meter.WithClock(fixedClock(time.Date(2025, time.June, 10, 8, 0, 0, 0, time.UTC))))

	ctxBg := context.Background()
	if _, err := svc.Create(ctxBg, "alice", meter.CreateInput{CurrentKWh: 10}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Create(ctxBg, "alice", meter.CreateInput{CurrentKWh: 14, ForUsername: "bob"}); err != nil {
		t.Fatal(err)
	}

	handler := ReadingsSummary(svc)
	ctx := newRequestCtx("GET", "/readings/summary?year=2025&month=6", nil)
	asPrincipal(ctx, "alice")
	handler(ctx)

	var res struct {
		Owners  []meter.OwnerTotal `json:"owners"`
		Summary meter.Summary      `json:"summary"`
	}
	if err := json.Unmarshal(ctx.Response.Body(), &res); err != nil {
		t.Fatal(err)
	}

	wantOwners := []meter.OwnerTotal{
		{Owner: "alice", TotalKWh: 10, Count: 1, MinKWh: 10, MaxKWh: 10},
		{Owner: "bob", TotalKWh: 4, Count: 1, MinKWh: 4, MaxKWh: 4},
	}
	if len(res.Owners) != len(wantOwners) {
		t.Fatalf("owners = %+v, want %+v", res.Owners, wantOwners)
	}
	for i := range wantOwners {
		if res.Owners[i] != wantOwners[i] {
			t.Errorf("owner row %d = %+v, want %+v", i, res.Owners[i], wantOwners[i])
		}
	}
	if res.Summary.TotalKWh != 14 || res.Summary.Count != 2 {
		t.Fatalf("summary = %+v, want total=14 count=2", res.Summary)
	}
}
