package meter

import (
	"testing"
	"time"
)

func TestResolveWindow(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.August, 29, 13, 45, 0, 0, time.UTC)
	ms := func(y int, m time.Month) int64 {
		return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	}

	tests := []struct {
		name  string
		year  string
		month string
		want  Window
	}{
		{
			name:  "year and month",
			year:  "2025",
			month: "3",
			want:  Window{Year: 2025, StartMs: ms(2025, time.March), EndMs: ms(2025, time.April)},
		},
		{
			name: "month absent gives whole year",
			year: "2025",
			want: Window{Year: 2025, StartMs: ms(2025, time.January), EndMs: ms(2026, time.January)},
		},
		{
			name:  "december rolls into next year",
			year:  "2025",
			month: "12",
			want:  Window{Year: 2025, StartMs: ms(2025, time.December), EndMs: ms(2026, time.January)},
		},
		{
			name:  "month out of range gives whole year",
			year:  "2025",
			month: "13",
			want:  Window{Year: 2025, StartMs: ms(2025, time.January), EndMs: ms(2026, time.January)},
		},
		{
			name:  "month zero gives whole year",
			year:  "2025",
			month: "0",
			want:  Window{Year: 2025, StartMs: ms(2025, time.January), EndMs: ms(2026, time.January)},
		},
		{
			name:  "unparseable year defaults to current UTC year",
			year:  "not-a-year",
			month: "2",
			want:  Window{Year: 2026, StartMs: ms(2026, time.February), EndMs: ms(2026, time.March)},
		},
		{
			name: "everything absent gives current year",
			want: Window{Year: 2026, StartMs: ms(2026, time.January), EndMs: ms(2027, time.January)},
		},
		{
			name:  "leap february",
			year:  "2024",
			month: "2",
			want:  Window{Year: 2024, StartMs: ms(2024, time.February), EndMs: ms(2024, time.March)},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ResolveWindow(tt.year, tt.month, now)
			if got != tt.want {
				t.Fatalf("ResolveWindow(%q, %q) = %+v, want %+v", tt.year, tt.month, got, tt.want)
			}
		})
	}
}

func TestPeriodLabel(t *testing.T) {
	t.Parallel()

	w := ResolveWindow("2025", "3", time.Now())
	if got := w.PeriodLabel(); got != "2025-03" {
		t.Fatalf("PeriodLabel() = %q, want %q", got, "2025-03")
	}

	wholeYear := ResolveWindow("2025", "", time.Now())
	if got := wholeYear.PeriodLabel(); got != "2025-01" {
		t.Fatalf("PeriodLabel() for whole year = %q, want %q", got, "2025-01")
	}
}

func TestPeriodOf(t *testing.T) {
	t.Parallel()

	ts := time.Date(2025, time.December, 31, 23, 59, 59, 0, time.UTC).UnixMilli()
	if got := PeriodOf(ts); got != "2025-12" {
		t.Fatalf("PeriodOf(%d) = %q, want %q", ts, got, "2025-12")
	}
}
