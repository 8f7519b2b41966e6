package meter

import (
	"sort"
	"time"
)

// OwnerTotal is the per-owner rollup over a set of readings.
type OwnerTotal struct {
	Owner    string  `json:"owner"`
	TotalKWh float64 `json:"totalKWh"`
	Count    int     `json:"count"`
	MinKWh   float64 `json:"minKWh"`
	MaxKWh   float64 `json:"maxKWh"`
}

// MonthTotal is one cell of the per-month-per-owner report matrix.
type MonthTotal struct {
	Month    int     `json:"month"` // 1-12, UTC calendar month
	Owner    string  `json:"owner"`
	TotalKWh float64 `json:"totalKWh"`
	Count    int     `json:"count"`
}

// Summary describes a whole reading set.
type Summary struct {
	TotalKWh   float64 `json:"totalKWh"`
	Count      int     `json:"count"`
	AvgKWh     float64 `json:"avgKWh"`
	EarliestMs int64   `json:"earliestTimestamp"`
	LatestMs   int64   `json:"latestTimestamp"`
}

// RollupByOwner groups readings by effective owner and sums their deltas.
// Results are sorted by owner for stable output.
func RollupByOwner(readings []Reading) []OwnerTotal {
	byOwner := make(map[string]*OwnerTotal)
	for _, r := range readings {
		owner := r.EffectiveOwner()
		t, ok := byOwner[owner]
		if !ok {
			t = &OwnerTotal{Owner: owner, MinKWh: r.DeltaKWh, MaxKWh: r.DeltaKWh}
			byOwner[owner] = t
		}
		t.TotalKWh += r.DeltaKWh
		t.Count++
		if r.DeltaKWh < t.MinKWh {
			t.MinKWh = r.DeltaKWh
		}
		if r.DeltaKWh > t.MaxKWh {
			t.MaxKWh = r.DeltaKWh
		}
	}

	out := make([]OwnerTotal, 0, len(byOwner))
	for _, t := range byOwner {
		t.TotalKWh = RoundKWh(t.TotalKWh)
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Owner < out[j].Owner })
	return out
}

// RollupByMonth splits the per-owner rollup by UTC calendar month, for the
// 12-row yearly report table. Sorted by month, then owner.
func RollupByMonth(readings []Reading) []MonthTotal {
	type key struct {
		month int
		owner string
	}
	byKey := make(map[key]*MonthTotal)
	for _, r := range readings {
		k := key{
			month: int(time.UnixMilli(r.TimestampMs).UTC().Month()),
			owner: r.EffectiveOwner(),
		}
		t, ok := byKey[k]
		if !ok {
			t = &MonthTotal{Month: k.month, Owner: k.owner}
			byKey[k] = t
		}
		t.TotalKWh += r.DeltaKWh
		t.Count++
	}

	out := make([]MonthTotal, 0, len(byKey))
	for _, t := range byKey {
		t.TotalKWh = RoundKWh(t.TotalKWh)
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Month != out[j].Month {
			return out[i].Month < out[j].Month
		}
		return out[i].Owner < out[j].Owner
	})
	return out
}

// Summarize computes the global summary over a reading set. Average is
// zero-safe; an empty set yields the zero Summary.
func Summarize(readings []Reading) Summary {
	var s Summary
	if len(readings) == 0 {
		return s
	}

	s.EarliestMs = readings[0].TimestampMs
	s.LatestMs = readings[0].TimestampMs
	for _, r := range readings {
		s.TotalKWh += r.DeltaKWh
		s.Count++
		if r.TimestampMs < s.EarliestMs {
			s.EarliestMs = r.TimestampMs
		}
		if r.TimestampMs > s.LatestMs {
			s.LatestMs = r.TimestampMs
		}
	}
	s.TotalKWh = RoundKWh(s.TotalKWh)
	s.AvgKWh = RoundKWh(s.TotalKWh / float64(s.Count))
	return s
}
