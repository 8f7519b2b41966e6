package handlers

import (
	"bytes"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/valyala/fasthttp"

	"meterlog/internal/meter"
)

var (
	readingsCreatedTotal  *prometheus.CounterVec
	readingsRejectedTotal *prometheus.CounterVec
	deltaKWhBuckets       prometheus.Histogram
)

func InitPrometheusMetrics() {
	readingsCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "meterlog",
			Name:      "readings_created_total",
			Help:      "Total number of persisted meter readings.",
		},
		[]string{"owner", "on_behalf"},
	)
	readingsRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "meterlog",
			Name:      "readings_rejected_total",
			Help:      "Total number of rejected reading submissions.",
		},
		[]string{"reason"},
	)
	deltaKWhBuckets = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "meterlog",
			Name:      "reading_delta_kwh",
			Help:      "Histogram of per-reading consumption deltas in kWh.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 50, 100, 250},
		},
	)
	prometheus.MustRegister(readingsCreatedTotal, readingsRejectedTotal, deltaKWhBuckets)
}

func observeReadingCreated(r *meter.Reading) {
	if readingsCreatedTotal == nil {
		return
	}
	readingsCreatedTotal.WithLabelValues(r.EffectiveOwner(), strconv.FormatBool(r.OnBehalf)).Inc()
	deltaKWhBuckets.Observe(r.DeltaKWh)
}

func observeReadingRejected(reason string) {
	if readingsRejectedTotal == nil {
		return
	}
	readingsRejectedTotal.WithLabelValues(reason).Inc()
}

// MetricsHandler serves the default registry in Prometheus text exposition
// format. An optional owner query parameter narrows owner-labelled series to
// one household member.
func MetricsHandler() fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		metricFamilies, err := prometheus.DefaultGatherer.Gather()
		if err != nil {
			ctx.SetStatusCode(fasthttp.StatusInternalServerError)
			ctx.SetBodyString("failed to gather metrics")
			return
		}

		if owner := string(ctx.QueryArgs().Peek("owner")); owner != "" {
			metricFamilies = filterByOwner(metricFamilies, owner)
		}

		var buf bytes.Buffer
		encoder := expfmt.NewEncoder(&buf, expfmt.NewFormat(expfmt.TypeTextPlain))
		for _, mf := range metricFamilies {
			if err := encoder.Encode(mf); err != nil {
				ctx.SetStatusCode(fasthttp.StatusInternalServerError)
				ctx.SetBodyString("failed to encode metrics")
				return
			}
		}

		ctx.SetContentType(string(expfmt.NewFormat(expfmt.TypeTextPlain)))
		ctx.Response.Header.Set("Cache-Control", "no-store")
		ctx.SetBody(buf.Bytes())
	}
}

// filterByOwner keeps families without an owner label as-is and, within
// owner-labelled families, only the series for the given owner.
func filterByOwner(families []*dto.MetricFamily, owner string) []*dto.MetricFamily {
	filtered := make([]*dto.MetricFamily, 0, len(families))
	for _, mf := range families {
		hasOwnerLabel := false
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "owner" {
					hasOwnerLabel = true
					break
				}
			}
			if hasOwnerLabel {
				break
			}
		}

		if !hasOwnerLabel {
			filtered = append(filtered, mf)
			continue
		}

		var kept []*dto.Metric
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "owner" && l.GetValue() == owner {
					kept = append(kept, m)
					break
				}
			}
		}
		if len(kept) == 0 {
			continue
		}

		filtered = append(filtered, &dto.MetricFamily{
			Name:   mf.Name,
			Help:   mf.Help,
			Type:   mf.Type,
			Metric: kept,
		})
	}
	return filtered
}
