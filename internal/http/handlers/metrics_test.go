package handlers

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/valyala/fasthttp"

	"meterlog/internal/meter"
)

// Registers against the default registry, so this runs once for the whole
// package.
func TestRejectedSubmissionsCounter(t *testing.T) {
	InitPrometheusMetrics()

	store := meter.NewMemStore()
	svc := meter.NewService(store)
	handler := CreateReading(svc)

	post := func(body string) int {
		ctx := newRequestCtx("POST", "/readings", []byte(body))
		asPrincipal(ctx, "alice")
		handler(ctx)
		return ctx.Response.StatusCode()
	}

	validationBefore := testutil.ToFloat64(readingsRejectedTotal.WithLabelValues("validation"))
	conflictBefore := testutil.ToFloat64(readingsRejectedTotal.WithLabelValues("conflict"))
	createdBefore := testutil.ToFloat64(readingsCreatedTotal.WithLabelValues("alice", "false"))

	if got := post(`{"currentKWh": 10}`); got != fasthttp.StatusCreated {
		t.Fatalf("create status = %d, want 201", got)
	}
	if got := post(`{"currentKWh": 5}`); got != fasthttp.StatusBadRequest {
		t.Fatalf("non-increasing create status = %d, want 400", got)
	}
	if got := post(`{"currentKWh": 12, "previousId": "stale"}`); got != fasthttp.StatusConflict {
		t.Fatalf("stale-guard create status = %d, want 409", got)
	}

	if got := testutil.ToFloat64(readingsRejectedTotal.WithLabelValues("validation")); got != validationBefore+1 {
		t.Errorf("validation rejections = %v, want %v", got, validationBefore+1)
	}
	if got := testutil.ToFloat64(readingsRejectedTotal.WithLabelValues("conflict")); got != conflictBefore+1 {
		t.Errorf("conflict rejections = %v, want %v", got, conflictBefore+1)
	}
	if got := testutil.ToFloat64(readingsCreatedTotal.WithLabelValues("alice", "false")); got != createdBefore+1 {
		t.Errorf("created total = %v, want %v", got, createdBefore+1)
	}
}
