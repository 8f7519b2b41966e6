package handlers

import (
	"github.com/valyala/fasthttp"

	"meterlog/internal/meter"
)

// AccountSummary serves the legacy per-account aggregate: the materialized
// monthly rollup row for the owner and selected period, zero when absent.
func AccountSummary(svc *meter.Service) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		if _, ok := MustPrincipal(ctx); !ok {
			return
		}

		owner, _ := ctx.UserValue("username").(string)
		if owner == "" {
			errResponse(ctx, fasthttp.StatusBadRequest, "username required", nil)
			return
		}

		res, err := svc.AccountSummary(ctx, owner,
			string(ctx.QueryArgs().Peek("year")),
			string(ctx.QueryArgs().Peek("month")))
		if err != nil {
			serviceError(ctx, err)
			return
		}
		jsonResponse(ctx, fasthttp.StatusOK, res)
	}
}

// ReadingsSummary rolls the selected window up per owner plus a global
// summary, computed from raw readings rather than the aggregate cache.
func ReadingsSummary(svc *meter.Service) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		if _, ok := MustPrincipal(ctx); !ok {
			return
		}

		readings, err := svc.List(ctx,
			string(ctx.QueryArgs().Peek("year")),
			string(ctx.QueryArgs().Peek("month")))
		if err != nil {
			serviceError(ctx, err)
			return
		}

		jsonResponse(ctx, fasthttp.StatusOK, map[string]any{
			"owners":  meter.RollupByOwner(readings),
			"summary": meter.Summarize(readings),
		})
	}
}

// YearReport returns the per-month-per-owner matrix for a full calendar
// year, the data behind the yearly report the client renders.
func YearReport(svc *meter.Service) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		if _, ok := MustPrincipal(ctx); !ok {
			return
		}

		// Month selector deliberately absent: the report always spans the
		// whole year.
		readings, err := svc.List(ctx, string(ctx.QueryArgs().Peek("year")), "")
		if err != nil {
			serviceError(ctx, err)
			return
		}

		jsonResponse(ctx, fasthttp.StatusOK, map[string]any{
			"months":  meter.RollupByMonth(readings),
			"owners":  meter.RollupByOwner(readings),
			"summary": meter.Summarize(readings),
		})
	}
}
