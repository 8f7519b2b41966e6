package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/valyala/fasthttp"

	httpctx "meterlog/internal/http/ctx"
	"meterlog/internal/identity"
	"meterlog/internal/meter"
)

// RequestLogger returns fasthttp middleware that logs method, path, status, duration.
func RequestLogger(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		start := time.Now()
		next(ctx)
		log.Printf("%s %s -> %d (%s) ip=%s", ctx.Method(), ctx.Path(), ctx.Response.StatusCode(), time.Since(start), ctx.RemoteAddr())
	}
}

// MustPrincipal returns the resolved principal from context, or sends 401 and
// returns ("", false).
func MustPrincipal(ctx *fasthttp.RequestCtx) (identity.Principal, bool) {
	p, ok := httpctx.PrincipalFromCtx(ctx)
	if !ok {
		errResponse(ctx, fasthttp.StatusUnauthorized, "unauthorized", nil)
		return identity.Principal{}, false
	}
	return p, true
}

func jsonResponse(ctx *fasthttp.RequestCtx, status int, data any) {
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	body, _ := json.Marshal(data)
	ctx.SetBody(body)
}

// errResponse writes the uniform {message, error?} body.
func errResponse(ctx *fasthttp.RequestCtx, code int, msg string, err error) {
	body := map[string]any{"message": msg}
	if err != nil {
		body["error"] = err.Error()
	}
	jsonResponse(ctx, code, body)
}

// serviceError maps a reading-service failure to one response. Anything that
// is not part of the error taxonomy is an infrastructure failure: logged with
// detail, surfaced as 500 with the underlying error string (internal tool, no
// attempt to hide it).
func serviceError(ctx *fasthttp.RequestCtx, err error) {
	switch {
	case errors.Is(err, meter.ErrValidation):
		observeReadingRejected("validation")
		errResponse(ctx, fasthttp.StatusBadRequest, "invalid reading", err)
	case errors.Is(err, meter.ErrForbidden):
		errResponse(ctx, fasthttp.StatusForbidden, "forbidden", err)
	case errors.Is(err, meter.ErrNotFound):
		errResponse(ctx, fasthttp.StatusNotFound, "not found", err)
	case errors.Is(err, meter.ErrConflict):
		observeReadingRejected("conflict")
		errResponse(ctx, fasthttp.StatusConflict, "conflict", err)
	default:
		log.Printf("store error on %s %s: %v", ctx.Method(), ctx.Path(), err)
		errResponse(ctx, fasthttp.StatusInternalServerError, "store failure", err)
	}
}

func pathID(ctx *fasthttp.RequestCtx) (string, bool) {
	v := ctx.UserValue("id")
	if v == nil {
		errResponse(ctx, fasthttp.StatusBadRequest, "id required", nil)
		return "", false
	}
	id, ok := v.(string)
	if !ok || id == "" {
		errResponse(ctx, fasthttp.StatusBadRequest, "invalid id", nil)
		return "", false
	}
	return id, true
}
