package middleware

import (
	"testing"
	"time"

	"github.com/valyala/fasthttp"

	httpctx "meterlog/internal/http/ctx"
	"meterlog/internal/identity"
)

func TestTokenAuthRejectsMissingToken(t *testing.T) {
	t.Parallel()

	called := false
	handler := TokenAuth()(func(ctx *fasthttp.RequestCtx) { called = true })

	ctx := new(fasthttp.RequestCtx)
	ctx.Request.SetRequestURI("/readings")
	handler(ctx)

	if called {
		t.Fatal("next handler ran without a token")
	}
	if got := ctx.Response.StatusCode(); got != fasthttp.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", got)
	}
}

func TestTokenAuthAttachesPrincipal(t *testing.T) {
	t.Parallel()

	var principal identity.Principal
	handler := TokenAuth()(func(ctx *fasthttp.RequestCtx) {
		principal, _ = httpctx.PrincipalFromCtx(ctx)
		ctx.SetStatusCode(fasthttp.StatusOK)
	})

	ctx := new(fasthttp.RequestCtx)
	ctx.Request.SetRequestURI("/readings")
	ctx.Request.Header.SetCookie(TokenCookie, identity.MintToken("alice", time.Now()))
	handler(ctx)

	if got := ctx.Response.StatusCode(); got != fasthttp.StatusOK {
		t.Fatalf("status = %d, want 200", got)
	}
	if principal.Username != "alice" {
		t.Fatalf("principal = %q, want alice", principal.Username)
	}
}
