package middleware

import (
	"encoding/json"

	"github.com/valyala/fasthttp"

	"meterlog/internal/http/ctx"
	"meterlog/internal/identity"
)

// TokenCookie is the session cookie carrying the household token.
const TokenCookie = "meter_token"

// TokenAuth resolves the principal from the token cookie and attaches it to
// the request context. Requests without a resolvable principal are rejected
// with 401 before any route logic runs.
func TokenAuth() func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(rctx *fasthttp.RequestCtx) {
			token := string(rctx.Request.Header.Cookie(TokenCookie))

			principal, err := identity.FromToken(token)
			if err != nil {
				rctx.SetStatusCode(fasthttp.StatusUnauthorized)
				rctx.SetContentType("application/json")
				body, _ := json.Marshal(map[string]any{
					"message": "authentication required",
					"error":   err.Error(),
				})
				rctx.SetBody(body)
				return
			}

			ctx.SetToken(rctx, token)
			ctx.SetPrincipal(rctx, principal)
			next(rctx)
		}
	}
}
