package ctx

import (
	"github.com/valyala/fasthttp"

	"meterlog/internal/identity"
)

const (
	PrincipalKey = "principal"
	TokenKey     = "token"
)

func SetToken(ctx *fasthttp.RequestCtx, token string) {
	ctx.SetUserValue(TokenKey, token)
}

func TokenFromCtx(ctx *fasthttp.RequestCtx) (string, bool) {
	v := ctx.UserValue(TokenKey)
	if v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func SetPrincipal(ctx *fasthttp.RequestCtx, p identity.Principal) {
	ctx.SetUserValue(PrincipalKey, p)
}

func PrincipalFromCtx(ctx *fasthttp.RequestCtx) (identity.Principal, bool) {
	v := ctx.UserValue(PrincipalKey)
	if v == nil {
		return identity.Principal{}, false
	}
	p, ok := v.(identity.Principal)
	return p, ok
}
