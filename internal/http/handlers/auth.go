package handlers

import (
	"encoding/json"
	"time"

	"github.com/valyala/fasthttp"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	dbpkg "meterlog/internal/db"
	"meterlog/internal/http/middleware"
	"meterlog/internal/identity"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login verifies household credentials and sets the token cookie the
// identity resolver decodes on every subsequent request. This handler is the
// one place the token is actually validated; downstream the token is trusted.
func Login(db *gorm.DB) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		var req loginRequest
		if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
			errResponse(ctx, fasthttp.StatusBadRequest, "invalid JSON body", err)
			return
		}
		if req.Username == "" || req.Password == "" {
			errResponse(ctx, fasthttp.StatusBadRequest, "username and password are required", nil)
			return
		}

		var user dbpkg.User
		if err := db.Where("username = ?", req.Username).First(&user).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				errResponse(ctx, fasthttp.StatusUnauthorized, "invalid username or password", nil)
				return
			}
			errResponse(ctx, fasthttp.StatusInternalServerError, "database error", err)
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
			errResponse(ctx, fasthttp.StatusUnauthorized, "invalid username or password", nil)
			return
		}

		token := identity.MintToken(user.Username, time.Now())

		var c fasthttp.Cookie
		c.SetKey(middleware.TokenCookie)
		c.SetValue(token)
		c.SetPath("/")
		c.SetHTTPOnly(true)
		ctx.Response.Header.SetCookie(&c)

		jsonResponse(ctx, fasthttp.StatusOK, map[string]any{"username": user.Username})
	}
}

// Logout clears the token cookie.
func Logout() fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		var c fasthttp.Cookie
		c.SetKey(middleware.TokenCookie)
		c.SetValue("")
		c.SetPath("/")
		c.SetMaxAge(-1)
		ctx.Response.Header.SetCookie(&c)
		ctx.SetStatusCode(fasthttp.StatusNoContent)
	}
}
