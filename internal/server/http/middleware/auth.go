package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/library/internal/domain/model"
	pkgAuth "github.com/polkiloo/library/internal/pkg/auth"
)

const (
	// IdentityContextKey is a gin context key for the caller identity.
	IdentityContextKey = "identity"
	// SessionCookieName names the cookie carrying the session token.
	SessionCookieName = "library_session"
	// LoginPath is where unauthenticated callers are sent.
	LoginPath = "/login"
)

// TokenParser resolves session tokens into identities.
type TokenParser interface {
	ParseToken(token string) (model.Identity, error)
}

// Identify resolves the caller identity from the session cookie or bearer header.
// Missing or invalid tokens leave the caller anonymous.
func Identify(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := model.Identity{}
		if token := extractToken(c); token != "" {
			parsed, err := parser.ParseToken(token)
			switch {
			case err == nil:
				identity = parsed
			case errors.Is(err, pkgAuth.ErrInvalidToken):
			default:
				_ = c.Error(err)
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
		}

		c.Set(IdentityContextKey, identity)
		c.Next()
	}
}

// RequireUser lets through callers backed by a user record.
func RequireUser() gin.HandlerFunc {
	return require(model.Identity.IsRegisteredUser)
}

// RequireAdmin lets through administrators.
func RequireAdmin() gin.HandlerFunc {
	return require(model.Identity.IsAdministrator)
}

func require(allowed func(model.Identity) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !allowed(IdentityFrom(c)) {
			RedirectToLogin(c)
			return
		}
		c.Next()
	}
}

// RedirectToLogin aborts the request with a redirect to the login page.
func RedirectToLogin(c *gin.Context) {
	c.Redirect(http.StatusSeeOther, LoginPath)
	c.Abort()
}

// IdentityFrom returns the identity stored by Identify, anonymous when absent.
func IdentityFrom(c *gin.Context) model.Identity {
	val, ok := c.Get(IdentityContextKey)
	if !ok {
		return model.Identity{}
	}
	identity, _ := val.(model.Identity)
	return identity
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}

	if cookie, err := c.Cookie(SessionCookieName); err == nil {
		return cookie
	}
	return ""
}

// SetSessionCookie writes the session token cookie to response.
func SetSessionCookie(c *gin.Context, token string, ttl time.Duration) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, token, int(ttl.Seconds()), "/", "", false, true)
	c.Header("Authorization", "Bearer "+token)
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, "", -1, "/", "", false, true)
}
