package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"flowrk-backend/internal/delivery/http/response"
	"flowrk-backend/internal/domain"
)

// SessionCookieName carries the session token for browser clients.
const SessionCookieName = "session_token"

// AuthMiddleware resolves the session token through the session cache and rejects the request
// when there is none or it is no longer valid.
func AuthMiddleware(sessions domain.SessionCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c)
		if token == "" {
			response.Error(c, http.StatusUnauthorized, "Authorization header or session_token cookie required", nil)
			c.Abort()
			return
		}

		identity, err := sessions.Lookup(c.Request.Context(), token)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "Session expired. Please sign in again.", nil)
			c.Abort()
			return
		}

		attach(c, token, identity)
		c.Next()
	}
}

// OptionalAuthMiddleware attaches the session when one resolves and lets the request through
// either way. An unresolved token is still attached so IsAuthenticated can report on it.
func OptionalAuthMiddleware(sessions domain.SessionCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c)
		if token == "" {
			c.Next()
			return
		}
		identity, err := sessions.Lookup(c.Request.Context(), token)
		if err != nil {
			identity = nil
		}
		attach(c, token, identity)
		c.Next()
	}
}

// AdminMiddleware must run after AuthMiddleware.
func AdminMiddleware(isAdmin func(ctx context.Context) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !isAdmin(c.Request.Context()) {
			response.Error(c, http.StatusForbidden, "Admin access required", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

func sessionToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if cookie, err := c.Cookie(SessionCookieName); err == nil {
		return cookie
	}
	return ""
}

func attach(c *gin.Context, token string, identity *domain.Identity) {
	c.Request = c.Request.WithContext(domain.WithSession(c.Request.Context(), token, identity))
	if identity != nil {
		c.Set(string(domain.KeyUserID), identity.UID)
		c.Set(string(domain.KeyUserEmail), identity.Email)
	}
}
