package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/CaptainBright/Alumni-Connect-DEP/internal/core/domain"
	"github.com/CaptainBright/Alumni-Connect-DEP/internal/usecase"
)

const (
	// SessionClaimsKey is the gin context key holding validated session claims.
	SessionClaimsKey = "session_claims"
	// ProfileKey is the gin context key holding the caller's profile,
	// populated by RequireAdmin.
	ProfileKey = "session_profile"
)

type errorBody struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

func abortWith(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, errorBody{Error: msg, TraceID: GetTraceID(c)})
}

// RequireSession reads the session cookie and validates it, storing claims
// on the context. A missing or bad cookie yields 401.
func RequireSession(sessions *usecase.SessionService, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookieName)
		if err != nil || token == "" {
			abortWith(c, http.StatusUnauthorized, "not authenticated")
			return
		}

		claims, err := sessions.Validate(token)
		if err != nil {
			if errors.Is(err, usecase.ErrExpiredSession) {
				abortWith(c, http.StatusUnauthorized, "session expired")
				return
			}
			abortWith(c, http.StatusUnauthorized, "invalid session")
			return
		}

		c.Set(SessionClaimsKey, claims)
		c.Next()
	}
}

// RequireAdmin loads the caller's profile and rejects anyone who is not an
// approved administrator. Must run after RequireSession.
func RequireAdmin(lifecycle *usecase.LifecycleService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := SessionFromContext(c)
		if claims == nil {
			abortWith(c, http.StatusUnauthorized, "not authenticated")
			return
		}

		profile, err := lifecycle.GetProfile(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, usecase.ErrProfileNotFound) {
				abortWith(c, http.StatusUnauthorized, "not authenticated")
				return
			}
			abortWith(c, http.StatusInternalServerError, "failed to load profile")
			return
		}

		if !profile.Admin() {
			abortWith(c, http.StatusForbidden, "administrator access required")
			return
		}

		c.Set(ProfileKey, profile)
		c.Next()
	}
}

// SessionFromContext retrieves validated claims stored by RequireSession.
func SessionFromContext(c *gin.Context) *usecase.SessionClaims {
	if v, exists := c.Get(SessionClaimsKey); exists {
		if claims, ok := v.(*usecase.SessionClaims); ok {
			return claims
		}
	}
	return nil
}

// ProfileFromContext retrieves the profile stored by RequireAdmin.
func ProfileFromContext(c *gin.Context) *domain.Profile {
	if v, exists := c.Get(ProfileKey); exists {
		if profile, ok := v.(*domain.Profile); ok {
			return profile
		}
	}
	return nil
}
