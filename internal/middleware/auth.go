package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/trailhead/trailhead-backend/internal/common"
	"github.com/trailhead/trailhead-backend/internal/domain"
	"github.com/trailhead/trailhead-backend/pkg/jwt"
	"github.com/trailhead/trailhead-backend/pkg/logger"
)

const identityKey = "identity"

// bearerToken extracts the token from "Authorization: Bearer <token>".
// ok is false when the header is absent; err is set when it is malformed.
func bearerToken(c *gin.Context) (token string, ok bool, err error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false, nil
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", true, errors.New("invalid authorization header format")
	}
	return parts[1], true, nil
}

func identityFromClaims(claims *jwt.Claims) domain.Identity {
	return domain.Identity{
		UserID:      claims.GetUserID(),
		Name:        claims.Name,
		DisplayName: claims.DisplayName,
		Email:       claims.Email,
	}
}

// JWTAuth requires a valid bearer token and stores the caller's identity
func JWTAuth(jwtManager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok, err := bearerToken(c)
		if !ok {
			common.V2ErrorResponse(c, http.StatusUnauthorized, "Missing authorization header", nil)
			c.Abort()
			return
		}
		if err != nil {
			common.V2ErrorResponse(c, http.StatusUnauthorized, "Invalid authorization header", err)
			c.Abort()
			return
		}

		claims, err := jwtManager.VerifyToken(token)
		if err != nil {
			if errors.Is(err, jwt.ErrExpiredToken) {
				common.V2ErrorResponse(c, http.StatusUnauthorized, "Token expired", err)
			} else {
				common.V2ErrorResponse(c, http.StatusUnauthorized, "Invalid token", err)
			}
			c.Abort()
			return
		}

		c.Set(identityKey, identityFromClaims(claims))
		c.Next()
	}
}

// OptionalJWTAuth resolves the identity when a valid token is present and
// otherwise continues anonymously
func OptionalJWTAuth(jwtManager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok, err := bearerToken(c)
		if ok && err == nil {
			if claims, verr := jwtManager.VerifyToken(token); verr == nil {
				c.Set(identityKey, identityFromClaims(claims))
			}
		}
		c.Next()
	}
}

// GetIdentity returns the caller's identity, or the anonymous zero value
func GetIdentity(c *gin.Context) domain.Identity {
	v, exists := c.Get(identityKey)
	if !exists {
		return domain.Identity{}
	}
	if id, ok := v.(domain.Identity); ok {
		return id
	}
	return domain.Identity{}
}

// GetUserID extracts user ID from context
func GetUserID(c *gin.Context) string {
	return GetIdentity(c).UserID
}

// UserSyncer upserts the local user row for an identity
type UserSyncer interface {
	Sync(ctx context.Context, caller domain.Identity) error
}

// SyncUser keeps the users table current for authenticated callers.
// Failures are logged and the request continues.
func SyncUser(syncer UserSyncer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := GetIdentity(c); id.IsAuthenticated() {
			if err := syncer.Sync(c.Request.Context(), id); err != nil {
				logger.GetLogger().Warn().
					Err(err).
					Str("request_id", c.GetString("request_id")).
					Str("user_id", id.UserID).
					Msg("user sync failed")
			}
		}
		c.Next()
	}
}
