package handler

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sport-meetup-api/internal/middleware"
	"github.com/noah-isme/sport-meetup-api/internal/models"
	appErrors "github.com/noah-isme/sport-meetup-api/pkg/errors"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		return nil
	}
	return claims
}

// viewerID returns the authenticated user id, or "" for anonymous requests.
func viewerID(c *gin.Context) string {
	if claims := claimsFromContext(c); claims != nil {
		return claims.UserID
	}
	return ""
}

func requireUserID(c *gin.Context) (string, error) {
	id := viewerID(c)
	if id == "" {
		return "", appErrors.Clone(appErrors.ErrUnauthorized, "")
	}
	return id, nil
}

// queryAny returns the first non-empty query value among keys.
func queryAny(c *gin.Context, keys ...string) string {
	for _, key := range keys {
		if raw := strings.TrimSpace(c.Query(key)); raw != "" {
			return raw
		}
	}
	return ""
}

// parseDateParam accepts a calendar date or a full RFC 3339 timestamp.
func parseDateParam(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if parsed, err := time.Parse("2006-01-02", raw); err == nil {
		return &parsed, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid date, expected YYYY-MM-DD")
	}
	return &parsed, nil
}

func parseQueryInt(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return val
}
