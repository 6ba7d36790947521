package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sport-meetup-api/internal/models"
	"github.com/noah-isme/sport-meetup-api/internal/service"
)

const (
	testSecret = "test-secret"
	testCookie = "session"
)

func signToken(t *testing.T, secret string, expires time.Time) string {
	t.Helper()
	claims := &models.JWTClaims{
		UserID: "user-1",
		Email:  "user@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func newAuthRouter(protect gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/", protect, func(c *gin.Context) {
		claims, ok := CurrentClaims(c)
		if !ok {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, claims.UserID)
	})
	return router
}

func TestJWTAcceptsHeaderAndCookie(t *testing.T) {
	auth := service.NewAuthService(nil, nil, nil, service.AuthConfig{AccessTokenSecret: testSecret})
	router := newAuthRouter(JWT(auth, testCookie))
	token := signToken(t, testSecret, time.Now().Add(time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: token})
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", rec.Body.String())
}

func TestJWTRejectsMissingOrInvalidTokens(t *testing.T) {
	auth := service.NewAuthService(nil, nil, nil, service.AuthConfig{AccessTokenSecret: testSecret})
	router := newAuthRouter(JWT(auth, testCookie))

	cases := map[string]string{
		"missing":       "",
		"wrong scheme":  "Basic abc",
		"wrong secret":  "Bearer " + signToken(t, "other", time.Now().Add(time.Hour)),
		"expired token": "Bearer " + signToken(t, testSecret, time.Now().Add(-time.Hour)),
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), "UNAUTHORIZED")
		})
	}
}

func TestOptionalJWTLetsAnonymousThrough(t *testing.T) {
	auth := service.NewAuthService(nil, nil, nil, service.AuthConfig{AccessTokenSecret: testSecret})
	router := newAuthRouter(OptionalJWT(auth, testCookie))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: "garbage"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "anonymous", rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, time.Now().Add(time.Hour)))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "user-1", rec.Body.String())
}
