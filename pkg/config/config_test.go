package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, "sport_meetup_session", cfg.JWT.CookieName)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.Expiration)
	assert.False(t, cfg.JWT.CookieSecure)
	assert.Equal(t, 6, cfg.Listing.HomeSectionSize)
	assert.Zero(t, cfg.Listing.CandidateLimit)
	assert.Equal(t, time.Hour, cfg.Export.EventDuration)
	assert.Equal(t, "@every 5m", cfg.Monitor.Spec)
	assert.Nil(t, cfg.CORS.AllowedOrigins)
}

func TestOverridesAndProductionCookie(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("ENV", EnvProduction)
	v.Set("ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	v.Set("LISTING_CACHE_TTL", "not-a-duration")
	v.Set("JWT_EXPIRATION", "2h")

	cfg := fromViper(v)

	assert.True(t, cfg.JWT.CookieSecure)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, time.Minute, cfg.Listing.CacheTTL)
	assert.Equal(t, 2*time.Hour, cfg.JWT.Expiration)
}
