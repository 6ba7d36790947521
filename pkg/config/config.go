package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Log      LogConfig
	Listing  ListingConfig
	Export   ExportConfig
	Monitor  MonitorConfig
	Jobs     JobsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig controls access tokens and the session cookie carrying them.
type JWTConfig struct {
	Secret       string
	Issuer       string
	Expiration   time.Duration
	CookieName   string
	CookieSecure bool
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// ListingConfig tunes activity listings and the home page sections.
type ListingConfig struct {
	CacheEnabled    bool
	CacheTTL        time.Duration
	DefaultPageSize int
	MaxPageSize     int
	// CandidateLimit caps rows read before ranking; 0 reads every visible row.
	CandidateLimit  int
	HomeSectionSize int
}

// ExportConfig drives calendar and schedule exports.
type ExportConfig struct {
	EventDuration time.Duration
	ProductID     string
	UpcomingLimit int
}

// MonitorConfig schedules the periodic active-activity gauge refresh.
type MonitorConfig struct {
	Enabled bool
	Spec    string
}

// JobsConfig sizes the background invalidation queue.
type JobsConfig struct {
	Workers    int
	MaxRetries int
	RetryDelay time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("REDIS_ENABLED"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:       v.GetString("JWT_SECRET"),
		Issuer:       v.GetString("JWT_ISSUER"),
		Expiration:   parseDuration(v.GetString("JWT_EXPIRATION"), 7*24*time.Hour),
		CookieName:   v.GetString("SESSION_COOKIE_NAME"),
		CookieSecure: v.GetBool("SESSION_COOKIE_SECURE") || cfg.Env == EnvProduction,
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Listing = ListingConfig{
		CacheEnabled:    v.GetBool("ENABLE_LISTING_CACHE"),
		CacheTTL:        parseDuration(v.GetString("LISTING_CACHE_TTL"), time.Minute),
		DefaultPageSize: v.GetInt("LISTING_PAGE_SIZE"),
		MaxPageSize:     v.GetInt("LISTING_MAX_PAGE_SIZE"),
		CandidateLimit:  v.GetInt("LISTING_CANDIDATE_LIMIT"),
		HomeSectionSize: v.GetInt("HOME_SECTION_SIZE"),
	}

	cfg.Export = ExportConfig{
		EventDuration: parseDuration(v.GetString("EXPORT_EVENT_DURATION"), time.Hour),
		ProductID:     v.GetString("EXPORT_PRODUCT_ID"),
		UpcomingLimit: v.GetInt("EXPORT_UPCOMING_LIMIT"),
	}

	cfg.Monitor = MonitorConfig{
		Enabled: v.GetBool("ENABLE_ACTIVITY_MONITOR"),
		Spec:    v.GetString("ACTIVITY_MONITOR_SPEC"),
	}

	cfg.Jobs = JobsConfig{
		Workers:    v.GetInt("JOBS_WORKERS"),
		MaxRetries: v.GetInt("JOBS_MAX_RETRIES"),
		RetryDelay: parseDuration(v.GetString("JOBS_RETRY_DELAY"), time.Second),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "sport_meetup")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "sport-meetup-api")
	v.SetDefault("JWT_EXPIRATION", "168h")
	v.SetDefault("SESSION_COOKIE_NAME", "sport_meetup_session")
	v.SetDefault("SESSION_COOKIE_SECURE", false)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_LISTING_CACHE", false)
	v.SetDefault("LISTING_CACHE_TTL", "1m")
	v.SetDefault("LISTING_PAGE_SIZE", 20)
	v.SetDefault("LISTING_MAX_PAGE_SIZE", 100)
	v.SetDefault("LISTING_CANDIDATE_LIMIT", 0)
	v.SetDefault("HOME_SECTION_SIZE", 6)

	v.SetDefault("EXPORT_EVENT_DURATION", "60m")
	v.SetDefault("EXPORT_PRODUCT_ID", "-//SportMeetup//Activity//EN")
	v.SetDefault("EXPORT_UPCOMING_LIMIT", 10)

	v.SetDefault("ENABLE_ACTIVITY_MONITOR", true)
	v.SetDefault("ACTIVITY_MONITOR_SPEC", "@every 5m")

	v.SetDefault("JOBS_WORKERS", 1)
	v.SetDefault("JOBS_MAX_RETRIES", 3)
	v.SetDefault("JOBS_RETRY_DELAY", "1s")
}

// isMissingFile tolerates an absent .env when SetConfigFile is used, which
// viper reports as a filesystem error rather than ConfigFileNotFoundError.
func isMissingFile(err error) bool {
	return strings.Contains(err.Error(), "no such file or directory")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
