package config

import (
	"errors"
	"io/fs"
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
	Env  string
	Port int

	Records   RecordsConfig
	Cookies   CookieConfig
	Session   SessionConfig
	Dashboard DashboardConfig
	Redis     RedisConfig
	Throttle  ThrottleConfig
	CORS      CORSConfig
	Log       LogConfig
	Metrics   MetricsConfig
	Exports   ExportsConfig
}

// RecordsConfig points at the external school-records API.
type RecordsConfig struct {
	BaseURL string
	Timeout time.Duration
}

// CookieConfig governs the two credential cookies.
type CookieConfig struct {
	RememberFor time.Duration
	Secure      bool
}

// SessionConfig tunes the browser-side session check.
type SessionConfig struct {
	PingInterval time.Duration
}

// DashboardConfig tunes view composition.
type DashboardConfig struct {
	ChartLimit           int
	PositiveTopN         int
	AnnouncementsTimeout time.Duration
	ViewStateTTL         time.Duration
	ViewStateLimit       int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// ThrottleConfig limits credential verification attempts.
type ThrottleConfig struct {
	Enabled     bool
	MaxAttempts int
	Window      time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

type MetricsConfig struct {
	Enabled bool
}

// ExportsConfig toggles the attendance export endpoints.
type ExportsConfig struct {
	Enabled bool
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
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")

	cfg.Records = RecordsConfig{
		BaseURL: strings.TrimRight(v.GetString("RECORDS_BASE_URL"), "/"),
		Timeout: parseDuration(v.GetString("RECORDS_TIMEOUT"), 10*time.Second),
	}

	rememberDays := v.GetInt("COOKIE_REMEMBER_DAYS")
	if rememberDays <= 0 {
		rememberDays = 30
	}
	cfg.Cookies = CookieConfig{
		RememberFor: time.Duration(rememberDays) * 24 * time.Hour,
		Secure:      v.GetBool("COOKIE_SECURE"),
	}

	cfg.Session = SessionConfig{
		PingInterval: parseDuration(v.GetString("SESSION_PING_INTERVAL"), 4*time.Minute),
	}

	cfg.Dashboard = DashboardConfig{
		ChartLimit:           v.GetInt("DASHBOARD_CHART_LIMIT"),
		PositiveTopN:         v.GetInt("DASHBOARD_POSITIVE_TOP_N"),
		AnnouncementsTimeout: parseDuration(v.GetString("ANNOUNCEMENTS_TIMEOUT"), 5*time.Second),
		ViewStateTTL:         parseDuration(v.GetString("DASHBOARD_VIEW_TTL"), 30*time.Minute),
		ViewStateLimit:       v.GetInt("DASHBOARD_VIEW_LIMIT"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Throttle = ThrottleConfig{
		Enabled:     v.GetBool("ENABLE_LOGIN_THROTTLE"),
		MaxAttempts: v.GetInt("LOGIN_MAX_ATTEMPTS"),
		Window:      parseDuration(v.GetString("LOGIN_THROTTLE_WINDOW"), 15*time.Minute),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Metrics = MetricsConfig{Enabled: v.GetBool("ENABLE_METRICS")}
	cfg.Exports = ExportsConfig{Enabled: v.GetBool("ENABLE_EXPORTS")}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 3000)

	v.SetDefault("RECORDS_BASE_URL", "https://www.classcharts.com/apiv2student")
	v.SetDefault("RECORDS_TIMEOUT", "10s")

	v.SetDefault("COOKIE_REMEMBER_DAYS", 30)
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("SESSION_PING_INTERVAL", "4m")

	v.SetDefault("DASHBOARD_CHART_LIMIT", 10)
	v.SetDefault("DASHBOARD_POSITIVE_TOP_N", 5)
	v.SetDefault("ANNOUNCEMENTS_TIMEOUT", "5s")
	v.SetDefault("DASHBOARD_VIEW_TTL", "30m")
	v.SetDefault("DASHBOARD_VIEW_LIMIT", 1000)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ENABLE_LOGIN_THROTTLE", false)
	v.SetDefault("LOGIN_MAX_ATTEMPTS", 5)
	v.SetDefault("LOGIN_THROTTLE_WINDOW", "15m")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_METRICS", true)
	v.SetDefault("ENABLE_EXPORTS", true)
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
