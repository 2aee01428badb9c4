// Package config はアプリケーション全体の設定を環境変数から読み込みます。
// 起動時に一度だけ Load を呼び、生成した Config を各コンポーネントへ注入します。
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// DevJWTSecret は JWT_SECRET 未設定時に開発環境でのみ使用する署名鍵です。
	DevJWTSecret = "dev-secret"

	DefaultPort             = "5000"
	DefaultTokenTTL         = 7 * 24 * time.Hour
	DefaultResetTokenTTL    = 30 * time.Minute
	DefaultGeminiModel      = "gemini-2.5-flash"
	DefaultGeminiAPIVersion = "v1beta"
	DefaultLLMTimeout       = 60 * time.Second
	DefaultHistoryLimit     = 20
	DefaultHistoryCacheTTL  = 5 * time.Minute
)

// ErrMissingJWTSecret は本番環境で署名鍵が設定されていない場合に返されます。
var ErrMissingJWTSecret = errors.New("JWT_SECRET must be set in production")

// Config holds every externally provided setting of the server.
// It is read-only after Load returns.
type Config struct {
	AppEnv string
	Port   string

	// JWTSecret signs session tokens. JWTSecretFromEnv is false when the
	// development fallback is in use.
	JWTSecret        string
	JWTSecretFromEnv bool
	TokenTTL         time.Duration

	// DB_DRIVER selects "postgres" (default) or "sqlite".
	DBDriver      string
	DatabaseURL   string
	SQLitePath    string
	RunMigrations bool

	RedisHost       string
	RedisPort       string
	RedisPassword   string
	HistoryCacheTTL time.Duration

	GeminiAPIKey     string
	GeminiModel      string
	GeminiAPIVersion string
	LLMTimeout       time.Duration

	ResetTokenTTL        time.Duration
	ResetTokenInResponse bool
	ChatRequireAuth      bool
	HistoryLimit         int

	CORSAllowedOrigins []string
	LogLevel           string
	LogFormat          string
}

// IsProduction は APP_ENV が production かどうかを返します。
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// PersistenceConfigured はデータベース接続情報が与えられているかを返します。
func (c *Config) PersistenceConfigured() bool {
	if c.DBDriver == "sqlite" {
		return c.SQLitePath != ""
	}
	return c.DatabaseURL != ""
}

// RedisConfigured は Redis の接続先が設定されているかを返します。
func (c *Config) RedisConfigured() bool {
	return c.RedisHost != ""
}

// RedisAddr は host:port 形式の Redis アドレスを返します。
func (c *Config) RedisAddr() string {
	port := c.RedisPort
	if port == "" {
		port = "6379"
	}
	return c.RedisHost + ":" + port
}

// Load は環境変数から Config を構築します。
// 本番環境で JWT_SECRET が未設定の場合は ErrMissingJWTSecret を返します。
func Load() (*Config, error) {
	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		Port:             getEnv("PORT", DefaultPort),
		TokenTTL:         getDuration("JWT_TTL", DefaultTokenTTL),
		DBDriver:         strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		SQLitePath:       os.Getenv("SQLITE_PATH"),
		RunMigrations:    getBool("RUN_MIGRATIONS", true),
		RedisHost:        os.Getenv("REDIS_HOST"),
		RedisPort:        os.Getenv("REDIS_PORT"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		HistoryCacheTTL:  getDuration("HISTORY_CACHE_TTL", DefaultHistoryCacheTTL),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		GeminiModel:      getEnv("GEMINI_MODEL", DefaultGeminiModel),
		GeminiAPIVersion: getEnv("GEMINI_API_VERSION", DefaultGeminiAPIVersion),
		LLMTimeout:       getDuration("LLM_TIMEOUT", DefaultLLMTimeout),
		ResetTokenTTL:    getDuration("RESET_TOKEN_TTL", DefaultResetTokenTTL),
		ChatRequireAuth:  getBool("CHAT_REQUIRE_AUTH", true),
		HistoryLimit:     getInt("HISTORY_LIMIT", DefaultHistoryLimit),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "json"),
	}

	// 元実装の AUTH_SECRET も互換のため受け付ける
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = os.Getenv("AUTH_SECRET")
	}
	if secret == "" {
		if cfg.IsProduction() {
			return nil, ErrMissingJWTSecret
		}
		secret = DevJWTSecret
	} else {
		cfg.JWTSecretFromEnv = true
	}
	cfg.JWTSecret = secret

	// 生のリセットトークンをレスポンスに含めるのは開発用の代替手段
	cfg.ResetTokenInResponse = getBool("RESET_TOKEN_IN_RESPONSE", !cfg.IsProduction())

	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
			}
		}
	}

	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = DefaultHistoryLimit
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
