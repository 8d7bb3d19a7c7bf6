package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config はAPIサーバーの設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// Auth
	JWTSecret string
	TokenTTL  time.Duration

	// Storage
	ImagesDir string

	// Chat
	ChatMaxMessages  int
	ChatDefaultLimit int

	// Rate Limit
	RateLimitChat int // req/min per client

	// Logging
	LogLevel string

	// Server
	ServerPort string

	// CORS
	CORSAllowedOrigin string // カンマ区切りで複数指定可
}

// ClientConfig は端末コンソール（管理コンソール・掲示板）の設定を保持する。
type ClientConfig struct {
	APIBaseURL         string
	CredentialFile     string
	ConfirmRevertDelay time.Duration
	PollInterval       time.Duration
	AdminMessageLimit  int
	ClientRateLimit    float64 // req/sec
	ClientTimeout      time.Duration
	LogLevel           string
}

// TokenConfig は管理者トークン発行コマンドの設定を保持する。
type TokenConfig struct {
	JWTSecret      string
	TokenTTL       time.Duration
	CredentialFile string
}

// Load は環境変数からサーバー用Configを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.TokenTTL = getEnvDuration("TOKEN_TTL", 24*time.Hour)
	cfg.ImagesDir = getEnvString("IMAGES_DIR", filepath.Join("admin_data", "images"))
	cfg.ChatMaxMessages = getEnvInt("CHAT_MAX_MESSAGES", 100)
	cfg.ChatDefaultLimit = getEnvInt("CHAT_DEFAULT_LIMIT", 50)
	cfg.RateLimitChat = getEnvInt("RATE_LIMIT_CHAT", 30)
	cfg.LogLevel = getEnvString("LOG_LEVEL", "info")
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	return cfg, nil
}

// LoadMigrate はマイグレーション実行に必要な最小限の設定を読み込む。
func LoadMigrate() (*Config, error) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		return nil, fmt.Errorf("required environment variables are not set: [DATABASE_URL]")
	}
	return &Config{DatabaseURL: url, LogLevel: getEnvString("LOG_LEVEL", "info")}, nil
}

// LoadClient は環境変数から端末コンソール用ClientConfigを読み込む。
// 必須項目はなく、すべてデフォルト値を持つ。
func LoadClient() *ClientConfig {
	return &ClientConfig{
		APIBaseURL:         getEnvString("API_BASE_URL", "http://localhost:8080"),
		CredentialFile:     getEnvString("CREDENTIAL_FILE", defaultCredentialFile()),
		ConfirmRevertDelay: getEnvDuration("CONFIRM_REVERT_DELAY", 3*time.Second),
		PollInterval:       getEnvDuration("POLL_INTERVAL", 3*time.Second),
		AdminMessageLimit:  getEnvInt("ADMIN_MESSAGE_LIMIT", 500),
		ClientRateLimit:    getEnvFloat("CLIENT_RATE_LIMIT", 10),
		ClientTimeout:      getEnvDuration("CLIENT_TIMEOUT", 10*time.Second),
		LogLevel:           getEnvString("LOG_LEVEL", "warn"),
	}
}

// LoadToken は環境変数からトークン発行用TokenConfigを読み込む。
func LoadToken() (*TokenConfig, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("required environment variables are not set: [JWT_SECRET]")
	}
	return &TokenConfig{
		JWTSecret:      secret,
		TokenTTL:       getEnvDuration("TOKEN_TTL", 24*time.Hour),
		CredentialFile: getEnvString("CREDENTIAL_FILE", defaultCredentialFile()),
	}, nil
}

// defaultCredentialFile は資格情報ファイルの既定パス（$HOME/.inkpost/token）を返す。
func defaultCredentialFile() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(".inkpost", "token")
	}
	return filepath.Join(home, ".inkpost", "token")
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvFloat(key string, defaultVal float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
