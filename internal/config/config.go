package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	MySQLDSN       string
	ListenAddr     string
	AdminUsername  string
	AdminPassword  string
	Debug          bool
	RequestTimeout time.Duration

	// Fuzzy-match threshold applied when the caller does not pass one.
	MatchThreshold float64

	TranslateProvider string
	OpenAIAPIKey      string
	OpenAIModel       string
	DeepLAPIKey       string
	DeepLBaseURL      string
	SourceLang        string
	TargetLang        string

	FreeAIQuota    int
	FreeHumanQuota int

	DefaultPlanName     string
	DefaultPlanPrice    int
	DefaultPlanDays     int
	DefaultPlanAIQuota  int
	DefaultPlanHumQuota int

	S3Endpoint      string
	S3Region        string
	S3AccessKey     string
	S3SecretKey     string
	S3Bucket        string
	S3PublicBaseURL string
	S3UsePathStyle  bool
	S3Prefix        string

	TelegramBotToken    string
	TelegramAdminChatID int64
}

// Load reads configuration from environment variables, applying sane defaults.
func Load() (Config, error) {
	if err := loadEnvFile(); err != nil {
		return Config{}, err
	}

	cfg := Config{
		ListenAddr:     getEnv("LISTEN_ADDR", ":8080"),
		AdminUsername:  getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:  getEnv("ADMIN_PASSWORD", "change-me"),
		Debug:          getBool("DEBUG", false),
		RequestTimeout: time.Second * time.Duration(getInt("HTTP_TIMEOUT_SECONDS", 30)),

		MatchThreshold: getFloat("MATCH_THRESHOLD", 70),

		TranslateProvider: strings.ToLower(getEnv("TRANSLATE_PROVIDER", "openai")),
		OpenAIModel:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		DeepLBaseURL:      getEnv("DEEPL_BASE_URL", "https://api-free.deepl.com"),
		SourceLang:        getEnv("SOURCE_LANG", "JA"),
		TargetLang:        getEnv("TARGET_LANG", "ZH"),

		FreeAIQuota:    getInt("FREE_AI_QUOTA", 10),
		FreeHumanQuota: getInt("FREE_HUMAN_QUOTA", 0),

		DefaultPlanName:     getEnv("DEFAULT_PLAN_NAME", "标准套餐"),
		DefaultPlanPrice:    getInt("DEFAULT_PLAN_PRICE_MINOR_UNITS", 2900),
		DefaultPlanDays:     getInt("DEFAULT_PLAN_DURATION_DAYS", 30),
		DefaultPlanAIQuota:  getInt("DEFAULT_PLAN_AI_QUOTA", 100),
		DefaultPlanHumQuota: getInt("DEFAULT_PLAN_HUMAN_QUOTA", 5),

		S3Endpoint:      getEnv("S3_ENDPOINT", ""),
		S3Region:        os.Getenv("S3_REGION"),
		S3AccessKey:     os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:     os.Getenv("S3_SECRET_KEY"),
		S3Bucket:        os.Getenv("S3_BUCKET"),
		S3PublicBaseURL: os.Getenv("S3_PUBLIC_BASE_URL"),
		S3UsePathStyle:  getBool("S3_USE_PATH_STYLE", false),
		S3Prefix:        getEnv("S3_PREFIX", "proofs"),

		TelegramBotToken:    os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramAdminChatID: getInt64("TELEGRAM_ADMIN_CHAT_ID", 0),
	}

	cfg.MySQLDSN = os.Getenv("MYSQL_DSN")
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.DeepLAPIKey = os.Getenv("DEEPL_API_KEY")

	var missing []string
	if cfg.MySQLDSN == "" {
		missing = append(missing, "MYSQL_DSN")
	}
	switch cfg.TranslateProvider {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			missing = append(missing, "OPENAI_API_KEY")
		}
	case "deepl":
		if cfg.DeepLAPIKey == "" {
			missing = append(missing, "DEEPL_API_KEY")
		}
	default:
		return Config{}, fmt.Errorf("unsupported translate provider: %s", cfg.TranslateProvider)
	}
	if cfg.TelegramBotToken != "" && cfg.TelegramAdminChatID == 0 {
		missing = append(missing, "TELEGRAM_ADMIN_CHAT_ID")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required environment variables: %v", missing)
	}

	return cfg, nil
}

// S3Enabled reports whether proof uploads go to object storage. Without it
// clients must supply an already-hosted proof URL.
func (c Config) S3Enabled() bool {
	return c.S3Bucket != "" && c.S3AccessKey != "" && c.S3SecretKey != "" && c.S3Region != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

func getInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return i
}

func getFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func loadEnvFile() error {
	candidates := []string{}
	if custom, ok := os.LookupEnv("CONFIG_ENV_PATH"); ok && custom != "" {
		candidates = append(candidates, custom)
	}
	candidates = append(candidates,
		filepath.Join("configs", ".env"),
		".env",
	)

	for _, path := range candidates {
		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("access env file %s: %w", path, err)
		}
		if info.IsDir() {
			continue
		}
		if err := godotenv.Overload(path); err != nil {
			return fmt.Errorf("load env file %s: %w", path, err)
		}
		return nil
	}
	// Running purely off the environment is fine.
	return nil
}
