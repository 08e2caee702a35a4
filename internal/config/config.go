package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr        string
	Port              string
	DatabasePath      string
	SessionSecret     string
	GinMode           string
	UploadDir         string
	UploadURLPath     string
	RootDomain        string
	LogLevel          string
	LogFormat         string
	RedisURL          string
	SaveDebounce      time.Duration
	PreviewDebounce   time.Duration
	PreviewRateLimit  int
	SuperRootUserName string
	SuperRootPassword string
	// Features 列出开启的店铺功能开关，例如 "checkout"。
	Features []string
}

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
func Load() AppConfig {
	port := envOr("PORT", "8080")

	listenAddr := strings.TrimSpace(os.Getenv("LISTEN_ADDR"))
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	return AppConfig{
		ListenAddr:        listenAddr,
		Port:              port,
		DatabasePath:      envOr("DATABASE_PATH", "marketdev.db"),
		SessionSecret:     envOr("SESSION_SECRET", "marketdev-dev-secret"),
		GinMode:           envOr("GIN_MODE", "release"),
		UploadDir:         envOr("UPLOAD_DIR", "web/static/uploads"),
		UploadURLPath:     envOr("UPLOAD_URL_PATH", "/static/uploads"),
		RootDomain:        envOr("ROOT_DOMAIN", "market.dev"),
		LogLevel:          envOr("LOG_LEVEL", "info"),
		LogFormat:         envOr("LOG_FORMAT", "json"),
		RedisURL:          strings.TrimSpace(os.Getenv("REDIS_URL")),
		SaveDebounce:      envDuration("SAVE_DEBOUNCE", 2*time.Second),
		PreviewDebounce:   envDuration("PREVIEW_DEBOUNCE", 500*time.Millisecond),
		PreviewRateLimit:  envInt("PREVIEW_RATE_LIMIT", 10),
		SuperRootUserName: strings.TrimSpace(os.Getenv("SUPER_ROOT_USER_NAME")),
		SuperRootPassword: strings.TrimSpace(os.Getenv("SUPER_ROOT_PASSWORD")),
		Features:          envList("FEATURES"),
	}
}

func envOr(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

// envDuration 接受 Go duration 字符串（如 "750ms"），无效值回退到默认值。
func envDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func envInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

// envList 解析逗号分隔的列表，忽略空项并统一为小写。
func envList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if trimmed := strings.ToLower(strings.TrimSpace(item)); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
