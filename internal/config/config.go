package config

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ==================== 应用配置 ====================

// Config 应用配置
// 所有密钥类配置（数据库 DSN、JWT 密钥、支付/抓取 API Key）只从环境变量读取，
// 代码中不允许出现硬编码密钥
type Config struct {
	// HTTP
	ServerPort string

	// 数据库
	DatabaseDSN string

	// JWT
	JWTSecret string
	TokenTTL  time.Duration
	JWTIssuer string

	// 支付（Stripe Checkout）
	StripeAPIKey      string
	CheckoutReturnURL string
	Currency          string

	// 外部商品抓取 API
	ListingAPIKey   string
	ListingBaseURL  string
	ListingTimeout  time.Duration
	ImportDelay     time.Duration
	ImportCron      string
	ImportCategories []string

	// 缓存
	CacheEnabled bool
	RedisAddr    string
	RedisDB      int
	CacheTTL     time.Duration

	// 日志
	LogLevel string
}

// Load 加载配置
// 优先读取 .env 文件（不存在时忽略），再读环境变量
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8000"),

		DatabaseDSN: getEnv("DATABASE_DSN",
			"host=localhost user=pcshop password=pcshop dbname=pcshop port=5432 sslmode=disable"),

		JWTSecret: getSecret("JWT_SECRET"),
		TokenTTL:  getEnvDuration("TOKEN_TTL", 24*time.Hour),
		JWTIssuer: getEnv("JWT_ISSUER", "pcparts-shop"),

		StripeAPIKey:      getEnv("STRIPE_API_KEY", ""),
		CheckoutReturnURL: getEnv("CHECKOUT_RETURN_URL", "http://localhost:5173/return?session_id={CHECKOUT_SESSION_ID}"),
		Currency:          getEnv("CHECKOUT_CURRENCY", "usd"),

		ListingAPIKey:    getEnv("LISTING_API_KEY", ""),
		ListingBaseURL:   getEnv("LISTING_BASE_URL", ""),
		ListingTimeout:   getEnvDuration("LISTING_TIMEOUT", 30*time.Second),
		ImportDelay:      getEnvDuration("IMPORT_DELAY", 2*time.Second),
		ImportCron:       getEnv("IMPORT_CRON", "0 0 3 * * *"),
		ImportCategories: getEnvList("IMPORT_CATEGORIES", []string{"CPU", "GPU", "Motherboard", "RAM", "Storage", "PSU", "Case"}),

		CacheEnabled: getEnvBool("CACHE_ENABLED", false),
		RedisAddr:    getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:      getEnvInt("REDIS_DB", 0),
		CacheTTL:     getEnvDuration("CACHE_TTL", 60*time.Second),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// ==================== 环境变量辅助 ====================

// getSecret 密钥只从环境变量注入，缺失时生成一次性随机值，
// 重启后旧 Token 全部失效，生产环境必须显式配置
func getSecret(key string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		log.Fatalf("生成临时密钥失败: %v", err)
	}
	log.Printf("[config] 未配置 %s，本次启动使用随机密钥", key)
	return hex.EncodeToString(buf)
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// getEnvList 逗号分隔列表
func getEnvList(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
