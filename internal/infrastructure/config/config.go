package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App         AppConfig         `mapstructure:"app"`
	Server      ServerConfig      `mapstructure:"server"`
	Recommender RecommenderConfig `mapstructure:"recommender"`
	Persistence PersistenceConfig `mapstructure:"persistence"`
	ImageSearch ImageSearchConfig `mapstructure:"image_search"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Draft       DraftConfig       `mapstructure:"draft"`
	RateLimit   RateLimitConfig   `mapstructure:"rate_limit"`
	DedupWindow time.Duration     `mapstructure:"dedup_window"`
	LogLevel    string            `mapstructure:"log_level"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env      string `mapstructure:"env"`
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
	Version  string `mapstructure:"version"`
	Name     string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// RecommenderConfig 合併推薦服務（LLM）配置
type RecommenderConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	BaseURL   string        `mapstructure:"base_url"`
	APIKey    string        `mapstructure:"api_key"`
	Model     string        `mapstructure:"model"`
	MaxTokens int           `mapstructure:"max_tokens"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// PersistenceConfig 後端儲存服務配置
type PersistenceConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ImageSearchConfig 食材圖片查詢配置
type ImageSearchConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	BaseURL        string        `mapstructure:"base_url"`
	APIKey         string        `mapstructure:"api_key"`
	BatchSize      int           `mapstructure:"batch_size"`
	BatchDelay     time.Duration `mapstructure:"batch_delay"`
	PlaceholderURL string        `mapstructure:"placeholder_url"`
}

// CacheConfig 緩存配置
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	MaxSize         int           `mapstructure:"max_size"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// DraftConfig 菜單草稿儲存（Redis）配置
type DraftConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	TTL           time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// LoadConfig 載入設定
func LoadConfig() (*Config, error) {
	// 加載 .env 文件
	if err := godotenv.Load(); err != nil {
		return nil, err
	}

	// 設定預設值
	setDefaults()

	// 設定環境變數前綴
	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// 綁定環境變量
	viper.BindEnv("recommender.api_key", "RECOMMENDER_API_KEY")
	viper.BindEnv("recommender.model", "RECOMMENDER_MODEL")
	viper.BindEnv("recommender.max_tokens", "MODEL_MAX_TOKENS")
	viper.BindEnv("persistence.base_url", "PERSISTENCE_BASE_URL")
	viper.BindEnv("persistence.api_key", "PERSISTENCE_API_KEY")
	viper.BindEnv("image_search.api_key", "IMAGE_SEARCH_API_KEY")
	viper.BindEnv("cache.enabled", "CACHE_ENABLED")
	viper.BindEnv("draft.redis_addr", "DRAFT_REDIS_ADDR")
	viper.BindEnv("draft.redis_password", "DRAFT_REDIS_PASSWORD")
	viper.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	viper.BindEnv("rate_limit.requests", "RATE_LIMIT_REQUESTS")
	viper.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")
	viper.BindEnv("dedup_window", "DEDUP_WINDOW")
	viper.BindEnv("log_level", "LOG_LEVEL")

	// 設定設定檔名稱和路徑
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	// 讀取設定檔
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// 添加調試日誌（logger 尚未初始化，改用 fmt.Println）
	fmt.Println("Loading configuration", "recommender_api_key:", maskAPIKey(viper.GetString("recommender.api_key")), "recommender_model:", viper.GetString("recommender.model"))

	// 解析設定
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 驗證必要設定
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// maskAPIKey 遮罩 API Key，只顯示前後各 4 個字符
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// setDefaults 設定預設值
func setDefaults() {
	// 應用程式設定
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.debug", true)
	viper.SetDefault("app.log_level", "info")
	viper.SetDefault("app.version", "1.0.0")
	viper.SetDefault("app.name", "meal-planner")

	// 伺服器設定
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")

	// 合併推薦服務設定
	viper.SetDefault("recommender.enabled", true)
	viper.SetDefault("recommender.base_url", "https://openrouter.ai/api/v1")
	viper.SetDefault("recommender.model", "qwen/qwen-2.5-72b-instruct:free")
	viper.SetDefault("recommender.max_tokens", 2000)
	viper.SetDefault("recommender.timeout", "60s")

	// 儲存服務設定
	viper.SetDefault("persistence.base_url", "http://localhost:8081")
	viper.SetDefault("persistence.timeout", "15s")

	// 圖片查詢設定
	viper.SetDefault("image_search.enabled", true)
	viper.SetDefault("image_search.base_url", "https://api.pexels.com/v1")
	viper.SetDefault("image_search.batch_size", 5)
	viper.SetDefault("image_search.batch_delay", "300ms")
	viper.SetDefault("image_search.placeholder_url", "/static/images/ingredient-placeholder.png")

	// 快取設定
	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("cache.max_size", 1000)
	viper.SetDefault("cache.ttl", "24h")
	viper.SetDefault("cache.cleanup_interval", "10m")

	// 草稿儲存設定
	viper.SetDefault("draft.enabled", true)
	viper.SetDefault("draft.redis_addr", "localhost:6379")
	viper.SetDefault("draft.redis_db", 0)
	viper.SetDefault("draft.ttl", "720h")

	// 限流設定
	viper.SetDefault("rate_limit.enabled", true)
	viper.SetDefault("rate_limit.requests", 100)
	viper.SetDefault("rate_limit.window", "1m")

	// 去重時間窗預設
	viper.SetDefault("dedup_window", "1s")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	// 驗證伺服器設定
	if config.Server.Port == 0 {
		return fmt.Errorf("server port is required")
	}

	// 驗證快取設定
	if config.Cache.Enabled {
		if config.Cache.MaxSize <= 0 {
			return fmt.Errorf("invalid cache max size")
		}
		if config.Cache.TTL <= 0 {
			return fmt.Errorf("invalid cache ttl")
		}
		if config.Cache.CleanupInterval <= 0 {
			return fmt.Errorf("invalid cache cleanup interval")
		}
	}

	// 驗證儲存服務設定
	if config.Persistence.BaseURL == "" {
		return fmt.Errorf("persistence base url is required")
	}

	// 驗證圖片查詢設定
	if config.ImageSearch.Enabled {
		if config.ImageSearch.BatchSize <= 0 {
			return fmt.Errorf("invalid image search batch size")
		}
		if config.ImageSearch.BatchDelay < 0 {
			return fmt.Errorf("invalid image search batch delay")
		}
	}

	// 驗證草稿儲存設定
	if config.Draft.Enabled && config.Draft.RedisAddr == "" {
		return fmt.Errorf("draft redis addr is required")
	}

	return nil
}
