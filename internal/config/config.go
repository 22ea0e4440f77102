package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Tracing   TracingConfig `mapstructure:"tracing"`
	Redis     RedisConfig
	AI        AIConfig
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Game      GameConfig      `mapstructure:"game"`
	Log       LogConfig       `mapstructure:"log"`

	// 运行时标志，由命令行参数设置
	ForceMigrate bool   `mapstructure:"-"`
	MigrateOnly  bool   `mapstructure:"-"`
	ConfigDir    string `mapstructure:"-"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

func (r RateLimitConfig) Window() time.Duration {
	return time.Duration(r.WindowMinutes) * time.Minute
}

// AIConfig 台词生成服务（OpenAI 兼容接口），APIKey 为空时只使用静态台词
type AIConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	APIKey    string `mapstructure:"api_key"`
	Model     string `mapstructure:"model"`
	MaxTokens int    `mapstructure:"max_tokens"`
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool
}

type TracingConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	CollectorEndpoint string  `mapstructure:"collector_endpoint"`
	ServiceName       string  `mapstructure:"service_name"`
	SampleRatio       float64 `mapstructure:"sample_ratio"`
}

// LogConfig Level 为空时按 server.mode 推断（debug 模式输出 debug 日志）
type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

const (
	FatherRageFrozen  = "frozen"
	FatherRageResumes = "resume"

	RaidRewardFlat   = "flat"
	RaidRewardScaled = "scaled"

	LockLocal = "local"
	LockRedis = "redis"
)

// GameConfig 游戏规则参数，支持热更新
type GameConfig struct {
	InstructorKey          string `mapstructure:"instructor_key"`
	InstructorName         string `mapstructure:"instructor_name"`
	FatherRagePolicy       string `mapstructure:"father_rage_policy"`
	RaidRewardCurve        string `mapstructure:"raid_reward_curve"`
	DialogueTimeoutSeconds int    `mapstructure:"dialogue_timeout_seconds"`
	LockBackend            string `mapstructure:"lock_backend"`
	LockTimeoutMs          int    `mapstructure:"lock_timeout_ms"`
	RankingCacheSeconds    int    `mapstructure:"ranking_cache_seconds"`
	RaidSweepSeconds       int    `mapstructure:"raid_sweep_seconds"`
}

func (g GameConfig) DialogueTimeout() time.Duration {
	return time.Duration(g.DialogueTimeoutSeconds) * time.Second
}

func (g GameConfig) LockTimeout() time.Duration {
	return time.Duration(g.LockTimeoutMs) * time.Millisecond
}

func (g GameConfig) RankingCacheTTL() time.Duration {
	return time.Duration(g.RankingCacheSeconds) * time.Second
}

func (g GameConfig) RaidSweepInterval() time.Duration {
	return time.Duration(g.RaidSweepSeconds) * time.Second
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.charset", "utf8mb4")
	v.SetDefault("database.parsetime", true)
	v.SetDefault("rate_limit.max_requests", 6000)
	v.SetDefault("rate_limit.window_minutes", 1)
	v.SetDefault("ai.model", "gpt-4o-mini")
	v.SetDefault("ai.max_tokens", 150)
	v.SetDefault("tracing.service_name", "dungeon-backend")
	v.SetDefault("tracing.sample_ratio", 1.0)
	v.SetDefault("log.file", "logs/dungeon.log")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.compress", true)

	v.SetDefault("game.instructor_key", "hth422")
	v.SetDefault("game.instructor_name", "허태훈")
	v.SetDefault("game.father_rage_policy", FatherRageFrozen)
	v.SetDefault("game.raid_reward_curve", RaidRewardFlat)
	v.SetDefault("game.dialogue_timeout_seconds", 3)
	v.SetDefault("game.lock_backend", LockLocal)
	v.SetDefault("game.lock_timeout_ms", 2000)
	v.SetDefault("game.ranking_cache_seconds", 30)
	v.SetDefault("game.raid_sweep_seconds", 60)
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("DUNGEON")
	v.AutomaticEnv()
	setDefaults(v)

	// Database
	v.BindEnv("database.host", "DATABASE_HOST")
	v.BindEnv("database.port", "DATABASE_PORT")
	v.BindEnv("database.user", "DATABASE_USER")
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("database.dbname", "DATABASE_NAME")

	// Redis
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	// Server
	v.BindEnv("server.mode", "SERVER_MODE")

	// AI
	v.BindEnv("ai.base_url", "AI_BASE_URL")
	v.BindEnv("ai.api_key", "AI_API_KEY")
	v.BindEnv("ai.model", "AI_MODEL")

	// Log
	v.BindEnv("log.level", "LOG_LEVEL")

	// Tracing
	v.BindEnv("tracing.enabled", "TRACING_ENABLED")
	v.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Game.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (g GameConfig) Validate() error {
	if g.InstructorKey == "" {
		return fmt.Errorf("game.instructor_key must not be empty")
	}
	switch g.FatherRagePolicy {
	case FatherRageFrozen, FatherRageResumes:
	default:
		return fmt.Errorf("game.father_rage_policy must be %q or %q, got %q", FatherRageFrozen, FatherRageResumes, g.FatherRagePolicy)
	}
	switch g.RaidRewardCurve {
	case RaidRewardFlat, RaidRewardScaled:
	default:
		return fmt.Errorf("game.raid_reward_curve must be %q or %q, got %q", RaidRewardFlat, RaidRewardScaled, g.RaidRewardCurve)
	}
	switch g.LockBackend {
	case LockLocal, LockRedis:
	default:
		return fmt.Errorf("game.lock_backend must be %q or %q, got %q", LockLocal, LockRedis, g.LockBackend)
	}
	return nil
}
