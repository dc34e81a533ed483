package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Redis    RedisConfig    `mapstructure:"redis"`
	LinkedIn LinkedInConfig `mapstructure:"linkedin"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // postgres or sqlite
	Path            string        `mapstructure:"path"`   // sqlite file path
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// DSN builds the connection string for the configured driver.
func (c *DatabaseConfig) DSN() string {
	if c.Driver == "postgres" {
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
	}
	return c.Path
}

type StorageConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	PublicURL string `mapstructure:"public_url"`
}

type RedisConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
}

type LinkedInConfig struct {
	BaseURL             string        `mapstructure:"base_url"`
	SearchPageSize      int           `mapstructure:"search_page_size"`
	SearchOffsetCap     int           `mapstructure:"search_offset_cap"`
	ListedWithin        time.Duration `mapstructure:"listed_within"`
	MaxRetries          int           `mapstructure:"max_retries"`
	EvadeMin            time.Duration `mapstructure:"evade_min"`
	EvadeMax            time.Duration `mapstructure:"evade_max"`
	RequestTimeout      time.Duration `mapstructure:"request_timeout"`
	DescriptionKeywords []string      `mapstructure:"description_keywords"`
	KeywordComplements  []string      `mapstructure:"keyword_complements"`
}

type PipelineConfig struct {
	ProcessBatchSize int           `mapstructure:"process_batch_size"`
	DispatchBackoff  time.Duration `mapstructure:"dispatch_backoff"`
	SearchLockTTL    time.Duration `mapstructure:"search_lock_ttl"`
	ProcessLockTTL   time.Duration `mapstructure:"process_lock_ttl"`
	SearchSchedule   string        `mapstructure:"search_schedule"`
	ProcessSchedule  string        `mapstructure:"process_schedule"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

func Load(configPath string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	// Set config file path
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	// Enable environment variable override
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/relohub.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("storage.endpoint", "localhost:9000")
	v.SetDefault("storage.use_ssl", false)
	v.SetDefault("storage.bucket", "relohub")
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("linkedin.base_url", "https://www.linkedin.com")
	v.SetDefault("linkedin.search_page_size", 20)
	v.SetDefault("linkedin.search_offset_cap", 200)
	v.SetDefault("linkedin.listed_within", 24*time.Hour)
	v.SetDefault("linkedin.max_retries", 20)
	v.SetDefault("linkedin.evade_min", 500*time.Millisecond)
	v.SetDefault("linkedin.evade_max", 3*time.Second)
	v.SetDefault("linkedin.request_timeout", 30*time.Second)
	v.SetDefault("linkedin.description_keywords", []string{
		"relocation",
		"relo",
		"relocate",
		"visa",
	})
	v.SetDefault("linkedin.keyword_complements", []string{
		"costs",
		"allowance",
		"bonus",
		"coverage",
		"package",
		"sponsorship",
		"support",
		"assistance",
		"assistant",
		"cover",
	})
	v.SetDefault("pipeline.process_batch_size", 10)
	v.SetDefault("pipeline.dispatch_backoff", 5*time.Second)
	v.SetDefault("pipeline.search_lock_ttl", 6*time.Minute)
	v.SetDefault("pipeline.process_lock_ttl", 3*time.Minute)
	v.SetDefault("pipeline.search_schedule", "@every 6h")
	v.SetDefault("pipeline.process_schedule", "@every 1h")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.file", "")

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Bind environment variables explicitly for sensitive data
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("storage.endpoint", "STORAGE_ENDPOINT")
	v.BindEnv("storage.access_key", "STORAGE_ACCESS_KEY")
	v.BindEnv("storage.secret_key", "STORAGE_SECRET_KEY")
	v.BindEnv("redis.url", "REDIS_URL")
	v.BindEnv("linkedin.base_url", "LINKEDIN_BASE_URL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
