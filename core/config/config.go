package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"calendar-service/core/constants"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Platform   PlatformConfig   `mapstructure:"platform"`
	Scheduling SchedulingConfig `mapstructure:"scheduling"`
	Reminder   ReminderConfig   `mapstructure:"reminder"`
	Settings   SettingsConfig   `mapstructure:"settings"`
	Log        LogConfig        `mapstructure:"log"`
}

type ServerConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	BasePath string `mapstructure:"base_path"`
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

type PlatformConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	BotToken  string        `mapstructure:"bot_token"`
	BotUserID string        `mapstructure:"bot_user_id"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type SchedulingConfig struct {
	MaxUsers               int           `mapstructure:"max_users"`
	MaxWindowDays          int           `mapstructure:"max_window_days"`
	MaxOccurrencesPerEvent int           `mapstructure:"max_occurrences_per_event"`
	Workers                int           `mapstructure:"workers"`
	HidePrivateEvents      bool          `mapstructure:"hide_private_events"`
	MemberCacheTTL         time.Duration `mapstructure:"member_cache_ttl"`
}

type ReminderConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Spec        string `mapstructure:"spec"`
	Concurrency int    `mapstructure:"concurrency"`
}

type SettingsConfig struct {
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// MaxWindow is the longest schedule window accepted.
func (s SchedulingConfig) MaxWindow() time.Duration {
	return time.Duration(s.MaxWindowDays) * 24 * time.Hour
}

var (
	instance *Config
	mu       sync.RWMutex
)

// Load reads .env, an optional config file and CALENDAR_* environment
// variables, in increasing priority.
func Load(configFile string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("CALENDAR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile == "" {
		configFile = strings.TrimSpace(os.Getenv("CALENDAR_CONFIG_FILE"))
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	mu.Lock()
	instance = &cfg
	mu.Unlock()
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 7070)
	v.SetDefault("server.base_path", "/plugins/calendar")

	v.SetDefault("database.driver", constants.DatabaseDriverPostgres)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "calendar")
	v.SetDefault("database.sslmode", constants.DatabaseSSLMode)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.jwt_secret", "")

	v.SetDefault("platform.base_url", "")
	v.SetDefault("platform.bot_token", "")
	v.SetDefault("platform.bot_user_id", "")
	v.SetDefault("platform.timeout", 10*time.Second)

	v.SetDefault("scheduling.max_users", constants.DefaultMaxScheduleUsers)
	v.SetDefault("scheduling.max_window_days", constants.DefaultMaxScheduleWindowDays)
	v.SetDefault("scheduling.max_occurrences_per_event", constants.DefaultMaxOccurrencesPerEvent)
	v.SetDefault("scheduling.workers", constants.DefaultScheduleWorkers)
	v.SetDefault("scheduling.hide_private_events", false)
	v.SetDefault("scheduling.member_cache_ttl", time.Minute)

	v.SetDefault("reminder.enabled", true)
	v.SetDefault("reminder.spec", "@every 1m")
	v.SetDefault("reminder.concurrency", 5)

	v.SetDefault("settings.cache_ttl", 10*time.Minute)

	v.SetDefault("log.level", "info")
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case constants.DatabaseDriverPostgres, constants.DatabaseDriverMemory:
	default:
		return fmt.Errorf("database.driver must be %q or %q, got %q",
			constants.DatabaseDriverPostgres, constants.DatabaseDriverMemory, c.Database.Driver)
	}
	if c.Scheduling.MaxUsers <= 0 {
		return fmt.Errorf("scheduling.max_users must be positive")
	}
	if c.Scheduling.MaxWindowDays <= 0 {
		return fmt.Errorf("scheduling.max_window_days must be positive")
	}
	if !strings.HasPrefix(c.Server.BasePath, "/") {
		c.Server.BasePath = "/" + c.Server.BasePath
	}
	c.Server.BasePath = strings.TrimRight(c.Server.BasePath, "/")
	return nil
}

func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()
	if instance == nil {
		panic("config: Get called before Load")
	}
	return instance
}

func GetSafe() (*Config, bool) {
	mu.RLock()
	defer mu.RUnlock()
	return instance, instance != nil
}
