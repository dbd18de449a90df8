package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
)

const (
	StorageBackendFile     = "file"
	StorageBackendJSONBin  = "jsonbin"
	StorageBackendPostgres = "postgres"
	StorageBackendSQLite   = "sqlite"
)

type Config struct {
	Env           string              `mapstructure:"env"`
	Server        ServerConfig        `mapstructure:"http_server"`
	Storage       StorageConfig       `mapstructure:"storage"`
	Locale        LocaleConfig        `mapstructure:"locale"`
	Reminder      ReminderConfig      `mapstructure:"reminder"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port" validate:"min=1,max=65535"`
	BaseURL           string        `mapstructure:"base_url"`
	AllowedOrigins    string        `mapstructure:"allowed_origins"`
	ValidateRequests  bool          `mapstructure:"validate_requests"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
}

type StorageConfig struct {
	Backend      string         `mapstructure:"backend" validate:"required,oneof=file jsonbin postgres sqlite"`
	CacheEnabled bool           `mapstructure:"cache_enabled"`
	File         FileConfig     `mapstructure:"file"`
	JSONBin      JSONBinConfig  `mapstructure:"jsonbin"`
	Database     DatabaseConfig `mapstructure:"database"`
}

type FileConfig struct {
	Path string `mapstructure:"path"`
}

type JSONBinConfig struct {
	BaseURL string        `mapstructure:"base_url" validate:"omitempty,url"`
	APIKey  string        `mapstructure:"api_key"`
	BinID   string        `mapstructure:"bin_id"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type DatabaseConfig struct {
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"gte=0"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Source          string        `mapstructure:"source"`
}

type LocaleConfig struct {
	Timezone string `mapstructure:"timezone"`
}

type ReminderConfig struct {
	Interval   time.Duration `mapstructure:"interval"`
	DaysBefore []int         `mapstructure:"days_before" validate:"dive,gte=0,lte=31"`
}

type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"omitempty,oneof=json text"`
}

// ApplyDefaults fills every unset value with its default.
func (c *Config) ApplyDefaults() {
	if c.Env == "" {
		c.Env = "development"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadHeaderTimeout == 0 {
		c.Server.ReadHeaderTimeout = 5 * time.Second
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 15 * time.Second
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60 * time.Second
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = StorageBackendFile
	}
	if c.Storage.File.Path == "" {
		c.Storage.File.Path = "data/cards.json"
	}
	if c.Storage.JSONBin.BaseURL == "" {
		c.Storage.JSONBin.BaseURL = "https://api.jsonbin.io/v3/b"
	}
	if c.Storage.JSONBin.Timeout == 0 {
		c.Storage.JSONBin.Timeout = 10 * time.Second
	}
	if c.Storage.Database.MaxOpenConns == 0 {
		c.Storage.Database.MaxOpenConns = 10
	}
	if c.Storage.Database.MaxIdleConns == 0 {
		c.Storage.Database.MaxIdleConns = 5
	}
	if c.Locale.Timezone == "" {
		c.Locale.Timezone = "Asia/Ho_Chi_Minh"
	}
	if c.Reminder.Interval == 0 {
		c.Reminder.Interval = time.Hour
	}
	if len(c.Reminder.DaysBefore) == 0 {
		c.Reminder.DaysBefore = []int{7, 1, 0}
	}
	if c.Observability.Logging.Level == "" {
		c.Observability.Logging.Level = "info"
	}
	if c.Observability.Logging.Format == "" {
		c.Observability.Logging.Format = "text"
	}
}

// LoadConfigFromEnv builds the configuration from environment variables only.
func LoadConfigFromEnv() *Config {
	cfg := &Config{
		Env: getEnv("APP_ENV", "production"),
		Server: ServerConfig{
			Port:              getEnvAsInt("HTTP_PORT", 8080),
			BaseURL:           getEnv("BASE_URL", ""),
			AllowedOrigins:    getEnv("ALLOWED_ORIGINS", "*"),
			ValidateRequests:  getEnvAsBool("VALIDATE_REQUESTS", false),
			ReadHeaderTimeout: getEnvAsDuration("HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
			ReadTimeout:       getEnvAsDuration("HTTP_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:      getEnvAsDuration("HTTP_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:       getEnvAsDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
		},
		Storage: StorageConfig{
			Backend:      getEnv("STORAGE_BACKEND", StorageBackendFile),
			CacheEnabled: getEnvAsBool("STORAGE_CACHE_ENABLED", false),
			File: FileConfig{
				Path: getEnv("STORAGE_FILE_PATH", "data/cards.json"),
			},
			JSONBin: JSONBinConfig{
				BaseURL: getEnv("JSONBIN_BASE_URL", "https://api.jsonbin.io/v3/b"),
				APIKey:  getEnv("JSONBIN_API_KEY", ""),
				BinID:   getEnv("JSONBIN_BIN_ID", ""),
				Timeout: getEnvAsDuration("JSONBIN_TIMEOUT", 10*time.Second),
			},
			Database: DatabaseConfig{
				MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
				MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
				ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
				ConnMaxIdleTime: getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
				Source:          getEnv("DATABASE_URL", ""),
			},
		},
		Locale: LocaleConfig{
			Timezone: getEnv("APP_TIMEZONE", "Asia/Ho_Chi_Minh"),
		},
		Reminder: ReminderConfig{
			Interval:   getEnvAsDuration("REMINDER_INTERVAL", time.Hour),
			DaysBefore: getEnvAsIntSlice("REMIND_DAYS_BEFORE", []int{7, 1, 0}),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "json"),
			},
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

// ----------------- HELPERS -----------------

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultVal
}

func getEnvAsIntSlice(key string, defaultVal []int) []int {
	value := os.Getenv(key)
	if value == "" {
		return defaultVal
	}
	var out []int
	for _, part := range strings.Split(value, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}

// ----------------- VALIDATION -----------------

var structValidator = validator.New()

func (c *Config) Validate() error {
	var errs []string

	if err := structValidator.Struct(c); err != nil {
		errs = append(errs, fmt.Sprintf("config: %v", err))
	}

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Storage.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("storage config: %v", err))
	}

	if err := c.Locale.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("locale config: %v", err))
	}

	if err := c.Reminder.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("reminder config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.AllowedOrigins != "" {
		for _, origin := range c.Origins() {
			if origin == "*" {
				continue
			}
			if _, err := url.Parse(origin); err != nil {
				return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
			}
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

func (c *ServerConfig) Origins() []string {
	if c.AllowedOrigins == "" {
		return nil
	}
	var origins []string
	for _, origin := range strings.Split(c.AllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

func (c *StorageConfig) Validate() error {
	switch c.Backend {
	case StorageBackendFile:
		if c.File.Path == "" {
			return errors.New("file.path is required for the file backend")
		}
	case StorageBackendJSONBin:
		if c.JSONBin.APIKey == "" || c.JSONBin.BinID == "" {
			return errors.New("jsonbin.api_key and jsonbin.bin_id are required for the jsonbin backend")
		}
	case StorageBackendPostgres, StorageBackendSQLite:
		if c.Database.Source == "" {
			return fmt.Errorf("database.source is required for the %s backend", c.Backend)
		}
		return c.Database.Validate()
	default:
		return fmt.Errorf("unknown storage backend %q", c.Backend)
	}
	return nil
}

func (c *DatabaseConfig) Validate() error {
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}

func (c *LocaleConfig) Validate() error {
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return nil
}

// Location resolves the configured timezone, falling back to UTC.
func (c *LocaleConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *ReminderConfig) Validate() error {
	if c.Interval <= 0 {
		return errors.New("interval must be positive")
	}
	return nil
}
