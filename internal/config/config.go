package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	AppName   = "workshopctl"
	EnvPrefix = "WORKSHOP"
)

type AppCfg struct {
	Name string `mapstructure:"name" toml:"name" validate:"required"`
	Env  string `mapstructure:"env" toml:"env"`
}

type APICfg struct {
	BaseURL    string `mapstructure:"base_url" toml:"base_url" validate:"required,url"`
	Prefix     string `mapstructure:"prefix" toml:"prefix" validate:"required,startswith=/"`
	TimeoutSec int    `mapstructure:"timeout_sec" toml:"timeout_sec" validate:"gte=0"`
}

type SessionCfg struct {
	// Store is one of file, redis or memory.
	Store   string `mapstructure:"store" toml:"store" validate:"oneof=file redis memory"`
	Path    string `mapstructure:"path" toml:"path"`
	Profile string `mapstructure:"profile" toml:"profile" validate:"required"`
}

type RedisCfg struct {
	Addr      string `mapstructure:"addr" toml:"addr"`
	Password  string `mapstructure:"password" toml:"password"`
	DB        int    `mapstructure:"db" toml:"db"`
	PoolSize  int    `mapstructure:"pool_size" toml:"pool_size"`
	EnableTLS bool   `mapstructure:"enable_tls" toml:"enable_tls"`
	KeyPrefix string `mapstructure:"key_prefix" toml:"key_prefix"`
}

type LogCfg struct {
	Level string `mapstructure:"level" toml:"level" validate:"oneof=debug info warn error"`
}

type TelemetryCfg struct {
	Enabled      bool    `mapstructure:"enabled" toml:"enabled"`
	OtlpEndpoint string  `mapstructure:"otlp_endpoint" toml:"otlp_endpoint"`
	SampleRatio  float64 `mapstructure:"sample_ratio" toml:"sample_ratio"`
}

// SmokeCfg selects the identity and targets of the end-to-end suite.
type SmokeCfg struct {
	Email       string `mapstructure:"email" toml:"email"`
	Password    string `mapstructure:"password" toml:"password"`
	FrontendURL string `mapstructure:"frontend_url" toml:"frontend_url"`
}

type MockCfg struct {
	Addr           string   `mapstructure:"addr" toml:"addr"`
	JWTSecret      string   `mapstructure:"jwt_secret" toml:"jwt_secret"`
	AccessTTLSec   int      `mapstructure:"access_ttl_sec" toml:"access_ttl_sec"`
	RefreshTTLSec  int      `mapstructure:"refresh_ttl_sec" toml:"refresh_ttl_sec"`
	LoginPerMinute int      `mapstructure:"login_per_minute" toml:"login_per_minute"`
	AllowedOrigins []string `mapstructure:"allowed_origins" toml:"allowed_origins"`
	PasswordPepper string   `mapstructure:"password_pepper" toml:"password_pepper"`
	// Blacklist keeps revoked refresh tokens in memory or in redis.
	Blacklist string `mapstructure:"blacklist" toml:"blacklist" validate:"oneof=memory redis"`
}

type Config struct {
	App       AppCfg       `mapstructure:"app" toml:"app"`
	API       APICfg       `mapstructure:"api" toml:"api"`
	Session   SessionCfg   `mapstructure:"session" toml:"session"`
	Redis     RedisCfg     `mapstructure:"redis" toml:"redis"`
	Log       LogCfg       `mapstructure:"log" toml:"log"`
	Telemetry TelemetryCfg `mapstructure:"telemetry" toml:"telemetry"`
	Smoke     SmokeCfg     `mapstructure:"smoke" toml:"smoke"`
	Mock      MockCfg      `mapstructure:"mock" toml:"mock"`
}

// Defaults mirrors the local development setup: backend on :8000, frontend dev server on :5173.
func Defaults() Config {
	return Config{
		App: AppCfg{Name: AppName, Env: "local"},
		API: APICfg{
			BaseURL:    "http://localhost:8000",
			Prefix:     "/api/v1",
			TimeoutSec: 30,
		},
		Session: SessionCfg{
			Store:   "file",
			Path:    defaultSessionPath(),
			Profile: "default",
		},
		Redis: RedisCfg{
			Addr:      "localhost:6379",
			PoolSize:  4,
			KeyPrefix: AppName + ":session",
		},
		Log:       LogCfg{Level: "warn"},
		Telemetry: TelemetryCfg{SampleRatio: 1.0},
		Smoke: SmokeCfg{
			Email:       "admin@test.com",
			Password:    "testpass123",
			FrontendURL: "",
		},
		Mock: MockCfg{
			Addr:           ":8000",
			JWTSecret:      "dev-only-secret",
			AccessTTLSec:   30 * 60,
			RefreshTTLSec:  24 * 60 * 60,
			LoginPerMinute: 5,
			AllowedOrigins: []string{"http://localhost:5173"},
			Blacklist:      "memory",
		},
	}
}

// Load resolves configuration from defaults, an optional config file, .env and the environment.
// An empty path falls back to DefaultPath when that file exists.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v, Defaults())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// the browser suite's identity variables are honoured as-is
	_ = v.BindEnv("smoke.email", "PW_TEST_EMAIL", EnvPrefix+"_SMOKE_EMAIL")
	_ = v.BindEnv("smoke.password", "PW_TEST_PASSWORD", EnvPrefix+"_SMOKE_PASSWORD")

	if path == "" {
		if p := DefaultPath(); fileExists(p) {
			path = p
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("invalid config: %s failed %q", verrs[0].Namespace(), verrs[0].Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	if (c.Session.Store == "redis" || c.Mock.Blacklist == "redis") && c.Redis.Addr == "" {
		return errors.New("invalid config: redis.addr is required when a redis store is selected")
	}
	return nil
}

// WriteDefault writes the default configuration as TOML. Existing files are left untouched.
func WriteDefault(path string) error {
	if fileExists(path) {
		return fmt.Errorf("config file %s already exists", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := toml.Marshal(Defaults())
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

func DefaultPath() string {
	return filepath.Join(configDir(), "config.toml")
}

func defaultSessionPath() string {
	return filepath.Join(configDir(), "session.yaml")
}

func configDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, AppName)
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("app.name", d.App.Name)
	v.SetDefault("app.env", d.App.Env)

	v.SetDefault("api.base_url", d.API.BaseURL)
	v.SetDefault("api.prefix", d.API.Prefix)
	v.SetDefault("api.timeout_sec", d.API.TimeoutSec)

	v.SetDefault("session.store", d.Session.Store)
	v.SetDefault("session.path", d.Session.Path)
	v.SetDefault("session.profile", d.Session.Profile)

	v.SetDefault("redis.addr", d.Redis.Addr)
	v.SetDefault("redis.password", d.Redis.Password)
	v.SetDefault("redis.db", d.Redis.DB)
	v.SetDefault("redis.pool_size", d.Redis.PoolSize)
	v.SetDefault("redis.enable_tls", d.Redis.EnableTLS)
	v.SetDefault("redis.key_prefix", d.Redis.KeyPrefix)

	v.SetDefault("log.level", d.Log.Level)

	v.SetDefault("telemetry.enabled", d.Telemetry.Enabled)
	v.SetDefault("telemetry.otlp_endpoint", d.Telemetry.OtlpEndpoint)
	v.SetDefault("telemetry.sample_ratio", d.Telemetry.SampleRatio)

	v.SetDefault("smoke.email", d.Smoke.Email)
	v.SetDefault("smoke.password", d.Smoke.Password)
	v.SetDefault("smoke.frontend_url", d.Smoke.FrontendURL)

	v.SetDefault("mock.addr", d.Mock.Addr)
	v.SetDefault("mock.jwt_secret", d.Mock.JWTSecret)
	v.SetDefault("mock.access_ttl_sec", d.Mock.AccessTTLSec)
	v.SetDefault("mock.refresh_ttl_sec", d.Mock.RefreshTTLSec)
	v.SetDefault("mock.login_per_minute", d.Mock.LoginPerMinute)
	v.SetDefault("mock.allowed_origins", d.Mock.AllowedOrigins)
	v.SetDefault("mock.password_pepper", d.Mock.PasswordPepper)
	v.SetDefault("mock.blacklist", d.Mock.Blacklist)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
