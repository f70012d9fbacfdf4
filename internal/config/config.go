package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jainabhi1607/loanease-sub003/domain"
)

type AppConfig struct {
	Port    int    `yaml:"port"`
	GinMode string `yaml:"gin_mode"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type JWTConfig struct {
	AccessSecret  string `yaml:"access_secret"`
	RefreshSecret string `yaml:"refresh_secret"`
	Issuer        string `yaml:"issuer"`
	AccessTTL     string `yaml:"access_ttl"`
	RefreshTTL    string `yaml:"refresh_ttl"`
}

type ThrottlePolicyConfig struct {
	MaxAttempts int    `yaml:"max_attempts"`
	Window      string `yaml:"window"`
	Lockout     string `yaml:"lockout"`
}

type ThrottleConfig struct {
	Backend string               `yaml:"backend"` // "memory" or "redis"
	Login   ThrottlePolicyConfig `yaml:"login"`
	TwoFA   ThrottlePolicyConfig `yaml:"two_fa"`
}

type TwoFactorConfig struct {
	Length         int    `yaml:"length"`
	TTL            string `yaml:"ttl"`
	HourlyCap      int    `yaml:"hourly_cap"`
	ResendCooldown string `yaml:"resend_cooldown"`
	MaxResends     int    `yaml:"max_resends"`
}

type TwilioConfig struct {
	AccountSID string `yaml:"account_sid"`
	AuthToken  string `yaml:"auth_token"`
	FromNumber string `yaml:"from_number"`
}

type CasbinConfig struct {
	ModelPath string `yaml:"model_path"`
}

type ConfigFile struct {
	App       AppConfig       `yaml:"app"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	JWT       JWTConfig       `yaml:"jwt"`
	Throttle  ThrottleConfig  `yaml:"throttle"`
	TwoFactor TwoFactorConfig `yaml:"two_factor"`
	Twilio    TwilioConfig    `yaml:"twilio"`
	Casbin    CasbinConfig    `yaml:"casbin"`
}

// ThrottlePolicy is a resolved attempts-per-window-then-lock policy.
type ThrottlePolicy struct {
	MaxAttempts int
	Window      time.Duration
	Lockout     time.Duration
}

type Config struct {
	Port    string
	GinMode string

	DSN string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTAccessSecret  string
	JWTRefreshSecret string
	JWTIssuer        string
	AccessTTL        time.Duration
	RefreshTTL       time.Duration

	ThrottleBackend string
	LoginThrottle   ThrottlePolicy
	TwoFAThrottle   ThrottlePolicy

	TwoFALength         int
	TwoFATTL            time.Duration
	TwoFAHourlyCap      int
	TwoFAResendCooldown time.Duration
	TwoFAMaxResends     int

	TwilioSID   string
	TwilioToken string
	TwilioFrom  string

	CasbinModelPath string
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// Load reads config/config.yml, applies environment overrides for secrets,
// and validates the result. Missing signing secrets are a fatal
// misconfiguration: the service refuses to start rather than fall back to a
// known default.
func Load() (*Config, error) {
	return LoadFrom(env("CONFIG_PATH", "config/config.yml"))
}

// LoadFrom loads configuration from an explicit file path.
func LoadFrom(path string) (*Config, error) {
	configFile, err := loadConfigFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	accTTL, err := parseDuration(configFile.JWT.AccessTTL, 15*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT access TTL: %w", err)
	}
	refTTL, err := parseDuration(configFile.JWT.RefreshTTL, 7*24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT refresh TTL: %w", err)
	}

	loginPolicy, err := resolveThrottlePolicy(configFile.Throttle.Login, ThrottlePolicy{
		MaxAttempts: 5,
		Window:      15 * time.Minute,
		Lockout:     30 * time.Minute,
	})
	if err != nil {
		return nil, fmt.Errorf("invalid login throttle policy: %w", err)
	}
	twoFAPolicy, err := resolveThrottlePolicy(configFile.Throttle.TwoFA, ThrottlePolicy{
		MaxAttempts: 5,
		Window:      10 * time.Minute,
		Lockout:     15 * time.Minute,
	})
	if err != nil {
		return nil, fmt.Errorf("invalid two-factor throttle policy: %w", err)
	}

	twoFATTL, err := parseDuration(configFile.TwoFactor.TTL, 10*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("invalid two-factor TTL: %w", err)
	}
	resendCooldown, err := parseDuration(configFile.TwoFactor.ResendCooldown, 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid two-factor resend cooldown: %w", err)
	}

	cfg := &Config{
		Port:    fmt.Sprintf("%d", configFile.App.Port),
		GinMode: configFile.App.GinMode,

		DSN: env("DATABASE_DSN", configFile.Database.DSN),

		RedisAddr:     env("REDIS_ADDR", configFile.Redis.Addr),
		RedisPassword: env("REDIS_PASSWORD", configFile.Redis.Password),
		RedisDB:       configFile.Redis.DB,

		JWTAccessSecret:  env("JWT_ACCESS_SECRET", configFile.JWT.AccessSecret),
		JWTRefreshSecret: env("JWT_REFRESH_SECRET", configFile.JWT.RefreshSecret),
		JWTIssuer:        configFile.JWT.Issuer,
		AccessTTL:        accTTL,
		RefreshTTL:       refTTL,

		ThrottleBackend: env("THROTTLE_BACKEND", configFile.Throttle.Backend),
		LoginThrottle:   loginPolicy,
		TwoFAThrottle:   twoFAPolicy,

		TwoFALength:         orInt(configFile.TwoFactor.Length, 6),
		TwoFATTL:            twoFATTL,
		TwoFAHourlyCap:      orInt(configFile.TwoFactor.HourlyCap, 10),
		TwoFAResendCooldown: resendCooldown,
		TwoFAMaxResends:     orInt(configFile.TwoFactor.MaxResends, 5),

		TwilioSID:   env("TWILIO_ACCOUNT_SID", configFile.Twilio.AccountSID),
		TwilioToken: env("TWILIO_AUTH_TOKEN", configFile.Twilio.AuthToken),
		TwilioFrom:  configFile.Twilio.FromNumber,

		CasbinModelPath: configFile.Casbin.ModelPath,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate fails closed: a missing signing secret is a startup error, never a
// warning followed by an insecure default.
func (c *Config) validate() error {
	if c.JWTAccessSecret == "" {
		return fmt.Errorf("%w: jwt access secret", domain.ErrNotConfigured)
	}
	if c.JWTRefreshSecret == "" {
		return fmt.Errorf("%w: jwt refresh secret", domain.ErrNotConfigured)
	}
	if c.JWTAccessSecret == c.JWTRefreshSecret {
		return fmt.Errorf("%w: access and refresh secrets must differ", domain.ErrNotConfigured)
	}
	if c.ThrottleBackend == "" {
		c.ThrottleBackend = "memory"
	}
	if c.ThrottleBackend != "memory" && c.ThrottleBackend != "redis" {
		return fmt.Errorf("%w: unknown throttle backend %q", domain.ErrNotConfigured, c.ThrottleBackend)
	}
	return nil
}

func loadConfigFile(path string) (*ConfigFile, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config file at %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(bytes, &config); err != nil {
		return nil, fmt.Errorf("could not parse config yaml: %w", err)
	}

	return &config, nil
}

func resolveThrottlePolicy(in ThrottlePolicyConfig, def ThrottlePolicy) (ThrottlePolicy, error) {
	out := def
	if in.MaxAttempts > 0 {
		out.MaxAttempts = in.MaxAttempts
	}
	if in.Window != "" {
		d, err := time.ParseDuration(in.Window)
		if err != nil {
			return out, err
		}
		out.Window = d
	}
	if in.Lockout != "" {
		d, err := time.ParseDuration(in.Lockout)
		if err != nil {
			return out, err
		}
		out.Lockout = d
	}
	return out, nil
}

func parseDuration(s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	return time.ParseDuration(s)
}

func orInt(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
