package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Session  SessionConfig  `mapstructure:"session" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Mail     MailConfig     `mapstructure:"mail"`
	Storage  StorageConfig  `mapstructure:"storage" validate:"required"`
	Captcha  CaptchaConfig  `mapstructure:"captcha" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	// Domain is the public site address used in e-mailed links.
	Domain         string   `mapstructure:"domain" validate:"required,url"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	// RateLimit is the sustained number of API requests per second allowed
	// from one client address. Zero disables limiting.
	RateLimit       float64       `mapstructure:"rate_limit" validate:"gte=0"`
	RateBurst       int           `mapstructure:"rate_burst" validate:"gte=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
	// MaxBodyBytes bounds request bodies, uploads included.
	MaxBodyBytes int64 `mapstructure:"max_body_bytes" validate:"gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL          string `mapstructure:"url" validate:"required,url"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=0"`
}

// SessionConfig controls session cookies and their backing store.
type SessionConfig struct {
	CookieName string `mapstructure:"cookie_name" validate:"required"`
	Secure     bool   `mapstructure:"secure"`
	// TTL bounds sessions that did not ask to be remembered.
	TTL         time.Duration `mapstructure:"ttl" validate:"gt=0"`
	RememberTTL time.Duration `mapstructure:"remember_ttl" validate:"gt=0"`
	// RedisAddr selects the Redis store; sessions are kept in memory when empty.
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db" validate:"gte=0"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	TokenSecret   string        `mapstructure:"token_secret" validate:"required,min=32"`
	ActivationTTL time.Duration `mapstructure:"activation_ttl" validate:"gt=0"`
	ResetTTL      time.Duration `mapstructure:"reset_ttl" validate:"gt=0"`
	BCryptCost    int           `mapstructure:"bcrypt_cost" validate:"gte=4,lte=31"`
}

// MailConfig configures outgoing mail. With no host, mail is only logged.
type MailConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port" validate:"gte=0,lt=65536"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from" validate:"required_with=Host"`
	// ContactAddress receives contact form submissions.
	ContactAddress string `mapstructure:"contact_address" validate:"omitempty,email"`
}

// StorageConfig locates user content on disk.
type StorageConfig struct {
	ContentDir string `mapstructure:"content_dir" validate:"required"`
}

// CaptchaConfig configures the generated challenges.
type CaptchaConfig struct {
	Length int `mapstructure:"length" validate:"gte=4,lte=10"`
}
