package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,     default=8080"`
	Env      string `env:"ENV,      default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// ProtectedPaths is the list of page path prefixes gated by the session
	// middleware, semicolon-separated in the environment.
	ProtectedPaths []string `env:"PROTECTED_PATHS, delimiter=;, default=/dashboard;/profile;/admin"`
	SignInPath     string `env:"SIGN_IN_PATH,    default=/sign-in"`
	SessionCookie  string `env:"SESSION_COOKIE,  default=app_session"`

	// SignInRateLimit is the per-minute budget of sign-in attempts per
	// client IP. Zero disables the limiter.
	SignInRateLimit int `env:"SIGNIN_RATE_LIMIT, default=10"`

	Identity IdentityConfig
	Mongo    MongoConfig
	Redis    RedisConfig
}

type IdentityConfig struct {
	// URL and AnonKey are public; ServiceRoleKey is server-only and must
	// never be exposed to browser-side code.
	URL            string `env:"IDENTITY_URL"`
	AnonKey        string `env:"IDENTITY_ANON_KEY"`
	ServiceRoleKey string `env:"IDENTITY_SERVICE_ROLE_KEY"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=boilerplate"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// ProtectedPrefixes returns ProtectedPaths with empty entries removed.
func (c *Config) ProtectedPrefixes() []string {
	prefixes := make([]string, 0, len(c.ProtectedPaths))
	for _, p := range c.ProtectedPaths {
		if p = strings.TrimSpace(p); p != "" {
			prefixes = append(prefixes, p)
		}
	}
	return prefixes
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
