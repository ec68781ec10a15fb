// Package config loads environment variables into a typed Config used across
// the service. Defaults let the binary run locally against SQLite with no
// setup; use ValidateChatReady when the Twitch connection is required.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/onnwee/chat-thief/docstore"
	"github.com/onnwee/chat-thief/economy"
)

// Store backends accepted by STORE_BACKEND.
const (
	BackendMemory   = docstore.BackendMemory
	BackendSQLite   = docstore.BackendSQLite
	BackendPostgres = docstore.BackendPostgres
	BackendRedis    = docstore.BackendRedis
)

type Config struct {
	// Twitch
	TwitchChannel      string `env:"TWITCH_CHANNEL"`
	TwitchBotUsername  string `env:"TWITCH_BOT_USERNAME"`
	TwitchOAuthToken   string `env:"TWITCH_OAUTH_TOKEN"`
	TwitchClientID     string `env:"TWITCH_CLIENT_ID"`
	TwitchClientSecret string `env:"TWITCH_CLIENT_SECRET"`
	TwitchRefreshToken string `env:"TWITCH_REFRESH_TOKEN"`
	TwitchTokenURL     string `env:"TWITCH_TOKEN_URL"`
	TwitchRedirectURI  string `env:"TWITCH_REDIRECT_URI"`
	TwitchScopes       string `env:"TWITCH_SCOPES" envDefault:"chat:read chat:edit"`
	// Base64 32-byte key; stored tokens are encrypted when set.
	EncryptionKey string `env:"ENCRYPTION_KEY"`
	// Other bots whose lines are never routed. The bot itself is always ignored.
	IgnoredUsers []string `env:"IGNORED_USERS" envSeparator:"," envDefault:"nightbot"`

	// Permission tiers
	StreamLords []string `env:"STREAM_LORDS" envSeparator:","`
	StreamGods  []string `env:"STREAM_GODS" envSeparator:","`

	// Economy
	StartingMana       int     `env:"STARTING_MANA" envDefault:"3"`
	StealCatchOdds     float64 `env:"STEAL_CATCH_ODDS" envDefault:"0.70"`
	RichVictimDiscount float64 `env:"RICH_VICTIM_DISCOUNT" envDefault:"0.10"`
	StealManaCost      int     `env:"STEAL_MANA_COST" envDefault:"1"`
	CoupCost           int     `env:"COUP_COST" envDefault:"10"`
	CubeReward         int     `env:"CUBE_REWARD" envDefault:"10"`
	PaperupAmount      int     `env:"PAPERUP_AMOUNT" envDefault:"100"`
	MaxDrops           int     `env:"MAX_DROPS" envDefault:"50"`
	RevolutionPolicy   string  `env:"REVOLUTION_POLICY" envDefault:"noop"`

	// Audience and catalog
	AudienceWindow time.Duration `env:"AUDIENCE_WINDOW" envDefault:"2h"`
	SFXDir         string        `env:"SFX_DIR"`

	// Storage
	StoreBackend string `env:"STORE_BACKEND" envDefault:"sqlite"`
	DBDsn        string `env:"DB_DSN"`
	RedisAddr    string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPrefix  string `env:"REDIS_PREFIX" envDefault:"chat_thief:"`

	// Observability
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat    string `env:"LOG_FORMAT" envDefault:"text"`

	// HTTP
	HTTPAddr               string        `env:"HTTP_ADDR" envDefault:":8080"`
	Env                    string        `env:"ENV"`
	AdminUsername          string        `env:"ADMIN_USERNAME"`
	AdminPassword          string        `env:"ADMIN_PASSWORD"`
	AdminToken             string        `env:"ADMIN_TOKEN"`
	RateLimitEnabled       bool          `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitRequestsPerIP int           `env:"RATE_LIMIT_REQUESTS_PER_IP" envDefault:"10"`
	RateLimitWindow        time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`
	CORSPermissive         string        `env:"CORS_PERMISSIVE"`
	CORSAllowedOrigins     []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
}

// Load reads environment variables and applies defaults. Missing Twitch
// credentials are not an error here; the bot simply stays offline.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.TwitchChannel = strings.ToLower(strings.TrimPrefix(cfg.TwitchChannel, "#"))
	cfg.TwitchBotUsername = strings.ToLower(cfg.TwitchBotUsername)
	cfg.StoreBackend = strings.ToLower(strings.TrimSpace(cfg.StoreBackend))
	cfg.StreamLords = normalizeNames(cfg.StreamLords)
	cfg.StreamGods = normalizeNames(cfg.StreamGods)
	cfg.IgnoredUsers = normalizeNames(cfg.IgnoredUsers)
	return cfg, nil
}

// ValidateChatReady checks the fields needed to join chat.
func (c *Config) ValidateChatReady() error {
	if c.TwitchChannel == "" || c.TwitchBotUsername == "" || c.TwitchOAuthToken == "" {
		return fmt.Errorf("missing twitch env: require TWITCH_CHANNEL, TWITCH_BOT_USERNAME, TWITCH_OAUTH_TOKEN")
	}
	return nil
}

// ValidateStore checks the store backend and its connection settings.
func (c *Config) ValidateStore() error {
	switch c.StoreBackend {
	case BackendMemory, BackendSQLite:
		return nil
	case BackendPostgres:
		if c.DBDsn == "" {
			return fmt.Errorf("STORE_BACKEND=postgres requires DB_DSN")
		}
		return nil
	case BackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("STORE_BACKEND=redis requires REDIS_ADDR")
		}
		return nil
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q (memory|sqlite|postgres|redis)", c.StoreBackend)
	}
}

// CanRefreshToken reports whether the bot token can be refreshed automatically.
func (c *Config) CanRefreshToken() bool {
	return c.TwitchClientID != "" && c.TwitchClientSecret != ""
}

// CORSIsPermissive allows every origin in development unless CORS_PERMISSIVE
// says otherwise.
func (c *Config) CORSIsPermissive() bool {
	if v := strings.ToLower(strings.TrimSpace(c.CORSPermissive)); v != "" {
		return v == "1" || v == "true"
	}
	mode := strings.ToLower(c.Env)
	return mode == "" || mode == "dev" || mode == "development"
}

// Policy builds the economy constants.
func (c *Config) Policy() (economy.Policy, error) {
	if c.StealCatchOdds < 0 || c.StealCatchOdds > 1 {
		return economy.Policy{}, fmt.Errorf("STEAL_CATCH_ODDS must be within [0,1], got %v", c.StealCatchOdds)
	}
	if c.StartingMana < 0 {
		return economy.Policy{}, fmt.Errorf("STARTING_MANA must not be negative, got %d", c.StartingMana)
	}
	if c.MaxDrops < 1 {
		return economy.Policy{}, fmt.Errorf("MAX_DROPS must be at least 1, got %d", c.MaxDrops)
	}
	rev, err := economy.ParseRevolutionPolicy(c.RevolutionPolicy)
	if err != nil {
		return economy.Policy{}, err
	}
	return economy.Policy{
		StartingMana:       c.StartingMana,
		StealCatchOdds:     c.StealCatchOdds,
		RichVictimDiscount: c.RichVictimDiscount,
		StealManaCost:      c.StealManaCost,
		CoupCost:           c.CoupCost,
		CubeReward:         c.CubeReward,
		PaperupAmount:      c.PaperupAmount,
		MaxDrops:           c.MaxDrops,
		Revolution:         rev,
	}, nil
}

// Invalid lists identities random draws must never pick: the ignored bots and
// the stream gods.
func (c *Config) Invalid() []string {
	return append(c.Ignored(), c.StreamGods...)
}

// Ignored lists identities the router must skip, including the bot itself.
func (c *Config) Ignored() []string {
	out := append([]string(nil), c.IgnoredUsers...)
	if c.TwitchBotUsername != "" {
		out = append(out, c.TwitchBotUsername)
	}
	return out
}

func normalizeNames(in []string) []string {
	out := make([]string, 0, len(in))
	for _, n := range in {
		n = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(n), "@")))
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}
