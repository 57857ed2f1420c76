package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/disgoorg/snowflake/v2"
	"github.com/joho/godotenv"
)

type Config struct {
	Token            string        `env:"DISCORD_TOKEN,required,notEmpty"`
	LavalinkHost     string        `env:"LAVALINK_HOST"`
	LavalinkPassword string        `env:"LAVALINK_PASSWORD"`
	GuildIDs         []string      `env:"GUILD_IDS" envSeparator:","`
	OwnerIDs         []string      `env:"OWNER_IDS" envSeparator:","`
	DatabasePath     string        `env:"DATABASE_PATH" envDefault:"slashroute.db"`
	LogFile          string        `env:"LOG_FILE"`
	LogLevel         string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat        string        `env:"LOG_FORMAT" envDefault:"text"`
	CommandCooldown  time.Duration `env:"COMMAND_COOLDOWN" envDefault:"2s"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn("Could not load .env file, relying on environment variables", slog.Any("error", err))
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if _, err := cfg.SyncGuilds(); err != nil {
		return nil, err
	}
	if _, err := cfg.Owners(); err != nil {
		return nil, err
	}
	if (cfg.LavalinkHost == "") != (cfg.LavalinkPassword == "") {
		return nil, fmt.Errorf("LAVALINK_HOST and LAVALINK_PASSWORD must be set together")
	}

	return cfg, nil
}

// SyncGuilds returns the guilds commands are synced to during development.
func (c *Config) SyncGuilds() ([]snowflake.ID, error) {
	return parseIDs("GUILD_IDS", c.GuildIDs)
}

func (c *Config) Owners() ([]snowflake.ID, error) {
	return parseIDs("OWNER_IDS", c.OwnerIDs)
}

func (c *Config) MusicEnabled() bool {
	return c.LavalinkHost != ""
}

func parseIDs(name string, values []string) ([]snowflake.ID, error) {
	ids := make([]snowflake.ID, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		id, err := snowflake.Parse(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s entry %q: %w", name, v, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
