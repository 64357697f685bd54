package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/jose-valero/lfg-bot/internal/lfg"
)

// Config is read from the environment, with a local .env during dev.
// An empty DISCORD_BOT_TOKEN runs the bot headless: the LFG core and its
// deadline driver run without a Discord session.
type Config struct {
	Token   string `env:"DISCORD_BOT_TOKEN"`
	AppID   string `env:"DISCORD_APP_ID"`
	GuildID string `env:"DISCORD_GUILD_ID"`

	// where slash commands are accepted
	QueueChannelID string `env:"DISCORD_CHANNEL_ID"`
	// where role checks, kick votes and proposals are posted
	AnnounceChannelID string   `env:"LFG_ANNOUNCE_CHANNEL_ID"`
	AdminRoleIDs      []string `env:"ADMIN_ROLE_IDS" envSeparator:","`

	RoleCheckWindow time.Duration `env:"LFG_ROLECHECK_WINDOW" envDefault:"45s"`
	BootWindow      time.Duration `env:"LFG_BOOT_WINDOW" envDefault:"120s"`
	ProposalWindow  time.Duration `env:"LFG_PROPOSAL_WINDOW" envDefault:"45s"`
	VotesNeeded     uint          `env:"LFG_VOTES_NEEDED" envDefault:"3"`
	MaxKicks        uint          `env:"LFG_MAX_KICKS" envDefault:"3"`
	Tanks           uint          `env:"LFG_TANKS" envDefault:"1"`
	Healers         uint          `env:"LFG_HEALERS" envDefault:"1"`
	DPS             uint          `env:"LFG_DPS" envDefault:"3"`
	DeclinePolicy   string        `env:"LFG_DECLINE_POLICY" envDefault:"fail"`

	Tick      time.Duration `env:"LFG_TICK" envDefault:"1s"`
	GroupSize int           `env:"LFG_GROUP_SIZE" envDefault:"5"`
	AutoMatch bool          `env:"LFG_AUTOMATCH" envDefault:"true"`
	Debug     bool          `env:"LFG_DEBUG"`
}

// Load reads .env (if present) and the environment, then validates.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := ParseEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func (c *Config) Headless() bool { return c.Token == "" }

func (c *Config) Validate() error {
	if !c.Headless() {
		if c.AppID == "" {
			return errors.New("missing DISCORD_APP_ID")
		}
		if c.GuildID == "" {
			return errors.New("missing DISCORD_GUILD_ID")
		}
		if c.AnnounceChannelID == "" {
			return errors.New("missing LFG_ANNOUNCE_CHANNEL_ID")
		}
	}
	if c.RoleCheckWindow <= 0 || c.BootWindow <= 0 || c.ProposalWindow <= 0 {
		return errors.New("LFG windows must be positive")
	}
	if c.Tick <= 0 {
		return errors.New("LFG_TICK must be positive")
	}
	if c.GroupSize <= 0 {
		return errors.New("LFG_GROUP_SIZE must be positive")
	}
	if c.VotesNeeded == 0 {
		return errors.New("LFG_VOTES_NEEDED must be at least 1")
	}
	if _, err := lfg.ParseDeclinePolicy(c.DeclinePolicy); err != nil {
		return err
	}
	return nil
}

// LFG builds the core manager config.
func (c *Config) LFG() (lfg.Config, error) {
	policy, err := lfg.ParseDeclinePolicy(c.DeclinePolicy)
	if err != nil {
		return lfg.Config{}, err
	}
	return lfg.Config{
		RoleCheckWindow: c.RoleCheckWindow,
		BootWindow:      c.BootWindow,
		ProposalWindow:  c.ProposalWindow,
		VotesNeeded:     c.VotesNeeded,
		MaxKicks:        c.MaxKicks,
		RoleTargets:     lfg.RoleTargets{Tanks: c.Tanks, Healers: c.Healers, DPS: c.DPS},
		DeclinePolicy:   policy,
	}, nil
}

func (c *Config) Redacted() string {
	tok := "[set]"
	if c.Token == "" {
		tok = "[empty]"
	}
	return fmt.Sprintf(
		"appID=%s guildID=%s queueChannelID=%s announceChannelID=%s admins=[%s] groupSize=%d automatch=%t decline=%s token=%s",
		c.AppID, c.GuildID, c.QueueChannelID, c.AnnounceChannelID,
		strings.Join(c.AdminRoleIDs, ","), c.GroupSize, c.AutoMatch, c.DeclinePolicy, tok,
	)
}
