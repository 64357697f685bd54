package app

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	disc "github.com/jose-valero/lfg-bot/internal/adapters/discord"
	"github.com/jose-valero/lfg-bot/pkg/config"
)

// Bot is the Discord front-end of the Service.
type Bot struct {
	Sess *discordgo.Session
	Cfg  *config.Config
	Svc  *Service

	policy *disc.Policy
	log    *zap.Logger
	stops  []func()
}

func NewBot(s *discordgo.Session, cfg *config.Config, svc *Service, log *zap.Logger) *Bot {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bot{
		Sess:   s,
		Cfg:    cfg,
		Svc:    svc,
		policy: disc.NewPolicy(cfg.AdminRoleIDs),
		log:    log,
	}
}

// RegisterHandlers wires the announcer to the event bus, routes
// interactions and installs the slash commands.
func (b *Bot) RegisterHandlers(ctx context.Context) error {
	pub := disc.NewPublisher(b.Sess, b.Cfg.AnnounceChannelID, b.log.Named("publisher"))
	ann := disc.NewAnnouncer(pub, b.Svc.Queues, b.log.Named("announcer"))
	b.stops = append(b.stops,
		ann.Start(ctx),
		b.Sess.AddHandler(b.HandleInteraction),
	)
	return RegisterCommands(b.Sess, b.Cfg.AppID, b.Cfg.GuildID, b.Svc.Catalog())
}

func (b *Bot) Stop() {
	for _, stop := range b.stops {
		stop()
	}
	b.stops = nil
}
