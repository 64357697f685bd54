// Command bot runs the LFG matchmaker.
//
// this binary:
//  1. loads config from environment variables (.env during dev)
//  2. builds the LFG core, party roster and queues
//  3. starts the driver that expires deadlines and matches queues
//  4. if a token is set, opens the Discord gateway and waits for a signal
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/jose-valero/lfg-bot/internal/app"
	"github.com/jose-valero/lfg-bot/internal/domain/events"
	"github.com/jose-valero/lfg-bot/internal/lfg"
	"github.com/jose-valero/lfg-bot/internal/party"
	"github.com/jose-valero/lfg-bot/internal/queue"
	"github.com/jose-valero/lfg-bot/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, err := newLogger(cfg.Debug)
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}

	// block the process till SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, logger)
	stop()
	_ = logger.Sync()
	if err != nil {
		log.Fatalf("bot error: %v", err)
	}
}

// run serves until ctx is done. Every started component is stopped before it
// returns, on error paths too.
func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	events.SetLogger(logger.Named("events"))

	lfgCfg, err := cfg.LFG()
	if err != nil {
		return fmt.Errorf("lfg config: %w", err)
	}

	parties := party.NewRegistry()
	core := lfg.NewManager(lfgCfg,
		lfg.WithLogger(logger.Named("lfg")),
		lfg.WithParties(parties),
	)
	svc := app.NewService(core, parties, queue.NewManager(), app.DefaultCatalog(), logger.Named("service"))

	ctx, cancel := context.WithCancel(ctx)
	wait := app.NewDriver(svc, app.DriverConfig{
		Tick:      cfg.Tick,
		GroupSize: cfg.GroupSize,
		AutoMatch: cfg.AutoMatch,
	}, logger.Named("driver")).Start(ctx)
	defer func() {
		cancel()
		wait()
	}()

	if cfg.Headless() {
		logger.Info("running without discord", zap.String("config", cfg.Redacted()))
		<-ctx.Done()
		return nil
	}

	// the prefix "Bot " is required for bot tokens
	sess, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return fmt.Errorf("discord session: %w", err)
	}
	sess.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages

	b := app.NewBot(sess, cfg, svc, logger.Named("bot"))
	if err := sess.Open(); err != nil {
		return fmt.Errorf("open gateway: %w", err)
	}
	defer sess.Close()

	defer b.Stop()
	if err := b.RegisterHandlers(ctx); err != nil {
		return fmt.Errorf("register handlers: %w", err)
	}

	logger.Info("🤖 bot ready", zap.String("config", cfg.Redacted()))
	<-ctx.Done()
	logger.Info("shutting down")
	return nil
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
