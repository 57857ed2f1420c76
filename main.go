package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/disgoorg/disgo"
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/cache"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/gateway"

	"github.com/goland-express/slashroute/checks"
	"github.com/goland-express/slashroute/config"
	"github.com/goland-express/slashroute/logger"
	"github.com/goland-express/slashroute/modules"
	"github.com/goland-express/slashroute/player"
	"github.com/goland-express/slashroute/registry"
	"github.com/goland-express/slashroute/storage"
	"github.com/goland-express/slashroute/types"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	slog.SetDefault(logger.New(logger.Options{
		File:   cfg.LogFile,
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	}))

	store, err := storage.Open(cfg.DatabasePath)
	if err != nil {
		slog.Error("Failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	defer store.Close()

	// Both were validated by config.Load.
	syncGuilds, _ := cfg.SyncGuilds()
	owners, _ := cfg.Owners()

	botData := &types.BotData{
		StartTime: time.Now(),
		Store:     store,
	}

	reg := registry.New()
	err = modules.Load(reg,
		&modules.DemoModule{},
		&modules.InfoModule{Owners: owners, SyncGuilds: syncGuilds},
		modules.NewMusicModule(botData),
	)
	if err != nil {
		slog.Error("Failed to load modules", slog.Any("error", err))
		return
	}

	var globalChecks []registry.Check
	if cfg.CommandCooldown > 0 {
		globalChecks = append(globalChecks, checks.Cooldown(cfg.CommandCooldown, 2, checks.BucketUser))
	}

	dispatcher := registry.NewDispatcher(reg, registry.Options{
		Data:        botData,
		Checks:      globalChecks,
		AfterInvoke: []registry.AfterInvokeFunc{recordUsage(store)},
		SyncGuilds:  syncGuilds,
		OnReady: func(event *events.Ready) {
			slog.Info("Bot is ready",
				slog.String("username", event.User.Username),
				slog.String("user_id", event.User.ID.String()),
				slog.Int("guilds", len(event.Guilds)),
				slog.String("go_version", runtime.Version()),
				slog.String("disgo_version", disgo.Version),
			)
			if !cfg.MusicEnabled() || botData.Player() != nil {
				return
			}
			go startPlayer(event.Client(), botData, cfg)
		},
	})

	client, err := disgo.New(cfg.Token,
		bot.WithGatewayConfigOpts(
			gateway.WithIntents(
				gateway.IntentGuilds,
				gateway.IntentGuildVoiceStates,
			),
		),
		bot.WithCacheConfigOpts(
			cache.WithCaches(cache.FlagGuilds, cache.FlagVoiceStates),
		),
		// Each event gets its own goroutine so a slow /music play does not hold
		// up other interactions.
		bot.WithEventManagerConfigOpts(bot.WithAsyncEventsEnabled()),
		bot.WithEventListenerFunc(dispatcher.OnApplicationCommand),
		bot.WithEventListenerFunc(dispatcher.OnAutocomplete),
		bot.WithEventListenerFunc(dispatcher.OnReady),
	)
	if err != nil {
		slog.Error("Failed to create Disgo client", slog.Any("error", err))
		return
	}

	defer client.Close(context.TODO())

	if err = client.OpenGateway(context.TODO()); err != nil {
		slog.Error("Failed to connect to gateway", slog.Any("error", err))
		return
	}

	slog.Info("Bot is running. Press CTRL-C to exit.")
	s := make(chan os.Signal, 1)
	signal.Notify(s, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-s

	if p := botData.Player(); p != nil {
		p.Close()
	}
}

func startPlayer(client bot.Client, botData *types.BotData, cfg *config.Config) {
	pm, err := player.New(client.ApplicationID(), cfg.LavalinkHost, cfg.LavalinkPassword)
	if err != nil {
		slog.Error("Failed to initialize player", slog.Any("error", err))
		slog.Warn("Bot will continue without music features")
		return
	}
	botData.SetPlayer(pm)

	client.EventManager().AddEventListeners(&events.ListenerAdapter{
		OnGuildVoiceStateUpdate: pm.OnVoiceStateUpdate,
		OnVoiceServerUpdate:     pm.OnVoiceServerUpdate,
	})
}

func recordUsage(store *storage.Store) registry.AfterInvokeFunc {
	return func(ctx *registry.Context, err error) {
		usage := storage.Usage{
			Command: strings.Join(ctx.Path(), " "),
			UserID:  ctx.UserID(),
			GuildID: ctx.GuildID(),
			Success: err == nil,
		}
		if recErr := store.RecordUsage(context.Background(), usage); recErr != nil {
			slog.Warn("Failed to record command usage", slog.Any("error", recErr))
		}
	}
}
