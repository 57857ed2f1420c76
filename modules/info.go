package modules

import (
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"

	"github.com/goland-express/slashroute/checks"
	"github.com/goland-express/slashroute/registry"
	"github.com/goland-express/slashroute/utils"
)

type InfoModule struct {
	// Owners may run /bot sync.
	Owners     []snowflake.ID
	SyncGuilds []snowflake.ID

	registry *registry.Registry
}

func (m *InfoModule) Name() string {
	return "Info"
}

func (m *InfoModule) Register(r *registry.Registry) error {
	m.registry = r
	return register(r, &registry.Command{
		Name:        "bot",
		Description: "Information about the bot",
		Subcommands: []*registry.Command{
			{Name: "ping", Description: "Replies with the gateway latency", Execute: m.executePing},
			{Name: "uptime", Description: "How long the bot has been running", Execute: m.executeUptime},
			{
				Name:        "stats",
				Description: "Most used commands",
				Options: []registry.Option{
					{Name: "limit", Description: "How many commands to list", Type: discord.ApplicationCommandOptionTypeInt, Default: 5, MinValue: utils.Ptr(1.0), MaxValue: utils.Ptr(10.0)},
				},
				Execute: m.executeStats,
			},
			{
				Name:        "sync",
				Description: "Re-registers every slash command with Discord",
				Checks:      []registry.Check{checks.IsOwner(m.Owners...)},
				Execute:     m.executeSync,
			},
		},
	}, &registry.Command{
		Type:    discord.ApplicationCommandTypeUser,
		Name:    "Command usage",
		Execute: m.executeUserUsage,
	})
}

func (m *InfoModule) executePing(ctx *registry.Context) error {
	client := ctx.Client()
	if client == nil || client.Gateway() == nil {
		return ctx.Say("Pong!")
	}

	embed := discord.NewEmbedBuilder().
		SetTitle("Pong").
		SetDescription(fmt.Sprintf("Latency: **%dms**\nShard: **%d**",
			client.Gateway().Latency().Milliseconds(),
			client.Gateway().ShardID())).
		SetColor(0x00FF00).
		SetTimestamp(time.Now()).
		Build()
	return ctx.SendEmbed(embed)
}

func (m *InfoModule) executeUptime(ctx *registry.Context) error {
	data := botData(ctx)
	if data == nil {
		return utils.NewUserError("Uptime is not available.")
	}
	uptime := time.Since(data.StartTime)
	return ctx.Say(fmt.Sprintf("Up for %s", utils.FormatDuration(int(uptime.Milliseconds()))))
}

func (m *InfoModule) executeStats(ctx *registry.Context) error {
	data := botData(ctx)
	if data == nil || data.Store == nil {
		return utils.NewUserError("Usage statistics are disabled.")
	}
	limit, _ := ctx.GetIntOption("limit")

	top, err := data.Store.TopCommands(ctx.Context(), limit)
	if err != nil {
		return fmt.Errorf("failed to load stats: %w", err)
	}
	if len(top) == 0 {
		return ctx.Say("No commands have been used yet.")
	}

	var sb strings.Builder
	for i, c := range top {
		sb.WriteString(fmt.Sprintf("**%d.** `/%s` - %d\n", i+1, c.Command, c.Count))
	}

	embed := discord.NewEmbedBuilder().
		SetTitle("Command Usage").
		SetDescription(sb.String()).
		SetColor(0x5865F2)

	mine, err := data.Store.UserUsage(ctx.Context(), ctx.UserID(), time.Now().Add(-24*time.Hour))
	if err != nil {
		return fmt.Errorf("failed to load user stats: %w", err)
	}
	embed.SetFooter(fmt.Sprintf("You ran %d command(s) in the last 24 hours", mine), "")

	return ctx.SendEmbed(embed.Build())
}

func (m *InfoModule) executeSync(ctx *registry.Context) error {
	client := ctx.Client()
	if client == nil {
		return utils.NewUserError("This command has to be run from Discord.")
	}
	if err := ctx.Defer(true); err != nil {
		return err
	}
	if err := m.registry.Sync(client, m.SyncGuilds...); err != nil {
		return fmt.Errorf("failed to sync commands: %w", err)
	}
	return ctx.Reply(fmt.Sprintf("Synced %d command(s).", len(m.registry.Commands())))
}

func (m *InfoModule) executeUserUsage(ctx *registry.Context) error {
	data := botData(ctx)
	if data == nil || data.Store == nil {
		return utils.NewUserError("Usage statistics are disabled.")
	}

	count, err := data.Store.UserUsage(ctx.Context(), ctx.TargetID(), time.Now().Add(-24*time.Hour))
	if err != nil {
		return fmt.Errorf("failed to load user stats: %w", err)
	}
	return ctx.Reply(fmt.Sprintf("<@%s> ran %d command(s) in the last 24 hours.", ctx.TargetID(), count))
}
