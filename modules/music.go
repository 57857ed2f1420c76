package modules

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgolink/v3/lavalink"

	"github.com/goland-express/slashroute/checks"
	"github.com/goland-express/slashroute/player"
	"github.com/goland-express/slashroute/registry"
	"github.com/goland-express/slashroute/types"
	"github.com/goland-express/slashroute/utils"
)

const maxChoiceLength = 100

type MusicModule struct {
	data *types.BotData
}

func NewMusicModule(data *types.BotData) *MusicModule {
	return &MusicModule{data: data}
}

func (m *MusicModule) Name() string {
	return "Music"
}

func (m *MusicModule) Register(r *registry.Registry) error {
	return register(r, &registry.Command{
		Name:        "music",
		Description: "Play music in your voice channel",
		GuildOnly:   true,
		Subcommands: []*registry.Command{
			{
				Name:        "play",
				Description: "Plays a song in the voice channel",
				Options: []registry.Option{
					{Name: "query", Description: "Song name or URL", Type: discord.ApplicationCommandOptionTypeString, Required: true, Autocomplete: m.completeQuery},
				},
				Checks:  []registry.Check{checks.GuildOnly()},
				Execute: m.executePlay,
			},
			{Name: "skip", Description: "Skips to the next song in the queue", Checks: []registry.Check{checks.GuildOnly()}, Execute: m.executeSkip},
			{Name: "queue", Description: "Displays the current song queue", Checks: []registry.Check{checks.GuildOnly()}, Execute: m.executeQueue},
			{Name: "stop", Description: "Stops playback and leaves the channel", Checks: []registry.Check{checks.GuildOnly()}, Execute: m.executeStop},
			{
				Name:        "volume",
				Description: "Changes the playback volume",
				Options: []registry.Option{
					{Name: "level", Description: "Volume from 0 to 200", Type: discord.ApplicationCommandOptionTypeInt, Required: true, MinValue: utils.Ptr(0.0), MaxValue: utils.Ptr(200.0)},
				},
				Checks:  []registry.Check{checks.GuildOnly()},
				Execute: m.executeVolume,
			},
		},
	})
}

func (m *MusicModule) player() (*player.Player, error) {
	if m.data == nil || m.data.Player() == nil {
		return nil, utils.NewUserError("The music player is not available right now. Please try again in a moment.")
	}
	return m.data.Player(), nil
}

func (m *MusicModule) completeQuery(ctx context.Context, query string) ([]registry.Choice, error) {
	query = strings.TrimSpace(query)
	if query == "" || m.data == nil || m.data.Player() == nil {
		return nil, nil
	}

	tracks, err := m.data.Player().Search(ctx, query, 10)
	if err != nil {
		return nil, err
	}

	choices := make([]registry.Choice, 0, len(tracks))
	for _, t := range tracks {
		value := t.Info.Title
		if t.Info.URI != nil && len(*t.Info.URI) <= maxChoiceLength {
			value = *t.Info.URI
		}
		choices = append(choices, registry.Choice{
			Name:  utils.Truncate(fmt.Sprintf("%s - %s", t.Info.Title, t.Info.Author), maxChoiceLength),
			Value: utils.Truncate(value, maxChoiceLength),
		})
	}
	return choices, nil
}

func (m *MusicModule) executePlay(ctx *registry.Context) error {
	pm, err := m.player()
	if err != nil {
		return err
	}
	client := ctx.Client()
	if client == nil {
		return utils.NewUserError("This command has to be run from Discord.")
	}
	guildID := *ctx.GuildID()

	voiceState, ok := client.Caches().VoiceState(guildID, ctx.UserID())
	if !ok || voiceState.ChannelID == nil {
		return utils.NewUserError("You must be in a voice channel to use this command.")
	}
	query, _ := ctx.GetStringOption("query")

	if err := ctx.Defer(false); err != nil {
		return err
	}

	author := ctx.Author()
	track, position, err := pm.Play(ctx.Context(), client, guildID, *voiceState.ChannelID, query, player.Requester{
		ID:   author.ID,
		Name: author.Username,
	})
	if err != nil {
		return fmt.Errorf("failed to play track: %w", err)
	}

	embed := trackEmbed(*track).
		AddField("Duration", utils.FormatDuration(int(track.Info.Length)), true).
		SetFooter(fmt.Sprintf("Requested by %s", author.Username), author.EffectiveAvatarURL()).
		SetTimestamp(time.Now())
	if position > 0 {
		embed.AddField("Position in Queue", fmt.Sprintf("%d", position), true)
	} else {
		embed.SetDescription("Now playing")
	}
	return ctx.SendEmbed(embed.Build())
}

func (m *MusicModule) executeSkip(ctx *registry.Context) error {
	pm, err := m.player()
	if err != nil {
		return err
	}

	track, err := pm.Skip(ctx.Context(), *ctx.GuildID())
	if err != nil {
		return fmt.Errorf("failed to skip track: %w", err)
	}
	if track == nil {
		embed := discord.NewEmbedBuilder().
			SetDescription("The queue has ended.").
			SetColor(0x1DB954).
			Build()
		return ctx.SendEmbed(embed)
	}

	embed := trackEmbed(*track).
		SetDescription("Song skipped. Now playing:").
		SetColor(0x1DB954).
		Build()
	return ctx.SendEmbed(embed)
}

func (m *MusicModule) executeStop(ctx *registry.Context) error {
	pm, err := m.player()
	if err != nil {
		return err
	}
	client := ctx.Client()
	if client == nil {
		return utils.NewUserError("This command has to be run from Discord.")
	}
	if err := pm.Stop(ctx.Context(), client, *ctx.GuildID()); err != nil {
		return err
	}
	return ctx.Say("Stopped playback and cleared the queue.")
}

func (m *MusicModule) executeVolume(ctx *registry.Context) error {
	pm, err := m.player()
	if err != nil {
		return err
	}
	level, _ := ctx.GetIntOption("level")
	if err := pm.SetVolume(ctx.Context(), *ctx.GuildID(), level); err != nil {
		return fmt.Errorf("failed to set volume: %w", err)
	}
	return ctx.Say(fmt.Sprintf("Volume set to **%d%%**", level))
}

func (m *MusicModule) executeQueue(ctx *registry.Context) error {
	pm, err := m.player()
	if err != nil {
		return err
	}
	guildID := *ctx.GuildID()

	nowPlaying := pm.NowPlaying(guildID)
	queue := pm.Queue(guildID)
	if nowPlaying == nil && queue.Len() == 0 {
		return ctx.Say("The queue is empty.")
	}
	return ctx.SendEmbed(queueEmbed(nowPlaying, pm.Position(guildID), queue.Tracks()))
}

// queueEmbed lists the current track and the first few queued ones.
func queueEmbed(nowPlaying *lavalink.Track, position lavalink.Duration, tracks []lavalink.Track) discord.Embed {
	embed := discord.NewEmbedBuilder().SetColor(0x5865F2)

	if nowPlaying != nil {
		if nowPlaying.Info.ArtworkURL != nil {
			embed.SetThumbnail(*nowPlaying.Info.ArtworkURL)
		}
		info := fmt.Sprintf("%s - `%s` / `%s`",
			trackLink(*nowPlaying),
			utils.FormatDuration(int(position)),
			utils.FormatDuration(int(nowPlaying.Info.Length)))
		if r, ok := player.RequesterOf(*nowPlaying); ok {
			info += "\n- Requested by " + discord.UserMention(r.ID)
		}
		embed.AddField("▶ Now Playing", info, false)
	}

	if len(tracks) > 0 {
		var (
			sb    strings.Builder
			total lavalink.Duration
		)
		for i, t := range tracks {
			total += t.Info.Length
			if i >= 5 {
				continue
			}
			sb.WriteString(fmt.Sprintf("**%d.** %s - `%s`", i+1, trackLink(t), utils.FormatDuration(int(t.Info.Length))))
			if r, ok := player.RequesterOf(t); ok {
				sb.WriteString("\n- Requested by " + discord.UserMention(r.ID))
			}
			sb.WriteString("\n")
		}
		if len(tracks) > 5 {
			sb.WriteString(fmt.Sprintf("\n*...and %d more track(s)*", len(tracks)-5))
		}
		embed.AddField(fmt.Sprintf("Up Next (%d)", len(tracks)), sb.String(), false)
		embed.AddField("Total Queue Duration", utils.FormatDuration(int(total)), true)
	}

	return embed.SetTimestamp(time.Now()).Build()
}

func trackEmbed(t lavalink.Track) *discord.EmbedBuilder {
	embed := discord.NewEmbedBuilder().
		SetTitle(t.Info.Title).
		SetColor(0x2371AB).
		SetAuthor(t.Info.Author, "", "")
	if t.Info.URI != nil {
		embed.SetURL(*t.Info.URI)
	}
	if t.Info.ArtworkURL != nil {
		embed.SetThumbnail(*t.Info.ArtworkURL)
	}
	return embed
}

func trackLink(t lavalink.Track) string {
	if t.Info.URI == nil {
		return "**" + t.Info.Title + "**"
	}
	return fmt.Sprintf("**[%s](%s)**", t.Info.Title, *t.Info.URI)
}

