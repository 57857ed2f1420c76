package player

import (
	"context"
	"log/slog"

	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgolink/v3/disgolink"
	"github.com/disgoorg/disgolink/v3/lavalink"
)

func (p *Player) OnVoiceStateUpdate(e *events.GuildVoiceStateUpdate) {
	if e.VoiceState.UserID != e.Client().ApplicationID() {
		return
	}
	p.client.OnVoiceStateUpdate(
		context.Background(),
		e.VoiceState.GuildID,
		e.VoiceState.ChannelID,
		e.VoiceState.SessionID,
	)
	if e.VoiceState.ChannelID == nil {
		p.queues.Delete(e.VoiceState.GuildID)
	}
}

func (p *Player) OnVoiceServerUpdate(e *events.VoiceServerUpdate) {
	if e.Endpoint == nil {
		return
	}
	p.client.OnVoiceServerUpdate(
		context.Background(),
		e.GuildID,
		e.Token,
		*e.Endpoint,
	)
}

func (p *Player) onTrackEnd(player disgolink.Player, e lavalink.TrackEndEvent) {
	p.logger.Info("Track ended",
		slog.String("guild_id", player.GuildID().String()),
		slog.String("track", e.Track.Info.Title),
		slog.String("reason", string(e.Reason)),
	)
	if !e.Reason.MayStartNext() {
		return
	}

	unlock := p.queues.Lock(player.GuildID())
	defer unlock()

	next, ok := p.queues.Get(player.GuildID()).Next()
	if !ok {
		p.logger.Info("Queue ended", slog.String("guild_id", player.GuildID().String()))
		return
	}
	if err := player.Update(context.Background(), lavalink.WithTrack(next)); err != nil {
		p.logger.Error("Failed to play next track",
			slog.String("guild_id", player.GuildID().String()),
			slog.Any("error", err),
		)
	}
}

func (p *Player) onTrackException(player disgolink.Player, e lavalink.TrackExceptionEvent) {
	p.logger.Warn("Track failed",
		slog.String("guild_id", player.GuildID().String()),
		slog.String("track", e.Track.Info.Title),
		slog.Any("error", e.Exception),
	)
}
