package player

import (
	"context"
	"fmt"
	"strings"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgolink/v3/disgolink"
	"github.com/disgoorg/disgolink/v3/lavalink"
	"github.com/disgoorg/snowflake/v2"
)

// Play joins channelID and starts query, or queues it behind the current
// track. The returned position is 0 when the track started immediately.
func (p *Player) Play(ctx context.Context, client bot.Client, guildID, channelID snowflake.ID, query string, requester Requester) (*lavalink.Track, int, error) {
	if err := client.UpdateVoiceState(ctx, guildID, &channelID, false, true); err != nil {
		return nil, 0, fmt.Errorf("failed to join voice channel: %w", err)
	}

	tracks, err := p.load(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	track, err := WithRequester(tracks[0], requester)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to attach requester: %w", err)
	}

	unlock := p.queues.Lock(guildID)
	defer unlock()

	player := p.client.Player(guildID)
	if player.Track() != nil {
		position := p.queues.Get(guildID).Push(track)
		return &track, position, nil
	}

	if err := player.Update(ctx, lavalink.WithTrack(track)); err != nil {
		return nil, 0, fmt.Errorf("failed to play track: %w", err)
	}
	return &track, 0, nil
}

// Skip starts the next queued track. It stops playback and returns nil when
// the queue is empty.
func (p *Player) Skip(ctx context.Context, guildID snowflake.ID) (*lavalink.Track, error) {
	unlock := p.queues.Lock(guildID)
	defer unlock()

	player := p.client.Player(guildID)
	next, ok := p.queues.Get(guildID).Next()
	if !ok {
		if err := player.Update(ctx, lavalink.WithNullTrack()); err != nil {
			return nil, fmt.Errorf("failed to stop player: %w", err)
		}
		return nil, nil
	}
	if err := player.Update(ctx, lavalink.WithTrack(next)); err != nil {
		return nil, fmt.Errorf("failed to play track: %w", err)
	}
	return &next, nil
}

// Stop clears the queue, stops playback and leaves the voice channel.
func (p *Player) Stop(ctx context.Context, client bot.Client, guildID snowflake.ID) error {
	unlock := p.queues.Lock(guildID)
	p.queues.Delete(guildID)
	err := p.client.Player(guildID).Update(ctx, lavalink.WithNullTrack())
	unlock()
	if err != nil {
		return fmt.Errorf("failed to stop player: %w", err)
	}
	if err := client.UpdateVoiceState(ctx, guildID, nil, false, false); err != nil {
		return fmt.Errorf("failed to leave voice channel: %w", err)
	}
	return nil
}

func (p *Player) SetVolume(ctx context.Context, guildID snowflake.ID, volume int) error {
	return p.client.Player(guildID).Update(ctx, lavalink.WithVolume(volume))
}

func (p *Player) NowPlaying(guildID snowflake.ID) *lavalink.Track {
	return p.client.Player(guildID).Track()
}

func (p *Player) Position(guildID snowflake.ID) lavalink.Duration {
	return p.client.Player(guildID).Position()
}

// Search returns up to limit tracks matching query.
func (p *Player) Search(ctx context.Context, query string, limit int) ([]lavalink.Track, error) {
	tracks, err := p.load(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(tracks) > limit {
		tracks = tracks[:limit]
	}
	return tracks, nil
}

// load resolves query to tracks. Anything that is not a URL is searched on
// YouTube.
func (p *Player) load(ctx context.Context, query string) ([]lavalink.Track, error) {
	node, err := p.node()
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(query, "http://") && !strings.HasPrefix(query, "https://") {
		query = "ytsearch:" + query
	}

	var (
		tracks  []lavalink.Track
		loadErr error
	)
	node.LoadTracksHandler(ctx, query, disgolink.NewResultHandler(
		func(track lavalink.Track) {
			tracks = []lavalink.Track{track}
		},
		func(playlist lavalink.Playlist) {
			tracks = playlist.Tracks
		},
		func(results []lavalink.Track) {
			tracks = results
		},
		func() {
			loadErr = ErrNoResults
		},
		func(err error) {
			loadErr = err
		},
	))

	if loadErr != nil {
		return nil, loadErr
	}
	if len(tracks) == 0 {
		return nil, ErrNoResults
	}
	return tracks, nil
}
