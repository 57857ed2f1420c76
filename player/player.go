// Package player plays audio through a Lavalink node and keeps a track queue
// per guild.
package player

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/disgoorg/disgolink/v3/disgolink"
	"github.com/disgoorg/snowflake/v2"
)

var (
	ErrNoNode    = errors.New("no lavalink node available")
	ErrNoResults = errors.New("no results found")
)

type Player struct {
	client disgolink.Client
	queues *Queues
	logger *slog.Logger
}

// New connects to the Lavalink node at host on behalf of the bot appID.
func New(appID snowflake.ID, host, password string) (*Player, error) {
	p := &Player{
		queues: NewQueues(),
		logger: slog.Default().With(slog.String("component", "player")),
	}
	p.client = disgolink.New(appID,
		disgolink.WithListenerFunc(p.onTrackEnd),
		disgolink.WithListenerFunc(p.onTrackException),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	p.logger.Info("Connecting to Lavalink...", slog.String("host", host))

	node, err := p.client.AddNode(ctx, disgolink.NodeConfig{
		Name:     "main",
		Address:  host,
		Password: password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add lavalink node: %w", err)
	}

	p.logger.Info("Lavalink node added", slog.String("address", node.Config().Address))
	return p, nil
}

// Queue returns the pending tracks of guildID.
func (p *Player) Queue(guildID snowflake.ID) *Queue {
	return p.queues.Get(guildID)
}

func (p *Player) Close() {
	p.client.Close()
}

func (p *Player) node() (disgolink.Node, error) {
	node := p.client.BestNode()
	if node == nil {
		return nil, ErrNoNode
	}
	return node, nil
}
