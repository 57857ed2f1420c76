package types

import (
	"sync/atomic"
	"time"

	"github.com/goland-express/slashroute/player"
	"github.com/goland-express/slashroute/storage"
)

// BotData is shared with every command through registry.Context.Data.
type BotData struct {
	StartTime time.Time
	Store     *storage.Store
	player    atomic.Pointer[player.Player]
}

// Player returns the music player, or nil while it is not connected.
func (d *BotData) Player() *player.Player {
	return d.player.Load()
}

// SetPlayer is called once the Lavalink node is reachable.
func (d *BotData) SetPlayer(p *player.Player) {
	d.player.Store(p)
}
