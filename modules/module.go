package modules

import (
	"fmt"
	"log/slog"

	"github.com/goland-express/slashroute/registry"
	"github.com/goland-express/slashroute/types"
)

// Module is a group of related commands.
type Module interface {
	Name() string
	Register(r *registry.Registry) error
}

// Load registers every module in order and stops at the first failure.
func Load(r *registry.Registry, mods ...Module) error {
	for _, m := range mods {
		if err := m.Register(r); err != nil {
			return fmt.Errorf("load module %s: %w", m.Name(), err)
		}
		slog.Info("Module loaded", slog.String("module", m.Name()))
	}
	return nil
}

func botData(ctx *registry.Context) *types.BotData {
	data, _ := ctx.Data().(*types.BotData)
	return data
}

func register(r *registry.Registry, cmds ...*registry.Command) error {
	for _, cmd := range cmds {
		if err := r.Register(cmd); err != nil {
			return err
		}
	}
	return nil
}
