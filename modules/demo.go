package modules

import (
	"fmt"
	"strings"

	"github.com/disgoorg/disgo/discord"

	"github.com/goland-express/slashroute/registry"
	"github.com/goland-express/slashroute/utils"
)

// DemoModule shows off nested subcommands and typed options.
type DemoModule struct{}

func (m *DemoModule) Name() string {
	return "Demo"
}

func (m *DemoModule) Register(r *registry.Registry) error {
	return register(r,
		&registry.Command{
			Name:        "main",
			Description: "Example command with subcommands",
			Subcommands: []*registry.Command{
				{
					Name:    "sub1",
					Execute: m.executeSub1,
				},
				{
					Name:        "sub2",
					Description: "This is subcommand 2 tricked out!",
					Options: []registry.Option{
						{Name: "arg1", Description: "The first argument.", Type: discord.ApplicationCommandOptionTypeString, Required: true},
						{Name: "arg2", Description: "The second argument!", Type: discord.ApplicationCommandOptionTypeString},
					},
					Execute: m.executeSub2,
				},
			},
		},
		&registry.Command{
			Name:        "echo_text",
			Description: "Repeats what you say",
			Options: []registry.Option{
				{Name: "text", Description: "What to repeat", Type: discord.ApplicationCommandOptionTypeString, Required: true, MaxLength: utils.Ptr(200)},
				{Name: "times", Description: "How many times", Type: discord.ApplicationCommandOptionTypeInt, Default: 1, MinValue: utils.Ptr(1.0), MaxValue: utils.Ptr(5.0)},
			},
			Execute: m.executeEcho,
		},
	)
}

func (m *DemoModule) executeSub1(ctx *registry.Context) error {
	return ctx.Say("This is subcommand 1!")
}

func (m *DemoModule) executeSub2(ctx *registry.Context) error {
	arg1, _ := ctx.GetStringOption("arg1")
	arg2, ok := ctx.GetStringOption("arg2")
	if !ok {
		arg2 = "none"
	}
	return ctx.Say(fmt.Sprintf("This is subcommand 2 with arg1 %s and arg2 %s", arg1, arg2))
}

func (m *DemoModule) executeEcho(ctx *registry.Context) error {
	text, _ := ctx.GetStringOption("text")
	times, _ := ctx.GetIntOption("times")

	lines := make([]string, times)
	for i := range lines {
		lines[i] = text
	}
	return ctx.Say(strings.Join(lines, "\n"))
}
