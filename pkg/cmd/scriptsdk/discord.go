package scriptsdk

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/urfave/cli/v2"

	"go.minekube.com/scriptsdk/pkg/sdk"
	"go.minekube.com/scriptsdk/pkg/system"
)

func discordCommand() *cli.Command {
	return &cli.Command{
		Name:      "discord",
		Usage:     "Send a Discord webhook message through a running bridge",
		ArgsUsage: "message...",
		Description: `Connects to a running bridge like a script does and relays
a message to a Discord webhook:

	scriptsdk discord --webhook 123/abc Server is restarting`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "bridge",
				Usage: "Websocket URL of the bridge",
				Value: "ws://localhost:8420/rpc",
			},
			&cli.StringFlag{
				Name:     "webhook",
				Usage:    "Webhook URL or its <id>/<token> part",
				Required: true,
				EnvVars:  []string{"SCRIPTSDK_DISCORD_WEBHOOK"},
			},
			&cli.StringFlag{
				Name:  "username",
				Usage: "Override the webhook username",
			},
			&cli.BoolFlag{
				Name:  "tts",
				Usage: "Send as text-to-speech message",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Timeout for connecting and sending",
				Value: 15 * time.Second,
			},
		},
		Action: func(c *cli.Context) error {
			content := strings.Join(c.Args().Slice(), " ")
			if content == "" {
				return cli.Exit("message must not be empty", 1)
			}
			ctx, cancel := context.WithTimeout(c.Context, c.Duration("timeout"))
			defer cancel()

			client, err := sdk.Dial(ctx, c.String("bridge"), sdk.ClientOptions{
				Logger: logr.FromContextOrDiscard(c.Context).WithName("client"),
			})
			if err != nil {
				return cli.Exit(err, 1)
			}
			defer client.Close()

			err = system.New(client).SendDiscordMessage(ctx, c.String("webhook"), content, &system.MessageOptions{
				Username: c.String("username"),
				TTS:      c.Bool("tts"),
			})
			if err != nil {
				return cli.Exit(err, 1)
			}
			_, _ = fmt.Fprintln(c.App.Writer, "Message sent")
			return nil
		},
	}
}
