package scriptsdk

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/gookit/color"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"go.minekube.com/scriptsdk/internal/util/console"
	"go.minekube.com/scriptsdk/pkg/bridge"
	"go.minekube.com/scriptsdk/pkg/edition/bedrock/ping"
	"go.minekube.com/scriptsdk/pkg/system"
)

// DefaultBedrockPort is used for addresses without a port.
const DefaultBedrockPort = 19132

func pingCommand() *cli.Command {
	return &cli.Command{
		Name:      "ping",
		Usage:     "Ping Bedrock servers and print their status",
		ArgsUsage: "host[:port]...",
		Description: `Pings the given Bedrock servers concurrently and prints the status
each one advertises, as the bridge reports it to scripts:

	scriptsdk ping play.example.com localhost:19133`,
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:    "timeout",
				Aliases: []string{"t"},
				Usage:   "Timeout per server",
				Value:   5 * time.Second,
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return cli.Exit("at least one server address is required", 1)
			}
			results := pingAll(c.Context, ping.RakNet, c.Args().Slice(), c.Duration("timeout"))
			var failed int
			for _, r := range results {
				if r.err != nil {
					failed++
					_, _ = fmt.Fprintln(c.App.ErrWriter, color.Red.Sprintf("%s: %v", r.addr, r.err))
					continue
				}
				if err := printResult(c, r); err != nil {
					return cli.Exit(err, 1)
				}
			}
			if failed != 0 {
				return cli.Exit(fmt.Sprintf("%d of %d server(s) unreachable", failed, len(results)), 1)
			}
			return nil
		},
	}
}

type pingResult struct {
	addr   string
	status *ping.Status
	err    error
}

// pingAll pings addrs concurrently, results are in the order of addrs.
func pingAll(ctx context.Context, pinger ping.Pinger, addrs []string, timeout time.Duration) []pingResult {
	results := make([]pingResult, len(addrs))
	var eg errgroup.Group
	for i, addr := range addrs {
		results[i].addr = addr
		eg.Go(func() error {
			host, port, err := splitAddr(addr)
			if err != nil {
				results[i].err = err
				return nil
			}
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			results[i].status, results[i].err = pinger.Ping(ctx, host, port)
			return nil
		})
	}
	_ = eg.Wait()
	return results
}

// splitAddr splits addr into host and port, defaulting to DefaultBedrockPort.
func splitAddr(addr string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return addr, DefaultBedrockPort, nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return "", 0, fmt.Errorf("invalid port %q", portStr)
	}
	return host, port, nil
}

func printResult(c *cli.Context, r pingResult) error {
	info := bridge.InfoFromStatus(r.status)
	_, _ = fmt.Fprintf(c.App.Writer, "%s %s %s\n",
		color.Green.Sprint(r.addr),
		console.AnsiFromLegacy(info.Name),
		color.Gray.Sprintf("(%dms)", info.Ping))

	info.Name = console.StripLegacy(info.Name)
	info.MapName = console.StripLegacy(info.MapName)
	out, err := yaml.Marshal(map[string]*system.ServerInfo{r.addr: info})
	if err != nil {
		return fmt.Errorf("error encoding status of %s: %w", r.addr, err)
	}
	_, err = c.App.Writer.Write(out)
	return err
}
