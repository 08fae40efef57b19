package bridge

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"go.minekube.com/scriptsdk/pkg/edition/bedrock/ping"
	"go.minekube.com/scriptsdk/pkg/internal/cachutil"
	"go.minekube.com/scriptsdk/pkg/sdk"
	"go.minekube.com/scriptsdk/pkg/system"
)

// pingLoader loads the server info of a "host:port" key.
func pingLoader(pinger ping.Pinger, timeout time.Duration) cachutil.LoadFunc[*system.ServerInfo] {
	return func(ctx context.Context, key string) (*system.ServerInfo, error) {
		host, portStr, err := net.SplitHostPort(key)
		if err != nil {
			return nil, err
		}
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, err
		}
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		s, err := pinger.Ping(ctx, host, port)
		if err != nil {
			return nil, err
		}
		return InfoFromStatus(s), nil
	}
}

// InfoFromStatus converts a pong status to the info sent to scripts.
func InfoFromStatus(s *ping.Status) *system.ServerInfo {
	return &system.ServerInfo{
		Ping:     int(s.Latency.Milliseconds()),
		Edition:  s.Edition,
		GameMode: s.GameMode,
		MapName:  s.MapName,
		Name:     s.Name,
		Players: system.Players{
			Online: s.Online,
			Max:    s.Max,
		},
		ServerID: s.ServerID,
		Version:  s.Version,
	}
}

// Body: host;#;port
func (h *Handler) externalServerInfo(ctx context.Context, body string) *sdk.Result {
	f, ok := sdk.DecodeBody(body, 2)
	if !ok {
		return invalidBody()
	}
	port, err := strconv.Atoi(f[1])
	if err != nil || port <= 0 || port > 65535 {
		return fail(CodeBadRequest, fmt.Sprintf("invalid port %q", f[1]))
	}
	info, err := h.serverInfo.Get(ctx, net.JoinHostPort(f[0], strconv.Itoa(port)))
	if err != nil {
		return fail(CodeInternal, err.Error())
	}
	return succeed(info.Fields()...)
}
