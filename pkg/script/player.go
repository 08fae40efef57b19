package script

import (
	"context"
	"strconv"
	"sync"

	"go.uber.org/atomic"

	"go.minekube.com/scriptsdk/pkg/bossbar"
	"go.minekube.com/scriptsdk/pkg/internal/future"
	"go.minekube.com/scriptsdk/pkg/sdk"
)

// Remote player commands.
const (
	CmdSetBossBar   = "setBossBar"
	CmdResetBossBar = "resetBossBar"
	CmdGetPing      = "getPlayerPing"
	CmdSendToast    = "sendToast"
	CmdSendPopup    = "sendPopup"
	CmdGetIP        = "getPlayerIp"
	CmdGetXUID      = "getPlayerXuid"
	CmdGetOS        = "getPlayerOS"
)

// Identity is the hydrated identity of a player.
// Fields the bridge could not resolve are empty.
type Identity struct {
	IP       string
	XUID     string
	DeviceOS string
}

// Player wraps a HostPlayer with boss bars, toasts, popups, ping
// and the identity fields hydrated in the background after spawn.
type Player struct {
	*Entity
	name string

	ip, xuid, deviceOS atomic.String
	hydrated           *future.Future[Identity]
}

func newPlayer(rt *Runtime, host HostPlayer) *Player {
	return &Player{
		Entity:   newEntity(rt, host),
		name:     host.Name(),
		hydrated: future.New[Identity](),
	}
}

// Name returns the player name.
func (p *Player) Name() string { return p.name }

// IP returns the network address of the player,
// or "" until hydration resolved it.
func (p *Player) IP() string { return p.ip.Load() }

// XUID returns the platform id of the player,
// or "" until hydration resolved it.
func (p *Player) XUID() string { return p.xuid.Load() }

// DeviceOS returns the device operating system of the player,
// or "" until hydration resolved it.
func (p *Player) DeviceOS() string { return p.deviceOS.Load() }

// Identity returns a snapshot of the hydrated identity fields.
func (p *Player) Identity() Identity {
	return Identity{IP: p.IP(), XUID: p.XUID(), DeviceOS: p.DeviceOS()}
}

// Hydrated returns a channel closed once all hydration calls settled,
// successfully or not.
func (p *Player) Hydrated() <-chan struct{} { return p.hydrated.Done() }

// WhenHydrated calls fn with the identity once all hydration calls settled.
// If hydration already settled fn is called immediately.
func (p *Player) WhenHydrated(fn func(Identity)) { p.hydrated.ThenAccept(fn) }

// hydrate resolves the identity fields in detached goroutines.
// Failures are reported to the runtime's hydration error handler.
func (p *Player) hydrate(ctx context.Context) {
	fields := []struct {
		command string
		dst     *atomic.String
	}{
		{CmdGetIP, &p.ip},
		{CmdGetXUID, &p.xuid},
		{CmdGetOS, &p.deviceOS},
	}

	var wg sync.WaitGroup
	wg.Add(len(fields))
	for _, f := range fields {
		p.rt.track(func() {
			defer wg.Done()
			res, err := sdk.Call(ctx, p.rt.sender, f.command, []string{p.name})
			if err != nil {
				p.rt.hydrationFailed(p, f.command, err)
				return
			}
			f.dst.Store(res.First())
		})
	}
	p.rt.track(func() {
		wg.Wait()
		p.hydrated.Complete(p.Identity())
	})
}

// SetBossBar shows a boss bar to the player.
func (p *Player) SetBossBar(ctx context.Context, title string, color bossbar.Color, style bossbar.Style, percent float32) error {
	bar := bossbar.Bar{Title: title, Color: color, Style: style, Percent: percent}
	if err := bar.Validate(); err != nil {
		return sdk.Errorf("%v", err)
	}
	_, err := sdk.Call(ctx, p.rt.sender, CmdSetBossBar, bar.Args(p.name))
	return err
}

// ResetBossBar removes the boss bar of the player.
func (p *Player) ResetBossBar(ctx context.Context) error {
	_, err := sdk.Call(ctx, p.rt.sender, CmdResetBossBar, []string{p.name})
	return err
}

// Ping returns the latency of the player in milliseconds.
func (p *Player) Ping(ctx context.Context) (int, error) {
	res, err := sdk.Call(ctx, p.rt.sender, CmdGetPing, []string{p.name})
	if err != nil {
		return 0, err
	}
	ping, err := strconv.Atoi(res.First())
	if err != nil {
		return 0, sdk.Errorf("invalid ping %q", res.First())
	}
	return ping, nil
}

// SendToast shows a toast notification to the player.
func (p *Player) SendToast(ctx context.Context, title, content string) error {
	_, err := sdk.Call(ctx, p.rt.sender, CmdSendToast, []string{p.name, title, content})
	return err
}

// SendPopup shows a popup message to the player.
func (p *Player) SendPopup(ctx context.Context, message string) error {
	_, err := sdk.Call(ctx, p.rt.sender, CmdSendPopup, []string{p.name, message})
	return err
}
