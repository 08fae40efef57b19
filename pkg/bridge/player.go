package bridge

import (
	"context"

	"go.minekube.com/scriptsdk/pkg/bossbar"
	"go.minekube.com/scriptsdk/pkg/sdk"
)

// playerInfo returns an action answering a property of the player
// whose name is the whole body.
func (h *Handler) playerInfo(get func(Player) string) actionFunc {
	return func(_ context.Context, body string) *sdk.Result {
		p, ok := h.host.Player(body)
		if !ok {
			return playerNotFound()
		}
		return succeed(get(p))
	}
}

// Body: playerName;#;title;#;content
func (h *Handler) sendToast(_ context.Context, body string) *sdk.Result {
	f, ok := sdk.DecodeBody(body, 3)
	if !ok {
		return invalidBody()
	}
	p, ok := h.host.Player(f[0])
	if !ok {
		return playerNotFound()
	}
	p.SendToast(f[1], f[2])
	return succeed()
}

// Body: playerName;#;message
func (h *Handler) sendPopup(_ context.Context, body string) *sdk.Result {
	f, ok := sdk.DecodeBody(body, 2)
	if !ok {
		return invalidBody()
	}
	p, ok := h.host.Player(f[0])
	if !ok {
		return playerNotFound()
	}
	p.SendPopup(f[1])
	return succeed()
}

// Body: title;#;color;#;style;#;percent;#;playerName
func (h *Handler) setBossBar(_ context.Context, body string) *sdk.Result {
	f, ok := sdk.DecodeBody(body, 5)
	if !ok {
		return invalidBody()
	}
	bar, err := bossbar.Parse(f[0], f[1], f[2], f[3])
	if err != nil {
		return fail(CodeBadRequest, err.Error())
	}
	p, ok := h.host.Player(f[4])
	if !ok {
		return playerNotFound()
	}
	p.SetBossBar(bar)
	return succeed()
}

// Body: playerName
func (h *Handler) resetBossBar(_ context.Context, body string) *sdk.Result {
	p, ok := h.host.Player(body)
	if !ok {
		return playerNotFound()
	}
	p.ResetBossBar()
	return succeed()
}
