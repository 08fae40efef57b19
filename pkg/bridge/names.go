package bridge

import (
	"context"

	"go.minekube.com/scriptsdk/pkg/sdk"
)

// Body: targetName;#;playerName;#;name
//
// Shows name as the name tag of the player to the target only.
func (h *Handler) setPlayerName(_ context.Context, body string) *sdk.Result {
	f, ok := sdk.DecodeBody(body, 3)
	if !ok {
		return invalidBody()
	}
	target, player, res := h.playerPair(f[0], f[1])
	if res != nil {
		return res
	}
	h.playerNames.Set(player.Name(), target.Name(), f[2])
	player.SetNameTagFor(target, f[2])
	return succeed("name set")
}

// Body: targetName;#;playerName
//
// Shows the player's own name tag to the target again.
func (h *Handler) resetPlayerName(_ context.Context, body string) *sdk.Result {
	f, ok := sdk.DecodeBody(body, 2)
	if !ok {
		return invalidBody()
	}
	target, player, res := h.playerPair(f[0], f[1])
	if res != nil {
		return res
	}
	h.playerNames.Remove(player.Name(), target.Name())
	player.SetNameTagFor(target, player.NameTag())
	return succeed("name reset")
}

func (h *Handler) playerPair(targetName, playerName string) (target, player Player, res *sdk.Result) {
	target, ok := h.host.Player(targetName)
	if !ok {
		return nil, nil, targetNotFound()
	}
	player, ok = h.host.Player(playerName)
	if !ok {
		return nil, nil, playerNotFound()
	}
	return target, player, nil
}

// Body: targetName;#;entityId;#;name
func (h *Handler) setEntityName(_ context.Context, body string) *sdk.Result {
	f, ok := sdk.DecodeBody(body, 3)
	if !ok {
		return invalidBody()
	}
	target, entity, res := h.entityPair(f[0], f[1])
	if res != nil {
		return res
	}
	h.entityNames.Set(entity.ID(), target.Name(), f[2])
	entity.SetNameTagFor(target, f[2])
	return succeed("name set")
}

// Body: targetName;#;entityId;#;name
//
// name is the name tag to restore. If empty, the entity's
// current name tag is shown.
func (h *Handler) resetEntityName(_ context.Context, body string) *sdk.Result {
	f, ok := sdk.DecodeBody(body, 3)
	if !ok {
		return invalidBody()
	}
	target, entity, res := h.entityPair(f[0], f[1])
	if res != nil {
		return res
	}
	h.entityNames.Remove(entity.ID(), target.Name())
	name := f[2]
	if name == "" {
		name = entity.NameTag()
	}
	entity.SetNameTagFor(target, name)
	return succeed("name reset")
}

func (h *Handler) entityPair(targetName, entityID string) (target Player, entity Entity, res *sdk.Result) {
	target, ok := h.host.Player(targetName)
	if !ok {
		return nil, nil, targetNotFound()
	}
	entity, ok = h.host.Entity(entityID)
	if !ok {
		return nil, nil, entityNotFound()
	}
	return target, entity, nil
}
