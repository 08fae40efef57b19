package script

import (
	"context"
	"sync"

	"go.minekube.com/scriptsdk/pkg/sdk"
)

// Remote commands for viewer specific name tags.
const (
	CmdSetEntityName   = "setEntityNameForPlayer"
	CmdResetEntityName = "resetEntityNameForPlayer"
	CmdSetPlayerName   = "setPlayerNameForPlayer"
	CmdResetPlayerName = "resetPlayerNameForPlayer"
)

// Entity wraps a HostEntity with viewer specific name tag overrides.
type Entity struct {
	rt *Runtime
	id string

	mu     sync.RWMutex
	host   HostEntity
	player HostPlayer // set if the entity is a player
}

func newEntity(rt *Runtime, host HostEntity) *Entity {
	e := &Entity{rt: rt, id: host.ID()}
	e.bind(host)
	return e
}

// bind swaps in a fresh host handle for the same identity (e.g. on respawn).
func (e *Entity) bind(host HostEntity) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.host = host
	if p, ok := host.(HostPlayer); ok {
		e.player = p
	}
}

// ID returns the entity identity.
func (e *Entity) ID() string { return e.id }

// Host returns the wrapped host handle.
func (e *Entity) Host() HostEntity {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.host
}

func (e *Entity) hostPlayer() HostPlayer {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.player
}

// NameTag returns the name tag everyone without an override sees.
func (e *Entity) NameTag() string { return e.Host().NameTag() }

// SetNameTagForPlayer shows name to viewer instead of the entity's name tag.
//
// The override is recorded before the remote call is made and is kept
// even if the call fails.
func (e *Entity) SetNameTagForPlayer(ctx context.Context, viewer Viewer, name string) error {
	e.rt.overrides.Set(e.id, viewer.Name(), name)

	command, args := CmdSetEntityName, []string{viewer.Name(), e.id, name}
	if p := e.hostPlayer(); p != nil {
		command, args = CmdSetPlayerName, []string{viewer.Name(), p.Name(), name}
	}
	_, err := sdk.Call(ctx, e.rt.sender, command, args)
	return err
}

// NameTagByPlayer returns the override viewer sees.
// ok is false if viewer sees the default name tag.
func (e *Entity) NameTagByPlayer(viewer Viewer) (name string, ok bool) {
	return e.rt.overrides.Get(e.id, viewer.Name())
}

// ResetNameTagForPlayer removes the override viewer sees.
// The remote reset is only issued if an override was active.
func (e *Entity) ResetNameTagForPlayer(ctx context.Context, viewer Viewer) error {
	if !e.rt.overrides.Remove(e.id, viewer.Name()) {
		return nil
	}

	command, args := CmdResetEntityName, []string{viewer.Name(), e.id, e.NameTag()}
	if p := e.hostPlayer(); p != nil {
		command, args = CmdResetPlayerName, []string{viewer.Name(), p.Name()}
	}
	_, err := sdk.Call(ctx, e.rt.sender, command, args)
	return err
}
