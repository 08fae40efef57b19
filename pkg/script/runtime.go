// Package script augments the entities and players of a hosting game server
// with capabilities served by the ScriptSDK bridge.
//
// A Runtime observes lifecycle events of the host and wraps every entity
// and player it sees. The wrappers expose boss bars, toasts, popups, ping
// lookups and viewer specific name tags as plain methods; each one issues
// exactly one call through an sdk.Sender.
package script

import (
	"context"
	"sync"

	"github.com/go-logr/logr"
	"github.com/robinbraemer/event"

	"go.minekube.com/scriptsdk/pkg/override"
	"go.minekube.com/scriptsdk/pkg/sdk"
)

// HydrationErrorFunc observes a failed background hydration call.
type HydrationErrorFunc func(p *Player, command string, err error)

// Options are options for a new Runtime.
type Options struct {
	// Logger is used to log failures nobody else observes.
	// If not set, does no logging at all.
	Logger logr.Logger
	// Overrides is the name tag override registry to use.
	// If not set, a new one is created.
	Overrides *override.Registry
	// OnHydrationError is called for every failed hydration call.
	// If not set, failures are logged.
	OnHydrationError HydrationErrorFunc
	// Context is the parent of all detached background calls.
	// Canceling it aborts pending hydration. Defaults to context.Background.
	Context context.Context
}

// Runtime wraps host entities and players.
// Its state lives as long as the hosting session.
type Runtime struct {
	sender    sdk.Sender
	log       logr.Logger
	overrides *override.Registry
	onHydErr  HydrationErrorFunc
	ctx       context.Context

	background sync.WaitGroup

	mu       sync.RWMutex // protects following fields
	event    event.Manager
	entities map[string]*Entity // by entity id, players included
	players  map[string]*Player // by player name
}

// New returns a new Runtime sending its calls through sender.
func New(sender sdk.Sender, opts Options) *Runtime {
	log := opts.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	overrides := opts.Overrides
	if overrides == nil {
		overrides = override.New()
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	return &Runtime{
		sender:    sender,
		log:       log,
		overrides: overrides,
		onHydErr:  opts.OnHydrationError,
		ctx:       ctx,
		event:     event.Nop,
		entities:  map[string]*Entity{},
		players:   map[string]*Player{},
	}
}

// Overrides returns the name tag override registry.
func (r *Runtime) Overrides() *override.Registry { return r.overrides }

// Subscribe wires the Runtime to the host lifecycle events fired on mgr.
// Load events of the Runtime are fired on mgr as well.
func (r *Runtime) Subscribe(mgr event.Manager) (unsubscribe func()) {
	r.mu.Lock()
	r.event = mgr
	r.mu.Unlock()

	unsubs := []func(){
		event.Subscribe(mgr, 0, func(e *EntitySpawnEvent) {
			r.LoadEntity(e.Entity())
		}),
		event.Subscribe(mgr, 0, func(e *PlayerSpawnEvent) {
			r.LoadPlayer(e.Player())
		}),
		event.Subscribe(mgr, 0, func(e *WorldLoadEvent) {
			r.LoadWorld(e.World())
		}),
	}
	return func() {
		for _, fn := range unsubs {
			fn()
		}
		r.mu.Lock()
		r.event = event.Nop
		r.mu.Unlock()
	}
}

// LoadWorld loads all players and then all entities of the Dimensions.
func (r *Runtime) LoadWorld(w World) {
	for _, p := range w.Players() {
		r.LoadPlayer(p)
	}
	for _, dim := range Dimensions {
		for _, e := range w.Dimension(dim) {
			r.LoadEntity(e)
		}
	}
}

// LoadEntity wraps an entity. Loading an already known identity rebinds
// the host handle and returns the existing wrapper. A player handle
// is loaded as player.
func (r *Runtime) LoadEntity(host HostEntity) *Entity {
	if p, ok := host.(HostPlayer); ok {
		return r.LoadPlayer(p).Entity
	}

	r.mu.Lock()
	if e, ok := r.entities[host.ID()]; ok {
		r.mu.Unlock()
		e.bind(host)
		return e
	}
	e := newEntity(r, host)
	r.entities[e.id] = e
	mgr := r.event
	r.mu.Unlock()

	r.overrides.Ensure(e.id)
	mgr.Fire(&EntityLoadEvent{entity: e})
	return e
}

// LoadPlayer wraps a player. The first time a player is seen its identity
// hydration starts in the background; loading it again rebinds the host
// handle and returns the existing wrapper.
func (r *Runtime) LoadPlayer(host HostPlayer) *Player {
	r.mu.Lock()
	if p, ok := r.players[host.Name()]; ok {
		r.mu.Unlock()
		p.bind(host)
		return p
	}
	p := newPlayer(r, host)
	r.players[p.name] = p
	r.entities[p.id] = p.Entity
	mgr := r.event
	r.mu.Unlock()

	r.overrides.Ensure(p.id)
	p.hydrate(r.ctx)
	mgr.Fire(&PlayerLoadEvent{player: p})
	return p
}

// Entity returns the wrapper of a loaded entity or player by id.
func (r *Runtime) Entity(id string) (*Entity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entities[id]
	return e, ok
}

// Player returns the wrapper of a loaded player by name.
func (r *Runtime) Player(name string) (*Player, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.players[name]
	return p, ok
}

// Players returns all loaded players.
func (r *Runtime) Players() []*Player {
	r.mu.RLock()
	defer r.mu.RUnlock()
	players := make([]*Player, 0, len(r.players))
	for _, p := range r.players {
		players = append(players, p)
	}
	return players
}

// Wait blocks until no background calls are running.
func (r *Runtime) Wait() { r.background.Wait() }

func (r *Runtime) track(fn func()) {
	r.background.Add(1)
	go func() {
		defer r.background.Done()
		fn()
	}()
}

func (r *Runtime) hydrationFailed(p *Player, command string, err error) {
	if r.onHydErr != nil {
		r.onHydErr(p, command, err)
		return
	}
	r.log.Error(err, "player hydration failed", "player", p.Name(), "command", command)
}
