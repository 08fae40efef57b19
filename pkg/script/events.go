package script

// EntitySpawnEvent is fired by the host when an entity spawned.
type EntitySpawnEvent struct {
	entity HostEntity
}

// NewEntitySpawnEvent returns a new EntitySpawnEvent.
func NewEntitySpawnEvent(entity HostEntity) *EntitySpawnEvent {
	return &EntitySpawnEvent{entity: entity}
}

// Entity returns the spawned entity.
func (e *EntitySpawnEvent) Entity() HostEntity { return e.entity }

// PlayerSpawnEvent is fired by the host when a player spawned.
type PlayerSpawnEvent struct {
	player HostPlayer
}

// NewPlayerSpawnEvent returns a new PlayerSpawnEvent.
func NewPlayerSpawnEvent(player HostPlayer) *PlayerSpawnEvent {
	return &PlayerSpawnEvent{player: player}
}

// Player returns the spawned player.
func (e *PlayerSpawnEvent) Player() HostPlayer { return e.player }

// WorldLoadEvent is fired by the host once the world finished loading.
type WorldLoadEvent struct {
	world World
}

// NewWorldLoadEvent returns a new WorldLoadEvent.
func NewWorldLoadEvent(world World) *WorldLoadEvent {
	return &WorldLoadEvent{world: world}
}

// World returns the loaded world.
func (e *WorldLoadEvent) World() World { return e.world }

// PlayerLoadEvent is fired by the Runtime after a player was
// observed for the first time and its hydration started.
type PlayerLoadEvent struct {
	player *Player
}

// Player returns the wrapped player.
func (e *PlayerLoadEvent) Player() *Player { return e.player }

// EntityLoadEvent is fired by the Runtime after a non-player
// entity was observed for the first time.
type EntityLoadEvent struct {
	entity *Entity
}

// Entity returns the wrapped entity.
func (e *EntityLoadEvent) Entity() *Entity { return e.entity }
