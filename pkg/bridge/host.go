package bridge

import "go.minekube.com/scriptsdk/pkg/bossbar"

// Host is the game server the bridge dispatches commands to.
// Implementations must be safe for concurrent use.
type Host interface {
	// Player returns the online player with the given name.
	Player(name string) (Player, bool)
	// Entity returns the loaded entity with the given id.
	Entity(id string) (Entity, bool)
}

// Entity is an entity of the host.
type Entity interface {
	ID() string
	NameTag() string
	// SetNameTagFor shows name as the name tag of the entity
	// to viewer only. Other players are unaffected.
	SetNameTagFor(viewer Player, name string)
}

// Player is an online player of the host.
type Player interface {
	Entity
	Name() string
	// Address returns the hostname of the player's connection.
	Address() string
	// Ping returns the latency of the player in milliseconds.
	Ping() int
	XUID() string
	DeviceOS() string

	SendToast(title, content string)
	SendPopup(message string)
	SetBossBar(bar bossbar.Bar)
	ResetBossBar()
}

// NopHost is a Host without players or entities.
// It serves the bridge in standalone mode where only
// system commands (server info, Discord) are available.
var NopHost Host = nopHost{}

type nopHost struct{}

func (nopHost) Player(string) (Player, bool) { return nil, false }
func (nopHost) Entity(string) (Entity, bool) { return nil, false }
