package script

// HostEntity is an entity handle provided by the hosting game server.
type HostEntity interface {
	// ID returns the unique runtime identity of the entity.
	ID() string
	// NameTag returns the name tag everyone sees by default.
	NameTag() string
}

// HostPlayer is a player handle provided by the hosting game server.
type HostPlayer interface {
	HostEntity
	// Name returns the player name, the identity the bridge addresses players by.
	Name() string
}

// World enumerates the currently loaded players and entities.
type World interface {
	Players() []HostPlayer
	// Dimension returns the entities loaded in the named dimension.
	Dimension(name string) []HostEntity
}

// Viewer is the player an override is shown to.
// Both HostPlayer and *Player implement it.
type Viewer interface {
	Name() string
}

// Dimension names enumerated on world load.
const (
	Overworld = "overworld"
	Nether    = "nether"
	TheEnd    = "the_end"
)

// Dimensions are the dimensions enumerated on world load, in order.
var Dimensions = []string{Overworld, Nether, TheEnd}
