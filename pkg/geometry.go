package dqm

import "fmt"

type Subdetector uint8

const (
	SubdetUnknown Subdetector = iota
	SubdetEB
	SubdetEE
	SubdetPN
)

func (s Subdetector) String() string {
	switch s {
	case SubdetEB:
		return "EB"
	case SubdetEE:
		return "EE"
	case SubdetPN:
		return "PN"
	default:
		return "Unknown"
	}
}

// ChannelID identifies a readout channel.
//
//	bits 28-31: subdetector
//	bits 16-23: DCC id (1..54)
//	bits  0-15: channel index inside the DCC
type ChannelID uint32

func NewChannelID(subdet Subdetector, dcc int, index int) ChannelID {
	return ChannelID(uint32(subdet&0xF)<<28 | uint32(dcc&0xFF)<<16 | uint32(index&0xFFFF))
}

func (id ChannelID) Subdet() Subdetector {
	return Subdetector((uint32(id) >> 28) & 0xF)
}

func (id ChannelID) Dcc() int {
	return int((uint32(id) >> 16) & 0xFF)
}

func (id ChannelID) Index() int {
	return int(uint32(id) & 0xFFFF)
}

func (id ChannelID) String() string {
	return fmt.Sprintf("%v/DCC%d/%d", id.Subdet(), id.Dcc(), id.Index())
}

// ChannelLocation is the position of a channel in the detector.
type ChannelLocation struct {
	Subdet Subdetector
	Dcc    int
	IX     int
	IY     int
}

type Geometry interface {
	Locate(id ChannelID) (ChannelLocation, bool)
}

// Crystals per row inside a DCC when the location is derived from the id.
const crystalsPerRow = 20

// StaticGeometry derives locations from the channel id alone. It is used
// when no channel map is available from the conditions database.
type StaticGeometry struct{}

func (StaticGeometry) Locate(id ChannelID) (ChannelLocation, bool) {
	dcc := id.Dcc()
	if dcc < 1 || dcc > NDCC {
		return ChannelLocation{}, false
	}
	loc := ChannelLocation{Subdet: id.Subdet(), Dcc: dcc}
	switch loc.Subdet {
	case SubdetEB, SubdetEE:
		loc.IX = id.Index() % crystalsPerRow
		loc.IY = id.Index() / crystalsPerRow
	case SubdetPN:
		loc.IX = id.Index()
	default:
		return ChannelLocation{}, false
	}
	return loc, true
}

// DBGeometry is a channel map read from the conditions database.
type DBGeometry struct {
	RunNumber int
	Channels  map[ChannelID]ChannelLocation
}

func (g *DBGeometry) Locate(id ChannelID) (ChannelLocation, bool) {
	loc, ok := g.Channels[id]
	if !ok || loc.Dcc < 1 || loc.Dcc > NDCC {
		return ChannelLocation{}, false
	}
	return loc, true
}

type ChannelMapLoader func(runNumber int) (*DBGeometry, error)

// RunGeometry serves the channel map of the current run and reloads it
// from the loader when the run changes.
type RunGeometry struct {
	load    ChannelMapLoader
	current *DBGeometry
}

func NewRunGeometry(load ChannelMapLoader) *RunGeometry {
	return &RunGeometry{load: load}
}

// SetRun makes the channel map of runNumber current. The map is only
// reloaded when the run number changes.
func (g *RunGeometry) SetRun(runNumber int) error {
	if g.current != nil && g.current.RunNumber == runNumber {
		return nil
	}
	geometry, err := g.load(runNumber)
	if err != nil {
		return fmt.Errorf("error loading channel map for run %d: %w", runNumber, err)
	}
	g.current = geometry
	return nil
}

func (g *RunGeometry) RunNumber() int {
	if g.current == nil {
		return 0
	}
	return g.current.RunNumber
}

func (g *RunGeometry) Locate(id ChannelID) (ChannelLocation, bool) {
	if g.current == nil {
		return ChannelLocation{}, false
	}
	return g.current.Locate(id)
}
