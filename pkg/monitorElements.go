package dqm

import (
	"cmp"
	"fmt"
	"math"
	"regexp"

	"golang.org/x/exp/slices"
)

type MEKind int

const (
	KindTH2F MEKind = iota
	KindTProfile
	KindTProfile2D
)

func (k MEKind) String() string {
	switch k {
	case KindTH2F:
		return "TH2F"
	case KindTProfile:
		return "TProfile"
	case KindTProfile2D:
		return "TProfile2D"
	default:
		return "Unknown"
	}
}

// IsProfile reports whether the ME holds running means rather than counts.
func (k MEKind) IsProfile() bool {
	return k == KindTProfile || k == KindTProfile2D
}

type BinningType int

const (
	BinCrystal BinningType = iota
	BinSuperCrystal
)

// Crystals per trigger tower side.
const superCrystalSize = 5

// MEData describes how an ME set is booked.
type MEData struct {
	PathTemplate string
	Kind         MEKind
	Binning      BinningType
}

type Bin struct {
	Dcc int
	X   int
	Y   int
}

func (b Bin) String() string {
	return fmt.Sprintf("(%d,%d,%d)", b.Dcc, b.X, b.Y)
}

type BinContent struct {
	Entries float64
	Sum     float64
	SumSq   float64
}

type MonitorElement struct {
	Data   MEData
	Name   string
	Booked bool
	bins   map[Bin]*BinContent
}

func NewMonitorElement(data MEData) *MonitorElement {
	return &MonitorElement{
		Data: data,
		Name: data.PathTemplate,
	}
}

var replacementPattern = regexp.MustCompile(`%\(([A-Za-z0-9_]+)\)s`)

// SetName resolves the %(key)s placeholders of the path template.
// Placeholders without a replacement are kept as they are.
func (me *MonitorElement) SetName(replacements map[string]string) {
	me.Name = replacementPattern.ReplaceAllStringFunc(me.Data.PathTemplate, func(m string) string {
		key := replacementPattern.FindStringSubmatch(m)[1]
		if value, ok := replacements[key]; ok {
			return value
		}
		return m
	})
}

func (me *MonitorElement) Book() {
	me.bins = make(map[Bin]*BinContent)
	me.Booked = true
}

func (me *MonitorElement) binOf(loc ChannelLocation) Bin {
	switch me.Data.Binning {
	case BinSuperCrystal:
		return Bin{Dcc: loc.Dcc, X: loc.IX / superCrystalSize, Y: loc.IY / superCrystalSize}
	default:
		return Bin{Dcc: loc.Dcc, X: loc.IX, Y: loc.IY}
	}
}

func (me *MonitorElement) content(loc ChannelLocation) *BinContent {
	bin := me.binOf(loc)
	c, ok := me.bins[bin]
	if !ok {
		c = &BinContent{}
		me.bins[bin] = c
	}
	return c
}

// Fill adds one entry at the location.
func (me *MonitorElement) Fill(loc ChannelLocation) {
	if !me.Booked {
		return
	}
	c := me.content(loc)
	c.Entries++
	c.Sum++
	c.SumSq++
}

// FillValue adds one observation of value at the location.
func (me *MonitorElement) FillValue(loc ChannelLocation, value float64) {
	if !me.Booked {
		return
	}
	c := me.content(loc)
	c.Entries++
	c.Sum += value
	c.SumSq += value * value
}

func (me *MonitorElement) Content(bin Bin) (BinContent, bool) {
	c, ok := me.bins[bin]
	if !ok {
		return BinContent{}, false
	}
	return *c, true
}

func (me *MonitorElement) Entries(bin Bin) float64 {
	c, _ := me.Content(bin)
	return c.Entries
}

// Mean is the running mean of the bin, or the count for histograms.
func (me *MonitorElement) Mean(bin Bin) float64 {
	c, ok := me.Content(bin)
	if !ok || c.Entries == 0 {
		return 0
	}
	if !me.Data.Kind.IsProfile() {
		return c.Entries
	}
	return c.Sum / c.Entries
}

func (me *MonitorElement) RMS(bin Bin) float64 {
	c, ok := me.Content(bin)
	if !ok || c.Entries == 0 || !me.Data.Kind.IsProfile() {
		return 0
	}
	m := c.Sum / c.Entries
	variance := c.SumSq/c.Entries - m*m
	if variance < 0 {
		return 0
	}
	return math.Sqrt(variance)
}

// Bins returns the filled bins ordered by DCC, then Y, then X.
func (me *MonitorElement) Bins() []Bin {
	bins := make([]Bin, 0, len(me.bins))
	for bin := range me.bins {
		bins = append(bins, bin)
	}
	slices.SortFunc(bins, func(a, b Bin) int {
		if c := cmp.Compare(a.Dcc, b.Dcc); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Y, b.Y); c != 0 {
			return c
		}
		return cmp.Compare(a.X, b.X)
	})
	return bins
}

func (me *MonitorElement) Reset() {
	if !me.Booked {
		return
	}
	clear(me.bins)
}
