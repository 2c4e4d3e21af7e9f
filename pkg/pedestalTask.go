package dqm

import (
	"fmt"

	"golang.org/x/exp/slices"
)

const PedestalTaskName = "PedestalTask"

// ME set indices. Each set holds one ME per gain level.
const (
	kOccupancy   = 0
	kPedestal    = kOccupancy + nGain
	kPNOccupancy = kPedestal + nGain
	kPNPedestal  = kPNOccupancy + nPNGain
	nMESets      = kPNPedestal + nPNGain
)

func pedestalMEData() []MEData {
	data := make([]MEData, nMESets)
	for iGain := 0; iGain < nGain; iGain++ {
		data[kOccupancy+iGain] = MEData{
			PathTemplate: "Ecal/PedestalTask/Gain%(gain)s/Occupancy G%(gain)s",
			Kind:         KindTH2F,
			Binning:      BinSuperCrystal,
		}
		data[kPedestal+iGain] = MEData{
			PathTemplate: "Ecal/PedestalTask/Gain%(gain)s/Pedestal G%(gain)s",
			Kind:         KindTProfile2D,
			Binning:      BinCrystal,
		}
	}
	for iGain := 0; iGain < nPNGain; iGain++ {
		data[kPNOccupancy+iGain] = MEData{
			PathTemplate: "Ecal/PedestalTask/PN/Gain%(pngain)s/PNOccupancy G%(pngain)s",
			Kind:         KindTH2F,
			Binning:      BinCrystal,
		}
		data[kPNPedestal+iGain] = MEData{
			PathTemplate: "Ecal/PedestalTask/PN/Gain%(pngain)s/PNPedestal G%(pngain)s",
			Kind:         KindTProfile,
			Binning:      BinCrystal,
		}
	}
	return data
}

// PedestalTask accumulates occupancy and mean ADC of crystal and PN diode
// digis taken while their DCC runs in pedestal mode.
// It is not safe for concurrent use.
type PedestalTask struct {
	mgpaGains   []int
	mgpaGainsPN []int
	geometry    Geometry
	enable      [NDCC]bool
	MEs         []*MonitorElement
}

func NewPedestalTask(params TaskParameters, geometry Geometry) (*PedestalTask, error) {
	if err := ValidateGains(params.MGPAGains, params.MGPAGainsPN); err != nil {
		return nil, err
	}
	if geometry == nil {
		geometry = StaticGeometry{}
	}

	t := &PedestalTask{
		mgpaGains:   append([]int(nil), params.MGPAGains...),
		mgpaGainsPN: append([]int(nil), params.MGPAGainsPN...),
		geometry:    geometry,
	}
	for _, data := range pedestalMEData() {
		t.MEs = append(t.MEs, NewMonitorElement(data))
	}

	replacements := make(map[string]string)
	for _, gain := range t.mgpaGains {
		replacements["gain"] = gainLabel(gain)
		offset := mgpaGainOffset(gain)
		t.MEs[kOccupancy+offset].SetName(replacements)
		t.MEs[kPedestal+offset].SetName(replacements)
	}
	for _, gain := range t.mgpaGainsPN {
		replacements["pngain"] = gainLabel(gain)
		offset := pnGainOffset(gain)
		t.MEs[kPNOccupancy+offset].SetName(replacements)
		t.MEs[kPNPedestal+offset].SetName(replacements)
	}
	return t, nil
}

func (t *PedestalTask) Name() string {
	return PedestalTaskName
}

func (t *PedestalTask) BookMEs() {
	for _, gain := range t.mgpaGains {
		offset := mgpaGainOffset(gain)
		t.MEs[kOccupancy+offset].Book()
		t.MEs[kPedestal+offset].Book()
	}
	for _, gain := range t.mgpaGainsPN {
		offset := pnGainOffset(gain)
		t.MEs[kPNOccupancy+offset].Book()
		t.MEs[kPNPedestal+offset].Book()
	}
}

// BeginEvent disables every DCC until the run types of the new event are read.
func (t *PedestalTask) BeginEvent() {
	t.enable = [NDCC]bool{}
}

func (t *PedestalTask) FilterRunType(runType []int16) bool {
	enable := false
	for iDCC := 0; iDCC < NDCC && iDCC < len(runType); iDCC++ {
		if RunType(runType[iDCC]).IsPedestal() {
			enable = true
			t.enable[iDCC] = true
		}
	}
	return enable
}

// Enabled reports whether the DCC (1..54) is in pedestal mode for the current event.
func (t *PedestalTask) Enabled(dcc int) bool {
	if dcc < 1 || dcc > NDCC {
		return false
	}
	return t.enable[dcc-1]
}

func (t *PedestalTask) locateEnabled(id ChannelID) (ChannelLocation, bool) {
	loc, ok := t.geometry.Locate(id)
	if !ok {
		if configuration.Verbosity > 2 {
			logger.Info(fmt.Sprintf("Channel %v not found in geometry", id), "pedestalTask")
		}
		return loc, false
	}
	return loc, t.Enabled(loc.Dcc)
}

func (t *PedestalTask) RunOnDigis(digis []Digi) {
	for i := range digis {
		digi := &digis[i]
		loc, ok := t.locateEnabled(digi.ID)
		if !ok {
			continue
		}

		offset, gain, ok := mgpaGainFromID(digi.Samples[0].GainID())
		if !ok {
			if configuration.Verbosity > 2 {
				message := fmt.Sprintf("Channel %v: unusable gain id %d", digi.ID, digi.Samples[0].GainID())
				logger.Info(message, "pedestalTask")
			}
			continue
		}
		if !slices.Contains(t.mgpaGains, gain) {
			continue
		}

		t.MEs[kOccupancy+offset].Fill(loc)
		t.MEs[kPedestal+offset].FillValue(loc, meanADC(digi.Samples[:]))
	}
}

func (t *PedestalTask) RunOnPnDigis(digis []PnDigi) {
	for i := range digis {
		digi := &digis[i]
		loc, ok := t.locateEnabled(digi.ID)
		if !ok {
			continue
		}

		offset, gain, ok := pnGainFromID(digi.Samples[0].GainID())
		if !ok {
			if configuration.Verbosity > 2 {
				message := fmt.Sprintf("PN %v: unusable gain id %d", digi.ID, digi.Samples[0].GainID())
				logger.Info(message, "pedestalTask")
			}
			continue
		}
		if !slices.Contains(t.mgpaGainsPN, gain) {
			continue
		}

		t.MEs[kPNOccupancy+offset].Fill(loc)
		t.MEs[kPNPedestal+offset].FillValue(loc, meanADC(digi.Samples[:]))
	}
}

// Analyze runs the task on one event and reports whether any DCC was
// in pedestal mode.
func (t *PedestalTask) Analyze(event *EventType) bool {
	t.BeginEvent()
	if !t.FilterRunType(event.RunType[:]) {
		if configuration.Verbosity > 1 {
			message := fmt.Sprintf("Event %d: no DCC in pedestal mode", event.EventID)
			logger.Info(message, "pedestalTask")
		}
		return false
	}
	t.RunOnDigis(event.EBDigis)
	t.RunOnDigis(event.EEDigis)
	t.RunOnPnDigis(event.PnDigis)
	return true
}

// MonitorElements returns the booked MEs.
func (t *PedestalTask) MonitorElements() []*MonitorElement {
	booked := make([]*MonitorElement, 0, len(t.MEs))
	for _, me := range t.MEs {
		if me.Booked {
			booked = append(booked, me)
		}
	}
	return booked
}

func (t *PedestalTask) Reset() {
	for _, me := range t.MEs {
		me.Reset()
	}
}

func init() {
	RegisterTask(PedestalTaskName, func(params TaskParameters, geometry Geometry) (Task, error) {
		task, err := NewPedestalTask(params, geometry)
		if err != nil {
			return nil, err
		}
		return task, nil
	})
}
