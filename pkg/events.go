package dqm

import "golang.org/x/exp/constraints"

// Samples per digi frame.
const (
	NSamples   = 10
	NPnSamples = 50
)

// MGPASample is a crystal sample word: ADC in bits 0-11, gain id in bits 12-13.
type MGPASample uint16

func NewMGPASample(adc int, gainID int) MGPASample {
	return MGPASample(uint16(adc&0xFFF) | uint16(gainID&0x3)<<12)
}

func (s MGPASample) ADC() int {
	return int(s & 0x0FFF)
}

func (s MGPASample) GainID() int {
	return int((s & 0x3000) >> 12)
}

// FEMSample is a PN diode sample word, same packing as the MGPA one.
type FEMSample uint16

func NewFEMSample(adc int, gainID int) FEMSample {
	return FEMSample(uint16(adc&0xFFF) | uint16(gainID&0x3)<<12)
}

func (s FEMSample) ADC() int {
	return int(s & 0x0FFF)
}

func (s FEMSample) GainID() int {
	return int((s & 0x3000) >> 12)
}

type Digi struct {
	ID      ChannelID
	Samples [NSamples]MGPASample
}

type PnDigi struct {
	ID      ChannelID
	Samples [NPnSamples]FEMSample
}

type EventType struct {
	RunNumber uint32
	EventID   uint32
	Timestamp uint64
	RunType   [NDCC]int16
	EBDigis   []Digi
	EEDigis   []Digi
	PnDigis   []PnDigi
	Error     bool
}

type adcSample interface {
	ADC() int
}

func meanADC[S adcSample](samples []S) float64 {
	adcs := make([]int, len(samples))
	for i, s := range samples {
		adcs[i] = s.ADC()
	}
	return mean(adcs)
}

func mean[T constraints.Integer | constraints.Float](values []T) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += float64(v)
	}
	return sum / float64(len(values))
}
