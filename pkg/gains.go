package dqm

import (
	"strconv"

	"golang.org/x/exp/slices"
)

// Number of MGPA (crystal) and PN diode gain levels.
const (
	nGain   = 3
	nPNGain = 2
)

var (
	legalMGPAGains = []int{1, 6, 12}
	legalPNGains   = []int{1, 16}
)

// TaskParameters are the per-task settings read once at construction.
type TaskParameters struct {
	MGPAGains   []int
	MGPAGainsPN []int
}

func ValidateGains(mgpaGains []int, pnGains []int) error {
	for _, gain := range mgpaGains {
		if !slices.Contains(legalMGPAGains, gain) {
			return &ErrInvalidConfiguration{Parameter: "MGPA gain", Value: gain}
		}
	}
	for _, gain := range pnGains {
		if !slices.Contains(legalPNGains, gain) {
			return &ErrInvalidConfiguration{Parameter: "PN diode gain", Value: gain}
		}
	}
	return nil
}

// mgpaGainOffset maps a validated MGPA gain to its ME offset.
func mgpaGainOffset(gain int) int {
	switch gain {
	case 1:
		return 0
	case 6:
		return 1
	case 12:
		return 2
	default:
		return 0
	}
}

func pnGainOffset(gain int) int {
	switch gain {
	case 1:
		return 0
	case 16:
		return 1
	default:
		return 0
	}
}

// mgpaGainFromID decodes the gain id stored in an MGPA sample.
// Id 0 (saturation) and any other value are not usable.
func mgpaGainFromID(gainID int) (offset int, gain int, ok bool) {
	switch gainID {
	case 1:
		return 2, 12, true
	case 2:
		return 1, 6, true
	case 3:
		return 0, 1, true
	default:
		return 0, 0, false
	}
}

func pnGainFromID(gainID int) (offset int, gain int, ok bool) {
	switch gainID {
	case 0:
		return 0, 1, true
	case 1:
		return 1, 16, true
	default:
		return 0, 0, false
	}
}

func gainLabel(gain int) string {
	return strconv.Itoa(gain)
}
