package dqm

import "fmt"

// Number of DCCs (readout crates) in the calorimeter.
const NDCC = 54

/* ---------- DCC run type, as written in the DCC header block ---------- */
type RunType int16

const RUNTYPE_UNKNOWN RunType = -1

const (
	COSMIC RunType = iota
	BEAMH4
	BEAMH2
	MTCC
	LASER_STD
	LASER_POWER_SCAN
	LASER_DELAY_SCAN
	TESTPULSE_SCAN_MEM
	TESTPULSE_MGPA
	PEDESTAL_STD
	PEDESTAL_OFFSET_SCAN
	PEDESTAL_25NS_SCAN
	LED_STD
	PHYSICS_GLOBAL
	COSMICS_GLOBAL
	HALO_GLOBAL
	LASER_GAP
	TESTPULSE_GAP
	PEDESTAL_GAP
	LED_GAP
	PHYSICS_LOCAL
	COSMICS_LOCAL
	HALO_LOCAL
	CALIB_LOCAL
)

var runTypeStrings = []string{
	"COSMIC",
	"BEAMH4",
	"BEAMH2",
	"MTCC",
	"LASER_STD",
	"LASER_POWER_SCAN",
	"LASER_DELAY_SCAN",
	"TESTPULSE_SCAN_MEM",
	"TESTPULSE_MGPA",
	"PEDESTAL_STD",
	"PEDESTAL_OFFSET_SCAN",
	"PEDESTAL_25NS_SCAN",
	"LED_STD",
	"PHYSICS_GLOBAL",
	"COSMICS_GLOBAL",
	"HALO_GLOBAL",
	"LASER_GAP",
	"TESTPULSE_GAP",
	"PEDESTAL_GAP",
	"LED_GAP",
	"PHYSICS_LOCAL",
	"COSMICS_LOCAL",
	"HALO_LOCAL",
	"CALIB_LOCAL",
}

func (r RunType) String() string {
	if r < COSMIC || int(r) >= len(runTypeStrings) {
		return fmt.Sprintf("UNKNOWN(%d)", int16(r))
	}
	return runTypeStrings[r]
}

// IsPedestal reports whether the DCC was taking pedestal data.
func (r RunType) IsPedestal() bool {
	return r == PEDESTAL_STD || r == PEDESTAL_GAP
}

// UnknownRunTypes returns a run type array with every DCC marked absent.
func UnknownRunTypes() [NDCC]int16 {
	var runType [NDCC]int16
	for i := range runType {
		runType[i] = int16(RUNTYPE_UNKNOWN)
	}
	return runType
}
