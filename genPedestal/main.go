package main

import (
	"bufio"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"

	dqm "github.com/next-exp/ecal_dqm/pkg"
)

type GeneratorConfig struct {
	FileOut        string
	Events         int
	RunNumber      int
	RunType        int
	Dccs           []int
	CrystalsPerDcc int
	PnPerDcc       int
	GainID         int
	PnGainID       int
	Pedestal       float64
	Noise          float64
	Seed           int64
}

var logger = dqm.NewSlogLogger(os.Stdout, os.Stderr)

func main() {
	if err := run(os.Args[1:]); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := flag.NewFlagSet("genPedestal", flag.ContinueOnError)
	out := flags.String("out", "pedestal.rd", "Output raw file")
	events := flags.Int("events", 100, "Number of events")
	runNumber := flags.Int("run", 1, "Run number")
	runType := flags.Int("runtype", int(dqm.PEDESTAL_STD), "DCC run type code")
	dccs := flags.String("dccs", "1-54", "DCCs to generate, e.g. 1-9,12")
	crystals := flags.Int("crystals", 100, "Crystals per DCC")
	pns := flags.Int("pns", 10, "PN diodes per DCC")
	gainID := flags.Int("gainid", 1, "MGPA gain id of the crystal samples")
	pnGainID := flags.Int("pngainid", 0, "Gain id of the PN samples")
	pedestal := flags.Float64("pedestal", 200, "Mean pedestal in ADC counts")
	noise := flags.Float64("noise", 1.5, "Pedestal noise in ADC counts")
	seed := flags.Int64("seed", 1, "Random seed")
	if err := flags.Parse(args); err != nil {
		return err
	}

	dccList, err := parseDccList(*dccs)
	if err != nil {
		return fmt.Errorf("Error parsing DCC list: %w", err)
	}

	config := GeneratorConfig{
		FileOut:        *out,
		Events:         *events,
		RunNumber:      *runNumber,
		RunType:        *runType,
		Dccs:           dccList,
		CrystalsPerDcc: *crystals,
		PnPerDcc:       *pns,
		GainID:         *gainID,
		PnGainID:       *pnGainID,
		Pedestal:       *pedestal,
		Noise:          *noise,
		Seed:           *seed,
	}
	if err := generate(config); err != nil {
		return fmt.Errorf("Error generating file: %w", err)
	}
	logger.Info(fmt.Sprintf("Wrote %d events to %s", config.Events, config.FileOut), "genPedestal")
	return nil
}

func generate(config GeneratorConfig) error {
	file, err := os.Create(config.FileOut)
	if err != nil {
		return &dqm.ErrOpenFile{Filename: config.FileOut, Err: err}
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	rng := rand.New(rand.NewSource(config.Seed))
	for i := 0; i < config.Events; i++ {
		event := generateEvent(config, uint32(i), rng)
		if err := dqm.WriteEvent(w, &event, dqm.CALIBRATION_EVENT); err != nil {
			return fmt.Errorf("error writing event %d: %w", i, err)
		}
	}
	return w.Flush()
}

func generateEvent(config GeneratorConfig, eventID uint32, rng *rand.Rand) dqm.EventType {
	event := dqm.EventType{
		RunNumber: uint32(config.RunNumber),
		EventID:   eventID,
		Timestamp: uint64(eventID) * 10000,
		RunType:   dqm.UnknownRunTypes(),
	}
	adc := func() int {
		v := int(config.Pedestal + rng.NormFloat64()*config.Noise)
		return max(0, min(v, 0xFFF))
	}

	for _, dcc := range config.Dccs {
		event.RunType[dcc-1] = int16(config.RunType)
		subdet := dqm.SubdetEB
		// DCCs 1-9 and 46-54 read the endcaps.
		if dcc <= 9 || dcc >= 46 {
			subdet = dqm.SubdetEE
		}
		for c := 0; c < config.CrystalsPerDcc; c++ {
			digi := dqm.Digi{ID: dqm.NewChannelID(subdet, dcc, c)}
			for s := range digi.Samples {
				digi.Samples[s] = dqm.NewMGPASample(adc(), config.GainID)
			}
			if subdet == dqm.SubdetEE {
				event.EEDigis = append(event.EEDigis, digi)
			} else {
				event.EBDigis = append(event.EBDigis, digi)
			}
		}
		for p := 0; p < config.PnPerDcc; p++ {
			digi := dqm.PnDigi{ID: dqm.NewChannelID(dqm.SubdetPN, dcc, p)}
			for s := range digi.Samples {
				digi.Samples[s] = dqm.NewFEMSample(adc(), config.PnGainID)
			}
			event.PnDigis = append(event.PnDigis, digi)
		}
	}
	return event
}

// parseDccList parses "1-9,12,20-22" into DCC ids.
func parseDccList(s string) ([]int, error) {
	var dccs []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		first, last, isRange := strings.Cut(part, "-")
		lo, err := strconv.Atoi(first)
		if err != nil {
			return nil, err
		}
		hi := lo
		if isRange {
			hi, err = strconv.Atoi(last)
			if err != nil {
				return nil, err
			}
		}
		if lo < 1 || hi > dqm.NDCC || lo > hi {
			return nil, fmt.Errorf("invalid DCC range %q", part)
		}
		for dcc := lo; dcc <= hi; dcc++ {
			dccs = append(dccs, dcc)
		}
	}
	return dccs, nil
}
