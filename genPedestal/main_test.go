package main

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	dqm "github.com/next-exp/ecal_dqm/pkg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDccList(t *testing.T) {
	dccs, err := parseDccList("1-3, 12,50-51")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 12, 50, 51}, dccs)

	for _, bad := range []string{"0-2", "53-55", "5-3", "x", "1-y"} {
		_, err := parseDccList(bad)
		assert.Error(t, err, bad)
	}
}

func TestGenerateEvent(t *testing.T) {
	config := GeneratorConfig{
		RunNumber:      7,
		RunType:        int(dqm.PEDESTAL_GAP),
		Dccs:           []int{2, 20},
		CrystalsPerDcc: 4,
		PnPerDcc:       2,
		GainID:         2,
		PnGainID:       1,
		Pedestal:       200,
		Noise:          0,
	}
	event := generateEvent(config, 3, rand.New(rand.NewSource(1)))

	assert.Equal(t, int16(dqm.PEDESTAL_GAP), event.RunType[1])
	assert.Equal(t, int16(dqm.PEDESTAL_GAP), event.RunType[19])
	assert.Equal(t, int16(dqm.RUNTYPE_UNKNOWN), event.RunType[0])
	assert.Len(t, event.EEDigis, 4)
	assert.Len(t, event.EBDigis, 4)
	assert.Len(t, event.PnDigis, 4)
	assert.Equal(t, 200, event.EBDigis[0].Samples[9].ADC())
	assert.Equal(t, 2, event.EBDigis[0].Samples[0].GainID())
	assert.Equal(t, 1, event.PnDigis[0].Samples[49].GainID())
}

func TestGenerate(t *testing.T) {
	out := filepath.Join(t.TempDir(), "ped.rd")
	config := GeneratorConfig{
		FileOut:        out,
		Events:         5,
		RunNumber:      9,
		RunType:        int(dqm.PEDESTAL_STD),
		Dccs:           []int{10},
		CrystalsPerDcc: 3,
		PnPerDcc:       1,
		GainID:         1,
		Pedestal:       150,
		Noise:          2,
		Seed:           42,
	}
	require.NoError(t, generate(config))

	file, err := os.Open(out)
	require.NoError(t, err)
	defer file.Close()

	n := 0
	for {
		header, payload, err := dqm.ReadEventFromFile(file)
		if err != nil {
			break
		}
		event, err := dqm.DecodeEvent(payload, header)
		require.NoError(t, err)
		assert.Equal(t, uint32(9), event.RunNumber)
		assert.Len(t, event.EBDigis, 3)
		n++
	}
	assert.Equal(t, 5, n)
}

func TestRun(t *testing.T) {
	out := filepath.Join(t.TempDir(), "run.rd")
	require.NoError(t, run([]string{"-out", out, "-events", "2", "-dccs", "3", "-crystals", "1", "-pns", "0"}))

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.NotZero(t, info.Size())

	err = run([]string{"-out", out, "-dccs", "60"})
	assert.ErrorContains(t, err, "Error parsing DCC list")

	err = run([]string{"-out", filepath.Join(t.TempDir(), "missing", "run.rd"), "-dccs", "3"})
	var openErr *dqm.ErrOpenFile
	assert.ErrorAs(t, err, &openErr)
}
