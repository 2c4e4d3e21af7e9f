package dqm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateGains(t *testing.T) {
	tests := []struct {
		name    string
		mgpa    []int
		pn      []int
		wantErr string
	}{
		{name: "all gains", mgpa: []int{1, 6, 12}, pn: []int{1, 16}},
		{name: "gain 1 only", mgpa: []int{1}, pn: []int{1}},
		{name: "gain 6 only", mgpa: []int{6}, pn: []int{16}},
		{name: "gain 12 only", mgpa: []int{12}, pn: nil},
		{name: "empty", mgpa: nil, pn: nil},
		{name: "duplicates", mgpa: []int{6, 6}, pn: []int{16, 16}},
		{name: "bad MGPA gain", mgpa: []int{1, 3}, pn: []int{1}, wantErr: "MGPA gain 3"},
		{name: "PN gain on MGPA list", mgpa: []int{16}, pn: []int{1}, wantErr: "MGPA gain 16"},
		{name: "bad PN gain", mgpa: []int{12}, pn: []int{6}, wantErr: "PN diode gain 6"},
		{name: "zero PN gain", mgpa: []int{12}, pn: []int{0}, wantErr: "PN diode gain 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateGains(tt.mgpa, tt.pn)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			var cfgErr *ErrInvalidConfiguration
			require.ErrorAs(t, err, &cfgErr)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewPedestalTaskRejectsIllegalGains(t *testing.T) {
	for _, gain := range []int{-1, 0, 2, 5, 7, 11, 13, 16} {
		_, err := NewPedestalTask(TaskParameters{MGPAGains: []int{gain}}, nil)
		assert.Error(t, err, "MGPA gain %d", gain)
	}
	for _, gain := range []int{1, 6, 12} {
		_, err := NewPedestalTask(TaskParameters{MGPAGains: []int{gain}}, nil)
		assert.NoError(t, err, "MGPA gain %d", gain)
	}
	for _, gain := range []int{0, 6, 12, 15} {
		_, err := NewPedestalTask(TaskParameters{MGPAGainsPN: []int{gain}}, nil)
		assert.Error(t, err, "PN gain %d", gain)
	}
}

func TestGainIDMapping(t *testing.T) {
	offset, gain, ok := mgpaGainFromID(1)
	assert.True(t, ok)
	assert.Equal(t, 2, offset)
	assert.Equal(t, 12, gain)

	offset, gain, ok = mgpaGainFromID(2)
	assert.True(t, ok)
	assert.Equal(t, 1, offset)
	assert.Equal(t, 6, gain)

	offset, gain, ok = mgpaGainFromID(3)
	assert.True(t, ok)
	assert.Equal(t, 0, offset)
	assert.Equal(t, 1, gain)

	_, _, ok = mgpaGainFromID(0)
	assert.False(t, ok)

	offset, gain, ok = pnGainFromID(0)
	assert.True(t, ok)
	assert.Equal(t, 0, offset)
	assert.Equal(t, 1, gain)

	offset, gain, ok = pnGainFromID(1)
	assert.True(t, ok)
	assert.Equal(t, 1, offset)
	assert.Equal(t, 16, gain)

	_, _, ok = pnGainFromID(2)
	assert.False(t, ok)

	// Offsets derived from gain ids agree with the ones used for booking.
	for _, g := range []int{1, 6, 12} {
		for id := 1; id <= 3; id++ {
			if off, gain, _ := mgpaGainFromID(id); gain == g {
				assert.Equal(t, mgpaGainOffset(g), off)
			}
		}
	}
}
