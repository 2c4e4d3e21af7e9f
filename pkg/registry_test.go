package dqm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTaskByName(t *testing.T) {
	assert.Contains(t, TaskNames(), PedestalTaskName)

	task, err := NewTask(PedestalTaskName, TaskParameters{MGPAGains: []int{12}}, nil)
	require.NoError(t, err)
	assert.Equal(t, PedestalTaskName, task.Name())
	task.BookMEs()
	assert.Len(t, task.MonitorElements(), 2)

	_, err = NewTask(PedestalTaskName, TaskParameters{MGPAGains: []int{7}}, nil)
	var cfgErr *ErrInvalidConfiguration
	assert.ErrorAs(t, err, &cfgErr)

	_, err = NewTask("LaserTask", TaskParameters{}, nil)
	var unknown *ErrUnknownTask
	assert.ErrorAs(t, err, &unknown)
}

func TestRegisterTaskTwicePanics(t *testing.T) {
	assert.Panics(t, func() {
		RegisterTask(PedestalTaskName, nil)
	})
}
