package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	dqm "github.com/next-exp/ecal_dqm/pkg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRunFile(t *testing.T, events []dqm.EventType) string {
	t.Helper()
	var buf bytes.Buffer
	for i := range events {
		require.NoError(t, dqm.WriteEvent(&buf, &events[i], dqm.CALIBRATION_EVENT))
	}
	path := filepath.Join(t.TempDir(), "run.rd")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func pedestalEvent(id uint32, pedestalDcc int, adc int) dqm.EventType {
	return pedestalRunEvent(1234, id, pedestalDcc, adc)
}

func pedestalRunEvent(run uint32, id uint32, pedestalDcc int, adc int) dqm.EventType {
	event := dqm.EventType{RunNumber: run, EventID: id, RunType: dqm.UnknownRunTypes()}
	event.RunType[pedestalDcc-1] = int16(dqm.PEDESTAL_STD)
	event.RunType[pedestalDcc] = int16(dqm.PHYSICS_GLOBAL)
	for _, dcc := range []int{pedestalDcc, pedestalDcc + 1} {
		digi := dqm.Digi{ID: dqm.NewChannelID(dqm.SubdetEB, dcc, 0)}
		for s := range digi.Samples {
			digi.Samples[s] = dqm.NewMGPASample(adc, 2)
		}
		event.EBDigis = append(event.EBDigis, digi)
	}
	return event
}

func setupMonitor(t *testing.T, config dqm.Configuration) *Monitor {
	t.Helper()
	return setupMonitorWithGeometry(t, config, dqm.StaticGeometry{})
}

func setupMonitorWithGeometry(t *testing.T, config dqm.Configuration, geometry dqm.Geometry) *Monitor {
	t.Helper()
	configuration = config
	dqm.SetConfiguration(config)
	VerbosityLevel = config.Verbosity
	DiscardErrors = config.Discard

	task, err := dqm.NewTask(config.Task, config.TaskParameters(), geometry)
	require.NoError(t, err)
	task.BookMEs()
	return &Monitor{Task: task, Publisher: dqm.NewMetricsPublisher()}
}

func TestProcessFile(t *testing.T) {
	config := dqm.DefaultConfiguration()
	config.NumWorkers = 3
	monitor := setupMonitor(t, config)

	events := []dqm.EventType{
		pedestalEvent(0, 5, 100),
		pedestalEvent(1, 5, 110),
		pedestalEvent(2, 5, 120),
	}
	noPedestal := dqm.EventType{RunNumber: 1234, EventID: 3, RunType: dqm.UnknownRunTypes()}
	events = append(events, noPedestal)

	require.NoError(t, monitor.processFile(context.Background(), writeRunFile(t, events)))
	assert.Equal(t, 4, monitor.Events)
	assert.Equal(t, 3, monitor.Accepted)
	assert.Equal(t, 1234, monitor.RunNumber)

	var pedestal *dqm.MonitorElement
	for _, me := range monitor.Task.MonitorElements() {
		if me.Name == "Ecal/PedestalTask/Gain6/Pedestal G6" {
			pedestal = me
		}
	}
	require.NotNil(t, pedestal)
	require.Equal(t, []dqm.Bin{{Dcc: 5}}, pedestal.Bins())
	assert.InDelta(t, 110.0, pedestal.Mean(dqm.Bin{Dcc: 5}), 1e-9)
	assert.Equal(t, 3.0, pedestal.Entries(dqm.Bin{Dcc: 5}))

	rec := httptest.NewRecorder()
	monitor.Publisher.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `me="Ecal/PedestalTask/Gain6/Pedestal G6"`)
}

func TestProcessFileSkipAndMaxEvents(t *testing.T) {
	config := dqm.DefaultConfiguration()
	config.Skip = 1
	config.MaxEvents = 3
	monitor := setupMonitor(t, config)

	events := []dqm.EventType{
		pedestalEvent(0, 5, 100),
		pedestalEvent(1, 5, 200),
		pedestalEvent(2, 5, 300),
		pedestalEvent(3, 5, 400),
	}
	require.NoError(t, monitor.processFile(context.Background(), writeRunFile(t, events)))
	assert.Equal(t, 2, monitor.Events)
}

func TestProcessFileMissing(t *testing.T) {
	monitor := setupMonitor(t, dqm.DefaultConfiguration())
	err := monitor.processFile(context.Background(), filepath.Join(t.TempDir(), "missing.rd"))
	var openErr *dqm.ErrOpenFile
	assert.ErrorAs(t, err, &openErr)
}

func TestProcessFileCancelled(t *testing.T) {
	monitor := setupMonitor(t, dqm.DefaultConfiguration())
	monitor.Publisher = dqm.NewMetricsPublisher()

	events := make([]dqm.EventType, 50)
	for i := range events {
		events[i] = pedestalEvent(uint32(i), 5, 100)
	}
	path := writeRunFile(t, events)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, monitor.processFile(ctx, path))
	assert.Zero(t, monitor.Events)
	assert.Equal(t, 1234, monitor.RunNumber)

	require.NoError(t, monitor.processFile(context.Background(), path))
	assert.Equal(t, 50, monitor.Events)
}

func TestProcessFileEmpty(t *testing.T) {
	monitor := setupMonitor(t, dqm.DefaultConfiguration())
	path := filepath.Join(t.TempDir(), "empty.rd")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	require.NoError(t, monitor.processFile(context.Background(), path))
	assert.Zero(t, monitor.Events)
}

func TestProcessFileReloadsChannelMapOnNewRun(t *testing.T) {
	id := dqm.NewChannelID(dqm.SubdetEB, 5, 0)
	var loads []int
	geometry := dqm.NewRunGeometry(func(runNumber int) (*dqm.DBGeometry, error) {
		loads = append(loads, runNumber)
		return &dqm.DBGeometry{RunNumber: runNumber, Channels: map[dqm.ChannelID]dqm.ChannelLocation{
			id: {Subdet: dqm.SubdetEB, Dcc: 5, IX: runNumber % 100},
		}}, nil
	})
	monitor := setupMonitorWithGeometry(t, dqm.DefaultConfiguration(), geometry)
	monitor.Geometry = geometry

	first := writeRunFile(t, []dqm.EventType{pedestalRunEvent(1201, 0, 5, 100), pedestalRunEvent(1201, 1, 5, 100)})
	second := writeRunFile(t, []dqm.EventType{pedestalRunEvent(1202, 0, 5, 130)})

	require.NoError(t, monitor.processFile(context.Background(), first))
	require.NoError(t, monitor.processFile(context.Background(), first))
	assert.Equal(t, 4, monitor.Events)
	assert.Equal(t, []int{1201}, loads)

	require.NoError(t, monitor.processFile(context.Background(), second))
	assert.Equal(t, []int{1201, 1202}, loads)
	assert.Equal(t, 1202, monitor.RunNumber)
	assert.Equal(t, 1, monitor.Events)

	var pedestal *dqm.MonitorElement
	for _, me := range monitor.Task.MonitorElements() {
		if me.Name == "Ecal/PedestalTask/Gain6/Pedestal G6" {
			pedestal = me
		}
	}
	require.NotNil(t, pedestal)
	require.Equal(t, []dqm.Bin{{Dcc: 5, X: 2}}, pedestal.Bins())
	assert.InDelta(t, 130.0, pedestal.Mean(dqm.Bin{Dcc: 5, X: 2}), 1e-9)
}
