package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	dqm "github.com/next-exp/ecal_dqm/pkg"
)

// Monitor drives one task over decoded events and publishes its MEs.
// Only the goroutine calling processFile touches the task. Geometry is set
// when the task reads its channel map from the database.
type Monitor struct {
	Task      dqm.Task
	Writer    *dqm.Writer
	Publisher *dqm.MetricsPublisher
	Geometry  *dqm.RunGeometry
	RunNumber int
	Events    int
	Accepted  int
}

// beginRun makes runNumber current. When the run changes the MEs are reset
// and the channel map is reloaded.
func (m *Monitor) beginRun(runNumber int) error {
	if m.RunNumber != 0 && m.RunNumber != runNumber {
		logger.Info(fmt.Sprintf("New run %d, resetting MEs of run %d", runNumber, m.RunNumber), "monitor")
		m.Task.Reset()
		m.Events = 0
		m.Accepted = 0
	}
	m.RunNumber = runNumber
	if m.Geometry != nil {
		return m.Geometry.SetRun(runNumber)
	}
	return nil
}

// processFile analyzes every event of the file. When ctx is cancelled it
// stops reading, analyzes the events already decoded and publishes them.
func (m *Monitor) processFile(ctx context.Context, filename string) error {
	runNumber := configuration.RunNumber
	if runNumber == 0 {
		var err error
		runNumber, err = peekRunNumber(filename)
		if errors.Is(err, io.EOF) {
			logger.Info(fmt.Sprintf("File %s has no events", filename), "monitor")
			return nil
		}
		if err != nil {
			return err
		}
	}
	if err := m.beginRun(runNumber); err != nil {
		return err
	}

	file, err := os.Open(filename)
	if err != nil {
		return &dqm.ErrOpenFile{Filename: filename, Err: err}
	}
	defer file.Close()

	if VerbosityLevel > 0 {
		logger.Info(fmt.Sprintf("Processing file %s", filename), "monitor")
	}
	start := time.Now()
	events := 0
	for event := range decodeFile(ctx, file, configuration.NumWorkers) {
		events++
		if event.Error && DiscardErrors {
			logger.Error(fmt.Sprintf("discarding event %d", event.EventID))
			continue
		}
		if err := m.analyze(&event); err != nil {
			logger.Error(err.Error())
		}
	}

	if ctx.Err() != nil {
		logger.Info(fmt.Sprintf("Processing of %s interrupted after %d events", filename, events), "monitor")
	}
	if VerbosityLevel > 0 {
		message := fmt.Sprintf("File %s: %d events in %d ms", filename, events, time.Since(start).Milliseconds())
		logger.Info(message, "monitor")
	}
	return m.publish()
}

func (m *Monitor) analyze(event *dqm.EventType) error {
	m.Events++
	if !m.Task.Analyze(event) {
		return nil
	}
	m.Accepted++
	if configuration.PublishEvery > 0 && m.Accepted%configuration.PublishEvery == 0 {
		return m.publish()
	}
	return nil
}

func (m *Monitor) publish() error {
	mes := m.Task.MonitorElements()
	if m.Writer != nil {
		if err := m.Writer.Publish(m.RunNumber, m.Events, mes); err != nil {
			return fmt.Errorf("error publishing to %s: %w", m.Writer.Filename, err)
		}
	}
	if m.Publisher != nil {
		if err := m.Publisher.Update(mes); err != nil {
			return fmt.Errorf("error updating metrics: %w", err)
		}
	}
	return nil
}
