package main

import (
	"fmt"
	"io"
	"os"

	dqm "github.com/next-exp/ecal_dqm/pkg"
)

type FileReader struct {
	File     io.Reader
	EvtCount int
}

func NewFileReader(file io.Reader) *FileReader {
	return &FileReader{File: file, EvtCount: -1}
}

// getNextEvent returns the next valid event, applying skip and max_events.
// It returns io.EOF at the end of the file or once max_events is reached.
func (f *FileReader) getNextEvent() (dqm.EventHeaderStruct, []byte, error) {
	for {
		header, eventData, err := dqm.ReadEventFromFile(f.File)
		if err != nil {
			return header, nil, err
		}
		if !dqm.ValidEvent(header) {
			if VerbosityLevel > 1 {
				message := fmt.Sprintf("Skipping event %d of type %d", dqm.EventIdGetNbInRun(header.EventId), header.EventType)
				logger.Info(message, "fileReader")
			}
			continue
		}
		f.EvtCount++
		if f.EvtCount >= configuration.MaxEvents {
			if VerbosityLevel > 0 {
				logger.Info("Max events reached", "fileReader")
			}
			return header, nil, io.EOF
		}
		if f.EvtCount < configuration.Skip {
			if VerbosityLevel > 1 {
				message := fmt.Sprintf("Skipping event %d with ID %d", f.EvtCount, dqm.EventIdGetNbInRun(header.EventId))
				logger.Info(message, "fileReader")
			}
			continue
		}
		if VerbosityLevel > 1 {
			message := fmt.Sprintf("Reading event %d with ID %d", f.EvtCount, dqm.EventIdGetNbInRun(header.EventId))
			logger.Info(message, "fileReader")
		}
		return header, eventData, nil
	}
}

// peekRunNumber returns the run number of the first valid event in the file.
func peekRunNumber(filename string) (int, error) {
	file, err := os.Open(filename)
	if err != nil {
		return 0, &dqm.ErrOpenFile{Filename: filename, Err: err}
	}
	defer file.Close()

	for {
		header, _, err := dqm.ReadEventFromFile(file)
		if err != nil {
			return 0, fmt.Errorf("error reading run number from %s: %w", filename, err)
		}
		if dqm.ValidEvent(header) {
			return int(header.EventRunNb), nil
		}
	}
}
