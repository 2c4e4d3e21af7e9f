package dqm

import (
	"errors"
	"fmt"
	"regexp"

	"gonum.org/v1/hdf5"
)

type meTable struct {
	Dataset *hdf5.Dataset
	Rows    int
}

// Writer publishes ME snapshots to an HDF5 file. Every call to Publish
// appends one snapshot of every ME it is given.
type Writer struct {
	File         *hdf5.File
	Filename     string
	SessionID    string
	RunGroup     *hdf5.Group
	DQMGroup     *hdf5.Group
	RunInfoTable *hdf5.Dataset
	MEInfoTable  *hdf5.Dataset
	Snapshot     int
	meTables     map[string]*meTable
	meInfoRows   int
}

func NewWriter(filename string, sessionID string) *Writer {
	writer := &Writer{}
	if configuration.Verbosity > 0 {
		logger.Info(fmt.Sprintf("Creating file: %s", filename), "hdf5writer")
	}
	writer.File = openFile(filename)
	writer.Filename = filename
	writer.SessionID = sessionID
	writer.RunGroup = createGroup(writer.File, "Run")
	writer.DQMGroup = createGroup(writer.File, "DQM")
	writer.RunInfoTable = createTable(writer.RunGroup, "runInfo", RunInfoHDF5{})
	writer.MEInfoTable = createTable(writer.RunGroup, "monitorElements", MEInfoHDF5{})
	writer.meTables = make(map[string]*meTable)
	return writer
}

var tableNamePattern = regexp.MustCompile(`[^A-Za-z0-9]+`)

func tableName(meName string) string {
	return tableNamePattern.ReplaceAllString(meName, "_")
}

func (w *Writer) table(me *MonitorElement) (*meTable, error) {
	name := tableName(me.Name)
	if t, ok := w.meTables[name]; ok {
		return t, nil
	}

	t := &meTable{Dataset: createTable(w.DQMGroup, name, MEBinHDF5{})}
	w.meTables[name] = t

	info := MEInfoHDF5{}
	copyHdf5String(info.name[:], me.Name)
	copyHdf5String(info.kind[:], me.Data.Kind.String())
	copyHdf5String(info.table[:], name)
	if err := writeEntryToTable(w.MEInfoTable, info, w.meInfoRows); err != nil {
		return nil, fmt.Errorf("error writing ME info for %q: %w", me.Name, err)
	}
	w.meInfoRows++
	return t, nil
}

func (w *Writer) Publish(runNumber int, events int, mes []*MonitorElement) error {
	runInfo := RunInfoHDF5{
		run_number: int32(runNumber),
		snapshot:   int32(w.Snapshot),
		events:     int32(events),
	}
	copyHdf5String(runInfo.session[:], w.SessionID)
	if err := writeEntryToTable(w.RunInfoTable, runInfo, w.Snapshot); err != nil {
		return fmt.Errorf("error writing run info: %w", err)
	}

	for _, me := range mes {
		t, err := w.table(me)
		if err != nil {
			return err
		}
		bins := me.Bins()
		rows := make([]MEBinHDF5, len(bins))
		for i, bin := range bins {
			c, _ := me.Content(bin)
			rows[i] = MEBinHDF5{
				snapshot: int32(w.Snapshot),
				dcc:      int32(bin.Dcc),
				ix:       int32(bin.X),
				iy:       int32(bin.Y),
				entries:  c.Entries,
				mean:     me.Mean(bin),
				rms:      me.RMS(bin),
			}
		}
		if err := writeArrayToTable(t.Dataset, &rows, t.Rows); err != nil {
			return fmt.Errorf("error writing ME %q: %w", me.Name, err)
		}
		t.Rows += len(rows)
	}

	if configuration.Verbosity > 0 {
		message := fmt.Sprintf("Published snapshot %d of %d MEs (%d events)", w.Snapshot, len(mes), events)
		logger.Info(message, "hdf5writer")
	}
	w.Snapshot++
	return nil
}

func (w *Writer) Close() error {
	if configuration.Verbosity > 0 {
		logger.Info(fmt.Sprintf("Closing file %s", w.Filename), "hdf5writer")
	}
	var errs []error

	for name, t := range w.meTables {
		if err := t.Dataset.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing ME table %s: %w", name, err))
		}
	}
	if err := w.RunInfoTable.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing run info table: %w", err))
	}
	if err := w.MEInfoTable.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing ME info table: %w", err))
	}
	if err := w.RunGroup.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing run group: %w", err))
	}
	if err := w.DQMGroup.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing DQM group: %w", err))
	}
	if err := w.File.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing file: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
