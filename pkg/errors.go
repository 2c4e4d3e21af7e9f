package dqm

import "fmt"

// ErrInvalidConfiguration is returned when a task parameter holds a value
// outside its legal set.
type ErrInvalidConfiguration struct {
	Parameter string
	Value     int
}

func (e *ErrInvalidConfiguration) Error() string {
	return fmt.Sprintf("invalid configuration: %s %d", e.Parameter, e.Value)
}

// ErrUnknownTask is returned when no task is registered under the requested name.
type ErrUnknownTask struct {
	Name string
}

func (e *ErrUnknownTask) Error() string {
	return fmt.Sprintf("unknown task %q", e.Name)
}

// ErrShortEvent is returned when an event payload ends before a block is complete.
type ErrShortEvent struct {
	Block    string
	Needed   int
	Received int
}

func (e *ErrShortEvent) Error() string {
	return fmt.Sprintf("short event reading %s: need %d bytes, have %d", e.Block, e.Needed, e.Received)
}

// ErrBadMagic is returned when an event header does not start with the
// DATE magic number, which means the stream is corrupt or misaligned.
type ErrBadMagic struct {
	Magic uint32
}

func (e *ErrBadMagic) Error() string {
	return fmt.Sprintf("bad event magic 0x%08x", e.Magic)
}

// ErrOpenFile represents an error when opening a file.
type ErrOpenFile struct {
	Filename string
	Err      error
}

func (e *ErrOpenFile) Error() string {
	return fmt.Sprintf("error opening file %q: %v", e.Filename, e.Err)
}

func (e *ErrOpenFile) Unwrap() error {
	return e.Err
}

// ErrCreateGroup represents an error when creating a group.
type ErrCreateGroup struct {
	GroupName string
	Err       error
}

func (e *ErrCreateGroup) Error() string {
	return fmt.Sprintf("error creating group %q: %v", e.GroupName, e.Err)
}

// ErrCreateTable represents an error when creating a table.
type ErrCreateTable struct {
	TableName string
	Err       error
}

func (e *ErrCreateTable) Error() string {
	return fmt.Sprintf("error creating table %q: %v", e.TableName, e.Err)
}
