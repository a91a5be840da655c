// Package failure defines the error kinds shared by the conversion packages.
// Callers match them with errors.Is; each package wraps them with context.
package failure

import (
	"errors"
	"fmt"
)

var (
	// ErrFileAccess: an input file or the input directory could not be read.
	ErrFileAccess = errors.New("file access")
	// ErrParse: a vertex or face record held a malformed numeric token.
	ErrParse = errors.New("parse")
	// ErrNoInput: discovery found no frame files.
	ErrNoInput = errors.New("no input frames")
	// ErrEmptyGeometry: a frame has zero vertices or zero faces.
	ErrEmptyGeometry = errors.New("empty geometry")
	// ErrIndexRange: a face references a vertex outside the frame.
	ErrIndexRange = errors.New("face index out of range")
	// ErrContainerCreate: the output container could not be created.
	ErrContainerCreate = errors.New("container create")
	// ErrInvalidState: a writer operation was issued outside the Open state.
	ErrInvalidState = errors.New("invalid writer state")
	// ErrCorrupt: a container failed structural or checksum validation.
	ErrCorrupt = errors.New("corrupt container")
)

// FrameError ties a failure to the frame that caused it.
type FrameError struct {
	Ordinal int    // 0-based position in the frame sequence
	File    string // source filename
	Err     error
}

// Error numbers frames from 1, matching the CLI progress output.
func (e *FrameError) Error() string {
	return fmt.Sprintf("frame %d (%s): %v", e.Ordinal+1, e.File, e.Err)
}

func (e *FrameError) Unwrap() error {
	return e.Err
}
