package ptysession

import "errors"

// Each error kind is a sentinel so callers can use errors.Is. A failed
// Start wraps ErrProcessLaunchFailed and includes the OS error's text;
// Resize wraps the OS error with fmt.Errorf("...: %w"); a failed Write
// returns the OS error as is.
var (
	ErrAlreadyRunning              = errors.New("ptysession: already running")
	ErrPipeCreationFailed          = errors.New("ptysession: pipe creation failed")
	ErrPseudoConsoleCreationFailed = errors.New("ptysession: pseudo-console creation failed")
	ErrProcessLaunchFailed         = errors.New("ptysession: process launch failed")
	ErrInvalidGeometry             = errors.New("ptysession: invalid geometry")
	// ErrWriteTimeout is returned by Write when the child is not reading its
	// stdin and the kernel pipe buffer fills, so the write would otherwise
	// block indefinitely.
	ErrWriteTimeout = errors.New("ptysession: write timed out, child likely hung")
)
