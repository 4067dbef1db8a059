package ptysession

import (
	"errors"
	"io"
	"os"
	"syscall"
)

// isCleanReadEOF reports whether err from a PTY master read means "the
// child went away", as opposed to a genuine I/O failure worth surfacing
// through OnError. On Linux/macOS a closed PTY master-side read after the
// slave has no more writers surfaces as io.EOF or EIO (syscall.EIO, wrapped
// by *os.PathError); both are normal end-of-session, not errors.
func isCleanReadEOF(err error) bool {
	if errors.Is(err, io.EOF) {
		return true
	}
	if errors.Is(err, os.ErrClosed) {
		return true
	}
	if errors.Is(err, syscall.EIO) {
		return true
	}
	return false
}
