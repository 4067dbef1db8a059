package termsession

import "errors"

// Session-layer error sentinels; ptysession and grid define their own
// sentinels for their failure modes.
var (
	ErrNotRunning          = errors.New("termsession: session is not running")
	ErrAlreadyRunning      = errors.New("termsession: session is already running")
	ErrSerializationFailed = errors.New("termsession: serialization failed")
)
