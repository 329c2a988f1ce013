package packaging

import (
	"fmt"

	"github.com/cochaviz/slnbuild/internal/build"
)

// An Error reports a packaging generator that failed or could not be started.
type Error struct {
	Script   string
	ExitCode int
	Err      error
}

// Error returns the error message.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("packaging failed: %s: %v", e.Script, e.Err)
	}
	return fmt.Sprintf("packaging failed: %s exited with code %d", e.Script, e.ExitCode)
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{build.ErrPackaging, e.Err}
	}
	return []error{build.ErrPackaging}
}
