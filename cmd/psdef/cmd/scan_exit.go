package cmd

import "fmt"

// scanExit is returned by commands to signal a specific exit code.
// 0 = pipeline completed for all inputs, 1 = at least one input failed,
// 2 = configuration-level failure (no front-end, bad arguments).
type scanExit struct{ code int }

func (e scanExit) Error() string {
	switch e.code {
	case 0:
		return ""
	case 1:
		return "some inputs failed"
	default:
		return fmt.Sprintf("configuration error (exit %d)", e.code)
	}
}

// ExitCode extracts the exit code from a scanExit error.
// Returns -1 if the error is not a scanExit.
func ExitCode(err error) int {
	if se, ok := err.(scanExit); ok {
		return se.code
	}
	return -1
}
