package runner

import "time"

// Result describes a single invocation. It is returned for every call to
// Run, including failed ones.
type Result struct {
	RunID    string        // unique identifier for this run
	Command  string        // argv[0] as given
	Args     []string      // argv[1:]
	Dir      string        // working directory; empty when inherited
	ExitCode int           // process exit code; -1 if the process never ran or was signaled
	Signal   string        // terminating signal name, if any
	Started  time.Time     // when the launch was attempted
	Duration time.Duration // wall time until the child was reaped
}
