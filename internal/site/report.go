package site

import (
	"fmt"
	"time"

	"git.home.luguber.info/inful/sergey/internal/metrics"
)

// FileError is a file that could not be compiled or copied.
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string { return fmt.Sprintf("%s: %v", e.Path, e.Err) }

func (e FileError) Unwrap() error { return e.Err }

// Report summarizes one build.
type Report struct {
	BuildID  string
	Compiled int
	Copied   int
	// Failed is sorted by path.
	Failed []FileError
	// Partials counts the distinct partial files loaded.
	Partials        int
	MissingPartials int64
	Duration        time.Duration
}

// Outcome classifies the build for metrics.
func (r *Report) Outcome() metrics.BuildOutcome {
	if len(r.Failed) > 0 {
		return metrics.OutcomePartial
	}
	return metrics.OutcomeSuccess
}
