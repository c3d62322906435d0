package metrics

import "time"

// ResultLabel is the outcome of one file.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultFailed  ResultLabel = "failed"
)

// FileKind tells compiled HTML files from copied assets.
type FileKind string

const (
	FileCompiled FileKind = "compiled"
	FileCopied   FileKind = "copied"
)

// BuildOutcome is the final status of a run.
type BuildOutcome string

const (
	OutcomeSuccess BuildOutcome = "success"
	// OutcomePartial means the run finished with at least one failed file.
	OutcomePartial BuildOutcome = "partial"
	OutcomeFailed  BuildOutcome = "failed"
)

// Recorder receives build observations.
type Recorder interface {
	ObserveBuildDuration(d time.Duration)
	IncBuildOutcome(outcome BuildOutcome)
	ObserveFileDuration(kind FileKind, d time.Duration)
	IncFileResult(kind FileKind, result ResultLabel)
	SetPartials(n int)
	AddMissingPartials(n int64)
}

// NoopRecorder discards everything.
type NoopRecorder struct{}

func (NoopRecorder) ObserveBuildDuration(time.Duration)            {}
func (NoopRecorder) IncBuildOutcome(BuildOutcome)                  {}
func (NoopRecorder) ObserveFileDuration(FileKind, time.Duration)   {}
func (NoopRecorder) IncFileResult(FileKind, ResultLabel)           {}
func (NoopRecorder) SetPartials(int)                               {}
func (NoopRecorder) AddMissingPartials(int64)                      {}
