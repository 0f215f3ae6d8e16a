package pipeline

import "time"

// ProgressReporter provides callbacks for reporting run progress.
// Implementations can display progress bars, log messages, or remain silent.
type ProgressReporter interface {
	// OnReadStart is called before a reader pass ("source" or "macros").
	OnReadStart(pass string)

	// OnFileRead is called after each source file is read.
	OnFileRead(path string)

	// OnReadComplete is called when a reader pass finishes.
	OnReadComplete(pass string, files int)

	// OnComplete is called when the run completes successfully.
	OnComplete(stats *RunStats)
}

// RunStats summarizes one run.
type RunStats struct {
	Namespaces int
	Symbols    int
	Documents  int
	Writer     string
	Duration   time.Duration
}

// NoOpProgressReporter is a progress reporter that does nothing.
// Used when progress reporting is disabled (e.g., --quiet flag).
type NoOpProgressReporter struct{}

func (n *NoOpProgressReporter) OnReadStart(pass string)               {}
func (n *NoOpProgressReporter) OnFileRead(path string)                {}
func (n *NoOpProgressReporter) OnReadComplete(pass string, files int) {}
func (n *NoOpProgressReporter) OnComplete(stats *RunStats)            {}
