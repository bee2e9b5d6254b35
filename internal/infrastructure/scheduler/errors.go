package scheduler

import "errors"

// Sentinel errors for job submission and lookup. Callers match with
// errors.Is; the HTTP layer maps them to 4xx responses.
var (
	ErrSchedulerNotRunning = errors.New("scheduler is not running")
	ErrJobQueueFull        = errors.New("job queue is full")
	ErrInvalidExportType   = errors.New("invalid export type")
	ErrJobNotFound         = errors.New("job not found")
	ErrInvalidConfig       = errors.New("invalid scheduler configuration")
)
