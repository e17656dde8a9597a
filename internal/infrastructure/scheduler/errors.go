package scheduler

import "errors"

var (
	// ErrTriggerNotRunning is returned when a manual run is requested from a stopped trigger
	ErrTriggerNotRunning = errors.New("reconcile trigger is not running")

	// ErrTriggeredTooSoon is returned when a run is requested within the minimum spacing of the previous one
	ErrTriggeredTooSoon = errors.New("reconciliation was started too recently")

	// ErrInvalidConfig is returned when configuration is invalid
	ErrInvalidConfig = errors.New("invalid scheduler configuration")
)
