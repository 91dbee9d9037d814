package app

import "time"

// ModelBuilt is published once the constraint system has been assembled.
type ModelBuilt struct {
	RunID       string
	Variables   int
	Constraints int
	Binaries    int
}

// RunFinished is published when a solve run ends, regardless of outcome.
type RunFinished struct {
	RunID     string
	Status    string
	Objective float64
	Nodes     int
	Duration  time.Duration
}
