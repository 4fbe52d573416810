package executor

import (
	"context"
	"time"
)

// RunRequest is a request to execute a question's code snippet.
type RunRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

// RunResult carries the output and status of a snippet run.
type RunResult struct {
	Stdout   string        `json:"stdout"`
	Stderr   string        `json:"stderr"`
	ExitCode int           `json:"exitCode"`
	Duration time.Duration `json:"duration"`
}

// Runner is the core interface for executing snippets in an isolated
// environment.
type Runner interface {
	Run(ctx context.Context, req RunRequest) (*RunResult, error)
}
