package docker

import (
	"time"
)

// Language describes how to run snippets of one language: which image to
// use and how to invoke the interpreter with inline code.
type Language struct {
	// Image is the Docker image to use for execution.
	Image string
	// Command is the interpreter invocation; the snippet is appended as the
	// final argument.
	Command []string
}

// Config holds the configuration for Docker execution.
type Config struct {
	// Languages maps a language name to its sandbox setup.
	Languages map[string]Language
	// Default is the language used when a snippet doesn't name one.
	Default string
	// MemoryLimit is the maximum amount of memory a container can use (in bytes).
	MemoryLimit int64
	// CPULimit is the number of CPUs a container can use.
	CPULimit float64
	// Timeout is the maximum amount of time a run can take.
	Timeout time.Duration
	// PoolSize is the number of pre-warmed containers to maintain per language.
	PoolSize int
}

// DefaultConfig provides sensible defaults for the snippet sandboxes.
func DefaultConfig() Config {
	return Config{
		Languages: map[string]Language{
			"javascript": {
				Image:   "node:22-alpine",
				Command: []string{"node", "-e"},
			},
			"python": {
				Image:   "python:3.12-alpine",
				Command: []string{"python", "-c"},
			},
			"bash": {
				Image:   "alpine:3.20",
				Command: []string{"sh", "-c"},
			},
		},
		Default: "javascript",
		// 128 MB memory limit
		MemoryLimit: 128 * 1024 * 1024,
		// 0.5 CPU shares
		CPULimit: 0.5,
		// 5 second default timeout
		Timeout:  5 * time.Second,
		PoolSize: 2,
	}
}

// language resolves a name to its setup, falling back to the default.
func (c Config) language(name string) (Language, bool) {
	if name == "" {
		name = c.Default
	}
	lang, ok := c.Languages[name]
	return lang, ok
}
