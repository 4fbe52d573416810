package docker

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"

	"github.com/patinho/quack-board/internal/apperror"
	"github.com/patinho/quack-board/internal/executor"
)

// Runner implements executor.Runner using Docker, with one pre-warmed
// container pool per configured language.
type Runner struct {
	cli    *client.Client
	config Config
	logger *slog.Logger
	pools  map[string]*Pool
}

// New creates a Docker Runner, pulls all configured images and pre-warms
// the per-language pools.
func New(cfg Config, logger *slog.Logger) (*Runner, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	for name, lang := range cfg.Languages {
		logger.Info("ensuring docker image is available",
			slog.String("language", name),
			slog.String("image", lang.Image),
		)
		reader, err := cli.ImagePull(ctx, lang.Image, image.PullOptions{})
		if err != nil {
			return nil, fmt.Errorf("failed to pull image %s: %w", lang.Image, err)
		}
		// Read everything to block until the pull is complete
		io.Copy(io.Discard, reader)
		reader.Close()
	}
	logger.Info("docker images are ready")

	r := &Runner{
		cli:    cli,
		config: cfg,
		logger: logger,
		pools:  make(map[string]*Pool, len(cfg.Languages)),
	}

	for name, lang := range cfg.Languages {
		pool := NewPool(cli, lang, cfg, logger)
		pool.Start()
		r.pools[name] = pool
	}

	return r, nil
}

// Close shuts down the container pools and docker client.
func (r *Runner) Close() error {
	r.logger.Info("shutting down docker container pools")
	for _, pool := range r.pools {
		pool.Stop()
	}
	return r.cli.Close()
}

// Run executes the snippet in a sandboxed container of its language.
func (r *Runner) Run(ctx context.Context, req executor.RunRequest) (*executor.RunResult, error) {
	start := time.Now()

	name := req.Language
	if name == "" {
		name = r.config.Default
	}
	lang, ok := r.config.language(name)
	if !ok {
		return nil, apperror.ValidationFailed("language", fmt.Sprintf("language %q is not runnable", name))
	}

	containerID, err := r.pools[name].GetContainer(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get container from pool: %w", err)
	}

	// Always clean up the container we acquired; the pool replaces it
	defer func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		err := r.cli.ContainerRemove(cleanupCtx, containerID, container.RemoveOptions{
			Force: true,
		})
		if err != nil {
			r.logger.Error("failed to remove container", slog.String("id", containerID), slog.String("error", err.Error()))
		}
	}()

	runCtx, runCancel := context.WithTimeout(ctx, r.config.Timeout)
	defer runCancel()

	// The container already runs `sleep infinity`, so the snippet goes in
	// via docker exec with the code as an inline interpreter argument.
	execConfig := container.ExecOptions{
		AttachStdout: true,
		AttachStderr: true,
		Cmd:          append(append([]string{}, lang.Command...), req.Code),
	}

	execResp, err := r.cli.ContainerExecCreate(runCtx, containerID, execConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create exec: %w", err)
	}

	attachResp, err := r.cli.ContainerExecAttach(runCtx, execResp.ID, container.ExecStartOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to attach to exec: %w", err)
	}
	defer attachResp.Close()

	var stdout, stderr bytes.Buffer

	done := make(chan struct{})
	go func() {
		// stdcopy demultiplexes stdout from stderr
		_, _ = stdcopy.StdCopy(&stdout, &stderr, attachResp.Reader)
		close(done)
	}()

	var finalExitCode int

	select {
	case <-done:
		// Completed normally
		inspectResp, err := r.cli.ContainerExecInspect(ctx, execResp.ID)
		if err == nil {
			finalExitCode = inspectResp.ExitCode
		}
	case <-runCtx.Done():
		// Timeout reached; 124 matches the unix timeout command
		finalExitCode = 124
		stderr.WriteString("\nExecution timed out.\n")
	}

	return &executor.RunResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: finalExitCode,
		Duration: time.Since(start),
	}, nil
}
