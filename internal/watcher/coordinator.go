package watcher

import (
	"context"
	"io"
	"log/slog"
)

// WatchCoordinator coordinates GitWatcher and FileWatcher, routing events to a Generator.
type WatchCoordinator struct {
	git       GitWatcher
	files     FileWatcher
	generator Generator
	logger    *slog.Logger
	ctx       context.Context
}

// NewWatchCoordinator creates a new watch coordinator. git may be nil when
// the project is not a git repository.
func NewWatchCoordinator(
	git GitWatcher,
	files FileWatcher,
	generator Generator,
	logger *slog.Logger,
) *WatchCoordinator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &WatchCoordinator{
		git:       git,
		files:     files,
		generator: generator,
		logger:    logger,
	}
}

// Start begins coordinating watchers and routing events to the generator.
// Blocks until context is cancelled.
func (c *WatchCoordinator) Start(ctx context.Context) error {
	c.ctx = ctx

	if c.git != nil {
		if err := c.git.Start(ctx, c.handleHeadChange); err != nil {
			c.cleanup()
			return err
		}
	}

	if err := c.files.Start(ctx, c.handleFileChange); err != nil {
		c.cleanup()
		return err
	}

	<-ctx.Done()
	c.cleanup()
	return ctx.Err()
}

// cleanup stops both watchers.
func (c *WatchCoordinator) cleanup() {
	if c.git != nil {
		if err := c.git.Stop(); err != nil {
			c.logger.Warn("git watcher stop failed", "error", err)
		}
	}

	if err := c.files.Stop(); err != nil {
		c.logger.Warn("file watcher stop failed", "error", err)
	}
}

// handleHeadChange regenerates after a checkout or commit. Source links may
// embed the commit, so the whole output is rebuilt. File events seen during
// the rebuild are delivered once it finishes.
func (c *WatchCoordinator) handleHeadChange(old, head Head) {
	c.logger.Info("HEAD changed", "from", old.String(), "to", head.String())

	c.files.Pause()
	defer c.files.Resume()

	if err := c.generator.Generate(c.context(), nil); err != nil {
		c.logger.Error("regeneration failed", "error", err)
	}
}

// handleFileChange processes file change events from the file watcher.
func (c *WatchCoordinator) handleFileChange(files []string) {
	if len(files) == 0 {
		return
	}

	c.logger.Info("files changed", "count", len(files))

	if err := c.generator.Generate(c.context(), files); err != nil {
		c.logger.Error("regeneration failed", "error", err)
	}
}

func (c *WatchCoordinator) context() context.Context {
	if c.ctx == nil {
		return context.Background()
	}
	return c.ctx
}
