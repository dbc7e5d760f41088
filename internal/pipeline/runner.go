package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"mangareel/internal/config"
	"mangareel/internal/history"
	"mangareel/internal/logging"
	"mangareel/internal/services"
)

// LockName is the lock file created in the work directory.
const LockName = ".mangareel.lock"

// ErrBusy is returned when another process holds the work directory lock.
var ErrBusy = errors.New("work directory in use by another mangareel run")

// Runner executes stages under the work directory lock.
type Runner struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *history.Store
	lockPath string
	newID    func() string
}

// NewRunner constructs a Runner. store may be nil to disable run history.
func NewRunner(cfg *config.Config, logger *slog.Logger, store *history.Store) *Runner {
	return &Runner{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "pipeline"),
		store:    store,
		lockPath: filepath.Join(cfg.Paths.WorkDir, LockName),
		newID:    uuid.NewString,
	}
}

// LockPath returns the lock file location.
func (r *Runner) LockPath() string {
	return r.lockPath
}

// RunStage runs a single stage under a fresh run id.
func (r *Runner) RunStage(ctx context.Context, stage Stage) error {
	return r.RunAll(ctx, stage)
}

// RunAll runs stages in order under one lock and one run id, stopping at the
// first failure.
func (r *Runner) RunAll(ctx context.Context, stages ...Stage) error {
	if r == nil || r.cfg == nil {
		return services.Wrap(services.ErrConfiguration, "pipeline", "init", "runner not configured", nil)
	}
	unlock, err := r.acquire()
	if err != nil {
		return err
	}
	defer unlock()

	runID := r.newID()
	ctx = services.WithRunID(ctx, runID)
	for _, stage := range stages {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.execute(ctx, stage); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) acquire() (func(), error) {
	if err := os.MkdirAll(filepath.Dir(r.lockPath), 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "lock", r.lockPath, err)
	}
	lock := flock.New(r.lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBusy, r.lockPath)
	}
	return func() {
		if err := lock.Unlock(); err != nil {
			r.logger.Warn("failed to release work directory lock", logging.String("lock", r.lockPath), logging.Error(err))
		}
	}, nil
}

func (r *Runner) execute(ctx context.Context, stage Stage) error {
	ctx = services.WithStage(ctx, stage.Name)
	logger := logging.WithContext(ctx, r.logger)
	runID, _ := services.RunIDFromContext(ctx)

	recordID := r.begin(ctx, logger, runID, stage.Name)
	started := time.Now()
	logger.Info("stage started", logging.String(logging.FieldEventType, "stage_start"))

	output, err := stage.Execute(ctx)
	if err != nil {
		outcome := services.FailureOutcome(err)
		r.finish(ctx, logger, recordID, history.Status(outcome), "", err.Error())
		logger.Error("stage failed",
			logging.String(logging.FieldEventType, "stage_failed"),
			logging.String("outcome", string(outcome)),
			logging.Duration("elapsed", time.Since(started)),
			logging.Error(err),
		)
		return err
	}

	r.finish(ctx, logger, recordID, history.StatusSucceeded, output, "")
	logger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.String("output", output),
		logging.Duration("elapsed", time.Since(started)),
	)
	return nil
}

// History failures never fail the stage itself.
func (r *Runner) begin(ctx context.Context, logger *slog.Logger, runID, stage string) int64 {
	if r.store == nil {
		return 0
	}
	id, err := r.store.Begin(context.WithoutCancel(ctx), runID, stage)
	if err != nil {
		logging.WarnWithContext(logger, "failed to record stage start", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run will be missing from history"),
		)
		return 0
	}
	return id
}

func (r *Runner) finish(ctx context.Context, logger *slog.Logger, id int64, status history.Status, output, detail string) {
	if r.store == nil || id == 0 {
		return
	}
	if err := r.store.Finish(context.WithoutCancel(ctx), id, status, output, detail); err != nil {
		logging.WarnWithContext(logger, "failed to record stage result", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "history shows the stage as running"),
		)
	}
}
