package food

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/redmonkez12/wasteless-api/internal/logging"
	"github.com/redmonkez12/wasteless-api/internal/metrics"
)

// Sweeper deletes listings whose expiry is before a cutoff and returns the
// photo keys of the deleted rows.
type Sweeper interface {
	DeleteExpired(ctx context.Context, before time.Time) ([]string, error)
}

// BlobDeleter removes stored photos.
type BlobDeleter interface {
	Delete(ctx context.Context, key string) error
}

// Reaper periodically removes expired listings and their photos. A failed
// sweep is logged and the next scheduled tick is the only retry. Photo
// deletion is best effort: a blob that fails to delete is logged and left behind.
type Reaper struct {
	store   Sweeper
	blobs   BlobDeleter
	logger  *logging.Logger
	cron    *cron.Cron
	timeout time.Duration
	now     func() time.Time
}

// NewReaper builds a reaper. blobs may be nil, in which case photos of
// reaped listings stay in object storage.
func NewReaper(store Sweeper, blobs BlobDeleter, logger *logging.Logger) *Reaper {
	return &Reaper{
		store:   store,
		blobs:   blobs,
		logger:  logger,
		timeout: time.Minute,
		now:     time.Now,
	}
}

// Sweep deletes every listing whose expiry is strictly before now and reports
// how many rows were removed.
func (r *Reaper) Sweep(ctx context.Context) (int64, error) {
	cutoff := r.now().UTC()

	keys, err := r.store.DeleteExpired(ctx, cutoff)
	deleted := int64(len(keys))
	metrics.RecordReaperRun(deleted, err)
	if err != nil {
		r.logger.Error("expiry sweep failed", "cutoff", cutoff, "error", err.Error())
		return 0, err
	}

	orphaned := r.deletePhotos(ctx, keys)

	r.logger.Info("expiry sweep finished", "cutoff", cutoff, "deleted", deleted, "orphaned_photos", orphaned)
	return deleted, nil
}

func (r *Reaper) deletePhotos(ctx context.Context, keys []string) int {
	if r.blobs == nil {
		return 0
	}

	var failed int
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := r.blobs.Delete(ctx, key); err != nil {
			failed++
			r.logger.Warn("failed to delete expired listing photo", "key", key, "error", err.Error())
		}
	}
	return failed
}

// Start schedules Sweep with a cron spec such as "@every 24h". Overlapping
// runs are skipped.
func (r *Reaper) Start(spec string) error {
	c := cron.New(cron.WithChain(
		cron.Recover(cron.DefaultLogger),
		cron.SkipIfStillRunning(cron.DefaultLogger),
	))

	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		_, _ = r.Sweep(ctx)
	})
	if err != nil {
		return fmt.Errorf("invalid reaper schedule %q: %w", spec, err)
	}

	r.cron = c
	c.Start()
	r.logger.Info("expiry reaper started", "schedule", spec)
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish or ctx to expire.
func (r *Reaper) Stop(ctx context.Context) {
	if r.cron == nil {
		return
	}

	select {
	case <-r.cron.Stop().Done():
	case <-ctx.Done():
		r.logger.Warn("expiry reaper did not stop in time")
	}
}
