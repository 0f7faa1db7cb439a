package exports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/JayKakadiya/ui-plugin-samples/pkg/common"
	"github.com/JayKakadiya/ui-plugin-samples/pkg/leaselock"
	"github.com/JayKakadiya/ui-plugin-samples/pkg/logger"
)

type GraphDeriver interface {
	Derive(ctx context.Context, focus common.Focus) (*common.Graph, error)
}

type Uploader interface {
	PutJSON(ctx context.Context, key string, body []byte) error
}

type Locker interface {
	WithLease(ctx context.Context, key string, opts leaselock.Options, fn func(ctx context.Context) error) error
}

// Worker processes export messages.
type Worker struct {
	store    JobStore
	deriver  GraphDeriver
	uploader Uploader
	locker   Locker
	lease    leaselock.Options
	now      func() time.Time
}

type NewWorkerParams struct {
	Store    JobStore
	Deriver  GraphDeriver
	Uploader Uploader
	Locker   Locker
	// Lease configures the per-entity lock. Waiting is always enabled.
	Lease leaselock.Options
}

func NewWorker(params NewWorkerParams) *Worker {
	lease := params.Lease
	lease.Wait = true
	if lease.TokenPrefix == "" {
		lease.TokenPrefix = "export-"
	}
	return &Worker{
		store:    params.Store,
		deriver:  params.Deriver,
		uploader: params.Uploader,
		locker:   params.Locker,
		lease:    lease,
		now:      time.Now,
	}
}

// Process handles one message. A returned error means the message should be
// retried; malformed messages are reported with ErrBadFormat.
func (w *Worker) Process(ctx context.Context, body []byte) error {
	var msg Message
	if err := json.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("%w: %v", ErrBadFormat, err)
	}
	if msg.JobID == "" {
		return fmt.Errorf("%w: missing job id", ErrBadFormat)
	}

	focus := common.NewFocus(msg.ContextData, "")
	if focus.IsEmpty() {
		w.fail(ctx, msg.JobID, ErrNoFocus)
		return fmt.Errorf("%w: %v", ErrBadFormat, ErrNoFocus)
	}

	err := w.locker.WithLease(ctx, LockKey(focus.EntityType, focus.EntityID), w.lease, func(ctx context.Context) error {
		return w.export(ctx, msg.JobID, focus)
	})
	if err != nil {
		w.fail(ctx, msg.JobID, err)
		return err
	}
	return nil
}

func (w *Worker) export(ctx context.Context, jobID string, focus common.Focus) error {
	start := time.Now()
	if err := w.store.MarkRunning(ctx, jobID); err != nil {
		return err
	}

	graph, err := w.deriver.Derive(ctx, focus)
	if err != nil {
		return fmt.Errorf("deriving graph: %w", err)
	}

	body, err := json.Marshal(Snapshot{
		JobID:      jobID,
		EntityID:   focus.EntityID,
		EntityType: focus.EntityType,
		CreatedAt:  w.now().UTC(),
		Graph:      graph,
	})
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	key := ObjectKey(focus.EntityType, focus.EntityID, jobID)
	if err := w.uploader.PutJSON(ctx, key, body); err != nil {
		return err
	}
	if err := w.store.MarkCompleted(ctx, jobID, key); err != nil {
		return err
	}

	logger.Info("[Export] Job completed",
		"job_id", jobID,
		"entity_id", focus.EntityID,
		"nodes", len(graph.Nodes),
		"edges", len(graph.Edges),
		"took", time.Since(start),
	)
	return nil
}

func (w *Worker) fail(ctx context.Context, jobID string, cause error) {
	if errors.Is(cause, ErrNotFound) {
		return
	}
	// The job row must reflect the failure even if the lease context is gone.
	markCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := w.store.MarkFailed(markCtx, jobID, cause.Error()); err != nil {
		logger.Warn("[Export] Failed to mark job as failed", "job_id", jobID, "err", err)
	}
}
