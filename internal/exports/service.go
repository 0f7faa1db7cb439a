package exports

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/JayKakadiya/ui-plugin-samples/pkg/common"
	"github.com/JayKakadiya/ui-plugin-samples/pkg/logger"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

type JobStore interface {
	Create(ctx context.Context, job Job) (*Job, error)
	Get(ctx context.Context, id string) (*Job, error)
	MarkRunning(ctx context.Context, id string) error
	MarkCompleted(ctx context.Context, id, key string) error
	MarkFailed(ctx context.Context, id, reason string) error
}

type Publisher interface {
	Publish(ctx context.Context, queueName string, body []byte) error
}

type LinkSigner interface {
	DownloadLink(ctx context.Context, key string) (string, error)
}

// Service is the API side of the pipeline: it records jobs and hands them to
// the worker.
type Service struct {
	store     JobStore
	publisher Publisher
	links     LinkSigner
}

func NewService(store JobStore, publisher Publisher, links LinkSigner) *Service {
	return &Service{store: store, publisher: publisher, links: links}
}

// Enqueue records a pending job for the focus of data and publishes it.
func (s *Service) Enqueue(ctx context.Context, data common.ContextData) (*Job, error) {
	focus := common.NewFocus(data, "")
	if focus.IsEmpty() {
		return nil, ErrNoFocus
	}

	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("generating job id: %w", err)
	}

	job, err := s.store.Create(ctx, Job{
		ID:         id,
		Status:     StatusPending,
		EntityID:   focus.EntityID,
		EntityType: focus.EntityType,
	})
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(Message{JobID: job.ID, ContextData: data})
	if err != nil {
		return nil, fmt.Errorf("encoding export message: %w", err)
	}
	if err := s.publisher.Publish(ctx, Queue, body); err != nil {
		if markErr := s.store.MarkFailed(ctx, job.ID, "could not be queued"); markErr != nil {
			logger.Warn("[Export] Failed to mark unqueued job", "job_id", job.ID, "err", markErr)
		}
		return nil, fmt.Errorf("publishing export job %s: %w", job.ID, err)
	}

	logger.Info("[Export] Job queued", "job_id", job.ID, "entity_id", job.EntityID, "entity_type", job.EntityType)
	return job, nil
}

// Get returns a job. Completed jobs carry a short-lived download link.
func (s *Service) Get(ctx context.Context, id string) (*Job, error) {
	job, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.Status != StatusCompleted || job.Key == "" {
		return job, nil
	}

	link, err := s.links.DownloadLink(ctx, job.Key)
	if err != nil {
		logger.Warn("[Export] Failed to sign download link", "job_id", job.ID, "err", err)
		return job, nil
	}
	job.DownloadURL = link
	return job, nil
}
