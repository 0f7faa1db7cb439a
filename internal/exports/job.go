package exports

import (
	"errors"
	"fmt"
	"time"

	"github.com/JayKakadiya/ui-plugin-samples/pkg/common"
)

// Queue names of the export pipeline.
const (
	Queue = "export_queue"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

var (
	ErrNotFound  = errors.New("export job not found")
	ErrNoFocus   = errors.New("export needs an entity id and type")
	ErrBadFormat = errors.New("malformed export message")
)

// Job is one snapshot of an entity's connections graph.
type Job struct {
	ID          string    `json:"id"`
	Status      Status    `json:"status"`
	EntityID    string    `json:"entityId"`
	EntityType  string    `json:"entityType"`
	Key         string    `json:"key,omitempty"`
	Error       string    `json:"error,omitempty"`
	DownloadURL string    `json:"downloadUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Message is what the API publishes and the worker consumes.
type Message struct {
	JobID       string             `json:"jobId"`
	ContextData common.ContextData `json:"contextData"`
}

// Snapshot is the document stored for a completed job.
type Snapshot struct {
	JobID      string        `json:"jobId"`
	EntityID   string        `json:"entityId"`
	EntityType string        `json:"entityType"`
	CreatedAt  time.Time     `json:"createdAt"`
	Graph      *common.Graph `json:"graph"`
}

// ObjectKey is where the snapshot of a job is stored.
func ObjectKey(entityType, entityID, jobID string) string {
	return fmt.Sprintf("exports/%s/%s/%s.json", entityType, entityID, jobID)
}

// LockKey serializes exports of the same entity.
func LockKey(entityType, entityID string) string {
	return "export:" + entityType + "/" + entityID
}
