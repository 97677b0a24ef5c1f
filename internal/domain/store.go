package domain

import (
	"context"
	"errors"
	"time"
)

// Common domain errors
var (
	ErrNotFound = errors.New("resource not found")
	// ErrStoreUnavailable wraps transport failures so callers can tell them apart from absence.
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrInvalidPath      = errors.New("invalid store path")
)

// PathStore addresses a hierarchical key space with "/"-separated paths.
// Read returns (nil, nil) when nothing exists at path. Writing nil deletes the subtree.
type PathStore interface {
	Read(ctx context.Context, path string) (any, error)
	Write(ctx context.Context, path string, value any) error
	// Push stores value under a new store-generated child key and returns it with "id" set.
	Push(ctx context.Context, path string, value any) (map[string]any, error)
	// Merge sets each patch field at path/field, leaving siblings untouched. A nil field deletes it.
	Merge(ctx context.Context, path string, patch map[string]any) error
}

// Collection is a named top-level group of documents decoded as T.
type Collection[T any] interface {
	Filter(ctx context.Context, where map[string]any, sortKey string, limit int) ([]T, error)
	Get(ctx context.Context, id string) (*T, error)
	Create(ctx context.Context, doc T) (*T, error)
	Update(ctx context.Context, id string, patch map[string]any) error
	Delete(ctx context.Context, id string) error
	All(ctx context.Context) ([]T, error)
}

type JobRepository = Collection[Job]
type WorkerRepository = Collection[WorkerProfile]
type EmployerRepository = Collection[EmployerProfile]
type AuditLogRepository = Collection[AuditLog]
type NotificationRepository = Collection[Notification]
type ContactMessageRepository = Collection[ContactMessage]

// Top-level collection paths.
const (
	CollectionJobs            = "jobs"
	CollectionWorkers         = "workers"
	CollectionEmployers       = "employers"
	CollectionAuditLogs       = "audit_logs"
	CollectionNotifications   = "notifications"
	CollectionContactMessages = "contact_messages"
	PathCMS                   = "cms"
	PathSettings              = "settings"
)

// TimeLayout matches JavaScript's Date.toISOString, the format stored documents already use.
const TimeLayout = "2006-01-02T15:04:05.000Z"

func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}
