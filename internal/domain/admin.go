package domain

import (
	"context"
)

type ActivityPoint struct {
	Name  string `json:"name"` // Sun..Sat
	Date  string `json:"date"` // YYYY-MM-DD, UTC
	Users int    `json:"users"`
	Jobs  int    `json:"jobs"`
}

type Trend struct {
	Val int    `json:"val"`
	Dir string `json:"dir"` // up | down
}

type DashboardStats struct {
	TotalUsers     int             `json:"total_users"`
	TotalWorkers   int             `json:"total_workers"`
	TotalEmployers int             `json:"total_employers"`
	ActiveJobs     int             `json:"active_jobs"`
	TotalJobs      int             `json:"total_jobs"`
	RecentJobs     []Job           `json:"recent_jobs"`
	Chart          []ActivityPoint `json:"chart"`
	UsersTrend     Trend           `json:"users_trend"`
	WorkersTrend   Trend           `json:"workers_trend"`
	EmployersTrend Trend           `json:"employers_trend"`
	JobsTrend      Trend           `json:"jobs_trend"`
}

// UserSummary flattens worker and employer profiles for the user management screen.
type UserSummary struct {
	ID               string `json:"id"`
	Role             Role   `json:"role"`
	Name             string `json:"name"`
	Email            string `json:"email,omitempty"`
	Phone            string `json:"phone,omitempty"`
	City             string `json:"city,omitempty"`
	Area             string `json:"area,omitempty"`
	Status           string `json:"status"`
	Verified         bool   `json:"verified"`
	CreatedAt        string `json:"created_at,omitempty"`
	TotalJobsPosted  *int   `json:"total_jobs_posted,omitempty"`
	JobsPostedActual *int   `json:"jobs_posted_actual,omitempty"`
}

type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

type AuditLog struct {
	ID         string   `json:"id,omitempty"`
	AdminName  string   `json:"admin_name"`
	AdminEmail string   `json:"admin_email"`
	Action     string   `json:"action"`
	TargetType string   `json:"target_type"`
	TargetID   string   `json:"target_id,omitempty"`
	TargetName string   `json:"target_name,omitempty"`
	Severity   Severity `json:"severity"`
	Timestamp  string   `json:"timestamp"`
}

// AuditLogger appends an entry for an admin mutation. Failures are logged, never returned.
type AuditLogger interface {
	Record(ctx context.Context, entry AuditLog)
}

type AdminUsecase interface {
	Stats(ctx context.Context) (*DashboardStats, error)
	ModerationQueue(ctx context.Context, status, search string) ([]Job, error)
	SetJobStatus(ctx context.Context, id string, status JobStatus) error
	DeleteJob(ctx context.Context, id string) error
	ListUsers(ctx context.Context, role Role, search string) ([]UserSummary, error)
	ToggleUserStatus(ctx context.Context, role Role, id string) (*UserSummary, error)
	ToggleUserVerified(ctx context.Context, role Role, id string) (*UserSummary, error)
	AuditLogs(ctx context.Context, search string) ([]AuditLog, error)
}
