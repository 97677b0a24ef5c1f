package domain

import (
	"context"
)

type JobCategory string

const (
	CategoryPainting   JobCategory = "painting"
	CategoryCleaning   JobCategory = "cleaning"
	CategoryDelivery   JobCategory = "delivery"
	CategoryShopHelper JobCategory = "shop_helper"
	CategoryEventWork  JobCategory = "event_work"
)

var JobCategories = []JobCategory{CategoryPainting, CategoryCleaning, CategoryDelivery, CategoryShopHelper, CategoryEventWork}

func (c JobCategory) Valid() bool {
	for _, known := range JobCategories {
		if c == known {
			return true
		}
	}
	return false
}

type JobStatus string

const (
	JobStatusActive   JobStatus = "active"
	JobStatusClosed   JobStatus = "closed"
	JobStatusPending  JobStatus = "pending"
	JobStatusApproved JobStatus = "approved"
	JobStatusRejected JobStatus = "rejected"
	JobStatusFlagged  JobStatus = "flagged"
	// JobStatusOpen only appears in legacy data; it still counts as a live listing.
	JobStatusOpen JobStatus = "open"
)

func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusActive, JobStatusClosed, JobStatusPending, JobStatusApproved, JobStatusRejected, JobStatusFlagged:
		return true
	}
	return false
}

// Live reports whether the listing counts towards the admin "active jobs" figure.
func (s JobStatus) Live() bool {
	switch s {
	case JobStatusOpen, JobStatusApproved, JobStatusPending, JobStatusActive:
		return true
	}
	return false
}

type PaymentType string

const (
	PaymentPerDay  PaymentType = "per_day"
	PaymentPerHour PaymentType = "per_hour"
	PaymentFixed   PaymentType = "fixed"
)

// Job timing options offered by the post-job form. Stored as free text.
var JobTimings = []string{"Full Day", "Part Time", "Morning Only", "Evening Only", "Flexible"}

type Job struct {
	ID           string      `json:"id,omitempty"`
	Category     JobCategory `json:"category"`
	Title        string      `json:"title,omitempty"`
	Description  string      `json:"description"`
	Payment      string      `json:"payment"`
	City         string      `json:"city"`
	Area         string      `json:"area"`
	WhatsApp     string      `json:"whatsapp"`
	Timing       string      `json:"timing,omitempty"`
	Requirements string      `json:"requirements,omitempty"`
	EmployerID   string      `json:"employer_id,omitempty"`
	EmployerName string      `json:"employer_name,omitempty"`
	Status       JobStatus   `json:"status,omitempty"`
	CreatedAt    string      `json:"created_at,omitempty"`
}

// DisplayTitle is the title, or the first 50 characters of the description for untitled jobs.
func (j *Job) DisplayTitle() string {
	if j.Title != "" {
		return j.Title
	}
	runes := []rune(j.Description)
	if len(runes) > 50 {
		return string(runes[:50])
	}
	return j.Description
}

type BrowseFilter struct {
	Category JobCategory `form:"category"`
	City     string      `form:"city"`
	Area     string      `form:"area"`
}

type PostJobRequest struct {
	Category     JobCategory `json:"category" binding:"required"`
	Title        string      `json:"title" binding:"omitempty,max=120,no_emoji"`
	Description  string      `json:"description" binding:"required,max=2000"`
	Payment      string      `json:"payment" binding:"required,max=40"`
	PaymentType  PaymentType `json:"payment_type" binding:"omitempty,oneof=per_day per_hour fixed"`
	City         string      `json:"city" binding:"required,max=80"`
	Area         string      `json:"area" binding:"required,max=120"`
	WhatsApp     string      `json:"whatsapp" binding:"required,valid_phone"`
	Timing       string      `json:"timing" binding:"required,max=40"`
	Requirements string      `json:"requirements" binding:"omitempty,max=1000"`
}

// EditJobRequest carries only the fields the owner changed.
type EditJobRequest struct {
	Category     *JobCategory `json:"category"`
	Title        *string      `json:"title" binding:"omitempty,max=120"`
	Description  *string      `json:"description" binding:"omitempty,max=2000"`
	Payment      *string      `json:"payment" binding:"omitempty,max=40"`
	City         *string      `json:"city" binding:"omitempty,max=80"`
	Area         *string      `json:"area" binding:"omitempty,max=120"`
	WhatsApp     *string      `json:"whatsapp" binding:"omitempty,valid_phone"`
	Timing       *string      `json:"timing" binding:"omitempty,max=40"`
	Requirements *string      `json:"requirements" binding:"omitempty,max=1000"`
}

type StatusRequest struct {
	Status JobStatus `json:"status" binding:"required"`
}

type JobUsecase interface {
	Browse(ctx context.Context, filter BrowseFilter) ([]Job, error)
	Latest(ctx context.Context, n int) ([]Job, error)
	GetJob(ctx context.Context, id string) (*Job, error)
	Post(ctx context.Context, req PostJobRequest) (*Job, error)
	Edit(ctx context.Context, id string, req EditJobRequest) (*Job, error)
	SetOwnerStatus(ctx context.Context, id string, status JobStatus) error
	Delete(ctx context.Context, id string) error
	ListByEmployer(ctx context.Context) ([]Job, error)
	WhatsAppLink(ctx context.Context, id string) (string, error)
}
