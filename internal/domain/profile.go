package domain

import (
	"context"
)

type Availability string

const (
	AvailabilityFullDay  Availability = "full_day"
	AvailabilityPartTime Availability = "part_time"
	AvailabilityFlexible Availability = "flexible"
)

type EmployerType string

const (
	EmployerShopOwner      EmployerType = "shop_owner"
	EmployerHomeOwner      EmployerType = "home_owner"
	EmployerContractor     EmployerType = "contractor"
	EmployerEventOrganizer EmployerType = "event_organizer"
)

// Account status set by admins. An empty status reads as active.
const (
	AccountActive  = "active"
	AccountBlocked = "blocked"
)

// WorkerProfile is keyed by the identity uid. saved_jobs and applied_jobs hold soft Job references.
type WorkerProfile struct {
	ID           string       `json:"id,omitempty"`
	FullName     string       `json:"full_name,omitempty"`
	Email        string       `json:"email,omitempty"`
	UserRole     Role         `json:"user_role,omitempty"`
	City         string       `json:"city,omitempty"`
	Area         string       `json:"area,omitempty"`
	Skills       []string     `json:"skills,omitempty"`
	Availability Availability `json:"availability,omitempty"`
	WhatsApp     string       `json:"whatsapp,omitempty"`
	Experience   string       `json:"experience,omitempty"`
	SavedJobs    []string     `json:"saved_jobs,omitempty"`
	AppliedJobs  []string     `json:"applied_jobs,omitempty"`
	Status       string       `json:"status,omitempty"`
	Verified     bool         `json:"verified,omitempty"`
	CreatedAt    string       `json:"created_at,omitempty"`
}

type EmployerProfile struct {
	ID              string       `json:"id,omitempty"`
	Name            string       `json:"name,omitempty"`
	FullName        string       `json:"full_name,omitempty"`
	Email           string       `json:"email,omitempty"`
	UserRole        Role         `json:"user_role,omitempty"`
	City            string       `json:"city,omitempty"`
	Area            string       `json:"area,omitempty"`
	EmployerType    EmployerType `json:"employer_type,omitempty"`
	WhatsApp        string       `json:"whatsapp,omitempty"`
	TotalJobsPosted int          `json:"total_jobs_posted,omitempty"`
	Status          string       `json:"status,omitempty"`
	Verified        bool         `json:"verified,omitempty"`
	CreatedAt       string       `json:"created_at,omitempty"`
}

// DisplayName prefers the business name from registration over the provider name on the stub.
func (p *EmployerProfile) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.FullName
}

type WorkerRegistration struct {
	FullName     string       `json:"full_name" binding:"required,max=100,valid_name"`
	City         string       `json:"city" binding:"required,max=80"`
	Area         string       `json:"area" binding:"required,max=120"`
	Skills       []string     `json:"skills" binding:"required,min=1,dive,oneof=painting cleaning delivery shop_helper event_work"`
	Availability Availability `json:"availability" binding:"required,oneof=full_day part_time flexible"`
	WhatsApp     string       `json:"whatsapp" binding:"required,valid_phone"`
	Experience   string       `json:"experience" binding:"omitempty,max=500"`
}

// WorkerProfileUpdate whitelists the fields an owner may change after registration.
type WorkerProfileUpdate struct {
	FullName     *string       `json:"full_name" binding:"omitempty,max=100,valid_name"`
	City         *string       `json:"city" binding:"omitempty,max=80"`
	Area         *string       `json:"area" binding:"omitempty,max=120"`
	Skills       []string      `json:"skills" binding:"omitempty,dive,oneof=painting cleaning delivery shop_helper event_work"`
	Availability *Availability `json:"availability" binding:"omitempty,oneof=full_day part_time flexible"`
	WhatsApp     *string       `json:"whatsapp" binding:"omitempty,valid_phone"`
	Experience   *string       `json:"experience" binding:"omitempty,max=500"`
}

type EmployerRegistration struct {
	Name         string       `json:"name" binding:"required,max=100,valid_name"`
	City         string       `json:"city" binding:"required,max=80"`
	Area         string       `json:"area" binding:"required,max=120"`
	EmployerType EmployerType `json:"employer_type" binding:"required,oneof=shop_owner home_owner contractor event_organizer"`
	WhatsApp     string       `json:"whatsapp" binding:"required,valid_phone"`
}

type EmployerProfileUpdate struct {
	Name         *string       `json:"name" binding:"omitempty,max=100,valid_name"`
	City         *string       `json:"city" binding:"omitempty,max=80"`
	Area         *string       `json:"area" binding:"omitempty,max=120"`
	EmployerType *EmployerType `json:"employer_type" binding:"omitempty,oneof=shop_owner home_owner contractor event_organizer"`
	WhatsApp     *string       `json:"whatsapp" binding:"omitempty,valid_phone"`
}

type SavedToggleResult struct {
	Saved     bool     `json:"saved"`
	SavedJobs []string `json:"saved_jobs"`
}

type ApplyResult struct {
	AppliedJobs []string `json:"applied_jobs"`
	WhatsAppURL string   `json:"whatsapp_url"`
}

type WorkerUsecase interface {
	Register(ctx context.Context, req WorkerRegistration) (*WorkerProfile, error)
	Profile(ctx context.Context) (*WorkerProfile, error)
	UpdateProfile(ctx context.Context, req WorkerProfileUpdate) (*WorkerProfile, error)
	ToggleSavedJob(ctx context.Context, jobID string) (*SavedToggleResult, error)
	Apply(ctx context.Context, jobID string) (*ApplyResult, error)
	SavedJobs(ctx context.Context) ([]Job, error)
	AppliedJobs(ctx context.Context) ([]Job, error)
	Recommended(ctx context.Context) ([]Job, error)
}

type EmployerUsecase interface {
	Register(ctx context.Context, req EmployerRegistration) (*EmployerProfile, error)
	Profile(ctx context.Context) (*EmployerProfile, error)
	UpdateProfile(ctx context.Context, req EmployerProfileUpdate) (*EmployerProfile, error)
}
