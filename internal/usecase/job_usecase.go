package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"flowrk-backend/internal/domain"
	"flowrk-backend/pkg/apperror"
	"flowrk-backend/pkg/logger"
	"flowrk-backend/pkg/whatsapp"
)

const (
	browseLimit        = 50
	defaultLatestLimit = 6
	employerJobsLimit  = 50
)

type LinkConfig struct {
	SiteName    string
	CountryCode string
}

type jobUsecase struct {
	jobs      domain.JobRepository
	employers domain.EmployerRepository
	validate  *validator.Validate
	links     LinkConfig
}

func NewJobUsecase(jobs domain.JobRepository, employers domain.EmployerRepository, validate *validator.Validate, links LinkConfig) domain.JobUsecase {
	return &jobUsecase{
		jobs:      jobs,
		employers: employers,
		validate:  validate,
		links:     links,
	}
}

// Browse lists active jobs, newest first, narrowed by exact category and city and by a
// case-insensitive substring of area.
func (u *jobUsecase) Browse(ctx context.Context, filter domain.BrowseFilter) ([]domain.Job, error) {
	where := map[string]any{"status": domain.JobStatusActive}
	if filter.Category != "" {
		if !filter.Category.Valid() {
			return nil, apperror.BadRequest("Unknown work category")
		}
		where["category"] = filter.Category
	}
	if city := strings.TrimSpace(filter.City); city != "" {
		where["city"] = city
	}

	jobs, err := u.jobs.Filter(ctx, where, "-created_at", browseLimit)
	if err != nil {
		return nil, apperror.FromStore(err, "Job")
	}

	area := strings.TrimSpace(filter.Area)
	if area == "" {
		return jobs, nil
	}
	matched := make([]domain.Job, 0, len(jobs))
	for _, job := range jobs {
		if containsFold(job.Area, area) {
			matched = append(matched, job)
		}
	}
	return matched, nil
}

func (u *jobUsecase) Latest(ctx context.Context, n int) ([]domain.Job, error) {
	if n <= 0 || n > browseLimit {
		n = defaultLatestLimit
	}
	jobs, err := u.jobs.Filter(ctx, map[string]any{"status": domain.JobStatusActive}, "-created_at", n)
	if err != nil {
		return nil, apperror.FromStore(err, "Job")
	}
	return jobs, nil
}

func (u *jobUsecase) GetJob(ctx context.Context, id string) (*domain.Job, error) {
	job, err := u.jobs.Get(ctx, id)
	if err != nil {
		return nil, apperror.FromStore(err, "Job")
	}
	return job, nil
}

func (u *jobUsecase) Post(ctx context.Context, req domain.PostJobRequest) (*domain.Job, error) {
	identity, err := currentIdentity(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(u.validate, req); err != nil {
		return nil, err
	}
	if !req.Category.Valid() {
		return nil, apperror.BadRequest("Unknown work category")
	}

	employer, err := u.requireEmployer(ctx, identity.UID)
	if err != nil {
		return nil, err
	}

	name := employer.Name
	if name == "" {
		name = "Employer"
	}
	job, err := u.jobs.Create(ctx, domain.Job{
		Category:     req.Category,
		Title:        strings.TrimSpace(req.Title),
		Description:  strings.TrimSpace(req.Description),
		Payment:      FormatPayment(req.Payment, req.PaymentType),
		City:         strings.TrimSpace(req.City),
		Area:         strings.TrimSpace(req.Area),
		WhatsApp:     strings.TrimSpace(req.WhatsApp),
		Timing:       req.Timing,
		Requirements: strings.TrimSpace(req.Requirements),
		EmployerID:   identity.UID,
		EmployerName: name,
		Status:       domain.JobStatusActive,
	})
	if err != nil {
		return nil, apperror.FromStore(err, "Job")
	}

	// The counter is advisory: a failure here leaves it under-reporting and is only logged.
	patch := map[string]any{"total_jobs_posted": employer.TotalJobsPosted + 1}
	if err := u.employers.Update(ctx, identity.UID, patch); err != nil {
		logger.Log.Warn("total_jobs_posted increment failed", "employer_id", identity.UID, "job_id", job.ID, "error", err)
	}

	logger.Log.Info("job posted", "job_id", job.ID, "employer_id", identity.UID, "category", string(job.Category))
	return job, nil
}

func (u *jobUsecase) Edit(ctx context.Context, id string, req domain.EditJobRequest) (*domain.Job, error) {
	if err := validateRequest(u.validate, req); err != nil {
		return nil, err
	}
	if _, err := u.ownedJob(ctx, id); err != nil {
		return nil, err
	}

	patch := map[string]any{}
	if req.Category != nil {
		if !req.Category.Valid() {
			return nil, apperror.BadRequest("Unknown work category")
		}
		patch["category"] = *req.Category
	}
	setTrimmed(patch, "title", req.Title)
	setTrimmed(patch, "description", req.Description)
	setTrimmed(patch, "city", req.City)
	setTrimmed(patch, "area", req.Area)
	setTrimmed(patch, "whatsapp", req.WhatsApp)
	setTrimmed(patch, "timing", req.Timing)
	setTrimmed(patch, "requirements", req.Requirements)
	if req.Payment != nil {
		amount := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(*req.Payment), rupee))
		if amount == "" {
			patch["payment"] = nil
		} else {
			patch["payment"] = rupee + amount
		}
	}
	for _, required := range []string{"description", "payment", "city", "area", "whatsapp"} {
		if v, ok := patch[required]; ok && v == nil {
			return nil, apperror.BadRequest(required + " cannot be empty")
		}
	}

	if err := u.jobs.Update(ctx, id, patch); err != nil {
		return nil, apperror.FromStore(err, "Job")
	}
	return u.GetJob(ctx, id)
}

func (u *jobUsecase) SetOwnerStatus(ctx context.Context, id string, status domain.JobStatus) error {
	if status != domain.JobStatusActive && status != domain.JobStatusClosed {
		return apperror.BadRequest("Status must be active or closed")
	}
	if _, err := u.ownedJob(ctx, id); err != nil {
		return err
	}
	if err := u.jobs.Update(ctx, id, map[string]any{"status": status}); err != nil {
		return apperror.FromStore(err, "Job")
	}
	return nil
}

// Delete removes the job permanently. Workers' saved and applied lists keep the id.
func (u *jobUsecase) Delete(ctx context.Context, id string) error {
	if _, err := u.ownedJob(ctx, id); err != nil {
		return err
	}
	if err := u.jobs.Delete(ctx, id); err != nil {
		return apperror.FromStore(err, "Job")
	}
	logger.Log.Info("job deleted by owner", "job_id", id)
	return nil
}

func (u *jobUsecase) ListByEmployer(ctx context.Context) ([]domain.Job, error) {
	identity, err := currentIdentity(ctx)
	if err != nil {
		return nil, err
	}
	jobs, err := u.jobs.Filter(ctx, map[string]any{"employer_id": identity.UID}, "-created_at", employerJobsLimit)
	if err != nil {
		return nil, apperror.FromStore(err, "Job")
	}
	return jobs, nil
}

func (u *jobUsecase) WhatsAppLink(ctx context.Context, id string) (string, error) {
	job, err := u.GetJob(ctx, id)
	if err != nil {
		return "", err
	}
	return jobEnquiryLink(u.links, job), nil
}

func (u *jobUsecase) ownedJob(ctx context.Context, id string) (*domain.Job, error) {
	identity, err := currentIdentity(ctx)
	if err != nil {
		return nil, err
	}
	job, err := u.jobs.Get(ctx, id)
	if err != nil {
		return nil, apperror.FromStore(err, "Job")
	}
	if job.EmployerID != identity.UID {
		return nil, apperror.Forbidden("You can only manage your own job posts")
	}
	return job, nil
}

func (u *jobUsecase) requireEmployer(ctx context.Context, uid string) (*domain.EmployerProfile, error) {
	employer, err := u.employers.Get(ctx, uid)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.Forbidden("Complete your employer registration before posting work")
	}
	if err != nil {
		return nil, apperror.FromStore(err, "Employer profile")
	}
	if employer.Status == domain.AccountBlocked {
		return nil, apperror.Forbidden("Your account has been suspended")
	}
	return employer, nil
}

const rupee = "₹"

// FormatPayment renders an amount the way listings display it: "₹500/day", "₹80/hour", "₹2000".
func FormatPayment(amount string, paymentType domain.PaymentType) string {
	amount = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(amount), rupee))
	switch paymentType {
	case domain.PaymentPerHour:
		return rupee + amount + "/hour"
	case domain.PaymentFixed:
		return rupee + amount
	default:
		return rupee + amount + "/day"
	}
}

func jobEnquiryLink(links LinkConfig, job *domain.Job) string {
	return whatsapp.Link(links.CountryCode, job.WhatsApp, whatsapp.JobEnquiry(links.SiteName, job.DisplayTitle()))
}

// setTrimmed copies an optional field into patch; an empty value becomes a field delete.
func setTrimmed(patch map[string]any, field string, value *string) {
	if value == nil {
		return
	}
	if trimmed := strings.TrimSpace(*value); trimmed != "" {
		patch[field] = trimmed
	} else {
		patch[field] = nil
	}
}
