package usecase

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"flowrk-backend/internal/domain"
	"flowrk-backend/pkg/apperror"
	"flowrk-backend/pkg/logger"
)

const (
	recommendedScanLimit = 20
	recommendedLimit     = 10
)

type workerUsecase struct {
	workers   domain.WorkerRepository
	employers domain.EmployerRepository
	jobs      domain.JobRepository
	content   domain.ContentUsecase
	validate  *validator.Validate
	links     LinkConfig
}

func NewWorkerUsecase(
	workers domain.WorkerRepository,
	employers domain.EmployerRepository,
	jobs domain.JobRepository,
	content domain.ContentUsecase,
	validate *validator.Validate,
	links LinkConfig,
) domain.WorkerUsecase {
	return &workerUsecase{
		workers:   workers,
		employers: employers,
		jobs:      jobs,
		content:   content,
		validate:  validate,
		links:     links,
	}
}

// Register completes the worker profile, merging into the stub created at role selection.
func (u *workerUsecase) Register(ctx context.Context, req domain.WorkerRegistration) (*domain.WorkerProfile, error) {
	identity, err := currentIdentity(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(u.validate, req); err != nil {
		return nil, err
	}

	existing, err := u.workers.Get(ctx, identity.UID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.FromStore(err, "Worker profile")
	}
	// A stub from role selection has no contact number yet: it still counts as a new registration.
	if existing == nil || existing.WhatsApp == "" {
		if err := registrationAllowed(ctx, u.content); err != nil {
			return nil, err
		}
	}
	if existing == nil {
		if _, err := u.employers.Get(ctx, identity.UID); err == nil {
			return nil, apperror.Conflict("This account is already registered as employer")
		} else if !errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.FromStore(err, "Employer profile")
		}
	}

	fields := map[string]any{
		"full_name":    strings.TrimSpace(req.FullName),
		"city":         strings.TrimSpace(req.City),
		"area":         strings.TrimSpace(req.Area),
		"skills":       dedupe(req.Skills),
		"availability": req.Availability,
		"whatsapp":     strings.TrimSpace(req.WhatsApp),
		"experience":   strings.TrimSpace(req.Experience),
		"user_role":    domain.RoleWorker,
	}

	if existing != nil {
		if err := u.workers.Update(ctx, identity.UID, fields); err != nil {
			return nil, apperror.FromStore(err, "Worker profile")
		}
		return u.Profile(ctx)
	}

	profile, err := u.workers.Create(ctx, domain.WorkerProfile{
		ID:           identity.UID,
		FullName:     strings.TrimSpace(req.FullName),
		Email:        identity.Email,
		UserRole:     domain.RoleWorker,
		City:         strings.TrimSpace(req.City),
		Area:         strings.TrimSpace(req.Area),
		Skills:       dedupe(req.Skills),
		Availability: req.Availability,
		WhatsApp:     strings.TrimSpace(req.WhatsApp),
		Experience:   strings.TrimSpace(req.Experience),
		SavedJobs:    []string{},
		AppliedJobs:  []string{},
	})
	if err != nil {
		return nil, apperror.FromStore(err, "Worker profile")
	}
	logger.Log.Info("worker registered", "uid", identity.UID, "city", profile.City)
	return profile, nil
}

func (u *workerUsecase) Profile(ctx context.Context) (*domain.WorkerProfile, error) {
	identity, err := currentIdentity(ctx)
	if err != nil {
		return nil, err
	}
	profile, err := u.workers.Get(ctx, identity.UID)
	if err != nil {
		return nil, apperror.FromStore(err, "Worker profile")
	}
	return profile, nil
}

func (u *workerUsecase) UpdateProfile(ctx context.Context, req domain.WorkerProfileUpdate) (*domain.WorkerProfile, error) {
	if err := validateRequest(u.validate, req); err != nil {
		return nil, err
	}
	profile, err := u.Profile(ctx)
	if err != nil {
		return nil, err
	}

	patch := map[string]any{}
	setTrimmed(patch, "full_name", req.FullName)
	setTrimmed(patch, "city", req.City)
	setTrimmed(patch, "area", req.Area)
	setTrimmed(patch, "whatsapp", req.WhatsApp)
	setTrimmed(patch, "experience", req.Experience)
	if req.Availability != nil {
		patch["availability"] = *req.Availability
	}
	if req.Skills != nil {
		if len(req.Skills) == 0 {
			return nil, apperror.BadRequest("Select at least one skill")
		}
		patch["skills"] = dedupe(req.Skills)
	}
	for _, required := range []string{"full_name", "city", "area", "whatsapp"} {
		if v, ok := patch[required]; ok && v == nil {
			return nil, apperror.BadRequest(required + " cannot be empty")
		}
	}

	if err := u.workers.Update(ctx, profile.ID, patch); err != nil {
		return nil, apperror.FromStore(err, "Worker profile")
	}
	return u.Profile(ctx)
}

// ToggleSavedJob removes jobID from saved_jobs if present, otherwise appends it.
func (u *workerUsecase) ToggleSavedJob(ctx context.Context, jobID string) (*domain.SavedToggleResult, error) {
	profile, err := u.Profile(ctx)
	if err != nil {
		return nil, err
	}

	saved := !slices.Contains(profile.SavedJobs, jobID)
	var list []string
	if saved {
		if _, err := u.jobs.Get(ctx, jobID); err != nil {
			return nil, apperror.FromStore(err, "Job")
		}
		list = append(slices.Clone(profile.SavedJobs), jobID)
	} else {
		list = slices.DeleteFunc(slices.Clone(profile.SavedJobs), func(id string) bool { return id == jobID })
	}

	if err := u.workers.Update(ctx, profile.ID, map[string]any{"saved_jobs": list}); err != nil {
		return nil, apperror.FromStore(err, "Worker profile")
	}
	return &domain.SavedToggleResult{Saved: saved, SavedJobs: list}, nil
}

// Apply records the application (append-only, once per job) and returns the WhatsApp link
// the worker continues on.
func (u *workerUsecase) Apply(ctx context.Context, jobID string) (*domain.ApplyResult, error) {
	profile, err := u.Profile(ctx)
	if err != nil {
		return nil, err
	}
	if profile.Status == domain.AccountBlocked {
		return nil, apperror.Forbidden("Your account has been suspended")
	}
	job, err := u.jobs.Get(ctx, jobID)
	if err != nil {
		return nil, apperror.FromStore(err, "Job")
	}

	applied := profile.AppliedJobs
	if !slices.Contains(applied, jobID) {
		applied = append(slices.Clone(applied), jobID)
		if err := u.workers.Update(ctx, profile.ID, map[string]any{"applied_jobs": applied}); err != nil {
			return nil, apperror.FromStore(err, "Worker profile")
		}
	}
	if applied == nil {
		applied = []string{}
	}
	return &domain.ApplyResult{AppliedJobs: applied, WhatsAppURL: jobEnquiryLink(u.links, job)}, nil
}

func (u *workerUsecase) SavedJobs(ctx context.Context) ([]domain.Job, error) {
	profile, err := u.Profile(ctx)
	if err != nil {
		return nil, err
	}
	return u.resolve(ctx, profile.SavedJobs)
}

func (u *workerUsecase) AppliedJobs(ctx context.Context) ([]domain.Job, error) {
	profile, err := u.Profile(ctx)
	if err != nil {
		return nil, err
	}
	return u.resolve(ctx, profile.AppliedJobs)
}

// Recommended returns up to 10 active jobs in the worker's city matching one of their skills.
func (u *workerUsecase) Recommended(ctx context.Context) ([]domain.Job, error) {
	profile, err := u.Profile(ctx)
	if err != nil {
		return nil, err
	}
	if profile.City == "" {
		return []domain.Job{}, nil
	}

	jobs, err := u.jobs.Filter(ctx, map[string]any{"status": domain.JobStatusActive, "city": profile.City}, "-created_at", recommendedScanLimit)
	if err != nil {
		return nil, apperror.FromStore(err, "Job")
	}

	out := make([]domain.Job, 0, recommendedLimit)
	for _, job := range jobs {
		if len(profile.Skills) > 0 && !slices.Contains(profile.Skills, string(job.Category)) {
			continue
		}
		out = append(out, job)
		if len(out) == recommendedLimit {
			break
		}
	}
	return out, nil
}

// resolve maps job ids to jobs in list order with one collection read.
// Ids of deleted jobs are skipped; the lists themselves are left as they are.
func (u *workerUsecase) resolve(ctx context.Context, ids []string) ([]domain.Job, error) {
	if len(ids) == 0 {
		return []domain.Job{}, nil
	}
	all, err := u.jobs.All(ctx)
	if err != nil {
		return nil, apperror.FromStore(err, "Job")
	}
	byID := make(map[string]domain.Job, len(all))
	for _, job := range all {
		byID[job.ID] = job
	}

	out := make([]domain.Job, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		job, ok := byID[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, job)
	}
	return out, nil
}

func registrationAllowed(ctx context.Context, content domain.ContentUsecase) error {
	settings, err := content.Settings(ctx)
	if err != nil {
		return err
	}
	if !settings.AllowNewRegistrations {
		return apperror.Forbidden("New registrations are currently closed")
	}
	return nil
}

func dedupe(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}
