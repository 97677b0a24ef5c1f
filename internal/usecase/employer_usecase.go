package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"flowrk-backend/internal/domain"
	"flowrk-backend/pkg/apperror"
	"flowrk-backend/pkg/logger"
)

type employerUsecase struct {
	employers domain.EmployerRepository
	workers   domain.WorkerRepository
	content   domain.ContentUsecase
	validate  *validator.Validate
}

func NewEmployerUsecase(
	employers domain.EmployerRepository,
	workers domain.WorkerRepository,
	content domain.ContentUsecase,
	validate *validator.Validate,
) domain.EmployerUsecase {
	return &employerUsecase{
		employers: employers,
		workers:   workers,
		content:   content,
		validate:  validate,
	}
}

func (u *employerUsecase) Register(ctx context.Context, req domain.EmployerRegistration) (*domain.EmployerProfile, error) {
	identity, err := currentIdentity(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(u.validate, req); err != nil {
		return nil, err
	}

	existing, err := u.employers.Get(ctx, identity.UID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.FromStore(err, "Employer profile")
	}
	if existing == nil || existing.WhatsApp == "" {
		if err := registrationAllowed(ctx, u.content); err != nil {
			return nil, err
		}
	}
	if existing == nil {
		if _, err := u.workers.Get(ctx, identity.UID); err == nil {
			return nil, apperror.Conflict("This account is already registered as worker")
		} else if !errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.FromStore(err, "Worker profile")
		}
	}

	if existing != nil {
		fields := map[string]any{
			"name":          strings.TrimSpace(req.Name),
			"city":          strings.TrimSpace(req.City),
			"area":          strings.TrimSpace(req.Area),
			"employer_type": req.EmployerType,
			"whatsapp":      strings.TrimSpace(req.WhatsApp),
			"user_role":     domain.RoleEmployer,
		}
		if err := u.employers.Update(ctx, identity.UID, fields); err != nil {
			return nil, apperror.FromStore(err, "Employer profile")
		}
		return u.Profile(ctx)
	}

	// total_jobs_posted starts at zero, which the document stores as absent
	profile, err := u.employers.Create(ctx, domain.EmployerProfile{
		ID:           identity.UID,
		Name:         strings.TrimSpace(req.Name),
		FullName:     identity.DisplayName,
		Email:        identity.Email,
		UserRole:     domain.RoleEmployer,
		City:         strings.TrimSpace(req.City),
		Area:         strings.TrimSpace(req.Area),
		EmployerType: req.EmployerType,
		WhatsApp:     strings.TrimSpace(req.WhatsApp),
	})
	if err != nil {
		return nil, apperror.FromStore(err, "Employer profile")
	}
	logger.Log.Info("employer registered", "uid", identity.UID, "type", string(profile.EmployerType))
	return profile, nil
}

func (u *employerUsecase) Profile(ctx context.Context) (*domain.EmployerProfile, error) {
	identity, err := currentIdentity(ctx)
	if err != nil {
		return nil, err
	}
	profile, err := u.employers.Get(ctx, identity.UID)
	if err != nil {
		return nil, apperror.FromStore(err, "Employer profile")
	}
	return profile, nil
}

func (u *employerUsecase) UpdateProfile(ctx context.Context, req domain.EmployerProfileUpdate) (*domain.EmployerProfile, error) {
	if err := validateRequest(u.validate, req); err != nil {
		return nil, err
	}
	profile, err := u.Profile(ctx)
	if err != nil {
		return nil, err
	}

	patch := map[string]any{}
	setTrimmed(patch, "name", req.Name)
	setTrimmed(patch, "city", req.City)
	setTrimmed(patch, "area", req.Area)
	setTrimmed(patch, "whatsapp", req.WhatsApp)
	if req.EmployerType != nil {
		patch["employer_type"] = *req.EmployerType
	}
	for _, required := range []string{"name", "city", "area", "whatsapp"} {
		if v, ok := patch[required]; ok && v == nil {
			return nil, apperror.BadRequest(required + " cannot be empty")
		}
	}

	if err := u.employers.Update(ctx, profile.ID, patch); err != nil {
		return nil, apperror.FromStore(err, "Employer profile")
	}
	return u.Profile(ctx)
}
