package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"flowrk-backend/internal/domain"
	"flowrk-backend/pkg/apperror"
	"flowrk-backend/pkg/logger"
)

type IdentityConfig struct {
	AdminEmails []string
	AuthTimeout time.Duration
}

type identityUsecase struct {
	provider    domain.IdentityProvider
	sessions    domain.SessionCache
	roles       domain.RoleCache
	workers     domain.WorkerRepository
	employers   domain.EmployerRepository
	admins      map[string]bool
	authTimeout time.Duration
}

func NewIdentityUsecase(
	provider domain.IdentityProvider,
	sessions domain.SessionCache,
	roles domain.RoleCache,
	workers domain.WorkerRepository,
	employers domain.EmployerRepository,
	cfg IdentityConfig,
) domain.IdentityUsecase {
	admins := make(map[string]bool, len(cfg.AdminEmails))
	for _, email := range cfg.AdminEmails {
		admins[strings.ToLower(strings.TrimSpace(email))] = true
	}
	if cfg.AuthTimeout <= 0 {
		cfg.AuthTimeout = 5 * time.Second
	}

	u := &identityUsecase{
		provider:    provider,
		sessions:    sessions,
		roles:       roles,
		workers:     workers,
		employers:   employers,
		admins:      admins,
		authTimeout: cfg.AuthTimeout,
	}

	// A cached role must not outlive the session it was derived in.
	sessions.Subscribe(func(event domain.SessionEvent) {
		if event.Kind == domain.SessionSignedOut && event.Identity != nil {
			if err := roles.Invalidate(context.Background(), event.Identity.UID); err != nil {
				logger.Log.Warn("role cache invalidation on sign-out failed", "uid", event.Identity.UID, "error", err)
			}
		}
	})
	return u
}

func (u *identityUsecase) AuthURL(state string) string {
	return u.provider.AuthURL(state)
}

// IsAuthenticated resolves within the configured timeout and reports false on timeout or error.
func (u *identityUsecase) IsAuthenticated(ctx context.Context) bool {
	token := domain.SessionToken(ctx)
	if token == "" {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, u.authTimeout)
	defer cancel()

	result := make(chan bool, 1)
	go func() {
		_, err := u.sessions.Lookup(ctx, token)
		result <- err == nil
	}()

	select {
	case ok := <-result:
		return ok
	case <-ctx.Done():
		logger.Log.Warn("session check timed out", "timeout", u.authTimeout.String())
		return false
	}
}

func (u *identityUsecase) Me(ctx context.Context) (*domain.Me, error) {
	identity, ok := domain.IdentityFromContext(ctx)
	if !ok {
		return &domain.Me{State: domain.StateSignedOut}, nil
	}

	role, err := u.roles.Get(ctx, identity.UID)
	if err != nil {
		logger.Log.Warn("role cache read failed", "uid", identity.UID, "error", err)
	}
	if role == "" {
		if role, err = u.deriveRole(ctx, identity.UID); err != nil {
			return nil, err
		}
		u.cacheRole(ctx, identity.UID, role)
	}
	return toMe(identity, role), nil
}

func (u *identityUsecase) LoginWithGoogle(ctx context.Context, cred domain.Credential, role domain.Role) (*domain.LoginResult, error) {
	if role != "" && !role.Valid() {
		return nil, apperror.BadRequest("Role must be worker or employer")
	}

	identity, token, err := u.provider.SignIn(ctx, cred)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredential) {
			return nil, apperror.New(http.StatusUnauthorized, "Google sign-in failed", err)
		}
		return nil, apperror.New(http.StatusBadGateway, "Sign-in provider unavailable. Please try again.", err)
	}

	if role != "" {
		if err := u.ensureProfile(ctx, identity, role); err != nil {
			return nil, err
		}
		u.cacheRole(ctx, identity.UID, role)
	} else {
		if role, err = u.deriveRole(ctx, identity.UID); err != nil {
			return nil, err
		}
		u.cacheRole(ctx, identity.UID, role)
	}

	return &domain.LoginResult{
		Token:     token,
		ExpiresAt: identity.ExpiresAt,
		Me:        toMe(identity, role),
	}, nil
}

func (u *identityUsecase) UpdateMe(ctx context.Context, req domain.UpdateMeRequest) (*domain.Me, error) {
	identity, err := currentIdentity(ctx)
	if err != nil {
		return nil, err
	}
	if !req.UserRole.Valid() {
		return nil, apperror.BadRequest("Role must be worker or employer")
	}
	if err := u.ensureProfile(ctx, identity, req.UserRole); err != nil {
		return nil, err
	}
	u.cacheRole(ctx, identity.UID, req.UserRole)
	return toMe(identity, req.UserRole), nil
}

// Logout ends the provider session and forgets the cached role. No documents are deleted.
func (u *identityUsecase) Logout(ctx context.Context) error {
	token := domain.SessionToken(ctx)
	if token == "" {
		return nil
	}
	if err := u.provider.SignOut(ctx, token); err != nil {
		return apperror.Internal(fmt.Errorf("sign out: %w", err))
	}
	if identity, ok := domain.IdentityFromContext(ctx); ok {
		if err := u.roles.Invalidate(ctx, identity.UID); err != nil {
			logger.Log.Warn("role cache invalidation failed", "uid", identity.UID, "error", err)
		}
	}
	return nil
}

// IsAdmin checks the signed-in email against the configured allow-list.
func (u *identityUsecase) IsAdmin(ctx context.Context) bool {
	identity, ok := domain.IdentityFromContext(ctx)
	if !ok || identity.Email == "" {
		return false
	}
	return u.admins[strings.ToLower(identity.Email)]
}

// deriveRole derives the role from which profile document exists, worker first.
// "" means signed in without a role.
func (u *identityUsecase) deriveRole(ctx context.Context, uid string) (domain.Role, error) {
	isWorker, err := u.profileExists(ctx, domain.RoleWorker, uid)
	if err != nil {
		return "", err
	}
	isEmployer, err := u.profileExists(ctx, domain.RoleEmployer, uid)
	if err != nil {
		return "", err
	}

	switch {
	case isWorker && isEmployer:
		logger.Log.Warn("identity holds both worker and employer profiles, resolving as worker", "uid", uid)
		return domain.RoleWorker, nil
	case isWorker:
		return domain.RoleWorker, nil
	case isEmployer:
		return domain.RoleEmployer, nil
	default:
		return "", nil
	}
}

// ensureProfile creates the role's stub profile unless one exists. Holding both roles is refused.
func (u *identityUsecase) ensureProfile(ctx context.Context, identity *domain.Identity, role domain.Role) error {
	exists, err := u.profileExists(ctx, role, identity.UID)
	if err != nil || exists {
		return err
	}
	other, err := u.profileExists(ctx, role.Other(), identity.UID)
	if err != nil {
		return err
	}
	if other {
		return apperror.Conflict(fmt.Sprintf("This account is already registered as %s", role.Other()))
	}

	switch role {
	case domain.RoleWorker:
		_, err = u.workers.Create(ctx, domain.WorkerProfile{
			ID:       identity.UID,
			FullName: identity.DisplayName,
			Email:    identity.Email,
			UserRole: domain.RoleWorker,
		})
	case domain.RoleEmployer:
		_, err = u.employers.Create(ctx, domain.EmployerProfile{
			ID:       identity.UID,
			FullName: identity.DisplayName,
			Email:    identity.Email,
			UserRole: domain.RoleEmployer,
		})
	}
	if err != nil {
		return apperror.FromStore(err, "Profile")
	}
	logger.Log.Info("stub profile created", "uid", identity.UID, "role", string(role))
	return nil
}

func (u *identityUsecase) profileExists(ctx context.Context, role domain.Role, uid string) (bool, error) {
	var err error
	if role == domain.RoleEmployer {
		_, err = u.employers.Get(ctx, uid)
	} else {
		_, err = u.workers.Get(ctx, uid)
	}
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrNotFound):
		return false, nil
	default:
		return false, apperror.FromStore(err, "Profile")
	}
}

func (u *identityUsecase) cacheRole(ctx context.Context, uid string, role domain.Role) {
	var err error
	if role == "" {
		err = u.roles.Invalidate(ctx, uid)
	} else {
		err = u.roles.Set(ctx, uid, role)
	}
	if err != nil {
		logger.Log.Warn("role cache write failed", "uid", uid, "error", err)
	}
}

func toMe(identity *domain.Identity, role domain.Role) *domain.Me {
	state := domain.StateSignedInNoRole
	if role != "" {
		state = domain.StateSignedInWithRole
	}
	return &domain.Me{
		ID:       identity.UID,
		FullName: identity.DisplayName,
		Email:    identity.Email,
		PhotoURL: identity.PhotoURL,
		UserRole: role,
		State:    state,
	}
}
