package domain

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrUnauthenticated covers missing, malformed, expired and revoked sessions.
	ErrUnauthenticated   = errors.New("not authenticated")
	ErrInvalidCredential = errors.New("invalid sign-in credential")
)

type Role string

const (
	RoleWorker   Role = "worker"
	RoleEmployer Role = "employer"
)

func (r Role) Valid() bool {
	return r == RoleWorker || r == RoleEmployer
}

// Other returns the role an identity must not also hold.
func (r Role) Other() Role {
	if r == RoleWorker {
		return RoleEmployer
	}
	return RoleWorker
}

// Collection returns the profile collection for the role.
func (r Role) Collection() string {
	if r == RoleEmployer {
		return CollectionEmployers
	}
	return CollectionWorkers
}

type SessionState string

const (
	StateSignedOut        SessionState = "signed_out"
	StateSignedInNoRole   SessionState = "signed_in_no_role"
	StateSignedInWithRole SessionState = "signed_in_with_role"
)

// Identity is the provider-issued sign-in state. UID doubles as the profile document key.
type Identity struct {
	UID         string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"full_name"`
	PhotoURL    string    `json:"photo_url,omitempty"`
	SessionID   string    `json:"-"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type Me struct {
	ID       string       `json:"id,omitempty"`
	FullName string       `json:"full_name,omitempty"`
	Email    string       `json:"email,omitempty"`
	PhotoURL string       `json:"photo_url,omitempty"`
	UserRole Role         `json:"user_role,omitempty"`
	State    SessionState `json:"state"`
}

// Credential is what the browser hands back after Google consent: an authorization code or an ID token.
type Credential struct {
	Code    string `json:"code"`
	IDToken string `json:"id_token"`
}

type LoginRequest struct {
	Code    string `json:"code"`
	IDToken string `json:"id_token"`
	Role    Role   `json:"role" binding:"omitempty,oneof=worker employer"`
}

type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Me        *Me       `json:"me"`
}

type UpdateMeRequest struct {
	UserRole Role `json:"user_role" binding:"required,oneof=worker employer"`
}

type SessionEventKind int

const (
	SessionSignedIn SessionEventKind = iota
	SessionSignedOut
)

// SessionEvent is published by the identity provider whenever a session starts or ends.
type SessionEvent struct {
	Kind     SessionEventKind
	Token    string
	Identity *Identity
}

type IdentityProvider interface {
	AuthURL(state string) string
	// SignIn exchanges a credential for a signed session; the returned token is in Token.
	SignIn(ctx context.Context, cred Credential) (identity *Identity, token string, err error)
	CurrentSession(ctx context.Context, token string) (*Identity, error)
	Subscribe(fn func(SessionEvent)) (unsubscribe func())
	SignOut(ctx context.Context, token string) error
}

type SessionCache interface {
	Lookup(ctx context.Context, token string) (*Identity, error)
	Subscribe(fn func(SessionEvent)) (unsubscribe func())
}

// RoleCache holds the derived role per uid. Get returns "" on a miss.
type RoleCache interface {
	Get(ctx context.Context, uid string) (Role, error)
	Set(ctx context.Context, uid string, role Role) error
	Invalidate(ctx context.Context, uid string) error
}

type IdentityUsecase interface {
	AuthURL(state string) string
	IsAuthenticated(ctx context.Context) bool
	Me(ctx context.Context) (*Me, error)
	LoginWithGoogle(ctx context.Context, cred Credential, role Role) (*LoginResult, error)
	UpdateMe(ctx context.Context, req UpdateMeRequest) (*Me, error)
	Logout(ctx context.Context) error
	IsAdmin(ctx context.Context) bool
}
