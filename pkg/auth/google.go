package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"flowrk-backend/internal/domain"
	"flowrk-backend/pkg/logger"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

var googleIssuers = map[string]bool{
	"accounts.google.com":         true,
	"https://accounts.google.com": true,
}

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	JWKSURL      string
}

type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// GoogleProvider signs users in with Google and issues the service's own session tokens.
// Session changes are published to subscribers.
type GoogleProvider struct {
	oauth       *oauth2.Config
	clientID    string
	keys        *KeySet
	sessions    *Sessions
	revocations *Revocations

	mu          sync.RWMutex
	subscribers map[int]func(domain.SessionEvent)
	nextSubID   int
}

func NewGoogleProvider(cfg GoogleConfig, sessions *Sessions, revocations *Revocations) *GoogleProvider {
	return &GoogleProvider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     google.Endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
		clientID:    cfg.ClientID,
		keys:        NewKeySet(cfg.JWKSURL),
		sessions:    sessions,
		revocations: revocations,
		subscribers: make(map[int]func(domain.SessionEvent)),
	}
}

func (p *GoogleProvider) AuthURL(state string) string {
	return p.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline, oauth2.SetAuthURLParam("prompt", "select_account"))
}

func (p *GoogleProvider) SignIn(ctx context.Context, cred domain.Credential) (*domain.Identity, string, error) {
	var (
		identity *domain.Identity
		err      error
	)
	switch {
	case cred.IDToken != "":
		identity, err = p.verifyIDToken(ctx, cred.IDToken)
	case cred.Code != "":
		identity, err = p.exchangeCode(ctx, cred.Code)
	default:
		return nil, "", fmt.Errorf("%w: code or id_token required", domain.ErrInvalidCredential)
	}
	if err != nil {
		return nil, "", err
	}

	token, err := p.sessions.Issue(identity)
	if err != nil {
		return nil, "", err
	}
	p.publish(domain.SessionEvent{Kind: domain.SessionSignedIn, Token: token, Identity: identity})
	return identity, token, nil
}

func (p *GoogleProvider) CurrentSession(ctx context.Context, token string) (*domain.Identity, error) {
	identity, err := p.sessions.Parse(token)
	if err != nil {
		return nil, err
	}
	revoked, err := p.revocations.IsRevoked(ctx, identity.SessionID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, fmt.Errorf("%w: session revoked", domain.ErrUnauthenticated)
	}
	return identity, nil
}

// SignOut revokes the session. Signing out an already invalid token is not an error.
func (p *GoogleProvider) SignOut(ctx context.Context, token string) error {
	identity, err := p.sessions.Parse(token)
	if err != nil {
		return nil
	}
	if err := p.revocations.Revoke(ctx, identity.SessionID, identity.ExpiresAt); err != nil {
		return err
	}
	p.publish(domain.SessionEvent{Kind: domain.SessionSignedOut, Token: token, Identity: identity})
	return nil
}

func (p *GoogleProvider) Subscribe(fn func(domain.SessionEvent)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextSubID
	p.nextSubID++
	p.subscribers[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			delete(p.subscribers, id)
		})
	}
}

func (p *GoogleProvider) publish(event domain.SessionEvent) {
	p.mu.RLock()
	subs := make([]func(domain.SessionEvent), 0, len(p.subscribers))
	for _, fn := range p.subscribers {
		subs = append(subs, fn)
	}
	p.mu.RUnlock()

	for _, fn := range subs {
		fn(event)
	}
}

func (p *GoogleProvider) verifyIDToken(ctx context.Context, idToken string) (*domain.Identity, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(idToken, claims, p.keys.KeyFunc(ctx),
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithAudience(p.clientID),
	)
	if err != nil {
		return nil, errors.Join(domain.ErrInvalidCredential, err)
	}

	iss, _ := claims["iss"].(string)
	if !googleIssuers[iss] {
		return nil, fmt.Errorf("%w: unexpected issuer %q", domain.ErrInvalidCredential, iss)
	}
	if verified, _ := claims["email_verified"].(bool); !verified {
		return nil, fmt.Errorf("%w: email not verified", domain.ErrInvalidCredential)
	}

	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	picture, _ := claims["picture"].(string)
	if sub == "" || email == "" {
		return nil, fmt.Errorf("%w: token lacks subject or email", domain.ErrInvalidCredential)
	}
	return &domain.Identity{
		UID:         sub,
		Email:       strings.ToLower(strings.TrimSpace(email)),
		DisplayName: strings.TrimSpace(name),
		PhotoURL:    picture,
	}, nil
}

func (p *GoogleProvider) exchangeCode(ctx context.Context, code string) (*domain.Identity, error) {
	tok, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, errors.Join(domain.ErrInvalidCredential, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, googleUserInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.oauth.Client(ctx, tok).Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch userinfo: status %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}
	if info.ID == "" || info.Email == "" {
		return nil, fmt.Errorf("%w: userinfo lacks id or email", domain.ErrInvalidCredential)
	}
	if !info.VerifiedEmail {
		logger.Log.Warn("google account email not verified", "uid", info.ID)
	}

	return &domain.Identity{
		UID:         info.ID,
		Email:       strings.ToLower(strings.TrimSpace(info.Email)),
		DisplayName: strings.TrimSpace(info.Name),
		PhotoURL:    info.Picture,
	}, nil
}
