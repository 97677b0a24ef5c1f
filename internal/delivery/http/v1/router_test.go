package v1_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"flowrk-backend/config"
	v1 "flowrk-backend/internal/delivery/http/v1"
	"flowrk-backend/internal/domain"
	"flowrk-backend/internal/repository/collection"
	"flowrk-backend/internal/repository/memory"
	"flowrk-backend/internal/session"
	"flowrk-backend/internal/usecase"
	"flowrk-backend/pkg/validation"
)

type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) AuthURL(state string) string {
	return m.Called(state).String(0)
}

func (m *MockProvider) SignIn(ctx context.Context, cred domain.Credential) (*domain.Identity, string, error) {
	args := m.Called(ctx, cred)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*domain.Identity), args.String(1), args.Error(2)
}

func (m *MockProvider) CurrentSession(ctx context.Context, token string) (*domain.Identity, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Identity), args.Error(1)
}

func (m *MockProvider) SignOut(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *MockProvider) Subscribe(func(domain.SessionEvent)) func() {
	return func() {}
}

type nopForwarder struct{}

func (nopForwarder) IsConfigured() bool { return false }

func (nopForwarder) SendContactEmail(domain.ContactMessage) error { return nil }

type body struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestRouter(t *testing.T) (*gin.Engine, *collection.Collection[domain.Job]) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.RegisterBindingValidators()

	provider := new(MockProvider)
	provider.On("CurrentSession", mock.Anything, "user-token").
		Return(&domain.Identity{UID: "u1", Email: "u1@example.com", ExpiresAt: time.Now().Add(time.Hour)}, nil)
	provider.On("CurrentSession", mock.Anything, "admin-token").
		Return(&domain.Identity{UID: "a1", Email: "admin@flowrk.in", ExpiresAt: time.Now().Add(time.Hour)}, nil)
	provider.On("CurrentSession", mock.Anything, mock.Anything).Return(nil, domain.ErrUnauthenticated)
	provider.On("AuthURL", mock.Anything).Return("https://accounts.google.com/o/oauth2/auth")

	store := memory.NewStore()
	jobs := collection.New[domain.Job](store, domain.CollectionJobs, collection.GeneratedKeys)
	workers := collection.New[domain.WorkerProfile](store, domain.CollectionWorkers, collection.CallerKeys)
	employers := collection.New[domain.EmployerProfile](store, domain.CollectionEmployers, collection.CallerKeys)
	auditLogs := collection.New[domain.AuditLog](store, domain.CollectionAuditLogs, collection.GeneratedKeys)
	notifications := collection.New[domain.Notification](store, domain.CollectionNotifications, collection.GeneratedKeys)
	contacts := collection.New[domain.ContactMessage](store, domain.CollectionContactMessages, collection.GeneratedKeys)

	sessions := session.NewCache(provider, time.Minute)
	t.Cleanup(sessions.Close)
	validate := validation.New()
	links := usecase.LinkConfig{SiteName: "Flowrk.in", CountryCode: "91"}

	identityUC := usecase.NewIdentityUsecase(provider, sessions, memory.NewRoleCache(time.Hour), workers, employers, usecase.IdentityConfig{
		AdminEmails: []string{"admin@flowrk.in"},
	})
	audit := usecase.NewAuditLogger(auditLogs)
	contentUC := usecase.NewContentUsecase(store, notifications, contacts, audit, nopForwarder{}, identityUC.IsAdmin, validate)

	router := v1.NewRouter(v1.RouterDeps{
		IdentityUC: identityUC,
		Sessions:   sessions,
		JobUC:      usecase.NewJobUsecase(jobs, employers, validate, links),
		WorkerUC:   usecase.NewWorkerUsecase(workers, employers, jobs, contentUC, validate, links),
		EmployerUC: usecase.NewEmployerUsecase(employers, workers, contentUC, validate),
		AdminUC:    usecase.NewAdminUsecase(jobs, workers, employers, auditLogs, audit, identityUC.IsAdmin),
		ContentUC:  contentUC,
		HealthUC:   usecase.NewHealthUsecase(store, nil),
		Config: &config.Config{
			GinMode:                  gin.TestMode,
			FrontendURL:              "http://localhost:3000",
			RateLimitWindowSeconds:   60,
			RateLimitLoginThreshold:  100,
			RateLimitGlobalThreshold: 10000,
		},
	})
	return router, jobs
}

func do(router http.Handler, method, path, token string, payload any) (*httptest.ResponseRecorder, body) {
	var reader *bytes.Reader
	if payload != nil {
		raw, _ := json.Marshal(payload)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var decoded body
	_ = json.Unmarshal(w.Body.Bytes(), &decoded)
	return w, decoded
}

func TestPublicRoutes(t *testing.T) {
	router, jobs := newTestRouter(t)
	_, err := jobs.Create(context.Background(), domain.Job{Title: "Paint", Category: domain.CategoryPainting, City: "Pune", Status: domain.JobStatusActive})
	require.NoError(t, err)

	t.Run("Should browse jobs without signing in", func(t *testing.T) {
		w, res := do(router, http.MethodGet, "/v1/jobs?city=Pune", "", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, res.Success)

		var list []domain.Job
		require.NoError(t, json.Unmarshal(res.Data, &list))
		require.Len(t, list, 1)
		assert.Equal(t, "Paint", list[0].Title)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})

	t.Run("Should report health", func(t *testing.T) {
		w, res := do(router, http.MethodGet, "/v1/health", "", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, res.Success)
	})

	t.Run("Should serve default content and 404 unknown sections", func(t *testing.T) {
		w, _ := do(router, http.MethodGet, "/v1/content/about", "", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		w, res := do(router, http.MethodGet, "/v1/content/careers", "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.False(t, res.Success)
	})

	t.Run("Should accept contact messages", func(t *testing.T) {
		w, _ := do(router, http.MethodPost, "/v1/contact", "", domain.ContactRequest{
			Name: "Ravi", Email: "ravi@example.com", Message: "Hello",
		})
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("Should reject invalid contact messages with a readable error", func(t *testing.T) {
		w, res := do(router, http.MethodPost, "/v1/contact", "", domain.ContactRequest{Name: "Ravi", Email: "nope", Message: "Hello"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, res.Message, "Email is not a valid email address")
	})
}

func TestProtectedRoutes(t *testing.T) {
	router, _ := newTestRouter(t)

	t.Run("Should require a session", func(t *testing.T) {
		w, _ := do(router, http.MethodGet, "/v1/workers/me", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		w, _ = do(router, http.MethodGet, "/v1/auth/me", "expired-token", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Should resolve the signed-in user", func(t *testing.T) {
		w, res := do(router, http.MethodGet, "/v1/auth/me", "user-token", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		var me domain.Me
		require.NoError(t, json.Unmarshal(res.Data, &me))
		assert.Equal(t, "u1", me.ID)
		assert.Equal(t, domain.StateSignedInNoRole, me.State)
	})

	t.Run("Should keep non-admins out of the admin console", func(t *testing.T) {
		w, _ := do(router, http.MethodGet, "/v1/admin/stats", "user-token", nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Should let admins in", func(t *testing.T) {
		w, res := do(router, http.MethodGet, "/v1/admin/stats", "admin-token", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, res.Success)
	})
}

func TestCSRF(t *testing.T) {
	router, _ := newTestRouter(t)

	t.Run("Should refuse a cookie-authenticated write without the CSRF header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPatch, "/v1/auth/me", bytes.NewReader([]byte(`{"user_role":"worker"}`)))
		req.Header.Set("Content-Type", "application/json")
		req.AddCookie(&http.Cookie{Name: "session_token", Value: "user-token"})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Should accept a cookie-authenticated write that echoes the CSRF cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPatch, "/v1/auth/me", bytes.NewReader([]byte(`{"user_role":"worker"}`)))
		req.Header.Set("Content-Type", "application/json")
		req.AddCookie(&http.Cookie{Name: "session_token", Value: "user-token"})
		req.AddCookie(&http.Cookie{Name: "csrf_token", Value: "abc123"})
		req.Header.Set("X-CSRF-Token", "abc123")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
