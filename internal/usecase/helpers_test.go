package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"flowrk-backend/internal/domain"
	"flowrk-backend/internal/repository/collection"
	"flowrk-backend/internal/repository/memory"
	"flowrk-backend/internal/session"
	"flowrk-backend/internal/usecase"
	"flowrk-backend/pkg/apperror"
	"flowrk-backend/pkg/validation"
)

const testAdminEmail = "admin@flowrk.in"

// MockProvider stands in for Google sign-in. Subscribers are kept so tests can publish events.
type MockProvider struct {
	mock.Mock

	mu   sync.Mutex
	subs []func(domain.SessionEvent)
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

func (m *MockProvider) Subscribe(fn func(domain.SessionEvent)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, fn)
	return func() {}
}

func (m *MockProvider) Publish(event domain.SessionEvent) {
	m.mu.Lock()
	subs := append([]func(domain.SessionEvent){}, m.subs...)
	m.mu.Unlock()
	for _, fn := range subs {
		fn(event)
	}
}

type MockForwarder struct {
	mock.Mock
}

func (m *MockForwarder) IsConfigured() bool {
	return m.Called().Bool(0)
}

func (m *MockForwarder) SendContactEmail(msg domain.ContactMessage) error {
	return m.Called(msg).Error(0)
}

// testEnv wires every usecase over one in-memory store, the way cmd/api does over the real one.
type testEnv struct {
	store         *memory.Store
	jobs          *collection.Collection[domain.Job]
	workers       *collection.Collection[domain.WorkerProfile]
	employers     *collection.Collection[domain.EmployerProfile]
	auditLogs     *collection.Collection[domain.AuditLog]
	notifications *collection.Collection[domain.Notification]
	contacts      *collection.Collection[domain.ContactMessage]

	provider  *MockProvider
	sessions  *session.Cache
	roles     *memory.RoleCache
	forwarder *MockForwarder

	identity domain.IdentityUsecase
	content  domain.ContentUsecase
	jobUC    domain.JobUsecase
	worker   domain.WorkerUsecase
	employer domain.EmployerUsecase
	admin    domain.AdminUsecase
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.NewStore()
	env := &testEnv{
		store:         store,
		jobs:          collection.New[domain.Job](store, domain.CollectionJobs, collection.GeneratedKeys),
		workers:       collection.New[domain.WorkerProfile](store, domain.CollectionWorkers, collection.CallerKeys),
		employers:     collection.New[domain.EmployerProfile](store, domain.CollectionEmployers, collection.CallerKeys),
		auditLogs:     collection.New[domain.AuditLog](store, domain.CollectionAuditLogs, collection.GeneratedKeys),
		notifications: collection.New[domain.Notification](store, domain.CollectionNotifications, collection.GeneratedKeys),
		contacts:      collection.New[domain.ContactMessage](store, domain.CollectionContactMessages, collection.GeneratedKeys),
		provider:      new(MockProvider),
		roles:         memory.NewRoleCache(time.Hour),
		forwarder:     new(MockForwarder),
	}
	env.sessions = session.NewCache(env.provider, time.Minute)
	t.Cleanup(env.sessions.Close)

	validate := validation.New()
	links := usecase.LinkConfig{SiteName: "Flowrk.in", CountryCode: "91"}

	env.identity = usecase.NewIdentityUsecase(env.provider, env.sessions, env.roles, env.workers, env.employers, usecase.IdentityConfig{
		AdminEmails: []string{" Admin@Flowrk.in "},
		AuthTimeout: 100 * time.Millisecond,
	})
	audit := usecase.NewAuditLogger(env.auditLogs)
	env.content = usecase.NewContentUsecase(store, env.notifications, env.contacts, audit, env.forwarder, env.identity.IsAdmin, validate)
	env.jobUC = usecase.NewJobUsecase(env.jobs, env.employers, validate, links)
	env.worker = usecase.NewWorkerUsecase(env.workers, env.employers, env.jobs, env.content, validate, links)
	env.employer = usecase.NewEmployerUsecase(env.employers, env.workers, env.content, validate)
	env.admin = usecase.NewAdminUsecase(env.jobs, env.workers, env.employers, env.auditLogs, audit, env.identity.IsAdmin)
	return env
}

func signedIn(uid, email string) context.Context {
	return domain.WithSession(context.Background(), "tok-"+uid, &domain.Identity{
		UID:         uid,
		Email:       email,
		DisplayName: "User " + uid,
		ExpiresAt:   time.Now().Add(time.Hour),
	})
}

func adminCtx() context.Context {
	return signedIn("admin-uid", testAdminEmail)
}

// statusOf returns the HTTP status an error maps to, or 0 for non-API errors.
func statusOf(err error) int {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return 0
}

func validWorkerRegistration() domain.WorkerRegistration {
	return domain.WorkerRegistration{
		FullName:     "Asha Patil",
		City:         "Pune",
		Area:         "Kothrud",
		Skills:       []string{"painting", "cleaning", "painting"},
		Availability: domain.AvailabilityFullDay,
		WhatsApp:     "98765 43210",
	}
}

func validEmployerRegistration() domain.EmployerRegistration {
	return domain.EmployerRegistration{
		Name:         "Sharma Hardware",
		City:         "Pune",
		Area:         "Kothrud",
		EmployerType: domain.EmployerShopOwner,
		WhatsApp:     "9123456780",
	}
}

func validJobPost() domain.PostJobRequest {
	return domain.PostJobRequest{
		Category:    domain.CategoryPainting,
		Title:       "Paint a 2BHK flat",
		Description: "Two rooms and a hall, materials provided",
		Payment:     "800",
		PaymentType: domain.PaymentPerDay,
		City:        "Pune",
		Area:        "Kothrud",
		WhatsApp:    "9123456780",
		Timing:      "Full Day",
	}
}

// registerEmployer signs uid in and completes an employer registration.
func registerEmployer(t *testing.T, env *testEnv, uid string) context.Context {
	t.Helper()
	ctx := signedIn(uid, uid+"@example.com")
	_, err := env.employer.Register(ctx, validEmployerRegistration())
	require.NoError(t, err)
	return ctx
}

func registerWorker(t *testing.T, env *testEnv, uid string) context.Context {
	t.Helper()
	ctx := signedIn(uid, uid+"@example.com")
	_, err := env.worker.Register(ctx, validWorkerRegistration())
	require.NoError(t, err)
	return ctx
}

func postJob(t *testing.T, env *testEnv, ctx context.Context, mutate func(*domain.PostJobRequest)) *domain.Job {
	t.Helper()
	req := validJobPost()
	if mutate != nil {
		mutate(&req)
	}
	job, err := env.jobUC.Post(ctx, req)
	require.NoError(t, err)
	return job
}
