package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"flowrk-backend/internal/domain"
)

func TestContentSections(t *testing.T) {
	t.Run("Should serve defaults until a section is saved", func(t *testing.T) {
		env := newTestEnv(t)
		content, err := env.content.Section(context.Background(), domain.SectionFAQ)
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultCMSContent[domain.SectionFAQ], content.Content)

		require.NoError(t, env.content.SaveSection(adminCtx(), domain.SectionFAQ, "Q: Is it free?\nA: Yes."))
		content, err = env.content.Section(context.Background(), domain.SectionFAQ)
		require.NoError(t, err)
		assert.Equal(t, "Q: Is it free?\nA: Yes.", content.Content)

		all, err := env.content.Sections(context.Background())
		require.NoError(t, err)
		assert.Len(t, all, len(domain.CMSSections))
	})

	t.Run("Should 404 an unknown section", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.content.Section(context.Background(), "careers")
		assert.Equal(t, http.StatusNotFound, statusOf(err))
	})

	t.Run("Should keep non-admins from saving", func(t *testing.T) {
		env := newTestEnv(t)
		err := env.content.SaveSection(signedIn("u1", "u1@example.com"), domain.SectionAbout, "hacked")
		assert.Equal(t, http.StatusForbidden, statusOf(err))
		err = env.content.SaveSection(context.Background(), domain.SectionAbout, "hacked")
		assert.Equal(t, http.StatusUnauthorized, statusOf(err))
	})
}

func TestContentSettings(t *testing.T) {
	t.Run("Should return defaults when nothing is stored", func(t *testing.T) {
		env := newTestEnv(t)
		settings, err := env.content.Settings(context.Background())
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultSiteSettings(), *settings)
	})

	t.Run("Should overlay stored fields on the defaults", func(t *testing.T) {
		env := newTestEnv(t)
		require.NoError(t, env.store.Write(context.Background(), domain.PathSettings, map[string]any{"maintenance_mode": true}))

		settings, err := env.content.Settings(context.Background())
		require.NoError(t, err)
		assert.True(t, settings.MaintenanceMode)
		assert.True(t, settings.AllowNewRegistrations)
		assert.Equal(t, "Flowrk.in", settings.SiteName)
	})

	t.Run("Should fall back to defaults when the stored node is unreadable", func(t *testing.T) {
		env := newTestEnv(t)
		require.NoError(t, env.store.Write(context.Background(), domain.PathSettings, map[string]any{"maintenance_mode": "yes"}))

		settings, err := env.content.Settings(context.Background())
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultSiteSettings(), *settings)
	})

	t.Run("Should validate and audit saved settings", func(t *testing.T) {
		env := newTestEnv(t)
		settings := domain.DefaultSiteSettings()
		settings.SiteName = "  "
		assert.Equal(t, http.StatusBadRequest, statusOf(env.content.SaveSettings(adminCtx(), settings)))

		settings = domain.DefaultSiteSettings()
		settings.MaintenanceMode = true
		require.NoError(t, env.content.SaveSettings(adminCtx(), settings))

		logs, err := env.auditLogs.All(context.Background())
		require.NoError(t, err)
		require.Len(t, logs, 1)
		assert.Equal(t, "Updated site settings", logs[0].Action)
		assert.Equal(t, domain.SeverityHigh, logs[0].Severity)
		assert.Equal(t, testAdminEmail, logs[0].AdminEmail)
		assert.NotEmpty(t, logs[0].Timestamp)
	})
}

func TestSettingsAuditSeverity(t *testing.T) {
	severities := func(t *testing.T, env *testEnv) []domain.Severity {
		t.Helper()
		logs, err := env.auditLogs.All(context.Background())
		require.NoError(t, err)
		out := make([]domain.Severity, 0, len(logs))
		for _, entry := range logs {
			out = append(out, entry.Severity)
		}
		return out
	}

	t.Run("Should rate both maintenance toggles high and other saves medium", func(t *testing.T) {
		env := newTestEnv(t)
		settings := domain.DefaultSiteSettings()

		settings.MaintenanceMode = true
		require.NoError(t, env.content.SaveSettings(adminCtx(), settings))

		settings.SEOTitle = "Local jobs near you"
		require.NoError(t, env.content.SaveSettings(adminCtx(), settings))

		settings.MaintenanceMode = false
		require.NoError(t, env.content.SaveSettings(adminCtx(), settings))

		assert.ElementsMatch(t,
			[]domain.Severity{domain.SeverityHigh, domain.SeverityMedium, domain.SeverityHigh},
			severities(t, env))
	})

	t.Run("Should rate closing registrations medium", func(t *testing.T) {
		env := newTestEnv(t)
		settings := domain.DefaultSiteSettings()
		settings.AllowNewRegistrations = false
		require.NoError(t, env.content.SaveSettings(adminCtx(), settings))
		assert.Equal(t, []domain.Severity{domain.SeverityMedium}, severities(t, env))
	})
}

func TestContentNotifications(t *testing.T) {
	t.Run("Should record notifications without delivering them", func(t *testing.T) {
		env := newTestEnv(t)
		n, err := env.content.ComposeNotification(adminCtx(), domain.NotificationRequest{
			Audience: "workers",
			Title:    " New jobs in Pune ",
			Message:  "Check the latest listings.",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.NotificationRecorded, n.Status)
		assert.Equal(t, "New jobs in Pune", n.Title)
		assert.Equal(t, testAdminEmail, n.CreatedBy)

		list, err := env.content.Notifications(adminCtx())
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, n.ID, list[0].ID)
	})

	t.Run("Should reject unknown audiences and non-admins", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.content.ComposeNotification(adminCtx(), domain.NotificationRequest{Audience: "everyone", Title: "t", Message: "m"})
		assert.Equal(t, http.StatusBadRequest, statusOf(err))

		_, err = env.content.Notifications(signedIn("u1", "u1@example.com"))
		assert.Equal(t, http.StatusForbidden, statusOf(err))
	})
}

func TestContactMessages(t *testing.T) {
	req := domain.ContactRequest{Name: "Ravi Kumar", Email: "ravi@example.com", Subject: "Help", Message: "How do I post a job?"}

	t.Run("Should store the message without forwarding when mail is off", func(t *testing.T) {
		env := newTestEnv(t)
		env.forwarder.On("IsConfigured").Return(false)

		msg, err := env.content.SubmitContact(context.Background(), req)
		require.NoError(t, err)
		assert.False(t, msg.Forwarded)
		env.forwarder.AssertNotCalled(t, "SendContactEmail", mock.Anything)

		stored, err := env.contacts.Get(context.Background(), msg.ID)
		require.NoError(t, err)
		assert.Equal(t, "How do I post a job?", stored.Message)
	})

	t.Run("Should forward and mark the message", func(t *testing.T) {
		env := newTestEnv(t)
		env.forwarder.On("IsConfigured").Return(true)
		env.forwarder.On("SendContactEmail", mock.MatchedBy(func(m domain.ContactMessage) bool {
			return m.Email == "ravi@example.com" && m.ID != ""
		})).Return(nil)

		msg, err := env.content.SubmitContact(context.Background(), req)
		require.NoError(t, err)
		assert.True(t, msg.Forwarded)

		stored, err := env.contacts.Get(context.Background(), msg.ID)
		require.NoError(t, err)
		assert.True(t, stored.Forwarded)
	})

	t.Run("Should keep the message when forwarding fails", func(t *testing.T) {
		env := newTestEnv(t)
		env.forwarder.On("IsConfigured").Return(true)
		env.forwarder.On("SendContactEmail", mock.Anything).Return(errors.New("smtp: 421"))

		msg, err := env.content.SubmitContact(context.Background(), req)
		require.NoError(t, err)
		assert.False(t, msg.Forwarded)

		all, err := env.contacts.All(context.Background())
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("Should validate the sender", func(t *testing.T) {
		env := newTestEnv(t)
		bad := req
		bad.Email = "not-an-email"
		_, err := env.content.SubmitContact(context.Background(), bad)
		assert.Equal(t, http.StatusBadRequest, statusOf(err))
	})
}
