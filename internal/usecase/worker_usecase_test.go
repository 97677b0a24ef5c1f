package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowrk-backend/internal/domain"
)

func closeRegistrations(t *testing.T, env *testEnv) {
	t.Helper()
	settings := domain.DefaultSiteSettings()
	settings.AllowNewRegistrations = false
	require.NoError(t, env.content.SaveSettings(adminCtx(), settings))
}

func TestWorkerRegistration(t *testing.T) {
	t.Run("Should create the profile with deduplicated skills and empty job lists", func(t *testing.T) {
		env := newTestEnv(t)
		ctx := signedIn("w1", "w1@example.com")

		profile, err := env.worker.Register(ctx, validWorkerRegistration())
		require.NoError(t, err)
		assert.Equal(t, "w1", profile.ID)
		assert.Equal(t, "w1@example.com", profile.Email)
		assert.Equal(t, domain.RoleWorker, profile.UserRole)
		assert.Equal(t, []string{"painting", "cleaning"}, profile.Skills)
		assert.Empty(t, profile.SavedJobs)
		assert.Empty(t, profile.AppliedJobs)
	})

	t.Run("Should complete a stub created at role selection", func(t *testing.T) {
		env := newTestEnv(t)
		ctx := signedIn("w1", "w1@example.com")
		_, err := env.identity.UpdateMe(ctx, domain.UpdateMeRequest{UserRole: domain.RoleWorker})
		require.NoError(t, err)

		profile, err := env.worker.Register(ctx, validWorkerRegistration())
		require.NoError(t, err)
		assert.Equal(t, "Asha Patil", profile.FullName)
		assert.Equal(t, "w1@example.com", profile.Email)
		assert.NotEmpty(t, profile.CreatedAt)
	})

	t.Run("Should refuse new workers while registrations are closed", func(t *testing.T) {
		env := newTestEnv(t)
		closeRegistrations(t, env)

		_, err := env.worker.Register(signedIn("w1", "w1@example.com"), validWorkerRegistration())
		assert.Equal(t, http.StatusForbidden, statusOf(err))
	})

	t.Run("Should still let registered workers re-submit while registrations are closed", func(t *testing.T) {
		env := newTestEnv(t)
		ctx := registerWorker(t, env, "w1")
		closeRegistrations(t, env)

		_, err := env.worker.Register(ctx, validWorkerRegistration())
		assert.NoError(t, err)
	})

	t.Run("Should refuse an account already registered as employer", func(t *testing.T) {
		env := newTestEnv(t)
		ctx := registerEmployer(t, env, "u1")

		_, err := env.worker.Register(ctx, validWorkerRegistration())
		assert.Equal(t, http.StatusConflict, statusOf(err))
	})

	t.Run("Should update whitelisted fields and keep required ones", func(t *testing.T) {
		env := newTestEnv(t)
		ctx := registerWorker(t, env, "w1")

		city := "Mumbai"
		profile, err := env.worker.UpdateProfile(ctx, domain.WorkerProfileUpdate{City: &city, Skills: []string{"delivery"}})
		require.NoError(t, err)
		assert.Equal(t, "Mumbai", profile.City)
		assert.Equal(t, []string{"delivery"}, profile.Skills)
		assert.Equal(t, "Kothrud", profile.Area)

		blank := ""
		_, err = env.worker.UpdateProfile(ctx, domain.WorkerProfileUpdate{WhatsApp: &blank})
		assert.Equal(t, http.StatusBadRequest, statusOf(err))

		_, err = env.worker.UpdateProfile(ctx, domain.WorkerProfileUpdate{Skills: []string{}})
		assert.Equal(t, http.StatusBadRequest, statusOf(err))
	})
}

func TestWorkerJobLists(t *testing.T) {
	t.Run("Should toggle a saved job on and off", func(t *testing.T) {
		env := newTestEnv(t)
		job := postJob(t, env, registerEmployer(t, env, "e1"), nil)
		ctx := registerWorker(t, env, "w1")

		first, err := env.worker.ToggleSavedJob(ctx, job.ID)
		require.NoError(t, err)
		assert.True(t, first.Saved)
		assert.Equal(t, []string{job.ID}, first.SavedJobs)

		second, err := env.worker.ToggleSavedJob(ctx, job.ID)
		require.NoError(t, err)
		assert.False(t, second.Saved)
		assert.NotContains(t, second.SavedJobs, job.ID)

		profile, err := env.worker.Profile(ctx)
		require.NoError(t, err)
		assert.NotContains(t, profile.SavedJobs, job.ID)
	})

	t.Run("Should not save a job that does not exist", func(t *testing.T) {
		env := newTestEnv(t)
		ctx := registerWorker(t, env, "w1")
		_, err := env.worker.ToggleSavedJob(ctx, "missing")
		assert.Equal(t, http.StatusNotFound, statusOf(err))
	})

	t.Run("Should record an application once and return the chat link", func(t *testing.T) {
		env := newTestEnv(t)
		job := postJob(t, env, registerEmployer(t, env, "e1"), nil)
		ctx := registerWorker(t, env, "w1")

		result, err := env.worker.Apply(ctx, job.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{job.ID}, result.AppliedJobs)
		assert.Contains(t, result.WhatsAppURL, "https://wa.me/919123456780?text=")

		result, err = env.worker.Apply(ctx, job.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{job.ID}, result.AppliedJobs)
	})

	t.Run("Should refuse applications from blocked workers", func(t *testing.T) {
		env := newTestEnv(t)
		job := postJob(t, env, registerEmployer(t, env, "e1"), nil)
		ctx := registerWorker(t, env, "w1")
		require.NoError(t, env.workers.Update(ctx, "w1", map[string]any{"status": domain.AccountBlocked}))

		_, err := env.worker.Apply(ctx, job.ID)
		assert.Equal(t, http.StatusForbidden, statusOf(err))
	})

	t.Run("Should skip deleted jobs but keep their ids in the lists", func(t *testing.T) {
		env := newTestEnv(t)
		employerCtx := registerEmployer(t, env, "e1")
		kept := postJob(t, env, employerCtx, func(req *domain.PostJobRequest) { req.Title = "Kept" })
		gone := postJob(t, env, employerCtx, func(req *domain.PostJobRequest) { req.Title = "Gone" })
		ctx := registerWorker(t, env, "w1")

		for _, id := range []string{gone.ID, kept.ID} {
			_, err := env.worker.ToggleSavedJob(ctx, id)
			require.NoError(t, err)
			_, err = env.worker.Apply(ctx, id)
			require.NoError(t, err)
		}
		require.NoError(t, env.jobUC.Delete(employerCtx, gone.ID))

		saved, err := env.worker.SavedJobs(ctx)
		require.NoError(t, err)
		require.Len(t, saved, 1)
		assert.Equal(t, kept.ID, saved[0].ID)

		applied, err := env.worker.AppliedJobs(ctx)
		require.NoError(t, err)
		require.Len(t, applied, 1)
		assert.Equal(t, "Kept", applied[0].Title)

		profile, err := env.worker.Profile(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{gone.ID, kept.ID}, profile.SavedJobs)
		assert.Equal(t, []string{gone.ID, kept.ID}, profile.AppliedJobs)
	})

	t.Run("Should recommend active jobs in the worker's city matching their skills", func(t *testing.T) {
		env := newTestEnv(t)
		ctx := context.Background()
		for _, seed := range []domain.Job{
			{Title: "match", Category: domain.CategoryPainting, City: "Pune", Status: domain.JobStatusActive},
			{Title: "other skill", Category: domain.CategoryDelivery, City: "Pune", Status: domain.JobStatusActive},
			{Title: "other city", Category: domain.CategoryCleaning, City: "Mumbai", Status: domain.JobStatusActive},
			{Title: "closed", Category: domain.CategoryCleaning, City: "Pune", Status: domain.JobStatusClosed},
		} {
			_, err := env.jobs.Create(ctx, seed)
			require.NoError(t, err)
		}
		workerCtx := registerWorker(t, env, "w1")

		list, err := env.worker.Recommended(workerCtx)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "match", list[0].Title)
	})
}
