package usecase

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"flowrk-backend/internal/domain"
	"flowrk-backend/pkg/apperror"
	"flowrk-backend/pkg/logger"
)

const (
	recentJobsLimit = 5
	chartDays       = 7
	trendWindow     = 7 * 24 * time.Hour
)

type adminUsecase struct {
	jobs      domain.JobRepository
	workers   domain.WorkerRepository
	employers domain.EmployerRepository
	logs      domain.AuditLogRepository
	audit     domain.AuditLogger
	isAdmin   AdminCheck
	now       func() time.Time
}

func NewAdminUsecase(
	jobs domain.JobRepository,
	workers domain.WorkerRepository,
	employers domain.EmployerRepository,
	logs domain.AuditLogRepository,
	audit domain.AuditLogger,
	isAdmin AdminCheck,
) domain.AdminUsecase {
	return &adminUsecase{
		jobs:      jobs,
		workers:   workers,
		employers: employers,
		logs:      logs,
		audit:     audit,
		isAdmin:   isAdmin,
		now:       time.Now,
	}
}

// Stats builds the dashboard from full scans of the three collections.
func (u *adminUsecase) Stats(ctx context.Context) (*domain.DashboardStats, error) {
	if err := requireAdmin(ctx, u.isAdmin); err != nil {
		return nil, err
	}

	workers, err := u.workers.All(ctx)
	if err != nil {
		return nil, apperror.FromStore(err, "Worker profile")
	}
	employers, err := u.employers.All(ctx)
	if err != nil {
		return nil, apperror.FromStore(err, "Employer profile")
	}
	jobs, err := u.jobs.All(ctx)
	if err != nil {
		return nil, apperror.FromStore(err, "Job")
	}

	workerDates := make([]string, 0, len(workers))
	for _, w := range workers {
		workerDates = append(workerDates, w.CreatedAt)
	}
	employerDates := make([]string, 0, len(employers))
	for _, e := range employers {
		employerDates = append(employerDates, e.CreatedAt)
	}
	userDates := append(slices.Clone(workerDates), employerDates...)
	jobDates := make([]string, 0, len(jobs))
	active := 0
	for _, j := range jobs {
		jobDates = append(jobDates, j.CreatedAt)
		if j.Status.Live() {
			active++
		}
	}

	now := u.now().UTC()
	return &domain.DashboardStats{
		TotalUsers:     len(workers) + len(employers),
		TotalWorkers:   len(workers),
		TotalEmployers: len(employers),
		ActiveJobs:     active,
		TotalJobs:      len(jobs),
		RecentJobs:     recentJobs(jobs, recentJobsLimit),
		Chart:          activityChart(now, userDates, jobDates),
		UsersTrend:     weekTrend(now, userDates),
		WorkersTrend:   weekTrend(now, workerDates),
		EmployersTrend: weekTrend(now, employerDates),
		JobsTrend:      weekTrend(now, jobDates),
	}, nil
}

// ModerationQueue lists jobs with the given status ("pending" when empty, "all" for every status),
// narrowed by a case-insensitive search on title, employer name and category.
func (u *adminUsecase) ModerationQueue(ctx context.Context, status, search string) ([]domain.Job, error) {
	if err := requireAdmin(ctx, u.isAdmin); err != nil {
		return nil, err
	}
	if status == "" {
		status = string(domain.JobStatusPending)
	}
	var where map[string]any
	if status != "all" {
		where = map[string]any{"status": status}
	}

	jobs, err := u.jobs.Filter(ctx, where, "-created_at", 0)
	if err != nil {
		return nil, apperror.FromStore(err, "Job")
	}
	search = strings.TrimSpace(search)
	if search == "" {
		return jobs, nil
	}

	out := make([]domain.Job, 0, len(jobs))
	for _, job := range jobs {
		employer := job.EmployerName
		if employer == "" {
			employer = "Anonymous Employer"
		}
		if containsFold(job.Title, search) || containsFold(employer, search) || containsFold(string(job.Category), search) {
			out = append(out, job)
		}
	}
	return out, nil
}

func (u *adminUsecase) SetJobStatus(ctx context.Context, id string, status domain.JobStatus) error {
	if err := requireAdmin(ctx, u.isAdmin); err != nil {
		return err
	}
	if !status.Valid() {
		return apperror.BadRequest("Unknown job status")
	}
	job, err := u.jobs.Get(ctx, id)
	if err != nil {
		return apperror.FromStore(err, "Job")
	}
	if err := u.jobs.Update(ctx, id, map[string]any{"status": status}); err != nil {
		return apperror.FromStore(err, "Job")
	}

	severity := domain.SeverityMedium
	if status == domain.JobStatusRejected {
		severity = domain.SeverityHigh
	}
	u.audit.Record(ctx, domain.AuditLog{
		Action:     fmt.Sprintf("Set job status to %s", status),
		TargetType: "job",
		TargetID:   id,
		TargetName: job.DisplayTitle(),
		Severity:   severity,
	})
	return nil
}

func (u *adminUsecase) DeleteJob(ctx context.Context, id string) error {
	if err := requireAdmin(ctx, u.isAdmin); err != nil {
		return err
	}
	job, err := u.jobs.Get(ctx, id)
	if err != nil {
		return apperror.FromStore(err, "Job")
	}
	if err := u.jobs.Delete(ctx, id); err != nil {
		return apperror.FromStore(err, "Job")
	}
	u.audit.Record(ctx, domain.AuditLog{
		Action:     "Deleted job",
		TargetType: "job",
		TargetID:   id,
		TargetName: job.DisplayTitle(),
		Severity:   domain.SeverityHigh,
	})
	logger.Log.Info("job deleted by admin", "job_id", id)
	return nil
}

// ListUsers merges worker and employer profiles. An empty role lists both.
func (u *adminUsecase) ListUsers(ctx context.Context, role domain.Role, search string) ([]domain.UserSummary, error) {
	if err := requireAdmin(ctx, u.isAdmin); err != nil {
		return nil, err
	}
	if role != "" && !role.Valid() {
		return nil, apperror.BadRequest("Role must be worker or employer")
	}

	var users []domain.UserSummary
	if role == "" || role == domain.RoleWorker {
		workers, err := u.workers.All(ctx)
		if err != nil {
			return nil, apperror.FromStore(err, "Worker profile")
		}
		for i := range workers {
			users = append(users, workerSummary(&workers[i]))
		}
	}
	if role == "" || role == domain.RoleEmployer {
		employers, err := u.employers.All(ctx)
		if err != nil {
			return nil, apperror.FromStore(err, "Employer profile")
		}
		jobs, err := u.jobs.All(ctx)
		if err != nil {
			return nil, apperror.FromStore(err, "Job")
		}
		posted := make(map[string]int, len(employers))
		for _, job := range jobs {
			posted[job.EmployerID]++
		}
		for i := range employers {
			summary := employerSummary(&employers[i])
			actual := posted[employers[i].ID]
			summary.JobsPostedActual = &actual
			users = append(users, summary)
		}
	}

	search = strings.TrimSpace(search)
	out := make([]domain.UserSummary, 0, len(users))
	for _, user := range users {
		if search == "" || containsFold(user.Name, search) || containsFold(user.Phone, search) ||
			containsFold(user.Email, search) || containsFold(user.City, search) {
			out = append(out, user)
		}
	}
	slices.SortStableFunc(out, func(a, b domain.UserSummary) int {
		return cmp.Compare(b.CreatedAt, a.CreatedAt)
	})
	return out, nil
}

// ToggleUserStatus flips the account between active and blocked.
func (u *adminUsecase) ToggleUserStatus(ctx context.Context, role domain.Role, id string) (*domain.UserSummary, error) {
	if err := requireAdmin(ctx, u.isAdmin); err != nil {
		return nil, err
	}
	summary, err := u.userSummary(ctx, role, id)
	if err != nil {
		return nil, err
	}

	next, action, severity := domain.AccountBlocked, "Blocked user", domain.SeverityHigh
	if summary.Status == domain.AccountBlocked {
		next, action, severity = domain.AccountActive, "Unblocked user", domain.SeverityMedium
	}
	if err := u.updateProfile(ctx, role, id, map[string]any{"status": next}); err != nil {
		return nil, err
	}
	summary.Status = next

	u.audit.Record(ctx, domain.AuditLog{
		Action:     action,
		TargetType: string(role),
		TargetID:   id,
		TargetName: summary.Name,
		Severity:   severity,
	})
	return summary, nil
}

func (u *adminUsecase) ToggleUserVerified(ctx context.Context, role domain.Role, id string) (*domain.UserSummary, error) {
	if err := requireAdmin(ctx, u.isAdmin); err != nil {
		return nil, err
	}
	summary, err := u.userSummary(ctx, role, id)
	if err != nil {
		return nil, err
	}

	verified := !summary.Verified
	if err := u.updateProfile(ctx, role, id, map[string]any{"verified": verified}); err != nil {
		return nil, err
	}
	summary.Verified = verified

	action := "Verified user"
	if !verified {
		action = "Revoked user verification"
	}
	u.audit.Record(ctx, domain.AuditLog{
		Action:     action,
		TargetType: string(role),
		TargetID:   id,
		TargetName: summary.Name,
		Severity:   domain.SeverityMedium,
	})
	return summary, nil
}

// AuditLogs returns entries newest first, narrowed by admin name, action or target name.
func (u *adminUsecase) AuditLogs(ctx context.Context, search string) ([]domain.AuditLog, error) {
	if err := requireAdmin(ctx, u.isAdmin); err != nil {
		return nil, err
	}
	logs, err := u.logs.Filter(ctx, nil, "-timestamp", 0)
	if err != nil {
		return nil, apperror.FromStore(err, "Audit log")
	}
	search = strings.TrimSpace(search)
	if search == "" {
		return logs, nil
	}
	out := make([]domain.AuditLog, 0, len(logs))
	for _, entry := range logs {
		if containsFold(entry.AdminName, search) || containsFold(entry.Action, search) || containsFold(entry.TargetName, search) {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (u *adminUsecase) userSummary(ctx context.Context, role domain.Role, id string) (*domain.UserSummary, error) {
	switch role {
	case domain.RoleWorker:
		profile, err := u.workers.Get(ctx, id)
		if err != nil {
			return nil, apperror.FromStore(err, "Worker profile")
		}
		summary := workerSummary(profile)
		return &summary, nil
	case domain.RoleEmployer:
		profile, err := u.employers.Get(ctx, id)
		if err != nil {
			return nil, apperror.FromStore(err, "Employer profile")
		}
		summary := employerSummary(profile)
		return &summary, nil
	default:
		return nil, apperror.BadRequest("Role must be worker or employer")
	}
}

func (u *adminUsecase) updateProfile(ctx context.Context, role domain.Role, id string, patch map[string]any) error {
	var err error
	if role == domain.RoleEmployer {
		err = u.employers.Update(ctx, id, patch)
	} else {
		err = u.workers.Update(ctx, id, patch)
	}
	if err != nil {
		return apperror.FromStore(err, "Profile")
	}
	return nil
}

func workerSummary(p *domain.WorkerProfile) domain.UserSummary {
	return domain.UserSummary{
		ID:        p.ID,
		Role:      domain.RoleWorker,
		Name:      p.FullName,
		Email:     p.Email,
		Phone:     p.WhatsApp,
		City:      p.City,
		Area:      p.Area,
		Status:    accountStatus(p.Status),
		Verified:  p.Verified,
		CreatedAt: p.CreatedAt,
	}
}

func employerSummary(p *domain.EmployerProfile) domain.UserSummary {
	posted := p.TotalJobsPosted
	return domain.UserSummary{
		ID:              p.ID,
		Role:            domain.RoleEmployer,
		Name:            p.DisplayName(),
		Email:           p.Email,
		Phone:           p.WhatsApp,
		City:            p.City,
		Area:            p.Area,
		Status:          accountStatus(p.Status),
		Verified:        p.Verified,
		CreatedAt:       p.CreatedAt,
		TotalJobsPosted: &posted,
	}
}

func accountStatus(status string) string {
	if status == "" {
		return domain.AccountActive
	}
	return status
}

func recentJobs(jobs []domain.Job, n int) []domain.Job {
	sorted := slices.Clone(jobs)
	slices.SortStableFunc(sorted, func(a, b domain.Job) int {
		return createdAt(b.CreatedAt).Compare(createdAt(a.CreatedAt))
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// activityChart counts sign-ups and posted jobs per UTC day for the last seven days, oldest first.
func activityChart(now time.Time, userDates, jobDates []string) []domain.ActivityPoint {
	points := make([]domain.ActivityPoint, 0, chartDays)
	for i := chartDays - 1; i >= 0; i-- {
		day := now.AddDate(0, 0, -i)
		date := day.Format(time.DateOnly)
		points = append(points, domain.ActivityPoint{
			Name:  day.Weekday().String()[:3],
			Date:  date,
			Users: countOnDay(userDates, date),
			Jobs:  countOnDay(jobDates, date),
		})
	}
	return points
}

func countOnDay(dates []string, day string) int {
	n := 0
	for _, d := range dates {
		if d != "" && strings.HasPrefix(d, day) {
			n++
		}
	}
	return n
}

// weekTrend compares the last seven days with the seven before them. With no previous
// activity the trend is 100 when anything happened this week and 0 otherwise.
func weekTrend(now time.Time, dates []string) domain.Trend {
	weekAgo := now.Add(-trendWindow)
	twoWeeksAgo := now.Add(-2 * trendWindow)

	current, previous := 0, 0
	for _, d := range dates {
		t := createdAt(d)
		switch {
		case !t.Before(weekAgo) && !t.After(now):
			current++
		case !t.Before(twoWeeksAgo) && t.Before(weekAgo):
			previous++
		}
	}

	if previous == 0 {
		if current > 0 {
			return domain.Trend{Val: 100, Dir: "up"}
		}
		return domain.Trend{Val: 0, Dir: "up"}
	}
	diff := float64(current-previous) / float64(previous) * 100
	dir := "up"
	if diff < 0 {
		dir = "down"
	}
	// Half-way values round towards positive infinity.
	return domain.Trend{Val: int(math.Abs(math.Floor(diff + 0.5))), Dir: dir}
}

// createdAt parses a stored timestamp; missing or malformed values sort as the epoch.
func createdAt(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Unix(0, 0).UTC()
	}
	return t
}
