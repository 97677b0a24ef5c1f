package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"flowrk-backend/internal/delivery/http/response"
	"flowrk-backend/internal/domain"
)

type AdminHandler struct {
	adminUC   domain.AdminUsecase
	contentUC domain.ContentUsecase
}

// NewAdminHandler registers the console routes on admin, which must already carry the
// auth and admin middleware.
func NewAdminHandler(admin *gin.RouterGroup, adminUC domain.AdminUsecase, contentUC domain.ContentUsecase) {
	handler := &AdminHandler{adminUC: adminUC, contentUC: contentUC}

	admin.GET("/stats", handler.Stats)

	jobs := admin.Group("/jobs")
	{
		jobs.GET("", handler.ModerationQueue)
		jobs.PATCH("/:id/status", handler.SetJobStatus)
		jobs.DELETE("/:id", handler.DeleteJob)
	}

	users := admin.Group("/users")
	{
		users.GET("", handler.ListUsers)
		users.PATCH("/:role/:id/status", handler.ToggleUserStatus)
		users.PATCH("/:role/:id/verify", handler.ToggleUserVerified)
	}

	admin.GET("/cms", handler.Sections)
	admin.PUT("/cms/:section", handler.SaveSection)
	admin.GET("/settings", handler.Settings)
	admin.PUT("/settings", handler.SaveSettings)
	admin.GET("/logs", handler.AuditLogs)
	admin.GET("/notifications", handler.Notifications)
	admin.POST("/notifications", handler.ComposeNotification)
}

// Stats godoc
// @Summary      Dashboard statistics
// @Tags         admin
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.DashboardStats}
// @Failure      403  {object}  response.Response
// @Router       /admin/stats [get]
// @Security     BearerAuth
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.adminUC.Stats(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Statistics fetched", stats)
}

// ModerationQueue godoc
// @Summary      Job moderation queue
// @Tags         admin
// @Produce      json
// @Param        status  query     string  false  "Job status, default pending, all for every status"
// @Param        search  query     string  false  "Title, employer or category"
// @Success      200     {object}  response.Response{data=[]domain.Job}
// @Router       /admin/jobs [get]
// @Security     BearerAuth
func (h *AdminHandler) ModerationQueue(c *gin.Context) {
	jobs, err := h.adminUC.ModerationQueue(c.Request.Context(), c.Query("status"), c.Query("search"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Jobs fetched", jobs)
}

// SetJobStatus godoc
// @Summary      Moderate a job
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id      path      string                true  "Job ID"
// @Param        status  body      domain.StatusRequest  true  "New status"
// @Success      200     {object}  response.Response
// @Router       /admin/jobs/{id}/status [patch]
// @Security     BearerAuth
func (h *AdminHandler) SetJobStatus(c *gin.Context) {
	var req domain.StatusRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.adminUC.SetJobStatus(c.Request.Context(), c.Param("id"), req.Status); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Job status updated", gin.H{"status": req.Status})
}

// DeleteJob godoc
// @Summary      Delete a job
// @Tags         admin
// @Produce      json
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  response.Response
// @Router       /admin/jobs/{id} [delete]
// @Security     BearerAuth
func (h *AdminHandler) DeleteJob(c *gin.Context) {
	if err := h.adminUC.DeleteJob(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Job deleted", nil)
}

// ListUsers godoc
// @Summary      Users
// @Tags         admin
// @Produce      json
// @Param        role    query     string  false  "worker or employer"
// @Param        search  query     string  false  "Name, phone, email or city"
// @Success      200     {object}  response.Response{data=[]domain.UserSummary}
// @Router       /admin/users [get]
// @Security     BearerAuth
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.adminUC.ListUsers(c.Request.Context(), domain.Role(c.Query("role")), c.Query("search"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Users fetched", users)
}

// ToggleUserStatus godoc
// @Summary      Block or unblock a user
// @Tags         admin
// @Produce      json
// @Param        role  path      string  true  "worker or employer"
// @Param        id    path      string  true  "User ID"
// @Success      200   {object}  response.Response{data=domain.UserSummary}
// @Router       /admin/users/{role}/{id}/status [patch]
// @Security     BearerAuth
func (h *AdminHandler) ToggleUserStatus(c *gin.Context) {
	user, err := h.adminUC.ToggleUserStatus(c.Request.Context(), domain.Role(c.Param("role")), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "User status updated", user)
}

// ToggleUserVerified godoc
// @Summary      Verify or unverify a user
// @Tags         admin
// @Produce      json
// @Param        role  path      string  true  "worker or employer"
// @Param        id    path      string  true  "User ID"
// @Success      200   {object}  response.Response{data=domain.UserSummary}
// @Router       /admin/users/{role}/{id}/verify [patch]
// @Security     BearerAuth
func (h *AdminHandler) ToggleUserVerified(c *gin.Context) {
	user, err := h.adminUC.ToggleUserVerified(c.Request.Context(), domain.Role(c.Param("role")), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "User verification updated", user)
}

// Sections godoc
// @Summary      CMS sections
// @Tags         admin
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.CMSContent}
// @Router       /admin/cms [get]
// @Security     BearerAuth
func (h *AdminHandler) Sections(c *gin.Context) {
	sections, err := h.contentUC.Sections(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Content fetched", sections)
}

// SaveSection godoc
// @Summary      Save a CMS section
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        section  path      string                   true  "about|faq|privacy|terms"
// @Param        content  body      domain.CMSUpdateRequest  true  "Content"
// @Success      200      {object}  response.Response
// @Router       /admin/cms/{section} [put]
// @Security     BearerAuth
func (h *AdminHandler) SaveSection(c *gin.Context) {
	var req domain.CMSUpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	section := domain.CMSSection(c.Param("section"))
	if err := h.contentUC.SaveSection(c.Request.Context(), section, req.Content); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Content saved", domain.CMSContent{Section: section, Content: req.Content})
}

// Settings godoc
// @Summary      Site settings
// @Tags         admin
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.SiteSettings}
// @Router       /admin/settings [get]
// @Security     BearerAuth
func (h *AdminHandler) Settings(c *gin.Context) {
	settings, err := h.contentUC.Settings(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Settings fetched", settings)
}

// SaveSettings godoc
// @Summary      Save site settings
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        settings  body      domain.SiteSettings  true  "Settings"
// @Success      200       {object}  response.Response{data=domain.SiteSettings}
// @Router       /admin/settings [put]
// @Security     BearerAuth
func (h *AdminHandler) SaveSettings(c *gin.Context) {
	var req domain.SiteSettings
	if !bindJSON(c, &req) {
		return
	}
	if err := h.contentUC.SaveSettings(c.Request.Context(), req); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Settings saved", req)
}

// AuditLogs godoc
// @Summary      Audit log
// @Tags         admin
// @Produce      json
// @Param        search  query     string  false  "Admin, action or target"
// @Success      200     {object}  response.Response{data=[]domain.AuditLog}
// @Router       /admin/logs [get]
// @Security     BearerAuth
func (h *AdminHandler) AuditLogs(c *gin.Context) {
	logs, err := h.adminUC.AuditLogs(c.Request.Context(), c.Query("search"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Audit logs fetched", logs)
}

// Notifications godoc
// @Summary      Recorded notifications
// @Tags         admin
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.Notification}
// @Router       /admin/notifications [get]
// @Security     BearerAuth
func (h *AdminHandler) Notifications(c *gin.Context) {
	list, err := h.contentUC.Notifications(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Notifications fetched", list)
}

// ComposeNotification godoc
// @Summary      Compose a notification
// @Description  Records the notification. Nothing is pushed to devices.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        notification  body      domain.NotificationRequest  true  "Notification"
// @Success      201           {object}  response.Response{data=domain.Notification}
// @Router       /admin/notifications [post]
// @Security     BearerAuth
func (h *AdminHandler) ComposeNotification(c *gin.Context) {
	var req domain.NotificationRequest
	if !bindJSON(c, &req) {
		return
	}
	notification, err := h.contentUC.ComposeNotification(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Notification recorded", notification)
}
