package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"flowrk-backend/internal/delivery/http/response"
	"flowrk-backend/internal/domain"
)

type WorkerHandler struct {
	workerUC domain.WorkerUsecase
}

func NewWorkerHandler(protected *gin.RouterGroup, workerUC domain.WorkerUsecase) {
	handler := &WorkerHandler{workerUC: workerUC}

	me := protected.Group("/workers/me")
	{
		me.GET("", handler.Profile)
		me.POST("", handler.Register)
		me.PATCH("", handler.UpdateProfile)
		me.GET("/saved", handler.SavedJobs)
		me.POST("/saved/:jobId", handler.ToggleSaved)
		me.GET("/applied", handler.AppliedJobs)
		me.POST("/applied/:jobId", handler.Apply)
		me.GET("/recommended", handler.Recommended)
	}
}

// Profile godoc
// @Summary      My worker profile
// @Tags         workers
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.WorkerProfile}
// @Failure      404  {object}  response.Response
// @Router       /workers/me [get]
// @Security     BearerAuth
func (h *WorkerHandler) Profile(c *gin.Context) {
	profile, err := h.workerUC.Profile(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Profile fetched", profile)
}

// Register godoc
// @Summary      Complete worker registration
// @Tags         workers
// @Accept       json
// @Produce      json
// @Param        profile  body      domain.WorkerRegistration  true  "Registration"
// @Success      201      {object}  response.Response{data=domain.WorkerProfile}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /workers/me [post]
// @Security     BearerAuth
func (h *WorkerHandler) Register(c *gin.Context) {
	var req domain.WorkerRegistration
	if !bindJSON(c, &req) {
		return
	}
	profile, err := h.workerUC.Register(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Registration complete", profile)
}

// UpdateProfile godoc
// @Summary      Update worker profile
// @Tags         workers
// @Accept       json
// @Produce      json
// @Param        profile  body      domain.WorkerProfileUpdate  true  "Changed fields"
// @Success      200      {object}  response.Response{data=domain.WorkerProfile}
// @Router       /workers/me [patch]
// @Security     BearerAuth
func (h *WorkerHandler) UpdateProfile(c *gin.Context) {
	var req domain.WorkerProfileUpdate
	if !bindJSON(c, &req) {
		return
	}
	profile, err := h.workerUC.UpdateProfile(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Profile updated", profile)
}

// SavedJobs godoc
// @Summary      Saved jobs
// @Description  Saved jobs in the order they were saved. Deleted jobs are skipped.
// @Tags         workers
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.Job}
// @Router       /workers/me/saved [get]
// @Security     BearerAuth
func (h *WorkerHandler) SavedJobs(c *gin.Context) {
	jobs, err := h.workerUC.SavedJobs(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Saved jobs fetched", jobs)
}

// ToggleSaved godoc
// @Summary      Save or unsave a job
// @Tags         workers
// @Produce      json
// @Param        jobId  path      string  true  "Job ID"
// @Success      200    {object}  response.Response{data=domain.SavedToggleResult}
// @Router       /workers/me/saved/{jobId} [post]
// @Security     BearerAuth
func (h *WorkerHandler) ToggleSaved(c *gin.Context) {
	result, err := h.workerUC.ToggleSavedJob(c.Request.Context(), c.Param("jobId"))
	if err != nil {
		c.Error(err)
		return
	}
	msg := "Job removed from saved"
	if result.Saved {
		msg = "Job saved"
	}
	response.Success(c, http.StatusOK, msg, result)
}

// AppliedJobs godoc
// @Summary      Applied jobs
// @Tags         workers
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.Job}
// @Router       /workers/me/applied [get]
// @Security     BearerAuth
func (h *WorkerHandler) AppliedJobs(c *gin.Context) {
	jobs, err := h.workerUC.AppliedJobs(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Applied jobs fetched", jobs)
}

// Apply godoc
// @Summary      Apply to a job
// @Description  Records the application and returns the WhatsApp link to contact the employer
// @Tags         workers
// @Produce      json
// @Param        jobId  path      string  true  "Job ID"
// @Success      200    {object}  response.Response{data=domain.ApplyResult}
// @Failure      403    {object}  response.Response
// @Failure      404    {object}  response.Response
// @Router       /workers/me/applied/{jobId} [post]
// @Security     BearerAuth
func (h *WorkerHandler) Apply(c *gin.Context) {
	result, err := h.workerUC.Apply(c.Request.Context(), c.Param("jobId"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Application recorded", result)
}

// Recommended godoc
// @Summary      Recommended jobs
// @Description  Active jobs in the worker's city matching their skills
// @Tags         workers
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.Job}
// @Router       /workers/me/recommended [get]
// @Security     BearerAuth
func (h *WorkerHandler) Recommended(c *gin.Context) {
	jobs, err := h.workerUC.Recommended(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Recommended jobs fetched", jobs)
}
