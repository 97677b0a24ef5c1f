package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"flowrk-backend/internal/delivery/http/response"
	"flowrk-backend/internal/domain"
	"flowrk-backend/pkg/apperror"
)

type JobHandler struct {
	jobUC domain.JobUsecase
}

func NewJobHandler(public, protected *gin.RouterGroup, jobUC domain.JobUsecase) {
	handler := &JobHandler{jobUC: jobUC}

	publicJobs := public.Group("/jobs")
	{
		publicJobs.GET("", handler.Browse)
		publicJobs.GET("/latest", handler.Latest)
		publicJobs.GET("/:id", handler.GetDetails)
	}

	protected.GET("/jobs/:id/whatsapp", handler.WhatsApp)

	employerJobs := protected.Group("/employers/me/jobs")
	{
		employerJobs.GET("", handler.ListByEmployer)
		employerJobs.POST("", handler.Create)
		employerJobs.PUT("/:id", handler.Update)
		employerJobs.PATCH("/:id/status", handler.SetStatus)
		employerJobs.DELETE("/:id", handler.Delete)
	}
}

// Browse godoc
// @Summary      Browse jobs
// @Description  Active jobs, newest first. category and city match exactly, area matches as a case-insensitive substring.
// @Tags         jobs
// @Produce      json
// @Param        category  query     string  false  "painting|cleaning|delivery|shop_helper|event_work"
// @Param        city      query     string  false  "City"
// @Param        area      query     string  false  "Area substring"
// @Success      200       {object}  response.Response{data=[]domain.Job}
// @Failure      400       {object}  response.Response
// @Router       /jobs [get]
func (h *JobHandler) Browse(c *gin.Context) {
	var filter domain.BrowseFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(apperror.BadRequest("Invalid query parameters"))
		return
	}
	jobs, err := h.jobUC.Browse(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Jobs fetched", jobs)
}

// Latest godoc
// @Summary      Latest jobs
// @Tags         jobs
// @Produce      json
// @Param        limit  query     int  false  "Number of jobs (default 6)"
// @Success      200    {object}  response.Response{data=[]domain.Job}
// @Router       /jobs/latest [get]
func (h *JobHandler) Latest(c *gin.Context) {
	n, _ := strconv.Atoi(c.Query("limit"))
	jobs, err := h.jobUC.Latest(c.Request.Context(), n)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Latest jobs fetched", jobs)
}

// GetDetails godoc
// @Summary      Job details
// @Tags         jobs
// @Produce      json
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  response.Response{data=domain.Job}
// @Failure      404  {object}  response.Response
// @Router       /jobs/{id} [get]
func (h *JobHandler) GetDetails(c *gin.Context) {
	job, err := h.jobUC.GetJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Job fetched", job)
}

// WhatsApp godoc
// @Summary      WhatsApp enquiry link
// @Description  wa.me deep link to the job's contact number with a prefilled enquiry
// @Tags         jobs
// @Produce      json
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /jobs/{id}/whatsapp [get]
// @Security     BearerAuth
func (h *JobHandler) WhatsApp(c *gin.Context) {
	link, err := h.jobUC.WhatsAppLink(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "WhatsApp link", gin.H{"url": link})
}

// ListByEmployer godoc
// @Summary      My job posts
// @Tags         employers
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.Job}
// @Router       /employers/me/jobs [get]
// @Security     BearerAuth
func (h *JobHandler) ListByEmployer(c *gin.Context) {
	jobs, err := h.jobUC.ListByEmployer(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Jobs fetched", jobs)
}

// Create godoc
// @Summary      Post a job
// @Description  Employers only. Payment is stored formatted, e.g. "₹500/day".
// @Tags         employers
// @Accept       json
// @Produce      json
// @Param        job  body      domain.PostJobRequest  true  "Job"
// @Success      201  {object}  response.Response{data=domain.Job}
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /employers/me/jobs [post]
// @Security     BearerAuth
func (h *JobHandler) Create(c *gin.Context) {
	var req domain.PostJobRequest
	if !bindJSON(c, &req) {
		return
	}
	job, err := h.jobUC.Post(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Job posted", job)
}

// Update godoc
// @Summary      Edit a job
// @Tags         employers
// @Accept       json
// @Produce      json
// @Param        id   path      string                 true  "Job ID"
// @Param        job  body      domain.EditJobRequest  true  "Changed fields"
// @Success      200  {object}  response.Response{data=domain.Job}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /employers/me/jobs/{id} [put]
// @Security     BearerAuth
func (h *JobHandler) Update(c *gin.Context) {
	var req domain.EditJobRequest
	if !bindJSON(c, &req) {
		return
	}
	job, err := h.jobUC.Edit(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Job updated", job)
}

// SetStatus godoc
// @Summary      Open or close a job
// @Tags         employers
// @Accept       json
// @Produce      json
// @Param        id      path      string                true  "Job ID"
// @Param        status  body      domain.StatusRequest  true  "active or closed"
// @Success      200     {object}  response.Response
// @Router       /employers/me/jobs/{id}/status [patch]
// @Security     BearerAuth
func (h *JobHandler) SetStatus(c *gin.Context) {
	var req domain.StatusRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.jobUC.SetOwnerStatus(c.Request.Context(), c.Param("id"), req.Status); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Job status updated", gin.H{"status": req.Status})
}

// Delete godoc
// @Summary      Delete a job
// @Tags         employers
// @Produce      json
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  response.Response
// @Router       /employers/me/jobs/{id} [delete]
// @Security     BearerAuth
func (h *JobHandler) Delete(c *gin.Context) {
	if err := h.jobUC.Delete(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Job deleted", nil)
}
