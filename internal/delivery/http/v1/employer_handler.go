package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"flowrk-backend/internal/delivery/http/response"
	"flowrk-backend/internal/domain"
)

type EmployerHandler struct {
	employerUC domain.EmployerUsecase
}

func NewEmployerHandler(protected *gin.RouterGroup, employerUC domain.EmployerUsecase) {
	handler := &EmployerHandler{employerUC: employerUC}

	me := protected.Group("/employers/me")
	{
		me.GET("", handler.Profile)
		me.POST("", handler.Register)
		me.PATCH("", handler.UpdateProfile)
	}
}

// Profile godoc
// @Summary      My employer profile
// @Tags         employers
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.EmployerProfile}
// @Failure      404  {object}  response.Response
// @Router       /employers/me [get]
// @Security     BearerAuth
func (h *EmployerHandler) Profile(c *gin.Context) {
	profile, err := h.employerUC.Profile(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Profile fetched", profile)
}

// Register godoc
// @Summary      Complete employer registration
// @Tags         employers
// @Accept       json
// @Produce      json
// @Param        profile  body      domain.EmployerRegistration  true  "Registration"
// @Success      201      {object}  response.Response{data=domain.EmployerProfile}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /employers/me [post]
// @Security     BearerAuth
func (h *EmployerHandler) Register(c *gin.Context) {
	var req domain.EmployerRegistration
	if !bindJSON(c, &req) {
		return
	}
	profile, err := h.employerUC.Register(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Registration complete", profile)
}

// UpdateProfile godoc
// @Summary      Update employer profile
// @Tags         employers
// @Accept       json
// @Produce      json
// @Param        profile  body      domain.EmployerProfileUpdate  true  "Changed fields"
// @Success      200      {object}  response.Response{data=domain.EmployerProfile}
// @Router       /employers/me [patch]
// @Security     BearerAuth
func (h *EmployerHandler) UpdateProfile(c *gin.Context) {
	var req domain.EmployerProfileUpdate
	if !bindJSON(c, &req) {
		return
	}
	profile, err := h.employerUC.UpdateProfile(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Profile updated", profile)
}
