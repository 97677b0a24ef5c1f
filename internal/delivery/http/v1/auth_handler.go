package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"flowrk-backend/internal/delivery/http/middleware"
	"flowrk-backend/internal/delivery/http/response"
	"flowrk-backend/internal/domain"
	"flowrk-backend/pkg/apperror"
)

type AuthHandler struct {
	identityUC   domain.IdentityUsecase
	secureCookie bool
}

func NewAuthHandler(public, session, protected *gin.RouterGroup, identityUC domain.IdentityUsecase, loginLimit gin.HandlerFunc, secureCookie bool) {
	handler := &AuthHandler{identityUC: identityUC, secureCookie: secureCookie}

	publicAuth := public.Group("/auth")
	{
		publicAuth.GET("/google/url", handler.GoogleURL)
		publicAuth.POST("/google", loginLimit, handler.LoginWithGoogle)
	}

	session.GET("/auth/session", handler.Session)

	protectedAuth := protected.Group("/auth")
	{
		protectedAuth.GET("/me", handler.Me)
		protectedAuth.PATCH("/me", handler.UpdateMe)
		protectedAuth.POST("/logout", handler.Logout)
		protectedAuth.GET("/admin", handler.Admin)
	}
}

// GoogleURL godoc
// @Summary      Google consent URL
// @Description  Returns the URL that starts the Google sign-in redirect flow, with a fresh state value
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /auth/google/url [get]
func (h *AuthHandler) GoogleURL(c *gin.Context) {
	state := uuid.NewString()
	response.Success(c, http.StatusOK, "Consent URL", gin.H{
		"url":   h.identityUC.AuthURL(state),
		"state": state,
	})
}

// LoginWithGoogle godoc
// @Summary      Sign in with Google
// @Description  Exchanges an authorization code or ID token for a session. With a role, the matching profile stub is created.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        login  body      domain.LoginRequest  true  "Google credential and optional role"
// @Success      200    {object}  response.Response
// @Failure      400    {object}  response.Response
// @Failure      401    {object}  response.Response
// @Failure      409    {object}  response.Response
// @Router       /auth/google [post]
func (h *AuthHandler) LoginWithGoogle(c *gin.Context) {
	var req domain.LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Code == "" && req.IDToken == "" {
		c.Error(apperror.BadRequest("code or id_token is required"))
		return
	}

	result, err := h.identityUC.LoginWithGoogle(c.Request.Context(), domain.Credential{Code: req.Code, IDToken: req.IDToken}, req.Role)
	if err != nil {
		c.Error(err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookieName, result.Token, int(time.Until(result.ExpiresAt).Seconds()), "/", "", h.secureCookie, true)
	response.Success(c, http.StatusOK, "Signed in", result)
}

// Session godoc
// @Summary      Session check
// @Description  Reports whether the caller holds a valid session. Never fails; resolves within the auth timeout.
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /auth/session [get]
func (h *AuthHandler) Session(c *gin.Context) {
	response.Success(c, http.StatusOK, "Session status", gin.H{
		"authenticated": h.identityUC.IsAuthenticated(c.Request.Context()),
	})
}

// Me godoc
// @Summary      Current user
// @Description  Identity fields plus the derived role and session state
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.Me}
// @Failure      401  {object}  response.Response
// @Router       /auth/me [get]
// @Security     BearerAuth
func (h *AuthHandler) Me(c *gin.Context) {
	me, err := h.identityUC.Me(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Current user", me)
}

// UpdateMe godoc
// @Summary      Choose role
// @Description  Sets the caller's role and creates the profile stub if missing
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        role  body      domain.UpdateMeRequest  true  "Role"
// @Success      200   {object}  response.Response{data=domain.Me}
// @Failure      400   {object}  response.Response
// @Failure      409   {object}  response.Response
// @Router       /auth/me [patch]
// @Security     BearerAuth
func (h *AuthHandler) UpdateMe(c *gin.Context) {
	var req domain.UpdateMeRequest
	if !bindJSON(c, &req) {
		return
	}
	me, err := h.identityUC.UpdateMe(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Role updated", me)
}

// Logout godoc
// @Summary      Sign out
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /auth/logout [post]
// @Security     BearerAuth
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.identityUC.Logout(c.Request.Context()); err != nil {
		c.Error(err)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", h.secureCookie, true)
	response.Success(c, http.StatusOK, "Signed out", nil)
}

// Admin godoc
// @Summary      Admin check
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /auth/admin [get]
// @Security     BearerAuth
func (h *AuthHandler) Admin(c *gin.Context) {
	response.Success(c, http.StatusOK, "Admin status", gin.H{"is_admin": h.identityUC.IsAdmin(c.Request.Context())})
}
