package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"flowrk-backend/internal/delivery/http/response"
	"flowrk-backend/internal/domain"
)

type ContentHandler struct {
	contentUC domain.ContentUsecase
}

func NewContentHandler(public *gin.RouterGroup, contentUC domain.ContentUsecase, contactLimit gin.HandlerFunc) {
	handler := &ContentHandler{contentUC: contentUC}

	public.GET("/content/:section", handler.Section)
	public.GET("/settings", handler.Settings)
	public.POST("/contact", contactLimit, handler.SubmitContact)
}

// Section godoc
// @Summary      Static page content
// @Tags         content
// @Produce      json
// @Param        section  path      string  true  "about|faq|privacy|terms"
// @Success      200      {object}  response.Response{data=domain.CMSContent}
// @Failure      404      {object}  response.Response
// @Router       /content/{section} [get]
func (h *ContentHandler) Section(c *gin.Context) {
	content, err := h.contentUC.Section(c.Request.Context(), domain.CMSSection(c.Param("section")))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Content fetched", content)
}

// Settings godoc
// @Summary      Public site settings
// @Tags         content
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.SiteSettings}
// @Router       /settings [get]
func (h *ContentHandler) Settings(c *gin.Context) {
	settings, err := h.contentUC.Settings(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Settings fetched", settings)
}

// SubmitContact godoc
// @Summary      Contact form
// @Description  Stores the message and forwards it to the support inbox when mail is configured
// @Tags         content
// @Accept       json
// @Produce      json
// @Param        message  body      domain.ContactRequest  true  "Message"
// @Success      201      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Failure      429      {object}  response.Response
// @Router       /contact [post]
func (h *ContentHandler) SubmitContact(c *gin.Context) {
	var req domain.ContactRequest
	if !bindJSON(c, &req) {
		return
	}
	msg, err := h.contentUC.SubmitContact(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Thank you! Your message has been received.", gin.H{"id": msg.ID})
}
