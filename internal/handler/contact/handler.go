package contact

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/SebasQuintero99/LandingPageMiAbogada/internal/model"
	"github.com/SebasQuintero99/LandingPageMiAbogada/internal/service/contact"
	"github.com/SebasQuintero99/LandingPageMiAbogada/pkg/errors"
	"github.com/SebasQuintero99/LandingPageMiAbogada/pkg/httputil"
)

type Handler struct {
	service contact.Service
}

func NewHandler(service contact.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(r gin.IRouter) {
	r.POST("/contacts", h.Create)
}

func (h *Handler) RegisterAdminRoutes(r gin.IRouter) {
	r.GET("/contacts", h.List)
	r.GET("/contacts/:id", h.Get)
	r.PATCH("/contacts/:id/status", h.UpdateStatus)
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.Validation("invalid request body"))
		return
	}

	created, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, created)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.Validation("invalid contact ID"))
		return
	}

	found, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, found)
}

func (h *Handler) List(c *gin.Context) {
	filters := &model.ContactFilters{
		Status: model.ContactStatus(c.Query("status")),
		Page:   queryInt(c, "page", 1),
		Limit:  queryInt(c, "limit", 20),
	}

	contacts, total, err := h.service.List(c.Request.Context(), filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithPagination(c, contacts, filters.Page, filters.Limit, total)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.Validation("invalid contact ID"))
		return
	}

	var req model.UpdateContactStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.Validation("invalid request body"))
		return
	}

	updated, err := h.service.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, updated)
}

func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
