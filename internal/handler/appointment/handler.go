package appointment

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/SebasQuintero99/LandingPageMiAbogada/internal/model"
	"github.com/SebasQuintero99/LandingPageMiAbogada/internal/service/appointment"
	"github.com/SebasQuintero99/LandingPageMiAbogada/internal/service/schedule"
	"github.com/SebasQuintero99/LandingPageMiAbogada/pkg/errors"
	"github.com/SebasQuintero99/LandingPageMiAbogada/pkg/httputil"
)

type Handler struct {
	service  appointment.Service
	schedule schedule.Service
}

func NewHandler(service appointment.Service, scheduleSvc schedule.Service) *Handler {
	return &Handler{service: service, schedule: scheduleSvc}
}

// RegisterPublicRoutes mounts the endpoints the booking page uses.
func (h *Handler) RegisterPublicRoutes(r gin.IRouter) {
	r.POST("/appointments", h.Create)
	r.GET("/appointments/available-dates", h.AvailableDates)
}

// RegisterAdminRoutes mounts the panel endpoints behind auth.
func (h *Handler) RegisterAdminRoutes(r gin.IRouter) {
	r.GET("/appointments", h.List)
	r.GET("/appointments/:id", h.Get)
	r.PATCH("/appointments/:id/status", h.UpdateStatus)
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.Validation("invalid request body"))
		return
	}

	apt, err := h.service.Book(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, apt)
}

func (h *Handler) AvailableDates(c *gin.Context) {
	days := schedule.DefaultDaysAhead
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			httputil.RespondWithError(c, errors.Validation("invalid days parameter",
				errors.FieldError{Field: "days", Message: "must be a number"}))
			return
		}
		days = parsed
	}

	dates, err := h.schedule.AvailableDates(c.Request.Context(), days)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, dates)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.Validation("invalid appointment ID"))
		return
	}

	apt, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, apt)
}

func (h *Handler) List(c *gin.Context) {
	filters := &model.AppointmentFilters{
		Status: model.AppointmentStatus(c.Query("status")),
		Page:   queryInt(c, "page", 1),
		Limit:  queryInt(c, "limit", 20),
	}
	if raw := c.Query("date"); raw != "" {
		date, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httputil.RespondWithError(c, errors.Validation("invalid date filter",
				errors.FieldError{Field: "date", Message: "must be in YYYY-MM-DD format"}))
			return
		}
		filters.Date = &date
	}

	appointments, total, err := h.service.List(c.Request.Context(), filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithPagination(c, appointments, filters.Page, filters.Limit, total)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.Validation("invalid appointment ID"))
		return
	}

	var req model.UpdateAppointmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.Validation("invalid request body"))
		return
	}

	apt, err := h.service.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, apt)
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
