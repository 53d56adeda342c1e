package settings

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SebasQuintero99/LandingPageMiAbogada/internal/calendar"
	"github.com/SebasQuintero99/LandingPageMiAbogada/internal/model"
	"github.com/SebasQuintero99/LandingPageMiAbogada/internal/service/settings"
	"github.com/SebasQuintero99/LandingPageMiAbogada/pkg/errors"
	"github.com/SebasQuintero99/LandingPageMiAbogada/pkg/httputil"
)

type Handler struct {
	service    settings.Service
	calendar   calendar.Adapter
	invalidate func()
	now        func() time.Time
}

// NewHandler builds the settings handler. invalidate drops the public
// response cache after an admin write and may be nil.
func NewHandler(service settings.Service, calendarAdapter calendar.Adapter, invalidate func()) *Handler {
	return &Handler{
		service:    service,
		calendar:   calendarAdapter,
		invalidate: invalidate,
		now:        time.Now,
	}
}

func (h *Handler) RegisterPublicRoutes(r gin.IRouter) {
	r.GET("/settings/consultations/public", h.PublicConsultations)
	r.GET("/settings/business/public", h.PublicBusiness)
}

func (h *Handler) RegisterAdminRoutes(r gin.IRouter) {
	r.GET("/settings/schedule", h.GetSchedule)
	r.PUT("/settings/schedule", h.UpdateSchedule)
	r.GET("/settings/business", h.GetBusiness)
	r.PUT("/settings/business", h.UpdateBusiness)
	r.GET("/settings/consultations", h.GetConsultations)
	r.PUT("/settings/consultations", h.UpdateConsultations)
	r.GET("/settings/notifications", h.GetNotifications)
	r.PUT("/settings/notifications", h.UpdateNotifications)
	r.GET("/settings/backup", h.Backup)
	r.GET("/appointments/calendar/month-info", h.MonthInfo)
}

func (h *Handler) GetSchedule(c *gin.Context) {
	cfg, err := h.service.Schedule(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, cfg)
}

func (h *Handler) UpdateSchedule(c *gin.Context) {
	var cfg model.ScheduleConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		httputil.RespondWithError(c, errors.Validation("invalid request body"))
		return
	}

	if err := h.service.UpdateSchedule(c.Request.Context(), &cfg); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	h.dropPublicCache()
	httputil.RespondWithSuccess(c, cfg)
}

func (h *Handler) GetBusiness(c *gin.Context) {
	cfg, err := h.service.Business(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, cfg)
}

func (h *Handler) UpdateBusiness(c *gin.Context) {
	var cfg model.BusinessConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		httputil.RespondWithError(c, errors.Validation("invalid request body"))
		return
	}

	if err := h.service.UpdateBusiness(c.Request.Context(), &cfg); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	h.dropPublicCache()
	httputil.RespondWithSuccess(c, cfg)
}

func (h *Handler) GetConsultations(c *gin.Context) {
	types, err := h.service.Consultations(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, types)
}

func (h *Handler) UpdateConsultations(c *gin.Context) {
	var types []model.ConsultationType
	if err := c.ShouldBindJSON(&types); err != nil {
		httputil.RespondWithError(c, errors.Validation("invalid request body"))
		return
	}

	if err := h.service.UpdateConsultations(c.Request.Context(), types); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	h.dropPublicCache()
	httputil.RespondWithSuccess(c, types)
}

// PublicBusiness exposes the business contact details shown on the site.
func (h *Handler) PublicBusiness(c *gin.Context) {
	cfg, err := h.service.Business(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, cfg)
}

// PublicConsultations is unauthenticated and only exposes active types.
func (h *Handler) PublicConsultations(c *gin.Context) {
	types, err := h.service.ActiveConsultations(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, types)
}

func (h *Handler) GetNotifications(c *gin.Context) {
	cfg, err := h.service.Notifications(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, cfg)
}

func (h *Handler) UpdateNotifications(c *gin.Context) {
	var cfg model.NotificationConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		httputil.RespondWithError(c, errors.Validation("invalid request body"))
		return
	}

	if err := h.service.UpdateNotifications(c.Request.Context(), &cfg); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, cfg)
}

func (h *Handler) Backup(c *gin.Context) {
	snapshot, err := h.service.Backup(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, snapshot)
}

func (h *Handler) MonthInfo(c *gin.Context) {
	now := h.now()
	year := queryInt(c, "year", now.Year())
	month := queryInt(c, "month", int(now.Month()))

	info, err := h.calendar.MonthInfo(c.Request.Context(), year, month)
	if err != nil {
		httputil.RespondWithError(c, errors.Validation(err.Error()))
		return
	}
	httputil.RespondWithSuccess(c, info)
}

func (h *Handler) dropPublicCache() {
	if h.invalidate != nil {
		h.invalidate()
	}
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
