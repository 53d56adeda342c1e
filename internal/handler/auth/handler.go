package auth

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/SebasQuintero99/LandingPageMiAbogada/internal/middleware"
	"github.com/SebasQuintero99/LandingPageMiAbogada/internal/model"
	"github.com/SebasQuintero99/LandingPageMiAbogada/internal/service/auth"
	"github.com/SebasQuintero99/LandingPageMiAbogada/pkg/errors"
	"github.com/SebasQuintero99/LandingPageMiAbogada/pkg/httputil"
)

type Handler struct {
	service auth.Service
}

func NewHandler(service auth.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(r gin.IRouter) {
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
}

func (h *Handler) RegisterAdminRoutes(r gin.IRouter) {
	r.GET("/auth/profile", h.Profile)
	r.GET("/auth/verify", h.Verify)
	r.GET("/settings/users", h.ListUsers)
	r.POST("/settings/users", h.CreateUser)
	r.DELETE("/settings/users/:id", h.DeleteUser)
}

func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.Validation("invalid request body"))
		return
	}

	resp, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, resp)
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.Validation("invalid request body"))
		return
	}

	resp, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, resp)
}

func (h *Handler) Profile(c *gin.Context) {
	userID, err := uuid.Parse(c.GetString(middleware.ContextUserID))
	if err != nil {
		httputil.RespondWithError(c, errors.Unauthorized("invalid session"))
		return
	}

	user, err := h.service.Profile(c.Request.Context(), userID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, user)
}

// Verify confirms the bearer token is still valid. The auth middleware has
// already rejected bad tokens by the time this runs.
func (h *Handler) Verify(c *gin.Context) {
	userID, err := uuid.Parse(c.GetString(middleware.ContextUserID))
	if err != nil {
		httputil.RespondWithError(c, errors.Unauthorized("invalid session"))
		return
	}

	user, err := h.service.Profile(c.Request.Context(), userID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"valid": true, "user": user})
}

func (h *Handler) CreateUser(c *gin.Context) {
	var req model.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.Validation("invalid request body"))
		return
	}

	user, err := h.service.CreateUser(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, user)
}

func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.service.ListUsers(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, users)
}

func (h *Handler) DeleteUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.Validation("invalid user ID"))
		return
	}
	actor, err := uuid.Parse(c.GetString(middleware.ContextUserID))
	if err != nil {
		httputil.RespondWithError(c, errors.Unauthorized("invalid session"))
		return
	}

	if err := h.service.DeleteUser(c.Request.Context(), id, actor); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, "user deleted")
}
