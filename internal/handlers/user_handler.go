package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/dealer-crm/internal/httperr"
	"github.com/BruksfildServices01/dealer-crm/internal/httpresp"
	"github.com/BruksfildServices01/dealer-crm/internal/middleware"
	ucUser "github.com/BruksfildServices01/dealer-crm/internal/usecase/user"
)

type UserHandler struct {
	users *ucUser.Service
}

func NewUserHandler(users *ucUser.Service) *UserHandler {
	return &UserHandler{users: users}
}

type ResetPasswordRequest struct {
	Password string `json:"password"`
}

func (h *UserHandler) List(c *gin.Context) {
	users, err := h.users.List(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.List(c, users)
}

func (h *UserHandler) ListCREs(c *gin.Context) {
	users, err := h.users.ListCREs(c.Request.Context())
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.List(c, users)
}

func (h *UserHandler) Create(c *gin.Context) {
	var in ucUser.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body")
		return
	}

	u, err := h.users.Create(c.Request.Context(), middleware.CurrentUser(c), in)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.Created(c, u)
}

func (h *UserHandler) Update(c *gin.Context) {
	var in ucUser.UpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body")
		return
	}

	u, err := h.users.Update(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), in)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, u)
}

func (h *UserHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body")
		return
	}

	if err := h.users.ResetPassword(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), req.Password); err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.Message(c, "Password reset successfully")
}

func (h *UserHandler) ToggleLock(c *gin.Context) {
	u, err := h.users.ToggleLock(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"))
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, gin.H{"user_id": u.UserID, "is_locked": u.IsLocked})
}

func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.users.Delete(c.Request.Context(), middleware.CurrentUser(c), c.Param("id")); err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.Message(c, "User deleted")
}
