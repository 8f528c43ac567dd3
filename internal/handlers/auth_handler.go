package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/dealer-crm/internal/auth"
	"github.com/BruksfildServices01/dealer-crm/internal/httperr"
	"github.com/BruksfildServices01/dealer-crm/internal/httpresp"
	"github.com/BruksfildServices01/dealer-crm/internal/middleware"
)

type AuthHandler struct {
	auth       *auth.Service
	cookieName string
}

func NewAuthHandler(svc *auth.Service, cookieName string) *AuthHandler {
	return &AuthHandler{auth: svc, cookieName: cookieName}
}

// --------- Requests ---------

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// --------- Handlers ---------

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "username and password are required")
		return
	}

	res, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	h.setCookie(c, res.Token, int(h.auth.TTL().Seconds()))

	httpresp.OK(c, res)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	token := middleware.TokenFrom(c, h.cookieName)
	if err := h.auth.Logout(c.Request.Context(), token); err != nil {
		httperr.Respond(c, err)
		return
	}

	h.setCookie(c, "", -1)
	httpresp.Message(c, "Logged out")
}

func (h *AuthHandler) Me(c *gin.Context) {
	httpresp.OK(c, middleware.CurrentUser(c))
}

// --------- Cookie ---------

// Cross-site cookies need SameSite=None, which browsers only accept on
// secure connections.
func (h *AuthHandler) setCookie(c *gin.Context, value string, maxAge int) {
	secure := c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https"
	if secure {
		c.SetSameSite(http.SameSiteNoneMode)
	} else {
		c.SetSameSite(http.SameSiteLaxMode)
	}
	c.SetCookie(h.cookieName, value, maxAge, "/", "", secure, true)
}
