package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/dealer-crm/internal/httperr"
	"github.com/BruksfildServices01/dealer-crm/internal/httpresp"
	"github.com/BruksfildServices01/dealer-crm/internal/middleware"
	ucSettings "github.com/BruksfildServices01/dealer-crm/internal/usecase/settings"
)

// SettingsHandler serves the settings record, branches and per-user
// column preferences.
type SettingsHandler struct {
	settings *ucSettings.Service
}

func NewSettingsHandler(settings *ucSettings.Service) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// ======================================================
// SETTINGS
// ======================================================

func (h *SettingsHandler) Get(c *gin.Context) {
	s, err := h.settings.Get(c.Request.Context())
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, s)
}

func (h *SettingsHandler) Update(c *gin.Context) {
	var in ucSettings.UpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body")
		return
	}

	s, err := h.settings.Update(c.Request.Context(), middleware.CurrentUser(c), in)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, s)
}

// ======================================================
// BRANCHES
// ======================================================

func (h *SettingsHandler) ListBranches(c *gin.Context) {
	branches, err := h.settings.ListBranches(c.Request.Context())
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.List(c, branches)
}

func (h *SettingsHandler) CreateBranch(c *gin.Context) {
	var in ucSettings.BranchInput
	if err := c.ShouldBindJSON(&in); err != nil {
		httperr.BadRequest(c, "invalid_request", "location and type are required")
		return
	}

	b, err := h.settings.CreateBranch(c.Request.Context(), middleware.CurrentUser(c), in)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.Created(c, b)
}

func (h *SettingsHandler) UpdateBranch(c *gin.Context) {
	var in ucSettings.BranchPatch
	if err := c.ShouldBindJSON(&in); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body")
		return
	}

	b, err := h.settings.UpdateBranch(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), in)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, b)
}

func (h *SettingsHandler) DeleteBranch(c *gin.Context) {
	if err := h.settings.DeleteBranch(c.Request.Context(), middleware.CurrentUser(c), c.Param("id")); err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.Message(c, "Branch deleted")
}

// ======================================================
// PREFERENCES
// ======================================================

func (h *SettingsHandler) GetPreference(c *gin.Context) {
	u := middleware.CurrentUser(c)
	pref, err := h.settings.GetPreference(c.Request.Context(), u.UserID, c.Param("page"))
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, pref)
}

func (h *SettingsHandler) SavePreference(c *gin.Context) {
	var in ucSettings.PreferenceInput
	if err := c.ShouldBindJSON(&in); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body")
		return
	}

	u := middleware.CurrentUser(c)
	pref, err := h.settings.SavePreference(c.Request.Context(), u.UserID, c.Param("page"), in)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, pref)
}
