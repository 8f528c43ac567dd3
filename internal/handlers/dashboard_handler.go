package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/dealer-crm/internal/httperr"
	"github.com/BruksfildServices01/dealer-crm/internal/httpresp"
	ucDashboard "github.com/BruksfildServices01/dealer-crm/internal/usecase/dashboard"
)

type DashboardHandler struct {
	stats *ucDashboard.Aggregator
}

func NewDashboardHandler(stats *ucDashboard.Aggregator) *DashboardHandler {
	return &DashboardHandler{stats: stats}
}

func (h *DashboardHandler) Stats(c *gin.Context) {
	st, err := h.stats.Stats(c.Request.Context())
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, st)
}
