package handlers

import (
	"github.com/gin-gonic/gin"

	domain "github.com/BruksfildServices01/dealer-crm/internal/domain/task"
	"github.com/BruksfildServices01/dealer-crm/internal/httperr"
	"github.com/BruksfildServices01/dealer-crm/internal/httpresp"
	"github.com/BruksfildServices01/dealer-crm/internal/middleware"
	ucTask "github.com/BruksfildServices01/dealer-crm/internal/usecase/task"
)

type TaskHandler struct {
	tasks *ucTask.Scheduler
}

func NewTaskHandler(tasks *ucTask.Scheduler) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// List defaults to pending tasks; status=all lists every status.
func (h *TaskHandler) List(c *gin.Context) {
	status := c.DefaultQuery("status", string(domain.StatusPending))
	if status == "all" {
		status = ""
	}

	views, err := h.tasks.ListForUser(c.Request.Context(), middleware.CurrentUser(c), status)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.List(c, views)
}

// Complete accepts only status=completed; tasks never reopen.
func (h *TaskHandler) Complete(c *gin.Context) {
	status := domain.Status(c.DefaultQuery("status", string(domain.StatusCompleted)))
	if status != domain.StatusCompleted {
		httperr.Respond(c, domain.ValidateTransition(domain.StatusCompleted, status))
		return
	}

	t, err := h.tasks.Complete(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"))
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, t)
}
