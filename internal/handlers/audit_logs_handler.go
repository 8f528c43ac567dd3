package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/dealer-crm/internal/httperr"
	"github.com/BruksfildServices01/dealer-crm/internal/models"
)

// ======================================================
// HANDLER
// ======================================================

// AuditLogsHandler pages through the system audit trail: logins, user
// management and settings changes.
type AuditLogsHandler struct {
	db  *gorm.DB
	loc *time.Location
}

func NewAuditLogsHandler(db *gorm.DB, loc *time.Location) *AuditLogsHandler {
	return &AuditLogsHandler{db: db, loc: loc}
}

func (h *AuditLogsHandler) List(c *gin.Context) {
	action := c.Query("action")
	entity := c.Query("entity")
	userID := c.Query("user_id")
	fromStr := c.Query("from")
	toStr := c.Query("to")

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	offset := (page - 1) * limit

	// --------------------------------------------------
	// Filters
	// --------------------------------------------------

	q := h.db.WithContext(c.Request.Context()).Model(&models.AuditLog{})

	if action != "" {
		q = q.Where("action = ?", action)
	}
	if entity != "" {
		q = q.Where("entity = ?", entity)
	}
	if userID != "" {
		q = q.Where("user_id = ?", userID)
	}
	if fromStr != "" {
		from, ok := dayStart(h.loc, fromStr)
		if !ok {
			httperr.BadRequest(c, "invalid_from", "from must be YYYY-MM-DD")
			return
		}
		q = q.Where("created_at >= ?", from)
	}
	if toStr != "" {
		to, ok := dayEnd(h.loc, toStr)
		if !ok {
			httperr.BadRequest(c, "invalid_to", "to must be YYYY-MM-DD")
			return
		}
		q = q.Where("created_at < ?", to)
	}

	// --------------------------------------------------
	// Total
	// --------------------------------------------------

	var total int64
	if err := q.Count(&total).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	// --------------------------------------------------
	// Page
	// --------------------------------------------------

	logs := []models.AuditLog{}
	if err := q.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&logs).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(200, gin.H{
		"page":  page,
		"limit": limit,
		"total": total,
		"logs":  logs,
	})
}
