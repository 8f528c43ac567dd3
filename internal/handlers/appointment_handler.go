package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/dealer-crm/internal/activity"
	domain "github.com/BruksfildServices01/dealer-crm/internal/domain/appointment"
	"github.com/BruksfildServices01/dealer-crm/internal/httperr"
	"github.com/BruksfildServices01/dealer-crm/internal/httpresp"
	"github.com/BruksfildServices01/dealer-crm/internal/middleware"
	ucAppointment "github.com/BruksfildServices01/dealer-crm/internal/usecase/appointment"
	"github.com/BruksfildServices01/dealer-crm/internal/usecase/duplicate"
	"github.com/BruksfildServices01/dealer-crm/internal/validators"
)

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	create     *ucAppointment.CreateAppointment
	update     *ucAppointment.UpdateAppointment
	get        *ucAppointment.GetAppointment
	list       *ucAppointment.ListAppointments
	duplicates *duplicate.Detector
	activity   *activity.Logger
}

func NewAppointmentHandler(
	create *ucAppointment.CreateAppointment,
	update *ucAppointment.UpdateAppointment,
	get *ucAppointment.GetAppointment,
	list *ucAppointment.ListAppointments,
	duplicates *duplicate.Detector,
	activity *activity.Logger,
) *AppointmentHandler {
	return &AppointmentHandler{
		create:     create,
		update:     update,
		get:        get,
		list:       list,
		duplicates: duplicates,
		activity:   activity,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type ListAppointmentsQuery struct {
	View     string `form:"view"`
	Date     string `form:"date"`
	Month    int    `form:"month"`
	Year     int    `form:"year"`
	DateFrom string `form:"date_from"`
	DateTo   string `form:"date_to"`

	Branch      string `form:"branch"`
	Source      string `form:"source"`
	ServiceType string `form:"service_type"`
	CRE         string `form:"cre"`
	SA          string `form:"sa"`
	Status      string `form:"status"`
	Outcome     string `form:"outcome"`
	N1Status    string `form:"n1_status"`
	BookingID   string `form:"booking_id"`

	Priority  bool `form:"priority"`
	Docket    bool `form:"docket"`
	Recovered bool `form:"recovered"`
}

func (q ListAppointmentsQuery) filter() domain.ListFilter {
	return domain.ListFilter{
		View:        domain.View(q.View),
		Date:        q.Date,
		Month:       q.Month,
		Year:        q.Year,
		DateFrom:    q.DateFrom,
		DateTo:      q.DateTo,
		Branch:      q.Branch,
		Source:      q.Source,
		ServiceType: q.ServiceType,
		CRE:         q.CRE,
		SA:          q.SA,
		Status:      q.Status,
		Outcome:     q.Outcome,
		N1Status:    q.N1Status,
		BookingID:   q.BookingID,
		Priority:    q.Priority,
		Docket:      q.Docket,
		Recovered:   q.Recovered,
	}
}

// ======================================================
// CREATE
// ======================================================

func (h *AppointmentHandler) Create(c *gin.Context) {
	var in ucAppointment.CreateAppointmentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body")
		return
	}

	ap, err := h.create.Execute(c.Request.Context(), middleware.CurrentUser(c), in)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.Created(c, ap)
}

// ======================================================
// READ
// ======================================================

func (h *AppointmentHandler) List(c *gin.Context) {
	var q ListAppointmentsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httperr.BadRequest(c, "invalid_query", "Invalid query parameters")
		return
	}

	list, err := h.list.Execute(c.Request.Context(), q.filter())
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.List(c, list)
}

func (h *AppointmentHandler) Get(c *gin.Context) {
	ap, err := h.get.Execute(c.Request.Context(), c.Param("id"))
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, ap)
}

// CheckDuplicates lists upcoming bookings made in the last 30 days for the
// phone or vehicle in the query.
func (h *AppointmentHandler) CheckDuplicates(c *gin.Context) {
	phone := validators.NormalizePhone(c.Query("phone"))
	vehicle := c.Query("vehicle")
	if vehicle != "" {
		vehicle = validators.NormalizeVehicleReg(vehicle)
	}

	matches, err := h.duplicates.CheckActive(c.Request.Context(), phone, vehicle)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.List(c, matches)
}

func (h *AppointmentHandler) Activity(c *gin.Context) {
	logs, err := h.activity.ListForAppointment(c.Request.Context(), c.Param("id"))
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.List(c, logs)
}

// ======================================================
// UPDATE
// ======================================================

func (h *AppointmentHandler) Update(c *gin.Context) {
	var patch domain.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body")
		return
	}

	ap, err := h.update.Execute(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), patch)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, ap)
}
