package appointment

import (
	"slices"
	"time"

	"github.com/BruksfildServices01/dealer-crm/internal/models"
)

// ===============================
// Domain Actions
// ===============================

// Book sets the lifecycle defaults of a freshly created appointment.
func Book(ap *models.Appointment, now time.Time) {
	ap.N1Status = InitialN1Status()
	ap.AppointmentStatus = InitialStatus()
	ap.LostCustomer = false
	ap.IsRescheduled = false
	ap.RescheduleHistory = []models.RescheduleEntry{}
	ap.CreatedAt = now
	ap.UpdatedAt = now
}

// RescheduleTarget returns the new date when p asks for a reschedule.
func RescheduleTarget(p Patch) (string, bool) {
	if p.AppointmentStatus == nil || *p.AppointmentStatus != StatusRescheduled {
		return "", false
	}
	if p.RescheduleDate == nil || *p.RescheduleDate == "" {
		return "", false
	}
	return *p.RescheduleDate, true
}

// CompletesReminder reports whether p confirms (or otherwise resolves) the
// N-1 call for the appointment.
func CompletesReminder(p Patch) bool {
	return p.N1Status != nil && *p.N1Status != N1Pending
}

// Reschedule appends one history entry to ap. fromDate is the date the
// appointment had before the current update was applied.
func Reschedule(ap *models.Appointment, fromDate, toDate, remarks, by string, now time.Time) {
	history := slices.Clone(ap.RescheduleHistory)
	history = append(history, models.RescheduleEntry{
		FromDate:      fromDate,
		ToDate:        toDate,
		Remarks:       remarks,
		RescheduledAt: now,
		RescheduledBy: by,
	})
	ap.RescheduleHistory = history
}

// Successor builds the row that replaces a rescheduled appointment. Identity
// and sequence are assigned by the caller.
func Successor(orig *models.Appointment, toDate string, now time.Time) *models.Appointment {
	from := orig.AppointmentID

	return &models.Appointment{
		BookingID:             orig.BookingID,
		Branch:                orig.Branch,
		AppointmentDate:       toDate,
		AppointmentTime:       orig.AppointmentTime,
		Source:                orig.Source,
		ServiceType:           orig.ServiceType,
		AllocatedSA:           cloneString(orig.AllocatedSA),
		CustomerName:          orig.CustomerName,
		CustomerPhone:         orig.CustomerPhone,
		CustomerEmail:         cloneString(orig.CustomerEmail),
		VehicleRegNo:          cloneString(orig.VehicleRegNo),
		Model:                 cloneString(orig.Model),
		CurrentKM:             cloneInt(orig.CurrentKM),
		SpecificRepairRequest: cloneString(orig.SpecificRepairRequest),
		OTSRecall:             orig.OTSRecall,
		PriorityCustomer:      orig.PriorityCustomer,
		DocketReadiness:       false,
		RecoveredLostCustomer: orig.RecoveredLostCustomer,
		LostCustomer:          orig.LostCustomer,
		N1Status:              N1Pending,
		AppointmentStatus:     StatusBooked,
		AssignedCREUser:       orig.AssignedCREUser,
		CreatedByUser:         orig.CreatedByUser,
		CreatedAt:             now,
		UpdatedAt:             now,
		RescheduleHistory:     slices.Clone(orig.RescheduleHistory),
		IsRescheduled:         true,
		RescheduledFrom:       &from,
	}
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
