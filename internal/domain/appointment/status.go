package appointment

import (
	"slices"

	"github.com/BruksfildServices01/dealer-crm/internal/httperr"
)

// ===============================
// N-1 confirmation
// ===============================

const (
	N1Pending      = "Pending"
	N1Confirmed    = "Confirmed"
	N1NotReachable = "Not Reachable"
	N1Rescheduled  = "Rescheduled"
)

// ===============================
// Appointment status
// ===============================

const (
	StatusBooked      = "Booked"
	StatusConfirmed   = "Confirmed"
	StatusClosed      = "Closed"
	StatusRescheduled = "Rescheduled"
)

// ===============================
// Appointment day outcome
// ===============================

const (
	OutcomeReported    = "Reported"
	OutcomeRescheduled = "Rescheduled"
	OutcomeCancelled   = "Cancelled"
	OutcomeNoShow      = "No-show"
)

var (
	BuiltinN1Statuses          = []string{N1Pending, N1Confirmed, N1NotReachable, N1Rescheduled}
	BuiltinAppointmentStatuses = []string{StatusBooked, StatusConfirmed, StatusClosed, StatusRescheduled}
	BuiltinOutcomes            = []string{OutcomeReported, OutcomeRescheduled, OutcomeCancelled, OutcomeNoShow}
)

// ConfirmedStatuses count as confirmed in the source funnel.
var ConfirmedStatuses = []string{StatusConfirmed, StatusClosed}

// ===============================
// Validations
// ===============================

// InitialN1Status is the confirmation status of every new row.
func InitialN1Status() string {
	return N1Pending
}

// InitialStatus is the appointment status of every new row.
func InitialStatus() string {
	return StatusBooked
}

// CanReschedule rejects rows that were already superseded by a successor.
func CanReschedule(current string) error {
	if current == StatusRescheduled {
		return httperr.ErrValidation("already_rescheduled", "Appointment was already rescheduled.")
	}
	return nil
}

// AllowedValue reports whether value is a built-in or a configured value.
func AllowedValue(value string, builtin, configured []string) bool {
	return slices.Contains(builtin, value) || slices.Contains(configured, value)
}
