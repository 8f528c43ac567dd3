package appointment

import (
	"github.com/BruksfildServices01/dealer-crm/internal/domain/user"
	"github.com/BruksfildServices01/dealer-crm/internal/httperr"
	"github.com/BruksfildServices01/dealer-crm/internal/models"
)

// rolePolicy restricts which guarded fields a role may write.
type rolePolicy struct {
	ownOnly     bool
	denied      guard
	sameDayOnly guard
}

// Roles absent from this table (other than CRM) may not update at all.
var rolePolicies = map[user.Role]rolePolicy{
	user.RoleCRE: {
		ownOnly: true,
		denied:  guardOutcome | guardAssignment,
	},
	user.RoleReceptionist: {
		denied:      guardAssignment,
		sameDayOnly: guardOutcome,
	},
}

// AuthorizeUpdate checks actor may apply p to ap. today is the current
// calendar date in the configured timezone.
func AuthorizeUpdate(actor *models.User, ap *models.Appointment, p Patch, today string) error {
	role := user.EffectiveRole(actor.Role)
	if role == user.RoleCRM {
		return nil
	}

	policy, ok := rolePolicies[role]
	if !ok {
		return httperr.ErrPermissionDenied("role_not_allowed", "Your role cannot update appointments.")
	}

	if policy.ownOnly && ap.AssignedCREUser != actor.UserID {
		return httperr.ErrPermissionDenied("not_assigned", "You can only update your own appointments.")
	}

	var touched guard
	for _, ch := range p.Changes() {
		touched |= ch.Field.guards()
	}

	if touched&policy.denied&guardAssignment != 0 {
		return httperr.ErrPermissionDenied("assignment_forbidden", "Only CRM can reassign appointments.")
	}
	if touched&policy.denied&guardOutcome != 0 {
		return httperr.ErrPermissionDenied("outcome_forbidden", "Your role cannot update appointment day outcome.")
	}
	if touched&policy.sameDayOnly != 0 && ap.AppointmentDate != today {
		return httperr.ErrPermissionDenied("outcome_not_today", "Appointment day outcome can only be updated on the appointment day.")
	}

	return nil
}
