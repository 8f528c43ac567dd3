package appointment

import (
	"strconv"

	"github.com/BruksfildServices01/dealer-crm/internal/models"
)

// Field names a mutable appointment attribute. Values match the JSON keys.
type Field string

const (
	FieldBranch                     Field = "branch"
	FieldAppointmentDate            Field = "appointment_date"
	FieldAppointmentTime            Field = "appointment_time"
	FieldSource                     Field = "source"
	FieldCustomerName               Field = "customer_name"
	FieldCustomerPhone              Field = "customer_phone"
	FieldCustomerEmail              Field = "customer_email"
	FieldVehicleRegNo               Field = "vehicle_reg_no"
	FieldModel                      Field = "model"
	FieldCurrentKM                  Field = "current_km"
	FieldOTSRecall                  Field = "ots_recall"
	FieldServiceType                Field = "service_type"
	FieldAllocatedSA                Field = "allocated_sa"
	FieldSpecificRepairRequest      Field = "specific_repair_request"
	FieldPriorityCustomer           Field = "priority_customer"
	FieldDocketReadiness            Field = "docket_readiness"
	FieldRecoveredLostCustomer      Field = "recovered_lost_customer"
	FieldLostCustomer               Field = "lost_customer"
	FieldN1Status                   Field = "n_minus_1_confirmation_status"
	FieldN1Notes                    Field = "n_minus_1_confirmation_notes"
	FieldAppointmentStatus          Field = "appointment_status"
	FieldAppointmentDayOutcome      Field = "appointment_day_outcome"
	FieldAppointmentDayOutcomeNotes Field = "appointment_day_outcome_notes"
	FieldRescheduleDate             Field = "reschedule_date"
	FieldRescheduleRemarks          Field = "reschedule_remarks"
	FieldCancelReason               Field = "cancel_reason"
	FieldAssignedCREUser            Field = "assigned_cre_user"
)

// guard is a permission annotation carried by a field.
type guard uint8

const (
	guardOutcome guard = 1 << iota
	guardAssignment
)

var fieldGuards = map[Field]guard{
	FieldAppointmentDayOutcome:      guardOutcome,
	FieldAppointmentDayOutcomeNotes: guardOutcome,
	FieldAssignedCREUser:            guardAssignment,
}

func (f Field) guards() guard {
	return fieldGuards[f]
}

// Patch is a partial update. Nil pointers are absent from the request.
type Patch struct {
	Branch                     *string `json:"branch"`
	AppointmentDate            *string `json:"appointment_date"`
	AppointmentTime            *string `json:"appointment_time"`
	Source                     *string `json:"source"`
	CustomerName               *string `json:"customer_name"`
	CustomerPhone              *string `json:"customer_phone"`
	CustomerEmail              *string `json:"customer_email"`
	VehicleRegNo               *string `json:"vehicle_reg_no"`
	Model                      *string `json:"model"`
	CurrentKM                  *int    `json:"current_km"`
	OTSRecall                  *bool   `json:"ots_recall"`
	ServiceType                *string `json:"service_type"`
	AllocatedSA                *string `json:"allocated_sa"`
	SpecificRepairRequest      *string `json:"specific_repair_request"`
	PriorityCustomer           *bool   `json:"priority_customer"`
	DocketReadiness            *bool   `json:"docket_readiness"`
	RecoveredLostCustomer      *bool   `json:"recovered_lost_customer"`
	LostCustomer               *bool   `json:"lost_customer"`
	N1Status                   *string `json:"n_minus_1_confirmation_status"`
	N1Notes                    *string `json:"n_minus_1_confirmation_notes"`
	AppointmentStatus          *string `json:"appointment_status"`
	AppointmentDayOutcome      *string `json:"appointment_day_outcome"`
	AppointmentDayOutcomeNotes *string `json:"appointment_day_outcome_notes"`
	RescheduleDate             *string `json:"reschedule_date"`
	RescheduleRemarks          *string `json:"reschedule_remarks"`
	CancelReason               *string `json:"cancel_reason"`
	AssignedCREUser            *string `json:"assigned_cre_user"`
}

// Change is one field present in a Patch with its dereferenced value.
type Change struct {
	Field Field
	Value any
}

// Changes lists the fields present in p in a stable order.
func (p Patch) Changes() []Change {
	var out []Change
	addStr := func(f Field, v *string) {
		if v != nil {
			out = append(out, Change{Field: f, Value: *v})
		}
	}
	addBool := func(f Field, v *bool) {
		if v != nil {
			out = append(out, Change{Field: f, Value: *v})
		}
	}

	addStr(FieldBranch, p.Branch)
	addStr(FieldAppointmentDate, p.AppointmentDate)
	addStr(FieldAppointmentTime, p.AppointmentTime)
	addStr(FieldSource, p.Source)
	addStr(FieldCustomerName, p.CustomerName)
	addStr(FieldCustomerPhone, p.CustomerPhone)
	addStr(FieldCustomerEmail, p.CustomerEmail)
	addStr(FieldVehicleRegNo, p.VehicleRegNo)
	addStr(FieldModel, p.Model)
	if p.CurrentKM != nil {
		out = append(out, Change{Field: FieldCurrentKM, Value: *p.CurrentKM})
	}
	addBool(FieldOTSRecall, p.OTSRecall)
	addStr(FieldServiceType, p.ServiceType)
	addStr(FieldAllocatedSA, p.AllocatedSA)
	addStr(FieldSpecificRepairRequest, p.SpecificRepairRequest)
	addBool(FieldPriorityCustomer, p.PriorityCustomer)
	addBool(FieldDocketReadiness, p.DocketReadiness)
	addBool(FieldRecoveredLostCustomer, p.RecoveredLostCustomer)
	addBool(FieldLostCustomer, p.LostCustomer)
	addStr(FieldN1Status, p.N1Status)
	addStr(FieldN1Notes, p.N1Notes)
	addStr(FieldAppointmentStatus, p.AppointmentStatus)
	addStr(FieldAppointmentDayOutcome, p.AppointmentDayOutcome)
	addStr(FieldAppointmentDayOutcomeNotes, p.AppointmentDayOutcomeNotes)
	addStr(FieldRescheduleDate, p.RescheduleDate)
	addStr(FieldRescheduleRemarks, p.RescheduleRemarks)
	addStr(FieldCancelReason, p.CancelReason)
	addStr(FieldAssignedCREUser, p.AssignedCREUser)

	return out
}

// FieldDiff is a meaningful change of one field, rendered as strings.
type FieldDiff struct {
	Field    Field
	OldValue *string
	NewValue *string
}

// Diff compares p against the stored row. Values that normalize to the same
// thing (nil, "" and "None" are all absent) produce no entry.
func Diff(ap *models.Appointment, p Patch) []FieldDiff {
	var out []FieldDiff
	for _, ch := range p.Changes() {
		old := Value(ap, ch.Field)
		if normalize(old) == normalize(ch.Value) {
			continue
		}
		out = append(out, FieldDiff{
			Field:    ch.Field,
			OldValue: Render(old),
			NewValue: Render(ch.Value),
		})
	}
	return out
}

// Apply writes every field present in p onto ap.
func Apply(ap *models.Appointment, p Patch) {
	for _, ch := range p.Changes() {
		set(ap, ch.Field, ch.Value)
	}
}

func normalize(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		if t == "" || t == "None" {
			return nil
		}
	}
	return v
}

// Render is the string form stored in the activity log; nil stays nil.
func Render(v any) *string {
	var s string
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		s = t
	case bool:
		s = strconv.FormatBool(t)
	case int:
		s = strconv.Itoa(t)
	default:
		return nil
	}
	return &s
}

func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

// Value reads the current value of f from ap; absent optionals are nil.
func Value(ap *models.Appointment, f Field) any {
	switch f {
	case FieldBranch:
		return ap.Branch
	case FieldAppointmentDate:
		return ap.AppointmentDate
	case FieldAppointmentTime:
		return ap.AppointmentTime
	case FieldSource:
		return ap.Source
	case FieldCustomerName:
		return ap.CustomerName
	case FieldCustomerPhone:
		return ap.CustomerPhone
	case FieldCustomerEmail:
		return deref(ap.CustomerEmail)
	case FieldVehicleRegNo:
		return deref(ap.VehicleRegNo)
	case FieldModel:
		return deref(ap.Model)
	case FieldCurrentKM:
		return deref(ap.CurrentKM)
	case FieldOTSRecall:
		return ap.OTSRecall
	case FieldServiceType:
		return ap.ServiceType
	case FieldAllocatedSA:
		return deref(ap.AllocatedSA)
	case FieldSpecificRepairRequest:
		return deref(ap.SpecificRepairRequest)
	case FieldPriorityCustomer:
		return ap.PriorityCustomer
	case FieldDocketReadiness:
		return ap.DocketReadiness
	case FieldRecoveredLostCustomer:
		return ap.RecoveredLostCustomer
	case FieldLostCustomer:
		return ap.LostCustomer
	case FieldN1Status:
		return ap.N1Status
	case FieldN1Notes:
		return deref(ap.N1Notes)
	case FieldAppointmentStatus:
		return ap.AppointmentStatus
	case FieldAppointmentDayOutcome:
		return deref(ap.AppointmentDayOutcome)
	case FieldAppointmentDayOutcomeNotes:
		return deref(ap.AppointmentDayOutcomeNotes)
	case FieldRescheduleDate:
		return deref(ap.RescheduleDate)
	case FieldRescheduleRemarks:
		return deref(ap.RescheduleRemarks)
	case FieldCancelReason:
		return deref(ap.CancelReason)
	case FieldAssignedCREUser:
		return ap.AssignedCREUser
	}
	return nil
}

func set(ap *models.Appointment, f Field, v any) {
	str, _ := v.(string)
	b, _ := v.(bool)
	optional := func() *string { s := str; return &s }

	switch f {
	case FieldBranch:
		ap.Branch = str
	case FieldAppointmentDate:
		ap.AppointmentDate = str
	case FieldAppointmentTime:
		ap.AppointmentTime = str
	case FieldSource:
		ap.Source = str
	case FieldCustomerName:
		ap.CustomerName = str
	case FieldCustomerPhone:
		ap.CustomerPhone = str
	case FieldCustomerEmail:
		ap.CustomerEmail = optional()
	case FieldVehicleRegNo:
		ap.VehicleRegNo = optional()
	case FieldModel:
		ap.Model = optional()
	case FieldCurrentKM:
		if km, ok := v.(int); ok {
			ap.CurrentKM = &km
		}
	case FieldOTSRecall:
		ap.OTSRecall = b
	case FieldServiceType:
		ap.ServiceType = str
	case FieldAllocatedSA:
		ap.AllocatedSA = optional()
	case FieldSpecificRepairRequest:
		ap.SpecificRepairRequest = optional()
	case FieldPriorityCustomer:
		ap.PriorityCustomer = b
	case FieldDocketReadiness:
		ap.DocketReadiness = b
	case FieldRecoveredLostCustomer:
		ap.RecoveredLostCustomer = b
	case FieldLostCustomer:
		ap.LostCustomer = b
	case FieldN1Status:
		ap.N1Status = str
	case FieldN1Notes:
		ap.N1Notes = optional()
	case FieldAppointmentStatus:
		ap.AppointmentStatus = str
	case FieldAppointmentDayOutcome:
		ap.AppointmentDayOutcome = optional()
	case FieldAppointmentDayOutcomeNotes:
		ap.AppointmentDayOutcomeNotes = optional()
	case FieldRescheduleDate:
		ap.RescheduleDate = optional()
	case FieldRescheduleRemarks:
		ap.RescheduleRemarks = optional()
	case FieldCancelReason:
		ap.CancelReason = optional()
	case FieldAssignedCREUser:
		ap.AssignedCREUser = str
	}
}
