package models

import "time"

type RescheduleEntry struct {
	FromDate      string    `json:"from_date"`
	ToDate        string    `json:"to_date"`
	Remarks       string    `json:"remarks"`
	RescheduledAt time.Time `json:"rescheduled_at"`
	RescheduledBy string    `json:"rescheduled_by"`
}

type Appointment struct {
	AppointmentID string `gorm:"column:appointment_id;primaryKey;size:40" json:"appointment_id"`
	BookingID     string `gorm:"column:booking_id;size:32;index" json:"booking_id"`
	SlNo          int64  `gorm:"column:sl_no;uniqueIndex;not null" json:"sl_no"`

	Branch          string  `gorm:"column:branch;size:100;index" json:"branch"`
	AppointmentDate string  `gorm:"column:appointment_date;size:10;index" json:"appointment_date"`
	AppointmentTime string  `gorm:"column:appointment_time;size:5" json:"appointment_time"`
	Source          string  `gorm:"column:source;size:60" json:"source"`
	ServiceType     string  `gorm:"column:service_type;size:60" json:"service_type"`
	AllocatedSA     *string `gorm:"column:allocated_sa;size:100" json:"allocated_sa"`

	CustomerName          string  `gorm:"column:customer_name;size:150" json:"customer_name"`
	CustomerPhone         string  `gorm:"column:customer_phone;size:20;index" json:"customer_phone"`
	CustomerEmail         *string `gorm:"column:customer_email;size:150" json:"customer_email"`
	VehicleRegNo          *string `gorm:"column:vehicle_reg_no;size:20;index" json:"vehicle_reg_no"`
	Model                 *string `gorm:"column:model;size:60" json:"model"`
	CurrentKM             *int    `gorm:"column:current_km" json:"current_km"`
	SpecificRepairRequest *string `gorm:"column:specific_repair_request;type:text" json:"specific_repair_request"`

	OTSRecall             bool `gorm:"column:ots_recall;not null" json:"ots_recall"`
	PriorityCustomer      bool `gorm:"column:priority_customer;not null" json:"priority_customer"`
	DocketReadiness       bool `gorm:"column:docket_readiness;not null" json:"docket_readiness"`
	RecoveredLostCustomer bool `gorm:"column:recovered_lost_customer;not null" json:"recovered_lost_customer"`
	LostCustomer          bool `gorm:"column:lost_customer;not null" json:"lost_customer"`

	N1Status                   string  `gorm:"column:n_minus_1_confirmation_status;size:30;index" json:"n_minus_1_confirmation_status"`
	N1Notes                    *string `gorm:"column:n_minus_1_confirmation_notes;type:text" json:"n_minus_1_confirmation_notes"`
	AppointmentStatus          string  `gorm:"column:appointment_status;size:30" json:"appointment_status"`
	AppointmentDayOutcome      *string `gorm:"column:appointment_day_outcome;size:30" json:"appointment_day_outcome"`
	AppointmentDayOutcomeNotes *string `gorm:"column:appointment_day_outcome_notes;type:text" json:"appointment_day_outcome_notes"`
	RescheduleDate             *string `gorm:"column:reschedule_date;size:10" json:"reschedule_date"`
	RescheduleRemarks          *string `gorm:"column:reschedule_remarks;type:text" json:"reschedule_remarks"`
	CancelReason               *string `gorm:"column:cancel_reason;type:text" json:"cancel_reason"`

	AssignedCREUser string    `gorm:"column:assigned_cre_user;size:40;index" json:"assigned_cre_user"`
	CreatedByUser   string    `gorm:"column:created_by_user;size:40" json:"created_by_user"`
	CreatedAt       time.Time `gorm:"column:created_at;index;autoCreateTime:false" json:"created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime:false" json:"updated_at"`

	// Snapshot taken once at booking time. Never recomputed, even when
	// later bookings would change the answer.
	DuplicatePhoneLast30Days   bool `gorm:"column:duplicate_phone_last_30_days;not null" json:"duplicate_phone_last_30_days"`
	DuplicateVehicleLast30Days bool `gorm:"column:duplicate_vehicle_last_30_days;not null" json:"duplicate_vehicle_last_30_days"`

	RescheduleHistory []RescheduleEntry `gorm:"column:reschedule_history;type:text;serializer:json" json:"reschedule_history"`
	IsRescheduled     bool              `gorm:"column:is_rescheduled;not null" json:"is_rescheduled"`
	RescheduledFrom   *string           `gorm:"column:rescheduled_from;size:40" json:"rescheduled_from"`
}

// AppointmentInfo is the read-only snapshot attached to reminder tasks.
type AppointmentInfo struct {
	CustomerName    string `json:"customer_name"`
	CustomerPhone   string `json:"customer_phone"`
	AppointmentDate string `json:"appointment_date"`
	AppointmentTime string `json:"appointment_time"`
}

func (a *Appointment) Info() AppointmentInfo {
	return AppointmentInfo{
		CustomerName:    a.CustomerName,
		CustomerPhone:   a.CustomerPhone,
		AppointmentDate: a.AppointmentDate,
		AppointmentTime: a.AppointmentTime,
	}
}
