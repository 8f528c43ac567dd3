package models

import "time"

type ActivityLog struct {
	LogID         string    `gorm:"column:log_id;primaryKey;size:40" json:"log_id"`
	AppointmentID string    `gorm:"column:appointment_id;size:40;not null;index" json:"appointment_id"`
	UserID        string    `gorm:"column:user_id;size:40" json:"user_id"`
	UserName      string    `gorm:"column:user_name;size:100" json:"user_name"`
	Action        string    `gorm:"column:action;size:200;not null" json:"action"`
	FieldChanged  *string   `gorm:"column:field_changed;size:60" json:"field_changed"`
	OldValue      *string   `gorm:"column:old_value;type:text" json:"old_value"`
	NewValue      *string   `gorm:"column:new_value;type:text" json:"new_value"`
	Timestamp     time.Time `gorm:"column:timestamp;index" json:"timestamp"`
}
