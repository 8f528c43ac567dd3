package models

import "time"

const MainSettingsID = "main"

// Settings is the single versioned configuration record.
type Settings struct {
	SettingsID string `gorm:"column:settings_id;primaryKey;size:20" json:"settings_id"`
	Version    int    `gorm:"column:version;not null" json:"version"`

	BranchTypes                 []string `gorm:"column:branch_types;type:text;serializer:json" json:"branch_types"`
	Branches                    []string `gorm:"column:branches;type:text;serializer:json" json:"branches"`
	ServiceAdvisors             []string `gorm:"column:service_advisors;type:text;serializer:json" json:"service_advisors"`
	Sources                     []string `gorm:"column:sources;type:text;serializer:json" json:"sources"`
	ServiceTypes                []string `gorm:"column:service_types;type:text;serializer:json" json:"service_types"`
	VehicleModels               []string `gorm:"column:vehicle_models;type:text;serializer:json" json:"vehicle_models"`
	NMinus1ConfirmationStatuses []string `gorm:"column:n_minus_1_confirmation_statuses;type:text;serializer:json" json:"n_minus_1_confirmation_statuses"`
	AppointmentStatuses         []string `gorm:"column:appointment_statuses;type:text;serializer:json" json:"appointment_statuses"`
	AppointmentDayOutcomes      []string `gorm:"column:appointment_day_outcomes;type:text;serializer:json" json:"appointment_day_outcomes"`

	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime:false" json:"updated_at"`
}

type Branch struct {
	BranchID  string    `gorm:"column:branch_id;primaryKey;size:40" json:"branch_id"`
	Location  string    `gorm:"column:location;size:100;not null" json:"location"`
	Type      string    `gorm:"column:type;size:40" json:"type"`
	Address   *string   `gorm:"column:address;size:255" json:"address"`
	IsPrimary bool      `gorm:"column:is_primary;not null" json:"is_primary"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime:false" json:"created_at"`
}
