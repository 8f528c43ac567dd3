package models

import "time"

type Task struct {
	TaskID        string     `gorm:"column:task_id;primaryKey;size:40" json:"task_id"`
	TaskType      string     `gorm:"column:task_type;size:40;not null" json:"task_type"`
	AppointmentID string     `gorm:"column:appointment_id;size:40;not null;index" json:"appointment_id"`
	AssignedTo    string     `gorm:"column:assigned_to;size:40;index" json:"assigned_to"`
	Status        string     `gorm:"column:status;size:20;not null;index" json:"status"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime:false" json:"created_at"`
	CompletedAt   *time.Time `gorm:"column:completed_at" json:"completed_at"`
}
