package models

import "time"

type User struct {
	UserID       string `gorm:"column:user_id;primaryKey;size:40" json:"user_id"`
	Username     string `gorm:"column:username;size:100;uniqueIndex;not null" json:"username"`
	PasswordHash string `gorm:"column:password_hash;size:255;not null" json:"-"`
	Name         string `gorm:"column:name;size:100;not null" json:"name"`
	Role         string `gorm:"column:role;size:20;not null;index" json:"role"`

	Email       *string `gorm:"column:email;size:100" json:"email"`
	Mobile      *string `gorm:"column:mobile;size:20" json:"mobile"`
	Department  string  `gorm:"column:department;size:100" json:"department"`
	Designation string  `gorm:"column:designation;size:100" json:"designation"`
	Branch      *string `gorm:"column:branch;size:100" json:"branch"`

	// Bools carry no gorm default so an explicit false is persisted on insert.
	IsActive bool `gorm:"column:is_active;not null" json:"is_active"`
	IsLocked bool `gorm:"column:is_locked;not null" json:"is_locked"`

	ModuleAccess []string `gorm:"column:module_access;type:text;serializer:json" json:"module_access"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime:false" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime:false" json:"updated_at"`
}

type Session struct {
	SessionID string    `gorm:"column:session_id;primaryKey;size:40" json:"session_id"`
	UserID    string    `gorm:"column:user_id;size:40;not null;index" json:"user_id"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null" json:"expires_at"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime:false" json:"created_at"`
}

type UserPreference struct {
	UserID        string   `gorm:"column:user_id;primaryKey;size:40" json:"user_id"`
	Page          string   `gorm:"column:page;primaryKey;size:60" json:"page"`
	HiddenColumns []string `gorm:"column:hidden_columns;type:text;serializer:json" json:"hidden_columns"`
	ColumnOrder   []string `gorm:"column:column_order;type:text;serializer:json" json:"column_order"`
}
