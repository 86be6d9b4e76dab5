package model

import (
	"time"

	"github.com/google/uuid"
)

// TaskStatus enum constants
const (
	TaskStatusNew       = "new"
	TaskStatusReceived  = "received"
	TaskStatusOnProcess = "on_process"
	TaskStatusPending   = "pending"
	TaskStatusCompleted = "completed"
	TaskStatusLooseEnd  = "loose_end"
)

// Task is a unit of back-office work, owned by a user and optionally shared with a group
type Task struct {
	ID              uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title           string     `gorm:"type:varchar(255);not null" json:"title"`
	Description     string     `gorm:"type:text" json:"description"`
	StartDate       *time.Time `json:"start_date"`
	Deadline        *time.Time `json:"deadline"`
	DeadlineAllDay  bool       `gorm:"not null;default:false" json:"deadline_all_day"`
	Urgency         bool       `gorm:"not null;default:false" json:"urgency"`
	Important       bool       `gorm:"not null;default:false" json:"important"`
	Completed       bool       `gorm:"not null;default:false" json:"completed"` // Derived: status == completed
	Status          string     `gorm:"type:varchar(20);not null;default:'new';index" json:"status"`
	StatusComments  string     `gorm:"type:text" json:"status_comments"`
	StatusUpdatedAt *time.Time `json:"status_updated_at"`
	StatusUpdatedBy *uuid.UUID `gorm:"type:uuid" json:"status_updated_by"`

	OwnerID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"owner_id"`
	Owner     *User      `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	GroupID   *uuid.UUID `gorm:"type:uuid;index" json:"group_id"`
	Group     *Group     `gorm:"foreignKey:GroupID" json:"group,omitempty"`
	CompanyID *uuid.UUID `gorm:"type:uuid;index" json:"company_id"`
	Company   *Company   `gorm:"foreignKey:CompanyID" json:"company,omitempty"`

	History []TaskHistory `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE;" json:"history,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TaskHistory records each status transition with who made it and an optional comment
type TaskHistory struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TaskID      uuid.UUID `gorm:"type:uuid;not null;index" json:"task_id"`
	ChangedByID uuid.UUID `gorm:"type:uuid;not null" json:"changed_by_id"`
	ChangedBy   *User     `gorm:"foreignKey:ChangedByID" json:"changed_by,omitempty"`
	StatusFrom  string    `gorm:"type:varchar(20)" json:"status_from"`
	StatusTo    string    `gorm:"type:varchar(20)" json:"status_to"`
	Comment     string    `gorm:"type:text" json:"comment"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}
