package models

import (
	"time"

	"github.com/teambition/rrule-go"
	"gorm.io/datatypes"
)

// ScheduledTaskStatus represents the status of a scheduled task
type ScheduledTaskStatus string

const (
	ScheduledTaskStatusActive   ScheduledTaskStatus = "active"
	ScheduledTaskStatusDone     ScheduledTaskStatus = "done"
	ScheduledTaskStatusFailure  ScheduledTaskStatus = "failure"
	ScheduledTaskStatusDisabled ScheduledTaskStatus = "disabled"
)

// ScheduledTaskType represents the type of scheduled task
type ScheduledTaskType string

const (
	ScheduledTaskTypeOneTime   ScheduledTaskType = "onetime"
	ScheduledTaskTypeRecurring ScheduledTaskType = "recurring"
)

// ScheduledTask is a background job the worker runs once it is due,
// e.g. a periodic orders export.
type ScheduledTask struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	TaskName          string              `gorm:"type:varchar(255);not null" json:"task_name"`
	Arguments         datatypes.JSONMap   `gorm:"type:json" json:"arguments"`
	LastRun           *time.Time          `json:"last_run"`
	Due               time.Time           `gorm:"index:idx_scheduled_tasks_status_due,priority:2" json:"due"`
	RecurringInterval *string             `gorm:"type:text" json:"recurring_interval"`
	Status            ScheduledTaskStatus `gorm:"type:varchar(20);index:idx_scheduled_tasks_status_due,priority:1" json:"status"`
	TaskType          ScheduledTaskType   `gorm:"type:varchar(20);default:'onetime'" json:"task_type"`
	MaxAttempt        int                 `json:"max_attempt"`
}

// NextDue returns the first recurrence strictly after the given instant.
// One-time tasks, and recurring tasks whose rule is missing or exhausted,
// keep their current due time.
func (t ScheduledTask) NextDue(after time.Time) time.Time {
	if t.TaskType != ScheduledTaskTypeRecurring || t.RecurringInterval == nil || *t.RecurringInterval == "" {
		return t.Due
	}

	rule, err := rrule.StrToRRule(*t.RecurringInterval)
	if err != nil {
		return t.Due
	}
	rule.DTStart(t.Due)
	if next := rule.After(after, false); !next.IsZero() {
		return next
	}
	return t.Due
}

// ScheduledTaskHistory is one execution attempt of a scheduled task
type ScheduledTaskHistory struct {
	ID              uint      `gorm:"primarykey" json:"id"`
	CreatedAt       time.Time `json:"created_at"`
	ScheduledTaskID uint      `gorm:"index" json:"scheduled_task_id"`

	TaskName      string            `gorm:"type:varchar(255)" json:"task_name"`
	RunAt         time.Time         `json:"run_at"`
	RuntimeMS     int64             `json:"runtime_ms"`
	Status        string            `gorm:"type:varchar(50)" json:"status"`
	AttemptNumber int               `json:"attempt_number"`
	Arguments     datatypes.JSONMap `gorm:"type:json" json:"arguments"`
	Result        datatypes.JSONMap `gorm:"type:json" json:"result"`
}
