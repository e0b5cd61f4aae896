package data

import (
	"context"
	"time"

	"fitpack_admin/internal/models"
	"fitpack_admin/internal/tasks"
)

var _ tasks.Queue = (*Store)(nil)

// DueTasks returns active tasks whose due time has passed, oldest first
func (s *Store) DueTasks(ctx context.Context, now time.Time) ([]models.ScheduledTask, error) {
	var pending []models.ScheduledTask
	err := s.conn(ctx).
		Where("status = ? AND due <= ?", models.ScheduledTaskStatusActive, now).
		Order("due, id").
		Find(&pending).Error
	return pending, err
}

func (s *Store) RecordRun(ctx context.Context, h *models.ScheduledTaskHistory) error {
	return s.conn(ctx).Create(h).Error
}

func (s *Store) UpdateTask(ctx context.Context, id uint, updates map[string]interface{}) error {
	return s.conn(ctx).Model(&models.ScheduledTask{}).Where("id = ?", id).Updates(updates).Error
}

func (s *Store) CreateTask(ctx context.Context, t *models.ScheduledTask) error {
	return s.conn(ctx).Create(t).Error
}
