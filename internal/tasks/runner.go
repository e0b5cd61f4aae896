package tasks

import (
	"context"
	"time"

	"go.uber.org/zap"

	"fitpack_admin/internal/models"
)

// Queue is where scheduled tasks and their run history are kept
type Queue interface {
	DueTasks(ctx context.Context, now time.Time) ([]models.ScheduledTask, error)
	RecordRun(ctx context.Context, h *models.ScheduledTaskHistory) error
	UpdateTask(ctx context.Context, id uint, updates map[string]interface{}) error
}

// Run history statuses
const (
	RunSuccess         = "success"
	RunFailure         = "failure"
	RunHandlerNotFound = "handler_not_found"
)

// Runner executes due tasks
type Runner struct {
	queue    Queue
	registry *Registry
	deps     Deps
	log      *zap.Logger
	now      func() time.Time
}

func NewRunner(queue Queue, registry *Registry, deps Deps, log *zap.Logger) *Runner {
	return &Runner{queue: queue, registry: registry, deps: deps, log: log, now: time.Now}
}

// ProcessDue runs every active task whose due time has passed
func (r *Runner) ProcessDue(ctx context.Context) {
	pendingTasks, err := r.queue.DueTasks(ctx, r.now())
	if err != nil {
		r.log.Error("fetch pending tasks", zap.Error(err))
		return
	}
	if len(pendingTasks) == 0 {
		r.log.Debug("no pending tasks")
		return
	}

	r.log.Info("processing pending tasks", zap.Int("count", len(pendingTasks)))
	for _, task := range pendingTasks {
		if ctx.Err() != nil {
			return
		}
		r.execute(ctx, task, 1)
	}
}

func (r *Runner) execute(ctx context.Context, task models.ScheduledTask, curAttempt int) {
	log := r.log.With(zap.Uint("task_id", task.ID), zap.String("task", task.TaskName), zap.Int("attempt", curAttempt))

	handler, found := r.registry.Get(task.TaskName)
	if !found {
		log.Warn("task handler not found, marking as failure")
		now := r.now()
		r.record(ctx, log, &models.ScheduledTaskHistory{
			ScheduledTaskID: task.ID,
			TaskName:        task.TaskName,
			RunAt:           now,
			Status:          RunHandlerNotFound,
			AttemptNumber:   curAttempt,
			Arguments:       task.Arguments,
			Result:          map[string]interface{}{"error": "Handler not found"},
		})
		r.update(ctx, log, task.ID, map[string]interface{}{
			"status":   models.ScheduledTaskStatusFailure,
			"last_run": now,
		})
		return
	}

	startTime := r.now()
	result, err := handler(ctx, r.deps, task)
	runtime := r.now().Sub(startTime)

	status := RunSuccess
	if err != nil {
		status = RunFailure
		result = map[string]interface{}{"error": err.Error()}
		log.Error("task failed", zap.Error(err))
	} else {
		log.Info("task completed", zap.Duration("runtime", runtime))
	}

	r.record(ctx, log, &models.ScheduledTaskHistory{
		ScheduledTaskID: task.ID,
		TaskName:        task.TaskName,
		RunAt:           startTime,
		RuntimeMS:       runtime.Milliseconds(),
		Status:          status,
		AttemptNumber:   curAttempt,
		Arguments:       task.Arguments,
		Result:          result,
	})

	if status != RunSuccess {
		if curAttempt < task.MaxAttempt && ctx.Err() == nil {
			r.execute(ctx, task, curAttempt+1)
			return
		}
		r.update(ctx, log, task.ID, map[string]interface{}{
			"status":   models.ScheduledTaskStatusFailure,
			"last_run": startTime,
		})
		return
	}

	updates := map[string]interface{}{"last_run": startTime}
	switch task.TaskType {
	case models.ScheduledTaskTypeRecurring:
		// a rule that yields nothing later than the current due would rerun forever
		if nextDue := task.NextDue(startTime); nextDue.After(task.Due) {
			updates["status"] = models.ScheduledTaskStatusActive
			updates["due"] = nextDue
		} else {
			updates["status"] = models.ScheduledTaskStatusDone
		}
	default:
		updates["status"] = models.ScheduledTaskStatusDone
	}
	r.update(ctx, log, task.ID, updates)
}

func (r *Runner) record(ctx context.Context, log *zap.Logger, h *models.ScheduledTaskHistory) {
	if err := r.queue.RecordRun(ctx, h); err != nil {
		log.Error("record task history", zap.Error(err))
	}
}

func (r *Runner) update(ctx context.Context, log *zap.Logger, id uint, updates map[string]interface{}) {
	if err := r.queue.UpdateTask(ctx, id, updates); err != nil {
		log.Error("update task", zap.Error(err))
	}
}
