package tasks

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"fitpack_admin/internal/dashboard"
	"fitpack_admin/internal/models"
	"fitpack_admin/internal/services"
)

// Mailer sends plain text e-mail; *services.EmailService satisfies it
type Mailer interface {
	Configured() bool
	SendEmail(to []string, subject, body string) error
}

// Deps are the services task handlers may use
type Deps struct {
	Orders   dashboard.OrderSource
	Files    services.FileStorage
	Mailer   Mailer
	Currency string
	// ExportRecipients receive exports whose task names no recipients
	ExportRecipients []string
	Log              *zap.Logger
	Now              func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}

func (d Deps) logger() *zap.Logger {
	if d.Log == nil {
		return zap.NewNop()
	}
	return d.Log
}

// TaskHandler is the function signature for a task handler.
// It returns a result map that is stored in the run history.
type TaskHandler func(ctx context.Context, deps Deps, task models.ScheduledTask) (map[string]interface{}, error)

// Registry stores the mapping of task names to handlers
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]TaskHandler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]TaskHandler)}
}

// Register adds a handler for a task name
func (r *Registry) Register(name string, handler TaskHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = handler
}

// Get retrieves a handler for a task name
func (r *Registry) Get(name string) (TaskHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	handler, ok := r.handlers[name]
	return handler, ok
}
