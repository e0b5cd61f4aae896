package tasks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"fitpack_admin/internal/dashboard"
	"fitpack_admin/internal/models"
)

// ExportDir is the storage directory scheduled exports are written to
const ExportDir = "exports"

// ExportOrdersArgs are the arguments of an export_orders task
type ExportOrdersArgs struct {
	Recipients []string `json:"recipients,omitempty"`
	Subject    string   `json:"subject,omitempty"`
}

// ExportOrdersTaskDef writes the orders CSV to file storage and optionally
// mails a link to it.
type ExportOrdersTaskDef struct{}

func (t *ExportOrdersTaskDef) TaskID() string {
	return "export_orders"
}

// CreateTask builds a ScheduledTask record for this task. A non-empty rule
// makes it recurring.
func (t *ExportOrdersTaskDef) CreateTask(args ExportOrdersArgs, due time.Time, rule string) (*models.ScheduledTask, error) {
	var recurring *string
	if rule != "" {
		recurring = &rule
	}
	return BuildScheduledTask(t.TaskID(), args, due, recurring, models.ScheduledTaskTypeOneTime, 3)
}

func (t *ExportOrdersTaskDef) HandleExecution(ctx context.Context, deps Deps, task models.ScheduledTask) (map[string]interface{}, error) {
	var args ExportOrdersArgs
	if err := decodeArgs(task.Arguments, &args); err != nil {
		return nil, err
	}
	if deps.Orders == nil || deps.Files == nil {
		return nil, errors.New("export_orders needs an order source and file storage")
	}

	var buf bytes.Buffer
	rows, err := dashboard.WriteOrdersCSV(ctx, &buf, deps.Orders, deps.Currency)
	if err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}

	now := deps.now()
	filename := fmt.Sprintf("%d_%s", task.ID, dashboard.ExportFilename(now))
	key, err := deps.Files.Put(ctx, ExportDir, filename, buf.Bytes(), "text/csv")
	if err != nil {
		return nil, fmt.Errorf("store export: %w", err)
	}
	link := deps.Files.PublicPrefix() + key

	result := map[string]interface{}{
		"rows":    rows,
		"key":     key,
		"url":     link,
		"emailed": 0,
	}
	recipients := args.Recipients
	if len(recipients) == 0 {
		recipients = deps.ExportRecipients
	}
	if len(recipients) == 0 {
		return result, nil
	}
	if deps.Mailer == nil || !deps.Mailer.Configured() {
		deps.logger().Warn("export_orders: smtp not configured, skipping e-mail", zap.Uint("task_id", task.ID))
		result["email_skipped"] = "smtp not configured"
		return result, nil
	}

	subject := args.Subject
	if subject == "" {
		subject = "Orders export " + now.Format("2006-01-02")
	}
	body := fmt.Sprintf("The orders export of %s is ready (%d orders).\n\n%s\n", now.Format("Jan 02, 2006"), rows, link)
	if err := deps.Mailer.SendEmail(recipients, subject, body); err != nil {
		return nil, fmt.Errorf("email export: %w", err)
	}
	result["emailed"] = len(recipients)
	return result, nil
}

// ExportOrdersTask is the singleton instance of ExportOrdersTaskDef
var ExportOrdersTask = &ExportOrdersTaskDef{}
