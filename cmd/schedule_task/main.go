package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"fitpack_admin/internal/config"
	"fitpack_admin/internal/data"
	"fitpack_admin/internal/models"
	"fitpack_admin/internal/services"
	"fitpack_admin/internal/tasks"
)

func main() {
	// defined flags
	taskName := flag.String("task_name", "", "Name of the task (mandatory)")
	argsStr := flag.String("arguments", "{}", "JSON arguments for the task")
	dueStr := flag.String("due", "", "Due date (mandatory, format: 2006-01-02 15:04 or RFC3339)")
	taskType := flag.String("tasktype", "onetime", "Task type: onetime or recurring")
	recurring := flag.String("recurring", "", "RRULE recurrence, e.g. FREQ=DAILY (optional)")
	maxAttempt := flag.Int("max_attempt", 3, "Max attempts")

	flag.Parse()

	if *taskName == "" || *dueStr == "" {
		fmt.Println("Usage: schedule_task -task_name <name> -due <YYYY-MM-DD HH:MM> [-arguments <json>] [options]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if _, ok := tasks.DefineTasks(tasks.NewRegistry()).Get(*taskName); !ok {
		log.Fatalf("Unknown task %q", *taskName)
	}

	// RFC3339 first, then the short form in local time
	due, err := time.Parse(time.RFC3339, *dueStr)
	if err != nil {
		due, err = time.ParseInLocation("2006-01-02 15:04", *dueStr, time.Local)
		if err != nil {
			log.Fatalf("Invalid due date format. Use '2006-01-02 15:04' (Local) or RFC3339: %v", err)
		}
	}

	task, err := buildTask(*taskName, []byte(*argsStr), due, *recurring, models.ScheduledTaskType(*taskType), *maxAttempt)
	if err != nil {
		log.Fatalf("Failed to build task: %v", err)
	}
	if task.TaskType == models.ScheduledTaskTypeRecurring && task.NextDue(due).Equal(task.Due) {
		log.Fatalf("Recurrence %q yields no run after %s", *recurring, due)
	}

	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}
	db, err := services.InitDB(cfg.DatabaseURL, false, zap.NewNop())
	if err != nil {
		log.Fatalf("Failed to connect DB: %v", err)
	}

	if err := data.NewStore(db).CreateTask(context.Background(), task); err != nil {
		log.Fatalf("Failed to create task: %v", err)
	}

	fmt.Printf("Successfully created task ID: %d\n", task.ID)
	fmt.Printf("Task: %s\nDue: %s\nType: %s\n", task.TaskName, task.Due, task.TaskType)
}

// buildTask decodes the arguments for taskName. export_orders arguments are
// checked against ExportOrdersArgs.
func buildTask(taskName string, rawArgs []byte, due time.Time, rule string, taskType models.ScheduledTaskType, maxAttempt int) (*models.ScheduledTask, error) {
	if taskName == tasks.ExportOrdersTask.TaskID() {
		var args tasks.ExportOrdersArgs
		dec := json.NewDecoder(bytes.NewReader(rawArgs))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&args); err != nil {
			return nil, fmt.Errorf("invalid export_orders arguments: %w", err)
		}
		task, err := tasks.ExportOrdersTask.CreateTask(args, due, rule)
		if err != nil {
			return nil, err
		}
		task.MaxAttempt = maxAttempt
		return task, nil
	}

	var args map[string]interface{}
	if err := json.Unmarshal(rawArgs, &args); err != nil {
		return nil, fmt.Errorf("invalid JSON arguments: %w", err)
	}
	var recurring *string
	if rule != "" {
		recurring = &rule
	}
	return tasks.BuildScheduledTask(taskName, args, due, recurring, taskType, maxAttempt)
}
