package tasks

// DefineTasks registers all available tasks
func DefineTasks(r *Registry) *Registry {
	r.Register(LogInfoTask.TaskID(), LogInfoTask.HandleExecution)
	r.Register(ExportOrdersTask.TaskID(), ExportOrdersTask.HandleExecution)
	return r
}
