package errors

// Convenience functions for common error patterns

// Config errors

func ConfigNotFound(path string) *FboxError {
	return New(CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func ConfigRequired(field string) *FboxError {
	return New(CategoryConfig, SeverityFatal, "required configuration missing").
		WithContext("field", field)
}

func ValidationFailed(field, reason string) *FboxError {
	return New(CategoryValidation, SeverityFatal, "validation failed: "+field+": "+reason).
		WithContext("field", field).
		WithContext("reason", reason)
}

// Generator errors

func ProjectExists(path string) *FboxError {
	return New(CategoryFileSystem, SeverityFatal, "project directory "+path+" exists already, cannot continue").
		WithContext("path", path)
}

func FileSystemError(operation string, cause error) *FboxError {
	return Wrap(cause, CategoryFileSystem, SeverityFatal, "filesystem operation failed").
		WithContext("operation", operation)
}

// Git errors

func GitError(operation string, cause error) *FboxError {
	return Wrap(cause, CategoryGit, SeverityFatal, "git "+operation+" failed").
		WithContext("operation", operation)
}

// Task errors

// ProcessFailed reports an external command that exited non-zero.
func ProcessFailed(command string, exitCode int) *FboxError {
	return New(CategoryProcess, SeverityFatal, "command failed").
		WithContext("command", command).
		WithContext("exit_code", exitCode)
}

// ProcessError reports an external command that could not be run at all.
func ProcessError(command string, cause error) *FboxError {
	return Wrap(cause, CategoryProcess, SeverityFatal, "command could not be executed").
		WithContext("command", command)
}

func ServiceUnavailable(service string, cause error) *FboxError {
	return Wrap(cause, CategoryService, SeverityFatal, service+" is not reachable").
		WithContext("service", service)
}

// Aborted reports a task that refused to continue.
func Aborted(reason string) *FboxError {
	return New(CategoryRuntime, SeverityFatal, reason)
}

// Internal errors

func InternalError(message string, cause error) *FboxError {
	return Wrap(cause, CategoryInternal, SeverityFatal, message)
}
