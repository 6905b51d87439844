// Package exitcode holds the process exit codes shared by commands and the dispatcher.
package exitcode

const (
	Success = 0

	// UserError covers bad arguments, invalid task input and unknown task ids.
	UserError = 1

	// AuthError covers missing or rejected credentials and unusable configuration.
	AuthError = 2

	// BackendError covers task API failures and unreachable servers.
	BackendError = 3
)
