package executor

import "context"

// Executor defines the interface for executing external commands
type Executor interface {
	// Execute runs a command and returns its stdout.
	Execute(ctx context.Context, name string, args ...string) (string, error)
	// ExecuteInDir runs a command with dir as its working directory and returns its stdout.
	ExecuteInDir(ctx context.Context, dir string, name string, args ...string) (string, error)
	// ExecuteStderr runs a command and returns its stderr, for tools that report progress there.
	ExecuteStderr(ctx context.Context, name string, args ...string) (string, error)
}
