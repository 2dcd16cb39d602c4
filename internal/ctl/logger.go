package ctl

import "github.com/pterm/pterm"

// Logger reports driver progress, grounded on the teacher's
// pkg/migrations/logger.go pterm.Logger-backed shape, narrowed to what
// the driver loop in driver.go actually needs: one event per command and
// one per try_again retry.
type Logger interface {
	LogCommandStart(verb string, args []string)
	LogCommandComplete(verb string)
	LogRetry(attempt int)
	Info(msg string, args ...any)
}

type ptermLogger struct {
	logger pterm.Logger
}

func NewLogger() Logger {
	return &ptermLogger{logger: pterm.DefaultLogger}
}

func (l *ptermLogger) LogCommandStart(verb string, args []string) {
	l.logger.Info("starting command", l.logger.Args("verb", verb, "args", args))
}

func (l *ptermLogger) LogCommandComplete(verb string) {
	l.logger.Info("completed command", l.logger.Args("verb", verb))
}

func (l *ptermLogger) LogRetry(attempt int) {
	l.logger.Info("retrying command stream", l.logger.Args("attempt", attempt))
}

func (l *ptermLogger) Info(msg string, args ...any) {
	l.logger.Info(msg, l.logger.Args(args...))
}

type noopLogger struct{}

func NewNoopLogger() Logger { return &noopLogger{} }

func (*noopLogger) LogCommandStart(string, []string) {}
func (*noopLogger) LogCommandComplete(string)        {}
func (*noopLogger) LogRetry(int)                     {}
func (*noopLogger) Info(string, ...any)               {}
