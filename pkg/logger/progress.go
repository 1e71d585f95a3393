package logger

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// StepTracker reports progress through a fixed sequence of pipeline steps.
// Every step is logged; when Echo is set the "[i/N] name" line is also
// written there for the user.
type StepTracker struct {
	logger    Logger
	total     int
	current   int
	echo      io.Writer
	startTime time.Time
	stepStart time.Time
	mutex     sync.Mutex
}

// StepConfig configures a StepTracker
type StepConfig struct {
	Total  int
	Echo   io.Writer
	Logger Logger
}

// NewStepTracker creates a new step tracker
func NewStepTracker(config StepConfig) *StepTracker {
	if config.Logger == nil {
		config.Logger = GetGlobalLogger()
	}
	now := time.Now()
	return &StepTracker{
		logger:    config.Logger,
		total:     config.Total,
		echo:      config.Echo,
		startTime: now,
		stepStart: now,
	}
}

// Begin starts the next step and returns its 1-based index
func (s *StepTracker) Begin(name string) int {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.current++
	s.stepStart = time.Now()

	s.logger.WithFields(Fields{
		"step":  s.current,
		"total": s.total,
		"name":  name,
	}).Info("Pipeline step")

	if s.echo != nil {
		fmt.Fprintf(s.echo, "\n[%d/%d] %s...\n", s.current, s.total, name)
	}
	return s.current
}

// Done reports the outcome of the current step
func (s *StepTracker) Done(format string, args ...interface{}) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	message := fmt.Sprintf(format, args...)
	s.logger.WithFields(Fields{
		"step":     s.current,
		"duration": time.Since(s.stepStart).String(),
	}).Debug(message)

	if s.echo != nil {
		fmt.Fprintf(s.echo, "✓ %s\n", message)
	}
}

// Current returns the index of the step in progress
func (s *StepTracker) Current() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.current
}

// Elapsed returns the time since the tracker was created
func (s *StepTracker) Elapsed() time.Duration {
	return time.Since(s.startTime)
}

// OperationLogger provides structured logging for operations with timing
type OperationLogger struct {
	logger    Logger
	operation string
	fields    Fields
	startTime time.Time
}

// NewOperationLogger creates a new operation logger
func NewOperationLogger(operation string, logger Logger) *OperationLogger {
	if logger == nil {
		logger = GetGlobalLogger()
	}

	ol := &OperationLogger{
		logger:    logger,
		operation: operation,
		fields:    make(Fields),
		startTime: time.Now(),
	}

	ol.logger.WithField("operation", operation).Debug("Starting operation")
	return ol
}

// WithField adds a field to the operation context
func (ol *OperationLogger) WithField(key string, value interface{}) *OperationLogger {
	ol.fields[key] = value
	return ol
}

func (ol *OperationLogger) merged(extra Fields) Fields {
	fields := Fields{"operation": ol.operation}
	for k, v := range ol.fields {
		fields[k] = v
	}
	for k, v := range extra {
		fields[k] = v
	}
	return fields
}

// Success completes the operation successfully
func (ol *OperationLogger) Success(message string) {
	ol.logger.WithFields(ol.merged(Fields{
		"duration": time.Since(ol.startTime).String(),
		"status":   "success",
	})).Info(message)
}

// Error completes the operation with an error
func (ol *OperationLogger) Error(err error, message string) {
	ol.logger.WithError(err).WithFields(ol.merged(Fields{
		"duration": time.Since(ol.startTime).String(),
		"status":   "error",
	})).Error(message)
}

// Warning logs a warning during the operation
func (ol *OperationLogger) Warning(message string) {
	ol.logger.WithFields(ol.merged(nil)).Warn(message)
}

// TimedOperation executes a function and logs timing information
func TimedOperation(operation string, logger Logger, fn func() error) error {
	ol := NewOperationLogger(operation, logger)

	err := fn()

	if err != nil {
		ol.Error(err, "Operation failed")
	} else {
		ol.Success("Operation completed successfully")
	}

	return err
}
