package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/cadence/internal/logger"
)

var (
	// ErrInvalidPattern is returned when a frequency pattern schedules no weekday.
	ErrInvalidPattern = stderrors.New("invalid pattern: no scheduled weekdays")
	// ErrInvalidGoal is returned when a goal count is not positive.
	ErrInvalidGoal = stderrors.New("invalid goal: habit days must be positive")
	// ErrGoalUnreachable is returned when end-date resolution exceeds the safety cap.
	ErrGoalUnreachable = stderrors.New("goal unreachable within resolution cap")
	// ErrSyncWriteFailed is reported when the external task mirror could not be written.
	ErrSyncWriteFailed = stderrors.New("sync write failed")
	// ErrConcurrentModification is returned when a request targets a stale generation of a habit.
	ErrConcurrentModification = stderrors.New("concurrent modification: stale habit generation")
	// ErrNotFound is returned when a habit or task does not exist.
	ErrNotFound = stderrors.New("not found")
	// ErrAlreadyExists is returned when a habit name is already taken.
	ErrAlreadyExists = stderrors.New("already exists")
)

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
