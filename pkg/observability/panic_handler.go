package observability

import (
	"fmt"
	"runtime/debug"
)

// RecoverPanic recovers from a panic and logs it with its stack. Call it
// directly in a defer statement:
//
//	defer observability.RecoverPanic(logger, "api server")
//
// The panic is not re-raised.
func RecoverPanic(logger *Logger, where string) {
	if r := recover(); r != nil {
		logPanic(logger, where, r)
	}
}

// LogPanic logs a value already obtained from recover()
func LogPanic(logger *Logger, where string, r interface{}) {
	logPanic(logger, where, r)
}

func logPanic(logger *Logger, where string, r interface{}) {
	logger.WithField("panic", fmt.Sprint(r)).
		WithField("stack", string(debug.Stack())).
		WithField("context", where).
		Error("PANIC recovered")
}

// MustRecover converts a recovered value into an error, or nil when r is nil:
//
//	defer func() {
//		if perr := observability.MustRecover(recover()); perr != nil {
//			err = perr
//		}
//	}()
func MustRecover(r interface{}) error {
	if r != nil {
		return fmt.Errorf("panic: %v", r)
	}
	return nil
}
