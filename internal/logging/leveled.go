package logging

import (
	"fmt"
	"log"
)

// Leveled is the key/value logging surface used by the run components
type Leveled interface {
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// stdLeveled wraps standard log.Logger to implement Leveled
type stdLeveled struct {
	*log.Logger
}

// Wrap adapts logger; a nil logger falls back to log.Default()
func Wrap(logger *log.Logger) Leveled {
	if logger == nil {
		logger = log.Default()
	}
	return &stdLeveled{Logger: logger}
}

func (l *stdLeveled) Info(msg string, args ...interface{}) {
	l.logWithLevel("INFO", msg, args...)
}

func (l *stdLeveled) Warn(msg string, args ...interface{}) {
	l.logWithLevel("WARN", msg, args...)
}

func (l *stdLeveled) Error(msg string, args ...interface{}) {
	l.logWithLevel("ERROR", msg, args...)
}

func (l *stdLeveled) logWithLevel(level, msg string, args ...interface{}) {
	var parts []interface{}
	parts = append(parts, fmt.Sprintf("[%s]", level), msg)
	for i := 0; i+1 < len(args); i += 2 {
		parts = append(parts, fmt.Sprintf("%v=%v", args[i], args[i+1]))
	}
	if len(args)%2 == 1 {
		parts = append(parts, args[len(args)-1])
	}
	l.Logger.Println(parts...)
}
