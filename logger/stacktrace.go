package logger

import (
	"fmt"
	"runtime"
	"strings"
)

var levelRank = map[string]int{"debug": 0, "info": 1, "warn": 2, "error": 3, "fatal": 4}

// CaptureStacktrace renders up to depth frames (32 when depth <= 0), one
// "function\n\tfile:line" pair per frame.
func CaptureStacktrace(skip, depth int) string {
	if depth <= 0 {
		depth = 32
	}
	pcs := make([]uintptr, depth)
	n := runtime.Callers(skip, pcs)
	if n == 0 {
		return ""
	}

	frames := runtime.CallersFrames(pcs[:n])
	lines := make([]string, 0, n)
	for {
		frame, more := frames.Next()
		lines = append(lines, fmt.Sprintf("%s\n\t%s:%d", frame.Function, frame.File, frame.Line))
		if !more {
			break
		}
	}
	return strings.Join(lines, "\n")
}

func shouldCaptureStacktrace(level string, cfg ManagerConfig) bool {
	if !cfg.EnableStacktrace {
		return false
	}
	return levelRank[level] >= levelRank[cfg.StacktraceLevel]
}
