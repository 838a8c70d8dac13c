package jxl

import (
	"io"
	"log"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Logging related constants, mirroring the rotation policy ausocean-av's
// cmd/looper wires its lumberjack.Logger with.
const (
	logMaxSizeMB  = 10
	logMaxBackups = 3
	logMaxAgeDays = 28
)

// newDiagnosticLogger returns a *log.Logger writing to a rotating file at
// logPath, or a discarding logger when logPath is empty. The orchestrator
// logs the number of frames encoded; the logger is never consulted for
// control flow.
func newDiagnosticLogger(logPath string) *log.Logger {
	if logPath == "" {
		return log.New(io.Discard, "", 0)
	}
	sink := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    logMaxSizeMB,
		MaxBackups: logMaxBackups,
		MaxAge:     logMaxAgeDays,
	}
	return log.New(sink, "jxl: ", log.LstdFlags|log.Lmicroseconds)
}
