// Package log holds the process-wide loggers. Output goes to a file in the
// temp dir so it never interleaves with the interactive terminal UI.
package log

import (
	"fmt"
	"io"
	golog "log"
	"os"
	"path/filepath"

	"github.com/kastheco/arbor/internal/sentry"
)

// LogFileName is the name of the log file inside os.TempDir().
const LogFileName = "arbor.log"

var (
	InfoLog    = golog.New(io.Discard, "INFO:", golog.Ldate|golog.Ltime|golog.Lshortfile)
	WarningLog = golog.New(io.Discard, "WARNING:", golog.Ldate|golog.Ltime|golog.Lshortfile)
	ErrorLog   = golog.New(io.Discard, "ERROR:", golog.Ldate|golog.Ltime|golog.Lshortfile)
)

var globalLogFile *os.File

// LogFilePath returns where Initialize writes logs.
func LogFilePath() string {
	return filepath.Join(os.TempDir(), LogFileName)
}

// Initialize opens the log file and points the loggers at it. When telemetry
// is enabled each logger is tee'd through Sentry. Call Close when done.
func Initialize(telemetry bool) {
	f, err := os.OpenFile(LogFilePath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		panic(fmt.Sprintf("could not open log file: %s", err))
	}

	var info, warn, errw io.Writer = f, f, f
	if telemetry {
		info = sentry.NewWriter(f, sentry.LevelInfo)
		warn = sentry.NewWriter(f, sentry.LevelWarning)
		errw = sentry.NewWriter(f, sentry.LevelError)
	}

	InfoLog.SetOutput(info)
	WarningLog.SetOutput(warn)
	ErrorLog.SetOutput(errw)

	globalLogFile = f
}

// Close flushes and closes the log file. Loggers fall back to discarding.
func Close() {
	InfoLog.SetOutput(io.Discard)
	WarningLog.SetOutput(io.Discard)
	ErrorLog.SetOutput(io.Discard)
	if globalLogFile != nil {
		_ = globalLogFile.Close()
		globalLogFile = nil
	}
}
