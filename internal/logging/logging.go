// Package logging builds the zerolog loggers used across handsphere.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ParseLevel maps a config level name to a zerolog level. Unknown names fall
// back to info.
func ParseLevel(name string) zerolog.Level {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "TRACE":
		return zerolog.TraceLevel
	case "DEBUG":
		return zerolog.DebugLevel
	case "INFO":
		return zerolog.InfoLevel
	case "WARN", "WARNING":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// New returns a timestamped JSON logger writing to w at the given level.
func New(w io.Writer, level string) zerolog.Logger {
	return zerolog.New(w).Level(ParseLevel(level)).With().Timestamp().Logger()
}

// FilePath builds the session log file path inside logsDir.
func FilePath(logsDir string, sessionStart time.Time) string {
	return filepath.Join(logsDir, fmt.Sprintf("handsphere.%s.log", sessionStart.Format("20060102_150405")))
}

// Setup creates a logger that writes human-readable lines to console and
// JSON lines to a per-session file under logsDir. The returned closer closes
// the file.
func Setup(console io.Writer, logsDir, level string) (zerolog.Logger, io.Closer, error) {
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("create logs dir: %w", err)
	}

	path := FilePath(logsDir, time.Now())
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
	}

	mlw := zerolog.MultiLevelWriter(
		zerolog.ConsoleWriter{Out: console, TimeFormat: time.RFC3339},
		file,
	)

	return New(mlw, level), file, nil
}
