package logging

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/Graylog2/go-gelf/gelf"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogFilePath builds a log file path using OS-appropriate path separators.
func LogFilePath(logsDir, appName string, sessionStart time.Time) string {
	return filepath.Join(
		logsDir,
		fmt.Sprintf("%s.%s.log", appName, sessionStart.Format("20060102_150405")),
	)
}

// NewRotatingFile returns a size-rotated log file for one session.
func NewRotatingFile(logsDir, appName string, sessionStart time.Time) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   LogFilePath(logsDir, appName, sessionStart),
		MaxSize:    32, // MB
		MaxBackups: 3,
		MaxAge:     14,
		Compress:   true,
	}
}

// NewGraylogWriter dials a GELF UDP endpoint.
func NewGraylogWriter(address, facility string) (*gelf.Writer, error) {
	w, err := gelf.NewWriter(address)
	if err != nil {
		return nil, fmt.Errorf("dialing graylog %s: %w", address, err)
	}
	w.Facility = facility
	return w, nil
}
