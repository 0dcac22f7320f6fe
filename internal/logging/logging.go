package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var (
	mu      sync.Mutex
	logFile *os.File
)

// Init routes the standard logger to console and, when logPath is set, to an
// append-mode log file. A nil console with an empty logPath discards output.
func Init(logPath string, console io.Writer) error {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}

	var writers []io.Writer
	if console != nil {
		writers = append(writers, console)
	}

	if logPath != "" {
		if dir := filepath.Dir(logPath); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
		}
		file, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		logFile = file
		writers = append(writers, logFile)
	}

	if len(writers) == 0 {
		log.SetOutput(io.Discard)
		return nil
	}
	log.SetOutput(io.MultiWriter(writers...))
	return nil
}

// Close closes the log file, if any, and restores logging to stderr.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if logFile == nil {
		return nil
	}
	log.SetOutput(os.Stderr)
	err := logFile.Close()
	logFile = nil
	return err
}

// LogEvent logs a formatted message.
func LogEvent(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	log.Println(msg)
}

// LogCaseEvent logs a message tagged with the benchmark case and its state.
func LogCaseEvent(caseName, state, format string, args ...any) {
	log.Println(buildCaseMessage(caseName, state, fmt.Sprintf(format, args...)))
}

func buildCaseMessage(caseName, state, msg string) string {
	stateValue := strings.ToUpper(strings.TrimSpace(state))
	if stateValue == "" {
		stateValue = "RUN"
	}
	nameValue := strings.TrimSpace(caseName)
	if nameValue == "" {
		nameValue = "unknown"
	}
	parts := []string{fmt.Sprintf("[%s]", stateValue), fmt.Sprintf("case=%s", nameValue)}
	if msg = strings.TrimSpace(msg); msg != "" {
		parts = append(parts, msg)
	}
	return strings.Join(parts, " ")
}
