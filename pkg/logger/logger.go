package logger

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

var levelNames = map[LogLevel]string{
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
}

var (
	currentLevel = INFO
	mu           sync.RWMutex

	fileMu       sync.Mutex
	logFile      *os.File
	logFilePath  string
	maxSizeBytes int64
	maxAgeDays   int
)

type logEntry struct {
	Level     string                 `json:"level"`
	Timestamp string                 `json:"timestamp"`
	Component string                 `json:"component,omitempty"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

func SetLevel(level LogLevel) {
	mu.Lock()
	defer mu.Unlock()
	currentLevel = level
}

func GetLevel() LogLevel {
	mu.RLock()
	defer mu.RUnlock()
	return currentLevel
}

// EnableFileLogging mirrors console output to a JSON-lines file with
// size-based rotation and age-based cleanup of rotated files.
func EnableFileLogging(path string, maxSizeMB, retentionDays int) error {
	fileMu.Lock()
	defer fileMu.Unlock()

	if maxSizeMB <= 0 {
		maxSizeMB = 20
	}
	if retentionDays <= 0 {
		retentionDays = 3
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	if logFile != nil {
		logFile.Close()
	}
	logFile = f
	logFilePath = path
	maxSizeBytes = int64(maxSizeMB) * 1024 * 1024
	maxAgeDays = retentionDays

	if err := cleanupRotated(); err != nil {
		log.Println("Failed to clean up old log files:", err)
	}
	return nil
}

func DisableFileLogging() {
	fileMu.Lock()
	defer fileMu.Unlock()

	if logFile != nil {
		logFile.Close()
		logFile = nil
		logFilePath = ""
		maxSizeBytes = 0
		maxAgeDays = 0
	}
}

func logMessage(level LogLevel, component string, message string, fields map[string]interface{}) {
	if level < GetLevel() {
		return
	}

	entry := logEntry{
		Level:     levelNames[level],
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Component: component,
		Message:   message,
		Fields:    fields,
	}

	writeFileLine(entry)

	var fieldStr string
	if len(fields) > 0 {
		fieldStr = " " + formatFields(fields)
	}
	log.Printf("[%s] [%s]%s %s%s",
		entry.Timestamp, entry.Level, formatComponent(component), message, fieldStr)
}

func writeFileLine(entry logEntry) {
	fileMu.Lock()
	defer fileMu.Unlock()

	if logFile == nil {
		return
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return
	}
	line = append(line, '\n')

	if maxSizeBytes > 0 {
		if err := rotateIfNeeded(int64(len(line))); err != nil {
			log.Println("Failed to rotate log file:", err)
			return
		}
	}

	if _, err := logFile.Write(line); err != nil {
		log.Println("Failed to write file log:", err)
	}
}

func rotateIfNeeded(nextWrite int64) error {
	info, err := logFile.Stat()
	if err != nil {
		return err
	}
	if info.Size()+nextWrite <= maxSizeBytes {
		return nil
	}

	if err := logFile.Close(); err != nil {
		return err
	}
	backup := fmt.Sprintf("%s.%s", logFilePath, time.Now().UTC().Format("20060102-150405"))
	if err := os.Rename(logFilePath, backup); err != nil {
		return err
	}
	f, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	logFile = f

	return cleanupRotated()
}

func cleanupRotated() error {
	if maxAgeDays <= 0 || logFilePath == "" {
		return nil
	}

	dir := filepath.Dir(logFilePath)
	base := filepath.Base(logFilePath)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	cutoff := time.Now().AddDate(0, 0, -maxAgeDays)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		// Rotated files look like umchat.log.20260213-120000
		name := entry.Name()
		if !strings.HasPrefix(name, base+".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			_ = os.Remove(filepath.Join(dir, name))
		}
	}
	return nil
}

func formatComponent(component string) string {
	if component == "" {
		return ""
	}
	return fmt.Sprintf(" %s:", component)
}

func formatFields(fields map[string]interface{}) string {
	var parts []string
	for k, v := range fields {
		parts = append(parts, fmt.Sprintf("%s=%v", k, v))
	}
	return fmt.Sprintf("{%s}", strings.Join(parts, ", "))
}

func Debug(message string) {
	logMessage(DEBUG, "", message, nil)
}

func DebugC(component string, message string) {
	logMessage(DEBUG, component, message, nil)
}

func DebugCF(component string, message string, fields map[string]interface{}) {
	logMessage(DEBUG, component, message, fields)
}

func Info(message string) {
	logMessage(INFO, "", message, nil)
}

func InfoC(component string, message string) {
	logMessage(INFO, component, message, nil)
}

func InfoCF(component string, message string, fields map[string]interface{}) {
	logMessage(INFO, component, message, fields)
}

func Warn(message string) {
	logMessage(WARN, "", message, nil)
}

func WarnC(component string, message string) {
	logMessage(WARN, component, message, nil)
}

func WarnCF(component string, message string, fields map[string]interface{}) {
	logMessage(WARN, component, message, fields)
}

func Error(message string) {
	logMessage(ERROR, "", message, nil)
}

func ErrorC(component string, message string) {
	logMessage(ERROR, component, message, nil)
}

func ErrorCF(component string, message string, fields map[string]interface{}) {
	logMessage(ERROR, component, message, fields)
}
