package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	mu     sync.Mutex
	output io.Writer = os.Stdout
	file   *os.File
)

type Logger struct {
	service string
}

type entry struct {
	Timestamp string            `json:"ts"`
	Level     string            `json:"level"`
	Service   string            `json:"service"`
	Message   string            `json:"msg"`
	Fields    map[string]string `json:"fields,omitempty"`
}

func New(service string) *Logger {
	return &Logger{service: service}
}

// SetFile sends every logger's output to path, appending.
func SetFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("logging: create dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("logging: open %s: %w", path, err)
	}
	mu.Lock()
	defer mu.Unlock()
	if file != nil {
		_ = file.Close()
	}
	file = f
	output = f
	return nil
}

// SetOutput sends every logger's output to w.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if file != nil {
		_ = file.Close()
		file = nil
	}
	output = w
}

func (l *Logger) Info(msg string, fields map[string]string) {
	l.write("info", msg, fields)
}

func (l *Logger) Warn(msg string, fields map[string]string) {
	l.write("warn", msg, fields)
}

func (l *Logger) Error(msg string, fields map[string]string) {
	l.write("error", msg, fields)
}

func (l *Logger) write(level, msg string, fields map[string]string) {
	if l == nil {
		return
	}
	e := entry{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Level:     level,
		Service:   l.service,
		Message:   msg,
		Fields:    fields,
	}
	b, err := json.Marshal(e)
	if err != nil {
		fmt.Fprintf(os.Stderr, "log marshal error: %v\n", err)
		return
	}
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintln(output, string(b))
}
