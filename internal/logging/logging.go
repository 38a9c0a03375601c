// Package logging configures the shared logrus instance: a compact custom
// format on stdout by default, or rotating files when configured.
package logging

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/vkdirty/vktoken/internal/config"
)

var (
	setupOnce sync.Once
	writerMu  sync.Mutex
	logWriter *lumberjack.Logger
)

// LogFormatter defines a custom log format for logrus.
// Format: [2026-08-29 20:14:04] [a1b2c3d4] [debug] [vk.go:101] submitting credentials
type LogFormatter struct{}

// Format renders a single log entry with custom formatting.
func (m *LogFormatter) Format(entry *log.Entry) ([]byte, error) {
	var buffer *bytes.Buffer
	if entry.Buffer != nil {
		buffer = entry.Buffer
	} else {
		buffer = &bytes.Buffer{}
	}

	timestamp := entry.Time.Format("2006-01-02 15:04:05")
	message := strings.TrimRight(entry.Message, "\r\n")

	reqID := "--------"
	if id, ok := entry.Data["request_id"].(string); ok && id != "" {
		reqID = id
	}

	level := entry.Level.String()
	if level == "warning" {
		level = "warn"
	}
	levelStr := fmt.Sprintf("%-5s", level)

	var formatted string
	if entry.Caller != nil {
		formatted = fmt.Sprintf("[%s] [%s] [%s] [%s:%d] %s\n", timestamp, reqID, levelStr, filepath.Base(entry.Caller.File), entry.Caller.Line, message)
	} else {
		formatted = fmt.Sprintf("[%s] [%s] [%s] %s\n", timestamp, reqID, levelStr, message)
	}
	buffer.WriteString(formatted)

	return buffer.Bytes(), nil
}

// SetupBaseLogger configures the shared logrus instance. It is safe to call
// multiple times; initialization happens only once.
func SetupBaseLogger() {
	setupOnce.Do(func() {
		log.SetReportCaller(true)
		log.SetFormatter(&LogFormatter{})
	})
}

// ConfigureLogOutput applies the configured level and, when requested,
// switches the global log destination to rotating files under the auth dir.
func ConfigureLogOutput(cfg *config.Config) {
	SetupBaseLogger()

	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}

	if !cfg.LoggingToFile {
		return
	}

	writerMu.Lock()
	defer writerMu.Unlock()
	logWriter = &lumberjack.Logger{
		Filename:   filepath.Join(cfg.AuthDir, "logs", "vktoken.log"),
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     14,
		Compress:   true,
	}
	log.SetOutput(logWriter)
}

// CloseLogOutput flushes and closes the rotating file writer if one is active.
func CloseLogOutput() {
	writerMu.Lock()
	defer writerMu.Unlock()
	if logWriter != nil {
		_ = logWriter.Close()
		logWriter = nil
	}
}
