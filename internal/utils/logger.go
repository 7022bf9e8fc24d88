package utils

import (
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var (
	DebugMode      bool
	ShowRaylibInfo bool
	ShowDebugUI    bool
)

var (
	once      sync.Once
	singleton *log.Logger
)

func getLogger() *log.Logger {
	once.Do(func() {
		singleton = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			TimeFormat:      time.TimeOnly,
			Prefix:          "reflections",
		})
		singleton.SetLevel(log.WarnLevel)
	})
	return singleton
}

// SetLevel accepts debug, info, warn or error. Unknown names leave the level unchanged.
func SetLevel(name string) {
	level, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil {
		Warn("Logger: unknown level %q, keeping %s", name, getLogger().GetLevel())
		return
	}
	getLogger().SetLevel(level)
	DebugMode = level <= log.DebugLevel
}

func Info(format string, v ...interface{})  { getLogger().Infof(format, v...) }
func Debug(format string, v ...interface{}) { getLogger().Debugf(format, v...) }
func Warn(format string, v ...interface{})  { getLogger().Warnf(format, v...) }
func Error(format string, v ...interface{}) { getLogger().Errorf(format, v...) }

// RaylibLogCallback forwards raylib trace output. Levels follow raylib's TraceLogLevel.
func RaylibLogCallback(level int, text string) {
	l := getLogger().WithPrefix("raylib")
	switch level {
	case 1, 2: // LOG_TRACE, LOG_DEBUG
		l.Debug(text)
	case 3: // LOG_INFO
		if ShowRaylibInfo {
			l.Info(text)
		} else {
			l.Debug(text)
		}
	case 4: // LOG_WARNING
		l.Warn(text)
	case 5, 6: // LOG_ERROR, LOG_FATAL
		l.Error(text)
	}
}
