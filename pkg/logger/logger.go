package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fasevent/registrations/pkg/logger/types"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	Log *types.Logger

	hookMu  sync.RWMutex
	logHook types.LogHook
)

// Config represents configuration options for logger initialization
type Config struct {
	Debug        bool           // Enable debug logging
	TimeLocation *time.Location // Time zone used for timestamps (UTC when nil)
	LogToFile    bool           // Enable logging to a file
	LogsDir      string         // Directory for log files, relative to the working directory
	Service      string         // Root logger name
}

// SetLogHook sets a hook function that will be called for each log entry
func SetLogHook(hook types.LogHook) {
	hookMu.Lock()
	logHook = hook
	hookMu.Unlock()
	Log.Debug("Log hook set")
}

// Init builds the global logger: a colored console core plus an optional JSON file core.
func Init(config Config) error {
	var l types.Logger
	l.Name = config.Service
	if l.Name == "" {
		l.Name = "main"
	}

	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	l.LogsPath = wd
	if config.LogsDir != "" {
		l.LogsPath = filepath.Join(wd, config.LogsDir)
	}

	loc := config.TimeLocation
	if loc == nil {
		loc = time.UTC
	}

	encoderConfig := zapcore.EncoderConfig{
		MessageKey:     "message",
		LevelKey:       "level",
		TimeKey:        "timestamp",
		NameKey:        "logger",
		CallerKey:      "caller",
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeTime: func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(t.In(loc).Format("2006-01-02 15:04:05"))
		},
	}

	level := zapcore.InfoLevel
	if config.Debug {
		level = zapcore.DebugLevel
	}

	consoleEncoderConfig := encoderConfig
	consoleEncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleEncoderConfig), zapcore.Lock(os.Stdout), level),
	}

	if config.LogToFile {
		if err = os.MkdirAll(l.LogsPath, os.ModePerm); err != nil {
			return err
		}
		logPath := filepath.Join(l.LogsPath, fmt.Sprintf("%s.log", time.Now().In(loc).Format("2006-01-02")))
		fileWriter, errOpenFile := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if errOpenFile != nil {
			return errOpenFile
		}

		fileEncoderConfig := encoderConfig
		fileEncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileEncoderConfig), zapcore.AddSync(fileWriter), level))
	}

	log := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.Hooks(callHook))

	l.SugaredLogger = log.Named(l.Name).Sugar()
	Log = &l

	return nil
}

func callHook(entry zapcore.Entry) error {
	hookMu.RLock()
	hook := logHook
	hookMu.RUnlock()

	if hook != nil {
		hook(types.Log{
			Timestamp:  entry.Time,
			Caller:     entry.Caller.String(),
			LoggerName: entry.LoggerName,
			Level:      entry.Level,
			Message:    entry.Message,
		})
	}
	return nil
}

// Named returns a child logger with the specified name ("http", "registration", etc.)
func Named(name string) (*types.Logger, error) {
	if Log == nil {
		return nil, fmt.Errorf("logger is not initialized")
	}
	return &types.Logger{
		SugaredLogger: Log.SugaredLogger.Named(name),
		LogsPath:      Log.LogsPath,
		Name:          name,
	}, nil
}

// Nop returns a logger that discards everything. Used by tests.
func Nop() *types.Logger {
	return &types.Logger{
		SugaredLogger: zap.NewNop().Sugar(),
		Name:          "nop",
	}
}
