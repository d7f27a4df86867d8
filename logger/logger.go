package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	appLogger   = zap.NewNop().Sugar()
	atomicLevel = zap.NewAtomicLevelAt(zapcore.InfoLevel)

	logLevel    string
	appLogFile  *os.File
	initialized bool
)

// ParseLevel maps the DEBUG/INFO/WARN/ERROR names used in config files to zap levels.
func ParseLevel(level string) zapcore.Level {
	lvl, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

// InitGlobalLoggers wires the package level logger to appLogPath at the given level.
// Errors are always mirrored to stderr, whatever the file level.
func InitGlobalLoggers(appLogPath, level string) error {
	upper := strings.ToUpper(level)
	if upper == "" {
		upper = "INFO"
	}
	if initialized && appLogFile != nil && upper == logLevel {
		return nil
	}
	if appLogFile != nil {
		_ = appLogger.Sync()
		appLogFile.Close()
		appLogFile = nil
	}
	logLevel = upper
	atomicLevel.SetLevel(ParseLevel(upper))

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	encoder := zapcore.NewConsoleEncoder(encCfg)

	stderrCore := zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), zapcore.ErrorLevel)
	cores := []zapcore.Core{stderrCore}

	actualPath := appLogPath
	if appLogPath == "" {
		actualPath = "(discarded)"
	} else if err := os.MkdirAll(filepath.Dir(appLogPath), 0750); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create app log directory %s: %v. App logs will be discarded.\n", filepath.Dir(appLogPath), err)
		actualPath = "(discarded)"
	} else {
		f, err := os.OpenFile(appLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open app log file %s: %v. App logs will be discarded.\n", appLogPath, err)
			actualPath = "(discarded)"
		} else {
			appLogFile = f
			cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(f), atomicLevel))
		}
	}

	appLogger = zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1)).Sugar()
	if !initialized {
		appLogger.Infof("App logger initialized. Log level: %s. Output file: %s", logLevel, actualPath)
	}
	initialized = true
	return nil
}

func Info(format string, v ...interface{}) {
	appLogger.Infof(format, v...)
}

func Debug(format string, v ...interface{}) {
	appLogger.Debugf(format, v...)
}

func Warn(format string, v ...interface{}) {
	appLogger.Warnf(format, v...)
}

func Error(format string, v ...interface{}) {
	appLogger.Errorf(format, v...)
}

func Fatal(format string, v ...interface{}) {
	if !initialized {
		fmt.Fprintf(os.Stderr, "FATAL: "+format+"\n", v...)
		os.Exit(1)
	}
	appLogger.Fatalf(format, v...)
}

func CloseLogFiles() {
	_ = appLogger.Sync()
	if appLogFile != nil {
		appLogFile.Close()
		appLogFile = nil
	}
	appLogger = zap.NewNop().Sugar()
	initialized = false
}
