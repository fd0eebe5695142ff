package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	baseLogger  = zap.NewNop()
	sugarLogger = baseLogger.Sugar()
)

// InitLogger initializes the application logger. Entries are written as JSON to
// a rotating file under logsDir and, in human readable form, to stdout.
func InitLogger(logsDir string, isProd bool) error {
	if logsDir == "" {
		logsDir = "logs"
	}
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %v", err)
	}

	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(logsDir, "app.log"),
		MaxSize:    10, // megabytes
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.MessageKey = "message"
	encoderConfig.LevelKey = "level"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	jsonEncoder := zapcore.NewJSONEncoder(encoderConfig)

	fileLevel := zap.DebugLevel
	if isProd {
		fileLevel = zap.InfoLevel
	}
	fileCore := zapcore.NewCore(jsonEncoder, zapcore.AddSync(rotator), fileLevel)

	consoleEncoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	if isProd {
		consoleEncoder = jsonEncoder
	}
	consoleCore := zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stdout), zap.InfoLevel)

	baseLogger = zap.New(zapcore.NewTee(fileCore, consoleCore), zap.AddCaller(), zap.AddCallerSkip(1))
	sugarLogger = baseLogger.Sugar()
	return nil
}

// Logger returns the structured logger for call sites that attach fields.
func Logger() *zap.Logger {
	return baseLogger.WithOptions(zap.AddCallerSkip(-1))
}

// SyncLogger flushes buffered log entries.
func SyncLogger() {
	_ = baseLogger.Sync()
}

// LogInfo logs an informational message
func LogInfo(format string, v ...interface{}) {
	sugarLogger.Infof(format, v...)
}

// LogWarn logs a warning message
func LogWarn(format string, v ...interface{}) {
	sugarLogger.Warnf(format, v...)
}

// LogError logs an error message
func LogError(format string, v ...interface{}) {
	sugarLogger.Errorf(format, v...)
}

// LogDebug logs a debug message
func LogDebug(format string, v ...interface{}) {
	sugarLogger.Debugf(format, v...)
}

// LogRequest logs HTTP request details
func LogRequest(method, path, ip, requestID string, status int, duration time.Duration) {
	baseLogger.Info("request",
		zap.String("method", method),
		zap.String("path", path),
		zap.String("ip", ip),
		zap.String("request_id", requestID),
		zap.Int("status", status),
		zap.Duration("duration", duration),
	)
}

// LogErrorWithStack logs an error with stack trace
func LogErrorWithStack(err error, stack []byte) {
	baseLogger.Error("panic recovered", zap.Error(err), zap.ByteString("stack", stack))
}
