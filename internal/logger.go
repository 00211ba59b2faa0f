package internal

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogLevel represents the logging level
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

var (
	logLevel = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	console  = zapcore.Lock(os.Stderr)
	logFile  *lumberjack.Logger
	logger   = newLogger(console, nil)
)

func newLogger(out zapcore.WriteSyncer, file *lumberjack.Logger) *zap.SugaredLogger {
	var cores []zapcore.Core
	if out != nil {
		encoderConfig := zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), out, logLevel))
	}

	if file != nil {
		fileConfig := zap.NewProductionEncoderConfig()
		fileConfig.TimeKey = "timestamp"
		fileConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileConfig), zapcore.AddSync(file), logLevel))
	}

	return zap.New(zapcore.NewTee(cores...)).Sugar()
}

// SetLogLevel sets the global log level
func SetLogLevel(level LogLevel) {
	switch level {
	case LogLevelError:
		logLevel.SetLevel(zapcore.ErrorLevel)
	case LogLevelWarn:
		logLevel.SetLevel(zapcore.WarnLevel)
	case LogLevelDebug:
		logLevel.SetLevel(zapcore.DebugLevel)
	default:
		logLevel.SetLevel(zapcore.InfoLevel)
	}
}

// SetVerbose enables verbose (debug) logging
func SetVerbose(verbose bool) {
	if verbose {
		SetLogLevel(LogLevelDebug)
	} else {
		SetLogLevel(LogLevelInfo)
	}
}

// SetLogFile adds a rotating JSON log file next to the stderr output.
// An empty path removes the file sink.
func SetLogFile(path string) {
	_ = logger.Sync()
	logFile = nil
	if path != "" {
		logFile = &lumberjack.Logger{
			Filename: path,
			MaxSize:  10,
			MaxAge:   28,
			Compress: true,
		}
	}
	logger = newLogger(console, logFile)
}

// LogFile returns the path of the rotating log file, empty when there is none
func LogFile() string {
	if logFile == nil {
		return ""
	}
	return logFile.Filename
}

// SetConsoleOutput redirects the console log to w; nil turns it off and leaves only the file sink.
// The returned function restores the previous console output.
func SetConsoleOutput(w io.Writer) (restore func()) {
	_ = logger.Sync()
	prev := console
	console = nil
	if w != nil {
		console = zapcore.Lock(zapcore.AddSync(w))
	}
	logger = newLogger(console, logFile)
	return func() {
		_ = logger.Sync()
		console = prev
		logger = newLogger(console, logFile)
	}
}

// SyncLogs flushes buffered log entries.
func SyncLogs() {
	_ = logger.Sync()
}

// LogError logs an error message
func LogError(format string, args ...interface{}) {
	logger.Errorf(format, args...)
}

// LogWarn logs a warning message
func LogWarn(format string, args ...interface{}) {
	logger.Warnf(format, args...)
}

// LogInfo logs an info message
func LogInfo(format string, args ...interface{}) {
	logger.Infof(format, args...)
}

// LogDebug logs a debug message
func LogDebug(format string, args ...interface{}) {
	logger.Debugf(format, args...)
}
