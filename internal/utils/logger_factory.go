package utils

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/temirov/dotupdater/internal/logsink"
)

const (
	logLevelDebugStringConstant          = "debug"
	logLevelInfoStringConstant           = "info"
	logLevelWarnStringConstant           = "warn"
	logLevelErrorStringConstant          = "error"
	logFormatStructuredStringConstant    = "structured"
	logFormatConsoleStringConstant       = "console"
	jsonZapEncodingStringConstant        = "json"
	consoleZapEncodingStringConstant     = "console"
	unsupportedLogLevelTemplateConstant  = "unsupported log level: %s"
	unsupportedLogFormatTemplateConstant = "unsupported log format: %s"
	logDirectoryErrorTemplateConstant    = "unable to create log directory %s: %w"
	logFileOpenErrorTemplateConstant     = "unable to open log file %s: %w"
	logDirectoryPermissionsConstant      = 0o755
	logFilePermissionsConstant           = 0o644
)

// LogLevel enumerates supported logging granularities.
type LogLevel string

// Exported log level constants for reuse across packages.
const (
	LogLevelDebug LogLevel = LogLevel(logLevelDebugStringConstant)
	LogLevelInfo  LogLevel = LogLevel(logLevelInfoStringConstant)
	LogLevelWarn  LogLevel = LogLevel(logLevelWarnStringConstant)
	LogLevelError LogLevel = LogLevel(logLevelErrorStringConstant)
)

// LogFormat enumerates supported logger output encodings.
type LogFormat string

// Exported log format constants for reuse across packages.
const (
	LogFormatStructured LogFormat = LogFormat(logFormatStructuredStringConstant)
	LogFormatConsole    LogFormat = LogFormat(logFormatConsoleStringConstant)
)

// LoggerOutputs bundles the loggers used by a command run.
// DiagnosticLogger writes to stderr only. EventLogger additionally appends to the log file.
type LoggerOutputs struct {
	DiagnosticLogger *zap.Logger
	EventLogger      *zap.Logger
	Close            func() error
}

// LoggerFactory builds zap.Logger instances with consistent configuration.
type LoggerFactory struct{}

var logLevelMapping = map[LogLevel]zapcore.Level{
	LogLevelDebug: zapcore.DebugLevel,
	LogLevelInfo:  zapcore.InfoLevel,
	LogLevelWarn:  zapcore.WarnLevel,
	LogLevelError: zapcore.ErrorLevel,
}

var logFormatEncodingMapping = map[LogFormat]string{
	LogFormatStructured: jsonZapEncodingStringConstant,
	LogFormatConsole:    consoleZapEncodingStringConstant,
}

// NewLoggerFactory constructs a new logger factory.
func NewLoggerFactory() *LoggerFactory {
	return &LoggerFactory{}
}

// CreateLogger produces a zap.Logger honoring the requested log level and format. Sampling is off.
func (factory *LoggerFactory) CreateLogger(requestedLogLevel LogLevel, requestedLogFormat LogFormat) (*zap.Logger, error) {
	zapLogLevel, encoding, resolveError := resolveLevelAndEncoding(requestedLogLevel, requestedLogFormat)
	if resolveError != nil {
		return nil, resolveError
	}

	configuration := zap.NewProductionConfig()
	configuration.Level = zap.NewAtomicLevelAt(zapLogLevel)
	configuration.Encoding = encoding
	configuration.Sampling = nil
	if encoding == consoleZapEncodingStringConstant {
		configuration.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	logger, buildError := configuration.Build()
	if buildError != nil {
		return nil, buildError
	}

	return logger, nil
}

// CreateLoggerOutputs builds the diagnostic logger and an event logger that tees it with an
// append-only log file at logFilePath. The log level filters stderr only; the file admits info and above.
// An empty path disables the file. The directory is created on demand.
func (factory *LoggerFactory) CreateLoggerOutputs(requestedLogLevel LogLevel, requestedLogFormat LogFormat, logFilePath string) (LoggerOutputs, error) {
	diagnosticLogger, diagnosticError := factory.CreateLogger(requestedLogLevel, requestedLogFormat)
	if diagnosticError != nil {
		return LoggerOutputs{}, diagnosticError
	}

	noopClose := func() error { return nil }
	if len(logFilePath) == 0 {
		return LoggerOutputs{DiagnosticLogger: diagnosticLogger, EventLogger: diagnosticLogger, Close: noopClose}, nil
	}

	logDirectory := filepath.Dir(logFilePath)
	if mkdirError := os.MkdirAll(logDirectory, logDirectoryPermissionsConstant); mkdirError != nil {
		return LoggerOutputs{}, fmt.Errorf(logDirectoryErrorTemplateConstant, logDirectory, mkdirError)
	}

	logFile, openError := os.OpenFile(logFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, logFilePermissionsConstant)
	if openError != nil {
		return LoggerOutputs{}, fmt.Errorf(logFileOpenErrorTemplateConstant, logFilePath, openError)
	}

	// The file keeps every record at info and above whatever the stderr level is.
	fileWriter := zapcore.Lock(zapcore.AddSync(NewDurableWriter(logFile)))
	fileCore := logsink.NewFileCore(fileWriter, zapcore.InfoLevel)
	eventLogger := zap.New(zapcore.NewTee(diagnosticLogger.Core(), fileCore))

	return LoggerOutputs{
		DiagnosticLogger: diagnosticLogger,
		EventLogger:      eventLogger,
		Close:            logFile.Close,
	}, nil
}

func resolveLevelAndEncoding(requestedLogLevel LogLevel, requestedLogFormat LogFormat) (zapcore.Level, string, error) {
	zapLogLevel, levelExists := logLevelMapping[requestedLogLevel]
	if !levelExists {
		return zapcore.InfoLevel, "", fmt.Errorf(unsupportedLogLevelTemplateConstant, requestedLogLevel)
	}

	encoding, formatExists := logFormatEncodingMapping[requestedLogFormat]
	if !formatExists {
		return zapcore.InfoLevel, "", fmt.Errorf(unsupportedLogFormatTemplateConstant, requestedLogFormat)
	}
	return zapLogLevel, encoding, nil
}
