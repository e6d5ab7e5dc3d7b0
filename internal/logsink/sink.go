// Package logsink records synchronization events with a caller-supplied
// timestamp and severity.
package logsink

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	severityInfoNameConstant      = "info"
	severityNoticeNameConstant    = "notice"
	severityWarningNameConstant   = "warning"
	severityErrorNameConstant     = "error"
	severityUnknownNameConstant   = "unknown"
	severityInfoMarkerConstant    = "[I]"
	severityNoticeMarkerConstant  = "[!!]"
	severityWarningMarkerConstant = "[W]"
	severityErrorMarkerConstant   = "[E]"

	// SeverityFieldName is the structured field carrying the record severity.
	SeverityFieldName = "severity"
)

// Severity classifies a log record.
type Severity int

// Severities in increasing order of urgency.
const (
	SeverityInfo Severity = iota
	SeverityNotice
	SeverityWarning
	SeverityError
)

// String returns the lowercase severity name.
func (severity Severity) String() string {
	switch severity {
	case SeverityInfo:
		return severityInfoNameConstant
	case SeverityNotice:
		return severityNoticeNameConstant
	case SeverityWarning:
		return severityWarningNameConstant
	case SeverityError:
		return severityErrorNameConstant
	default:
		return severityUnknownNameConstant
	}
}

// Marker returns the bracketed tag written in front of file log lines.
func (severity Severity) Marker() string {
	switch severity {
	case SeverityNotice:
		return severityNoticeMarkerConstant
	case SeverityWarning:
		return severityWarningMarkerConstant
	case SeverityError:
		return severityErrorMarkerConstant
	default:
		return severityInfoMarkerConstant
	}
}

// Level maps the severity onto a zap level. Notice shares the info level and is
// distinguished by the severity field.
func (severity Severity) Level() zapcore.Level {
	switch severity {
	case SeverityWarning:
		return zapcore.WarnLevel
	case SeverityError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Sink accepts event records.
type Sink interface {
	Record(timestamp time.Time, severity Severity, message string, fields ...zap.Field)
}

// ZapSink writes records through a zap core, keeping the supplied timestamp.
type ZapSink struct {
	core zapcore.Core
}

// NewZapSink constructs a sink backed by logger's core. A nil logger discards records.
func NewZapSink(logger *zap.Logger) *ZapSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapSink{core: logger.Core()}
}

// Record implements Sink.
func (sink *ZapSink) Record(timestamp time.Time, severity Severity, message string, fields ...zap.Field) {
	if sink == nil || sink.core == nil {
		return
	}

	entry := zapcore.Entry{
		Level:   severity.Level(),
		Time:    timestamp,
		Message: message,
	}
	checkedEntry := sink.core.Check(entry, nil)
	if checkedEntry == nil {
		return
	}

	recordFields := make([]zap.Field, 0, len(fields)+1)
	recordFields = append(recordFields, zap.String(SeverityFieldName, severity.String()))
	recordFields = append(recordFields, fields...)
	checkedEntry.Write(recordFields...)
}
