package logsink

import (
	"go.uber.org/zap/zapcore"
)

const (
	// FileTimeLayout is the timestamp layout used by the persistent log file.
	FileTimeLayout = "2006-01-02 15:04:05"

	fileTimeKeyConstant          = "time"
	fileMessageKeyConstant       = "message"
	fileFieldSeparatorConstant   = " - "
	markedMessageTemplateSpacing = " - "
)

// NewFileEncoderConfig returns the encoder configuration for lines shaped
// "2006-01-02 15:04:05 - [I] - message".
func NewFileEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:          fileTimeKeyConstant,
		MessageKey:       fileMessageKeyConstant,
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeTime:       zapcore.TimeEncoderOfLayout(FileTimeLayout),
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: fileFieldSeparatorConstant,
	}
}

// NewFileCore builds a core that writes severity-marked console lines to writer.
func NewFileCore(writer zapcore.WriteSyncer, levelEnabler zapcore.LevelEnabler) zapcore.Core {
	consoleCore := zapcore.NewCore(zapcore.NewConsoleEncoder(NewFileEncoderConfig()), writer, levelEnabler)
	return &markerCore{Core: consoleCore}
}

// markerCore prefixes every message with the severity marker and drops the
// severity field, which the marker already conveys.
type markerCore struct {
	zapcore.Core
}

func (core *markerCore) With(fields []zapcore.Field) zapcore.Core {
	return &markerCore{Core: core.Core.With(fields)}
}

func (core *markerCore) Check(entry zapcore.Entry, checkedEntry *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if core.Enabled(entry.Level) {
		return checkedEntry.AddCore(entry, core)
	}
	return checkedEntry
}

func (core *markerCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	severity := severityFromLevel(entry.Level)
	remainingFields := make([]zapcore.Field, 0, len(fields))
	for _, field := range fields {
		if field.Key == SeverityFieldName && field.Type == zapcore.StringType {
			if parsedSeverity, recognized := ParseSeverity(field.String); recognized {
				severity = parsedSeverity
			}
			continue
		}
		remainingFields = append(remainingFields, field)
	}

	entry.Message = severity.Marker() + markedMessageTemplateSpacing + entry.Message
	return core.Core.Write(entry, remainingFields)
}

// ParseSeverity converts a severity name back into a Severity.
func ParseSeverity(name string) (Severity, bool) {
	for _, candidate := range []Severity{SeverityInfo, SeverityNotice, SeverityWarning, SeverityError} {
		if candidate.String() == name {
			return candidate, true
		}
	}
	return SeverityInfo, false
}

func severityFromLevel(level zapcore.Level) Severity {
	switch {
	case level >= zapcore.ErrorLevel:
		return SeverityError
	case level == zapcore.WarnLevel:
		return SeverityWarning
	default:
		return SeverityInfo
	}
}
