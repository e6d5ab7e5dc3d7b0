package logsink_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/dotupdater/internal/logsink"
)

const (
	testRecordMessageConstant = "repository updated"
	testPathFieldConstant     = "path"
	testPathValueConstant     = "/home/user/.config/nvim"
)

var testRecordTimestamp = time.Date(2024, time.March, 9, 14, 30, 5, 0, time.UTC)

func TestZapSinkPreservesCallerTimestamp(testInstance *testing.T) {
	testCases := []struct {
		name          string
		severity      logsink.Severity
		expectedLevel zapcore.Level
		expectedName  string
	}{
		{name: "info", severity: logsink.SeverityInfo, expectedLevel: zapcore.InfoLevel, expectedName: "info"},
		{name: "notice", severity: logsink.SeverityNotice, expectedLevel: zapcore.InfoLevel, expectedName: "notice"},
		{name: "warning", severity: logsink.SeverityWarning, expectedLevel: zapcore.WarnLevel, expectedName: "warning"},
		{name: "error", severity: logsink.SeverityError, expectedLevel: zapcore.ErrorLevel, expectedName: "error"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			observerCore, observerLogs := observer.New(zap.DebugLevel)
			sink := logsink.NewZapSink(zap.New(observerCore))

			sink.Record(testRecordTimestamp, testCase.severity, testRecordMessageConstant, zap.String(testPathFieldConstant, testPathValueConstant))

			entries := observerLogs.All()
			require.Len(testInstance, entries, 1)
			require.Equal(testInstance, testRecordTimestamp, entries[0].Time)
			require.Equal(testInstance, testCase.expectedLevel, entries[0].Level)
			require.Equal(testInstance, testRecordMessageConstant, entries[0].Message)

			contextMap := entries[0].ContextMap()
			require.Equal(testInstance, testCase.expectedName, contextMap[logsink.SeverityFieldName])
			require.Equal(testInstance, testPathValueConstant, contextMap[testPathFieldConstant])
		})
	}
}

func TestZapSinkRespectsLevelFilter(testInstance *testing.T) {
	observerCore, observerLogs := observer.New(zap.WarnLevel)
	sink := logsink.NewZapSink(zap.New(observerCore))

	sink.Record(testRecordTimestamp, logsink.SeverityInfo, testRecordMessageConstant)
	sink.Record(testRecordTimestamp, logsink.SeverityError, testRecordMessageConstant)

	require.Len(testInstance, observerLogs.All(), 1)
	require.Equal(testInstance, zapcore.ErrorLevel, observerLogs.All()[0].Level)
}

func TestNilLoggerSinkDiscards(testInstance *testing.T) {
	sink := logsink.NewZapSink(nil)
	require.NotPanics(testInstance, func() {
		sink.Record(testRecordTimestamp, logsink.SeverityError, testRecordMessageConstant)
	})
}

func TestFileCoreWritesMarkedLines(testInstance *testing.T) {
	testCases := []struct {
		name           string
		severity       logsink.Severity
		expectedPrefix string
	}{
		{name: "info", severity: logsink.SeverityInfo, expectedPrefix: "2024-03-09 14:30:05 - [I] - " + testRecordMessageConstant},
		{name: "notice", severity: logsink.SeverityNotice, expectedPrefix: "2024-03-09 14:30:05 - [!!] - " + testRecordMessageConstant},
		{name: "warning", severity: logsink.SeverityWarning, expectedPrefix: "2024-03-09 14:30:05 - [W] - " + testRecordMessageConstant},
		{name: "error", severity: logsink.SeverityError, expectedPrefix: "2024-03-09 14:30:05 - [E] - " + testRecordMessageConstant},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			outputBuffer := &bytes.Buffer{}
			fileCore := logsink.NewFileCore(zapcore.AddSync(outputBuffer), zapcore.DebugLevel)
			sink := logsink.NewZapSink(zap.New(fileCore))

			sink.Record(testRecordTimestamp, testCase.severity, testRecordMessageConstant, zap.String(testPathFieldConstant, testPathValueConstant))

			line := strings.TrimSpace(outputBuffer.String())
			require.True(testInstance, strings.HasPrefix(line, testCase.expectedPrefix), line)
			require.Contains(testInstance, line, testPathValueConstant)
			require.NotContains(testInstance, line, logsink.SeverityFieldName)
		})
	}
}

func TestFileCoreMarksPlainZapRecordsByLevel(testInstance *testing.T) {
	outputBuffer := &bytes.Buffer{}
	logger := zap.New(logsink.NewFileCore(zapcore.AddSync(outputBuffer), zapcore.DebugLevel))

	logger.Warn(testRecordMessageConstant)

	require.Contains(testInstance, outputBuffer.String(), "[W] - "+testRecordMessageConstant)
}

func TestParseSeverity(testInstance *testing.T) {
	severity, recognized := logsink.ParseSeverity("notice")
	require.True(testInstance, recognized)
	require.Equal(testInstance, logsink.SeverityNotice, severity)

	_, unknownRecognized := logsink.ParseSeverity("verbose")
	require.False(testInstance, unknownRecognized)
}
