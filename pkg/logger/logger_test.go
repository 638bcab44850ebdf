package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learnsol-identity/pkg/logger"
	"learnsol-identity/pkg/utilities/timeutil"
)

type sinkRecord struct {
	msg   string
	level zerolog.Level
}

func recordingSink(records *[]sinkRecord) logger.SinkFunc {
	return func(msg string, level zerolog.Level, _ timeutil.TimeUTC) {
		*records = append(*records, sinkRecord{msg: msg, level: level})
	}
}

func TestNewFromConfig(t *testing.T) {
	tests := []struct {
		name     string
		config   logger.LoggerConfig
		expected zerolog.Level
	}{
		{
			name:     "Default log level when no level specified",
			config:   logger.LoggerConfig{LogLevel: zerolog.NoLevel},
			expected: zerolog.InfoLevel,
		},
		{
			name:     "Debug log level",
			config:   logger.LoggerConfig{LogLevel: zerolog.DebugLevel},
			expected: zerolog.DebugLevel,
		},
		{
			name:     "Error log level",
			config:   logger.LoggerConfig{LogLevel: zerolog.ErrorLevel},
			expected: zerolog.ErrorLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := logger.NewFromConfig(tt.config).WithOutput(&buf)

			l.Log(tt.expected, "at level")
			l.Log(tt.expected-1, "below level")

			output := buf.String()
			if !strings.Contains(output, "at level") {
				t.Errorf("Expected message at %s to be written, got: %s", tt.expected, output)
			}
			if strings.Contains(output, "below level") {
				t.Errorf("Expected message below %s to be filtered, got: %s", tt.expected, output)
			}
		})
	}
}

func TestLoggerWithLevel(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New().WithOutput(&buf).WithLevel(zerolog.ErrorLevel)

	l.Info("info message")
	l.Error(errors.New("test error"), "error message")

	output := buf.String()
	assert.NotContains(t, output, "info message")
	assert.Contains(t, output, "error message")
	assert.Contains(t, output, "test error")
}

func TestLoggerFormattedLevels(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New().WithOutput(&buf).WithLevel(zerolog.DebugLevel)

	l.Debugf("debug %d", 1)
	l.Infof("info %d", 2)
	l.Warnf("warn %d", 3)
	l.Errorf(errors.New("boom"), "error %d", 4)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)

	expected := []struct{ level, message string }{
		{"debug", "debug 1"},
		{"info", "info 2"},
		{"warn", "warn 3"},
		{"error", "error 4"},
	}
	for i, line := range lines {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		assert.Equal(t, expected[i].level, entry["level"])
		assert.Equal(t, expected[i].message, entry["message"])
	}
}

func TestLoggerWithField(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New().WithOutput(&buf).WithField("service", "identity")

	l.Info("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "identity", entry["service"])
	assert.Equal(t, "hello", entry["message"])
}

func TestLoggerWithContext(t *testing.T) {
	t.Run("request id is attached", func(t *testing.T) {
		var buf bytes.Buffer
		l := logger.New().WithOutput(&buf)
		ctx := context.WithValue(context.Background(), logger.RequestIDKey, "req-123")

		l.WithContext(ctx).Info("with request")

		assert.Contains(t, buf.String(), `"request_id":"req-123"`)
	})

	t.Run("no request id", func(t *testing.T) {
		var buf bytes.Buffer
		l := logger.New().WithOutput(&buf)

		l.WithContext(context.Background()).Info("without request")

		assert.NotContains(t, buf.String(), "request_id")
		assert.Contains(t, buf.String(), "without request")
	})
}

func TestLoggerSink(t *testing.T) {
	var buf bytes.Buffer
	var records []sinkRecord

	l := logger.New().WithOutput(&buf).WithLevel(zerolog.InfoLevel)
	logger.AddSinkToLoggerInstance(l, recordingSink(&records))

	l.Debug("filtered")
	l.Info("plain")
	l.Warnf("formatted %s", "value")

	require.Len(t, records, 2)
	assert.Equal(t, sinkRecord{msg: "plain", level: zerolog.InfoLevel}, records[0])
	assert.Equal(t, sinkRecord{msg: "formatted value", level: zerolog.WarnLevel}, records[1])
}

func TestLoggerSinkSharedWithChildren(t *testing.T) {
	var buf bytes.Buffer
	var records []sinkRecord

	l := logger.New().WithOutput(&buf)
	logger.AddSinkToLoggerInstance(l, recordingSink(&records))

	ctx := context.WithValue(context.Background(), logger.RequestIDKey, "req-1")
	l.WithField("component", "binding").Info("from field child")
	l.WithContext(ctx).Error(errors.New("x"), "from context child")

	require.Len(t, records, 2)
	assert.Equal(t, "from field child", records[0].msg)
	assert.Equal(t, zerolog.ErrorLevel, records[1].level)
}

func TestLoggerConfigConvertToDomain(t *testing.T) {
	tests := []struct {
		input    string
		expected zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"not-a-level", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			cfg := logger.LoggerConfigJson{LogLevel: tt.input}.ConvertToDomain()
			if cfg.LogLevel != tt.expected {
				t.Errorf("Expected level %s, got %s", tt.expected, cfg.LogLevel)
			}
		})
	}
}

func TestDefaultLogger(t *testing.T) {
	level := zerolog.WarnLevel
	logger.InitDefaultLogger(logger.GlobalLoggerConfig{
		Config: &logger.LoggerConfig{LogLevel: level},
		Args:   []logger.LoggerArg{{Key: "service", Value: "test"}},
	})

	first := logger.Default()
	require.NotNil(t, first)

	logger.InitDefaultLogger(logger.GlobalLoggerConfig{})
	assert.Same(t, first, logger.Default(), "second initialisation must be a no-op")
}
