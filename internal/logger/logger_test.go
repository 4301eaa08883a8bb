package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: slog.LevelInfo, Format: "json", Writer: &buf})

	log.Info("book saved", "book_id", "book-1")

	assert.Contains(t, buf.String(), `"msg":"book saved"`)
	assert.Contains(t, buf.String(), `"book_id":"book-1"`)
	assert.Contains(t, buf.String(), `"level":"INFO"`)
}

func TestNew_FormatFromEnvironment(t *testing.T) {
	tests := []struct {
		environment string
		wantJSON    bool
	}{
		{"production", true},
		{"development", false},
		{"staging", false},
	}

	for _, tt := range tests {
		t.Run(tt.environment, func(t *testing.T) {
			var buf bytes.Buffer
			log := New(Config{Level: slog.LevelInfo, Environment: tt.environment, Writer: &buf})
			log.Info("test")

			if tt.wantJSON {
				assert.Contains(t, buf.String(), `"msg":"test"`)
			} else {
				assert.Contains(t, buf.String(), "INF")
				assert.NotContains(t, buf.String(), `"msg"`)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
		{"verbose", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestOrDiscard(t *testing.T) {
	assert.NotNil(t, OrDiscard(nil))

	l := slog.Default()
	assert.Same(t, l, OrDiscard(l))

	assert.False(t, Discard().Enabled(context.Background(), slog.LevelError))
}

func TestPrettyHandler_Handle(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	log.Info("page turned", "page", 2, "title", "The Little Cloud")

	out := buf.String()
	assert.Contains(t, out, "page turned")
	assert.Contains(t, out, "page=2")
	assert.Contains(t, out, `title="The Little Cloud"`)
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestPrettyHandler_Levels(t *testing.T) {
	tests := []struct {
		level slog.Level
		label string
		color string
	}{
		{slog.LevelDebug, "DBG", ansiMagenta},
		{slog.LevelInfo, "INF", ansiGreen},
		{slog.LevelWarn, "WRN", ansiYellow},
		{slog.LevelError, "ERR", ansiRed},
		{slog.LevelError + 4, "ERR", ansiRed},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			label, color := levelLabel(tt.level)
			assert.Equal(t, tt.label, label)
			assert.Equal(t, tt.color, color)
		})
	}
}

func TestPrettyHandler_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	log.Info("hidden")
	log.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestPrettyHandler_NilOptionsDefaultsToInfo(t *testing.T) {
	h := NewPrettyHandler(&bytes.Buffer{}, nil)

	assert.False(t, h.Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, h.Enabled(context.Background(), slog.LevelInfo))
}

func TestPrettyHandler_WithAttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	base := NewPrettyHandler(&buf, nil)

	assert.Same(t, base, base.WithGroup(""))

	h := base.WithAttrs([]slog.Attr{slog.String("component", "reader")}).WithGroup("speech")
	slog.New(h).Info("spoke", "words", 12, slog.Group("voice", "name", "en"))

	out := buf.String()
	assert.Contains(t, out, "component=reader")
	assert.Contains(t, out, "speech.words=12")
	assert.Contains(t, out, "speech.voice.name=en")
}

func TestPrettyHandler_ErrorsInRed(t *testing.T) {
	var buf bytes.Buffer
	slog.New(NewPrettyHandler(&buf, nil)).Warn("narration failed", "error", "no voice")

	assert.Contains(t, buf.String(), ansiRed+`error="no voice"`)
}

func TestPrettyHandler_WithSource(t *testing.T) {
	var buf bytes.Buffer
	slog.New(NewPrettyHandler(&buf, &slog.HandlerOptions{AddSource: true})).Info("test")

	assert.Contains(t, buf.String(), "logger_test.go:")
}

func TestFormatValue(t *testing.T) {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "2024-01-01T00:00:00Z", formatValue(slog.TimeValue(ts)))
	assert.Equal(t, "2s", formatValue(slog.DurationValue(2*time.Second)))
	assert.Equal(t, "plain", formatValue(slog.StringValue("plain")))
	assert.Equal(t, `""`, formatValue(slog.StringValue("")))
	assert.Equal(t, `"a b"`, formatValue(slog.StringValue("a b")))
	assert.Equal(t, "true", formatValue(slog.BoolValue(true)))
}

func TestLogger_Helpers(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Format: "json", Writer: &buf})

	log.WithError(errors.New("disk full")).WithField("book_id", "b1").Info("save failed")
	out := buf.String()
	assert.Contains(t, out, `"error":"disk full"`)
	assert.Contains(t, out, `"book_id":"b1"`)

	assert.Same(t, log, log.WithError(nil))

	buf.Reset()
	log.Component("seed").Info("seeded")
	assert.Contains(t, buf.String(), `"component":"seed"`)
}

func TestPrettyHandler_ConcurrentWrites(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, nil))

	done := make(chan struct{})
	for i := 0; i < 4; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 25; j++ {
				log.Info("tick")
			}
		}()
	}
	for i := 0; i < 4; i++ {
		<-done
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 100)
}
