package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// captureStdout swaps the console sink for a buffer until the test ends.
func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	orig := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = orig })
	return &buf
}

func TestSetup_FileOnly_NoStdout(t *testing.T) {
	console := captureStdout(t)

	var fileBuf bytes.Buffer
	m := NewSlogManager()
	m.Setup(Options{File: &fileBuf, Level: "info"})
	m.Logger().Info("hello file")

	assert.Contains(t, fileBuf.String(), "hello file", "log should appear in file")
	assert.Empty(t, console.String(), "nothing should be written to stdout when file is provided")
}

func TestSetup_NoFile_WritesToStdout(t *testing.T) {
	console := captureStdout(t)

	m := NewSlogManager()
	m.Setup(Options{Level: "info"})
	m.Logger().Info("hello console")

	assert.Contains(t, console.String(), "hello console", "log should appear on stdout")
}

func TestSetup_DebugLevel(t *testing.T) {
	var buf bytes.Buffer
	m := NewSlogManager()
	m.Setup(Options{File: &buf, Level: "debug"})

	m.Logger().Debug("debug msg")
	m.Logger().Info("info msg")

	output := buf.String()
	assert.Contains(t, output, "debug msg")
	assert.Contains(t, output, "info msg")
}

func TestSetup_InfoLevel_FiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	m := NewSlogManager()
	m.Setup(Options{File: &buf, Level: "info"})

	m.Logger().Debug("should be filtered")
	m.Logger().Info("should appear")

	output := buf.String()
	assert.NotContains(t, output, "should be filtered")
	assert.Contains(t, output, "should appear")
}

func TestSetup_ReplacesLogger(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	m := NewSlogManager()

	m.Setup(Options{File: &buf1, Level: "info"})
	m.Logger().Info("first")

	m.Setup(Options{File: &buf2, Level: "info"})
	m.Logger().Info("second")

	assert.Contains(t, buf1.String(), "first")
	assert.NotContains(t, buf1.String(), "second", "old file should not receive new logs")
	assert.Contains(t, buf2.String(), "second")
}

func TestSetup_GraylogReceivesJSON(t *testing.T) {
	var file, graylog bytes.Buffer
	m := NewSlogManager()
	m.Setup(Options{File: &file, Graylog: &graylog, Level: "info"})

	graylog.Reset()
	m.Logger().Info("landed", "site", "ba-dinh")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(graylog.Bytes(), &entry))
	assert.Equal(t, "landed", entry["msg"])
	assert.Equal(t, "ba-dinh", entry["site"])
}

func TestSetup_ContextProvider(t *testing.T) {
	var buf bytes.Buffer
	site := "dien-bien-phu"

	m := NewSlogManager()
	m.Setup(Options{
		File:    &buf,
		Level:   "info",
		Context: func() []slog.Attr { return TourAttrs(site, "flying") },
	})
	m.Logger().Info("tick")

	assert.Contains(t, buf.String(), "site=dien-bien-phu")
	assert.Contains(t, buf.String(), "flight=flying")
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	m := NewSlogManager()
	m.Setup(Options{File: &buf, Level: "info"})

	m.Component("camera").Info("flight started")
	assert.Contains(t, buf.String(), "component=camera")
}

func TestLogger_DefaultBeforeSetup(t *testing.T) {
	m := NewSlogManager()
	logger := m.Logger()
	assert.Equal(t, slog.Default(), logger)
}

func TestFlush_NilProvider(t *testing.T) {
	m := NewSlogManager()
	err := m.Flush(context.Background())
	assert.NoError(t, err)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"invalid", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.input))
		})
	}
}

func TestMultiHandler_FansOut(t *testing.T) {
	var file, graylog bytes.Buffer
	multi := NewMultiHandler(
		Sink{Name: "file", Handler: slog.NewTextHandler(&file, &slog.HandlerOptions{Level: slog.LevelInfo})},
		Sink{Name: "graylog", Handler: slog.NewJSONHandler(&graylog, &slog.HandlerOptions{Level: slog.LevelInfo})},
	)
	slog.New(multi).Info("fanned out")

	assert.Contains(t, file.String(), "fanned out")
	assert.Contains(t, graylog.String(), "fanned out")
	assert.Equal(t, []string{"file", "graylog"}, multi.Sinks())
}

func TestMultiHandler_DropsSinksWithoutHandler(t *testing.T) {
	var buf bytes.Buffer
	multi := NewMultiHandler(
		Sink{Name: "graylog"},
		Sink{Name: "file", Handler: slog.NewTextHandler(&buf, nil)},
		Sink{Name: "otel"},
	)
	assert.Equal(t, []string{"file"}, multi.Sinks())

	slog.New(multi).Info("works")
	assert.Contains(t, buf.String(), "works")
}

func TestMultiHandler_Enabled(t *testing.T) {
	info := Sink{Name: "file", Handler: slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelInfo})}
	debug := Sink{Name: "console", Handler: slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelDebug})}

	infoOnly := NewMultiHandler(info)
	assert.False(t, infoOnly.Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, infoOnly.Enabled(context.Background(), slog.LevelInfo))

	assert.True(t, NewMultiHandler(info, debug).Enabled(context.Background(), slog.LevelDebug))
	assert.False(t, NewMultiHandler().Enabled(context.Background(), slog.LevelInfo))
}

func TestMultiHandler_DebugOnlyReachesDebugSinks(t *testing.T) {
	var infoBuf, debugBuf bytes.Buffer
	multi := NewMultiHandler(
		Sink{Name: "file", Handler: slog.NewTextHandler(&infoBuf, &slog.HandlerOptions{Level: slog.LevelInfo})},
		Sink{Name: "console", Handler: slog.NewTextHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug})},
	)
	slog.New(multi).Debug("tick detail")

	assert.Empty(t, infoBuf.String())
	assert.Contains(t, debugBuf.String(), "tick detail")
}

func TestMultiHandler_WithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer
	multi := NewMultiHandler(Sink{Name: "file", Handler: slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})})

	withAttrs := multi.WithAttrs([]slog.Attr{slog.String("component", "world")})
	slog.New(withAttrs).Info("with attrs")
	slog.New(multi.WithGroup("grp")).Info("grouped", "key", "val")

	assert.Contains(t, buf.String(), "component=world")
	assert.Contains(t, buf.String(), "grp.key=val")
	assert.Equal(t, []string{"file"}, withAttrs.(*MultiHandler).Sinks(), "derived handlers keep sink names")
	assert.Equal(t, multi, multi.WithGroup(""), "empty group name should return same handler")
}

// errorHandler is a slog.Handler that always returns an error from Handle.
type errorHandler struct {
	slog.Handler
}

func (h *errorHandler) Handle(_ context.Context, _ slog.Record) error {
	return errors.New("connection refused")
}

func (h *errorHandler) Enabled(_ context.Context, _ slog.Level) bool {
	return true
}

func TestMultiHandler_HandleError(t *testing.T) {
	var buf bytes.Buffer
	multi := NewMultiHandler(
		Sink{Name: "graylog", Handler: &errorHandler{}},
		Sink{Name: "file", Handler: slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})},
	)
	r := slog.NewRecord(time.Now(), slog.LevelInfo, "should reach file", 0)
	err := multi.Handle(context.Background(), r)

	assert.ErrorContains(t, err, "graylog sink: connection refused")
	assert.Contains(t, buf.String(), "should reach file")
}

func TestSetup_LogsSinkNames(t *testing.T) {
	var file, graylog bytes.Buffer
	m := NewSlogManager()
	m.Setup(Options{File: &file, Graylog: &graylog, Level: "info"})

	assert.Contains(t, file.String(), "sinks=")
	assert.Contains(t, file.String(), "file graylog")
}

func TestContextHandler_WithAttrsKeepsProvider(t *testing.T) {
	var buf bytes.Buffer
	inner := slog.NewTextHandler(&buf, nil)
	h := NewContextHandler(inner, func() []slog.Attr { return TourAttrs("", "orbiting") })

	slog.New(h.WithAttrs([]slog.Attr{slog.Int("frame", 7)}).WithGroup("g")).Info("state")

	out := buf.String()
	assert.Contains(t, out, "frame=7")
	assert.Contains(t, out, "flight=orbiting")
	assert.False(t, strings.Contains(out, "site="), "empty attributes are left out")
}

func TestFlush_WithProvider(t *testing.T) {
	provider := sdklog.NewLoggerProvider()
	m := NewSlogManager()

	var buf bytes.Buffer
	m.Setup(Options{File: &buf, Level: "info", Provider: provider})
	m.Logger().Info("otel integrated")

	assert.Contains(t, buf.String(), "otel integrated")
	assert.NoError(t, m.Flush(context.Background()))
}
