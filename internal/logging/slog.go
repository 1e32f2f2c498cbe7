package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// stdout is the console sink, swapped in tests.
var stdout io.Writer = os.Stdout

// Options selects the sinks of a SlogManager.
type Options struct {
	// File receives text logs. When nil, logs go to the console instead.
	File  io.Writer
	Level string
	// Provider enables the OTel bridge when non-nil.
	Provider *sdklog.LoggerProvider
	// Graylog receives JSON logs when non-nil, usually a GELF writer.
	Graylog io.Writer
	// Context adds dynamic attributes (current site, flight mode) to every record.
	Context ContextProvider
}

// SlogManager manages slog-based logging with optional OTel integration.
type SlogManager struct {
	logger *slog.Logger

	// OTel provider for flushing
	logProvider *sdklog.LoggerProvider
}

// NewSlogManager creates a new slog-based logging manager.
func NewSlogManager() *SlogManager {
	return &SlogManager{}
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setup builds the logger from opts, replacing any previous one.
func (m *SlogManager) Setup(opts Options) {
	lvl := parseLevel(opts.Level)
	m.logProvider = opts.Provider

	handlerOpts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.UTC().Format(time.RFC3339))
				}
			}
			return a
		},
	}

	var sinks []Sink

	if opts.File != nil {
		sinks = append(sinks, Sink{Name: "file", Handler: slog.NewTextHandler(opts.File, handlerOpts)})
	} else {
		sinks = append(sinks, Sink{Name: "console", Handler: slog.NewTextHandler(stdout, handlerOpts)})
	}

	if opts.Graylog != nil {
		sinks = append(sinks, Sink{Name: "graylog", Handler: slog.NewJSONHandler(opts.Graylog, handlerOpts)})
	}

	if opts.Provider != nil {
		sinks = append(sinks, Sink{Name: "otel", Handler: otelslog.NewHandler("tour3d", otelslog.WithLoggerProvider(opts.Provider))})
	}

	multi := NewMultiHandler(sinks...)
	var h slog.Handler = multi
	if opts.Context != nil {
		h = NewContextHandler(h, opts.Context)
	}

	m.logger = slog.New(h)
	m.logger.Info("Logging initialized", "level", lvl.String(), "sinks", multi.Sinks())
}

// Logger returns the configured slog.Logger.
func (m *SlogManager) Logger() *slog.Logger {
	if m.logger == nil {
		return slog.Default()
	}
	return m.logger
}

// Component returns the logger tagged with a component name.
func (m *SlogManager) Component(name string) *slog.Logger {
	return m.Logger().With("component", name)
}

// Flush forces a flush of OTel logs if available.
func (m *SlogManager) Flush(ctx context.Context) error {
	if m.logProvider != nil {
		return m.logProvider.ForceFlush(ctx)
	}
	return nil
}
