package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/vnhistory/tour3d/internal/queue"
)

// Event is a command addressed to the engine, e.g. "fly" with a site id.
type Event struct {
	Command   string
	Args      []string
	Timestamp time.Time
}

// Arg returns the i-th argument or "" when absent.
func (e Event) Arg(i int) string {
	if i < 0 || i >= len(e.Args) {
		return ""
	}
	return e.Args[i]
}

// HandlerFunc processes an event and returns a result.
type HandlerFunc func(Event) (any, error)

// Logger interface for pluggable logging. *slog.Logger satisfies it.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Queued is the result returned for deferred events.
const Queued = "queued"

// ErrQueueFull is returned when a deferred event is dropped.
var ErrQueueFull = errors.New("frame queue full")

// Option configures handler registration.
type Option func(*config)

type config struct {
	deferred bool
	logged   bool
}

// Deferred queues events for the handler until the next Flush, so the
// handler always runs on the goroutine that owns the frame loop.
func Deferred() Option {
	return func(c *config) {
		c.deferred = true
	}
}

// Logged adds debug logging to the handler.
func Logged() Option {
	return func(c *config) {
		c.logged = true
	}
}

// Dispatcher routes events to registered handlers.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string]HandlerFunc
	run      map[string]HandlerFunc
	logger   Logger

	pending *queue.Queue[Event]

	// OTEL metrics
	queueSize metric.Int64ObservableGauge
	processed metric.Int64Counter
	dropped   metric.Int64Counter
}

// New creates a Dispatcher whose frame queue holds at most limit deferred
// events (unbounded when limit <= 0).
// Uses the global OTel meter for metrics (no-op if not configured).
func New(logger Logger, limit int) (*Dispatcher, error) {
	d := &Dispatcher{
		handlers: make(map[string]HandlerFunc),
		run:      make(map[string]HandlerFunc),
		logger:   logger,
		pending:  queue.New[Event](limit),
	}

	m := meter()

	var err error

	d.queueSize, err = m.Int64ObservableGauge(
		"dispatcher.queue.size",
		metric.WithDescription("Current number of events waiting for the next frame"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating queue size gauge: %w", err)
	}

	_, err = m.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			o.ObserveInt64(d.queueSize, int64(d.pending.Len()))
			return nil
		},
		d.queueSize,
	)
	if err != nil {
		return nil, fmt.Errorf("registering queue callback: %w", err)
	}

	d.processed, err = m.Int64Counter(
		"dispatcher.events.processed",
		metric.WithDescription("Total events processed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating processed counter: %w", err)
	}

	d.dropped, err = m.Int64Counter(
		"dispatcher.events.dropped",
		metric.WithDescription("Total events dropped due to full queue"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating dropped counter: %w", err)
	}

	return d, nil
}

// Register adds a handler for the given command with optional configuration.
func (d *Dispatcher) Register(command string, h HandlerFunc, opts ...Option) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	handler := h
	if cfg.logged {
		handler = d.withLogging(command, handler)
	}

	front := handler
	if cfg.deferred {
		front = d.withQueue(command)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.run[command] = handler
	d.handlers[command] = front
}

// Dispatch routes an event to its registered handler. Deferred handlers
// return Queued immediately.
func (d *Dispatcher) Dispatch(e Event) (any, error) {
	d.mu.RLock()
	h, ok := d.handlers[e.Command]
	d.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown command: %s", e.Command)
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	return h(e)
}

// HasHandler returns true if a handler is registered for the command.
func (d *Dispatcher) HasHandler(command string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.handlers[command]
	return ok
}

// Pending returns the number of deferred events waiting for Flush.
func (d *Dispatcher) Pending() int {
	return d.pending.Len()
}

// Flush runs every deferred event queued before the call, in dispatch
// order. Handler errors are joined; a failing event never blocks the rest.
func (d *Dispatcher) Flush() (int, error) {
	events := d.pending.Drain()

	var errs []error
	for _, e := range events {
		d.mu.RLock()
		h := d.run[e.Command]
		d.mu.RUnlock()

		if _, err := h(e); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", e.Command, err))
		}
		d.processed.Add(context.Background(), 1,
			metric.WithAttributes(attribute.String("command", e.Command)))
	}
	return len(events), errors.Join(errs...)
}

// Clear drops every deferred event without running it.
func (d *Dispatcher) Clear() {
	d.pending.Clear()
}

func (d *Dispatcher) withQueue(command string) HandlerFunc {
	cmdAttr := attribute.String("command", command)

	return func(e Event) (any, error) {
		if !d.pending.Push(e) {
			d.dropped.Add(context.Background(), 1, metric.WithAttributes(cmdAttr))
			return nil, fmt.Errorf("%w: %s", ErrQueueFull, command)
		}
		return Queued, nil
	}
}

func (d *Dispatcher) withLogging(command string, h HandlerFunc) HandlerFunc {
	return func(e Event) (any, error) {
		start := time.Now()
		d.logger.Debug("handling event", "command", command, "args", len(e.Args))

		result, err := h(e)

		if err != nil {
			d.logger.Error("event failed", "command", command, "duration", time.Since(start), "error", err)
		} else {
			d.logger.Debug("event complete", "command", command, "duration", time.Since(start))
		}

		return result, err
	}
}
