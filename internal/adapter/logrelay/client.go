// Package logrelay forwards log records to the log collector service.
//
// Delivery is best effort: entries are queued without blocking the caller,
// dropped when the queue is full and never retried.
package logrelay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/vadimbarashkov/shorturls/internal/metrics"
	"golang.org/x/sync/errgroup"
)

const (
	logsPath = "/api/logs"

	defaultService   = "url-shortener-microservice"
	defaultTimeout   = 5 * time.Second
	defaultQueueSize = 1024
	defaultWorkers   = 2
)

// Entry is the payload accepted by the collector.
type Entry struct {
	Stack     string    `json:"stack"`
	Level     string    `json:"level"`
	Package   string    `json:"package"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
}

type recorder interface {
	RecordRelay(result string)
}

type nopRecorder struct{}

func (nopRecorder) RecordRelay(string) {}

type Option func(*Client)

func WithService(service string) Option {
	return func(c *Client) {
		c.service = service
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

func WithQueueSize(n int) Option {
	return func(c *Client) {
		c.queueSize = n
	}
}

func WithWorkers(n int) Option {
	return func(c *Client) {
		c.workers = n
	}
}

// WithLogger sets the logger used to report delivery failures. It must not
// write through a Handler of the same client.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithMetrics(m recorder) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// Client delivers entries to the collector from a bounded queue.
type Client struct {
	endpoint   string
	service    string
	queueSize  int
	workers    int
	httpClient *http.Client
	logger     *slog.Logger
	metrics    recorder
	queue      chan Entry
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		endpoint:   strings.TrimSuffix(baseURL, "/") + logsPath,
		service:    defaultService,
		queueSize:  defaultQueueSize,
		workers:    defaultWorkers,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics:    nopRecorder{},
	}

	for _, opt := range opts {
		opt(c)
	}

	c.queue = make(chan Entry, max(c.queueSize, 1))
	c.workers = max(c.workers, 1)

	return c
}

// Enqueue schedules the entry for delivery and reports whether it was accepted.
// It never blocks: when the queue is full the entry is dropped.
func (c *Client) Enqueue(e Entry) bool {
	if e.Service == "" {
		e.Service = c.service
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	select {
	case c.queue <- e:
		return true
	default:
		c.metrics.RecordRelay(metrics.RelayDropped)
		return false
	}
}

// Run delivers queued entries until ctx is done.
func (c *Client) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	for range c.workers {
		g.Go(func() error {
			c.work(ctx)
			return nil
		})
	}

	return g.Wait()
}

func (c *Client) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case e := <-c.queue:
			if err := c.Send(ctx, e); err != nil {
				c.metrics.RecordRelay(metrics.RelayFailed)
				c.logger.Warn("failed to relay log entry",
					slog.String("package", e.Package),
					slog.String("stack", e.Stack),
					slog.Any("err", err),
				)
				continue
			}
			c.metrics.RecordRelay(metrics.RelaySent)
		}
	}
}

// Send posts a single entry to the collector.
func (c *Client) Send(ctx context.Context, e Entry) error {
	const op = "adapter.logrelay.Client.Send"

	if e.Service == "" {
		e.Service = c.service
	}

	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("%s: failed to encode entry: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: failed to build request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: failed to send entry: %w", op, err)
	}
	defer resp.Body.Close()

	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%s: unexpected status code: %d", op, resp.StatusCode)
	}

	return nil
}
