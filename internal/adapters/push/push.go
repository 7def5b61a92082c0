// Package push delivers rendered notifications to devices.
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/TheLoudSteve/epl-forecast/internal/domain/notify"
	"github.com/TheLoudSteve/epl-forecast/pkg/logger"
)

// Sentinel kinds for delivery errors.
var (
	ErrDeliver = errors.New("push delivery failed")
)

const defaultTimeout = 10 * time.Second

// Sender delivers one notification.
type Sender interface {
	Send(ctx context.Context, n notify.Notification) error
}

// HTTPSender posts notifications as JSON to a push gateway.
type HTTPSender struct {
	url  string
	http *http.Client
	log  logger.Logger
}

// Option applies a configuration option to the HTTPSender.
type Option func(*HTTPSender)

// WithHTTPClient overrides the underlying HTTP client. Mostly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *HTTPSender) {
		if hc != nil {
			s.http = hc
		}
	}
}

// NewHTTPSender creates a sender targeting the given gateway URL.
func NewHTTPSender(url string, opts ...Option) *HTTPSender {
	s := &HTTPSender{
		url:  url,
		http: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = logger.Named("push")
	return s
}

// Send posts the notification to the gateway.
func (s *HTTPSender) Send(ctx context.Context, n notify.Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("%w: encode: %w", ErrDeliver, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDeliver, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDeliver, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("%w: status %d", ErrDeliver, resp.StatusCode)
	}

	s.log.Debug(ctx, "notification delivered",
		logger.String("user_id", n.UserID),
		logger.String("type", n.Content.Type))
	return nil
}

// LogSender writes notifications to the log instead of delivering them.
// Used when no push gateway is configured.
type LogSender struct {
	log logger.Logger
}

// NewLogSender creates a log-only sender.
func NewLogSender() *LogSender {
	return &LogSender{log: logger.Named("push")}
}

// Send logs the notification.
func (s *LogSender) Send(ctx context.Context, n notify.Notification) error {
	s.log.Info(ctx, "notification (log-only delivery)",
		logger.String("user_id", n.UserID),
		logger.String("title", n.Content.Title),
		logger.String("body", n.Content.Body))
	return nil
}
