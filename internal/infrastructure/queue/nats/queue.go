package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/kirillkom/doc-lifecycle/internal/core/domain"
	"github.com/kirillkom/doc-lifecycle/internal/infrastructure/resilience"
)

const (
	DefaultSubject = "documents.lifecycle"
	consumerGroup  = "lifecycle-audit"
)

// EventBus publishes lifecycle events and feeds them to queue-group subscribers.
type EventBus struct {
	conn     *nats.Conn
	subject  string
	executor *resilience.Executor
}

type Options struct {
	ConnectTimeout       time.Duration
	ReconnectWait        time.Duration
	MaxReconnects        int
	RetryOnFailedConnect *bool
	ResilienceExecutor   *resilience.Executor
}

func New(url, subject string) (*EventBus, error) {
	return NewWithOptions(url, subject, Options{})
}

func NewWithOptions(url, subject string, options Options) (*EventBus, error) {
	connectTimeout := options.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 2 * time.Second
	}
	reconnectWait := options.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = 2 * time.Second
	}
	maxReconnects := options.MaxReconnects
	if maxReconnects <= 0 {
		maxReconnects = 60
	}
	retryOnFailedConnect := true
	if options.RetryOnFailedConnect != nil {
		retryOnFailedConnect = *options.RetryOnFailedConnect
	}
	if subject == "" {
		subject = DefaultSubject
	}

	conn, err := nats.Connect(
		url,
		nats.Name("doc-lifecycle"),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.RetryOnFailedConnect(retryOnFailedConnect),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn("nats_disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("nats_reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &EventBus{
		conn:     conn,
		subject:  subject,
		executor: options.ResilienceExecutor,
	}, nil
}

func (b *EventBus) Close() {
	if b.conn != nil {
		b.conn.Close()
	}
}

func (b *EventBus) PublishLifecycleEvent(ctx context.Context, event domain.LifecycleEvent) error {
	payload, err := encodeEvent(event)
	if err != nil {
		return err
	}
	call := func(_ context.Context) error {
		if err := b.conn.Publish(b.subject, payload); err != nil {
			return fmt.Errorf("nats publish: %w", err)
		}
		return nil
	}

	if b.executor != nil {
		err = b.executor.Execute(ctx, "nats.publish", call, classifyNATSError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return wrapTemporaryIfNeeded(err)
	}
	return nil
}

// SubscribeLifecycleEvents blocks until ctx is done, then drains the subscription.
// Undecodable messages are logged and dropped.
func (b *EventBus) SubscribeLifecycleEvents(ctx context.Context, handler func(context.Context, domain.LifecycleEvent) error) error {
	sub, err := b.conn.QueueSubscribe(b.subject, consumerGroup, func(msg *nats.Msg) {
		if errors.Is(ctx.Err(), context.Canceled) {
			return
		}
		event, err := decodeEvent(msg.Data)
		if err != nil {
			slog.Warn("lifecycle_event_decode_failed", "subject", msg.Subject, "error", err)
			return
		}

		handlerCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		if err := handler(handlerCtx, event); err != nil {
			slog.Error("lifecycle_event_handler_failed",
				"event_id", event.ID,
				"document_id", event.DocumentID,
				"action", string(event.Action),
				"error", err,
			)
		}
	})
	if err != nil {
		return fmt.Errorf("nats subscribe: %w", err)
	}

	if err := b.conn.Flush(); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}

	<-ctx.Done()
	if err := sub.Drain(); err != nil {
		return fmt.Errorf("nats drain subscription: %w", err)
	}
	if err := b.conn.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("nats flush after drain: %w", err)
	}
	return nil
}

func encodeEvent(event domain.LifecycleEvent) ([]byte, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal lifecycle event: %w", err)
	}
	return payload, nil
}

func decodeEvent(data []byte) (domain.LifecycleEvent, error) {
	var event domain.LifecycleEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return domain.LifecycleEvent{}, fmt.Errorf("unmarshal lifecycle event: %w", err)
	}
	if event.ID == "" || event.DocumentID == "" {
		return domain.LifecycleEvent{}, fmt.Errorf("lifecycle event missing id or document_id")
	}
	return event, nil
}
