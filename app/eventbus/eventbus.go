// Package eventbus publishes domain events to NATS through watermill.
// Publishing happens after commit and is best-effort: a lost event never
// reverses the operation that produced it.
package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/racepack/app/shared/apperr"
	"github.com/Black-And-White-Club/racepack/app/shared/observability/attr"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5/middleware"
	nc "github.com/nats-io/nats.go"
)

// Metadata keys set on every published message.
const (
	MetadataEventType     = "event_type"
	MetadataCorrelationID = "correlation_id"
)

// Publisher publishes a JSON-encoded payload on topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) error
	Close() error
}

// WatermillPublisher adapts a watermill publisher to Publisher.
type WatermillPublisher struct {
	publisher message.Publisher
	conn      *nc.Conn
	logger    *slog.Logger
}

// NewNATSPublisher connects to NATS, makes sure the event stream exists when
// provisionStream is set, and returns a publisher over core NATS subjects.
func NewNATSPublisher(ctx context.Context, natsURL string, provisionStream bool, logger *slog.Logger) (*WatermillPublisher, error) {
	opts := []nc.Option{
		nc.Name("racepack"),
		nc.RetryOnFailedConnect(true),
		nc.MaxReconnects(-1),
		nc.ReconnectWait(2 * time.Second),
	}

	conn, err := nc.Connect(natsURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	if provisionStream {
		if err := InitializeStreams(ctx, conn, logger); err != nil {
			conn.Close()
			return nil, err
		}
	}

	publisher, err := nats.NewPublisher(
		nats.PublisherConfig{
			URL:         natsURL,
			Marshaler:   &nats.NATSMarshaler{},
			NatsOptions: opts,
			JetStream: nats.JetStreamConfig{
				Disabled: true,
			},
		},
		watermill.NewSlogLogger(logger),
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create watermill publisher: %w", err)
	}

	return &WatermillPublisher{publisher: publisher, conn: conn, logger: logger}, nil
}

// NewWatermillPublisher wraps an existing watermill publisher.
func NewWatermillPublisher(publisher message.Publisher, logger *slog.Logger) *WatermillPublisher {
	return &WatermillPublisher{publisher: publisher, logger: logger}
}

func (p *WatermillPublisher) Publish(ctx context.Context, topic string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", topic, err)
	}

	msg := message.NewMessage(watermill.NewUUID(), body)
	msg.Metadata.Set(MetadataEventType, topic)
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		msg.Metadata.Set(MetadataCorrelationID, reqID)
	}
	msg.SetContext(ctx)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "Event published",
		attr.String("topic", topic),
		attr.String("message_id", msg.UUID),
	)
	return nil
}

// Close closes the publisher and the provisioning connection.
func (p *WatermillPublisher) Close() error {
	err := p.publisher.Close()
	if p.conn != nil {
		p.conn.Close()
	}
	return err
}

// NoopPublisher drops every event. Used when NATS is not configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, any) error { return nil }
func (NoopPublisher) Close() error                               { return nil }

// PublishBestEffort publishes and logs a failure as an external service error
// instead of returning it.
func PublishBestEffort(ctx context.Context, p Publisher, logger *slog.Logger, topic string, payload any) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, topic, payload); err != nil {
		logger.WarnContext(ctx, "Event publish failed",
			attr.ExtractCorrelationID(ctx),
			attr.String("topic", topic),
			attr.Error(fmt.Errorf("%w: %v", apperr.ErrExternalService, err)),
		)
	}
}
