package eventbus

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Black-And-White-Club/racepack/app/shared/observability/attr"
	nc "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// StreamName is the JetStream stream retaining every domain event.
const StreamName = "RACEPACK_EVENTS"

// InitializeStreams creates or updates the event stream so events published on
// core subjects are retained for consumers that connect later.
func InitializeStreams(ctx context.Context, conn *nc.Conn, logger *slog.Logger) error {
	js, err := jetstream.New(conn)
	if err != nil {
		return fmt.Errorf("failed to initialize JetStream: %w", err)
	}

	cfg := jetstream.StreamConfig{
		Name:     StreamName,
		Subjects: []string{"registration.>", "racepack.>"},
		Storage:  jetstream.FileStorage,
	}
	if _, err := js.CreateOrUpdateStream(ctx, cfg); err != nil {
		return fmt.Errorf("failed to create stream %s: %w", StreamName, err)
	}

	logger.InfoContext(ctx, "JetStream stream ready", attr.String("stream", StreamName))
	return nil
}
