package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatermillPublisher_Publish(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	messages, err := pubSub.Subscribe(ctx, TopicRacePackClaimed)
	require.NoError(t, err)

	publisher := NewWatermillPublisher(pubSub, slog.Default())
	reqCtx := context.WithValue(ctx, middleware.RequestIDKey, "req-42")

	err = publisher.Publish(reqCtx, TopicRacePackClaimed, RacePackClaimed{
		ClaimID:        7,
		Code:           "abc",
		ParticipantIDs: []int64{1, 2},
		ClaimedBy:      "desk-1",
		ScansRemaining: 11,
	})
	require.NoError(t, err)

	select {
	case msg := <-messages:
		msg.Ack()
		assert.Equal(t, TopicRacePackClaimed, msg.Metadata.Get(MetadataEventType))
		assert.Equal(t, "req-42", msg.Metadata.Get(MetadataCorrelationID))

		var got RacePackClaimed
		require.NoError(t, json.Unmarshal(msg.Payload, &got))
		assert.Equal(t, int64(7), got.ClaimID)
		assert.Equal(t, []int64{1, 2}, got.ParticipantIDs)
		assert.Equal(t, 11, got.ScansRemaining)
	case <-ctx.Done():
		t.Fatal("timed out waiting for event")
	}
}

type failingPublisher struct{ calls int }

func (f *failingPublisher) Publish(string, ...*message.Message) error {
	f.calls++
	return errors.New("nats: connection closed")
}

func (f *failingPublisher) Close() error { return nil }

func TestPublishBestEffort_SwallowsErrors(t *testing.T) {
	failing := &failingPublisher{}
	p := NewWatermillPublisher(failing, slog.Default())

	assert.NotPanics(t, func() {
		PublishBestEffort(context.Background(), p, slog.Default(), TopicRegistrationDeclined, RegistrationDeclined{RegistrationID: 1})
		PublishBestEffort(context.Background(), nil, slog.Default(), TopicRegistrationDeclined, nil)
	})
	assert.Equal(t, 1, failing.calls)
}
