package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmitRecordsEnvelope(t *testing.T) {
	pub := &MemoryPublisher{}
	Emit(context.Background(), pub, TopicBookings, "BK1", TypeBookingConfirmed, map[string]string{"reference": "BK1"})

	msgs := pub.Messages()
	require.Len(t, msgs, 1)
	require.Equal(t, TopicBookings, msgs[0].Topic)
	require.Equal(t, "BK1", msgs[0].Key)
	env, ok := msgs[0].Payload.(Envelope)
	require.True(t, ok)
	require.NotEmpty(t, env.ID)
	require.Equal(t, []string{TypeBookingConfirmed}, pub.Types(TopicBookings))
	require.Empty(t, pub.Types(TopicWallet))
}

func TestEmitSwallowsErrors(t *testing.T) {
	pub := &MemoryPublisher{Err: errors.New("broker down")}
	require.NotPanics(t, func() {
		Emit(context.Background(), pub, TopicWallet, "c1", TypeWalletDebited, nil)
	})
	Emit(context.Background(), nil, TopicWallet, "c1", TypeWalletDebited, nil)
}

func TestNewSelectsImplementation(t *testing.T) {
	_, ok := New(nil, "b2b").(LogPublisher)
	require.True(t, ok)

	kp, ok := New([]string{"localhost:9092"}, "b2b").(*KafkaPublisher)
	require.True(t, ok)
	require.Equal(t, "b2b.bookings", kp.TopicName(TopicBookings))
	require.NoError(t, kp.Close())

	require.NoError(t, LogPublisher{}.Publish(context.Background(), TopicNotifications, "k", map[string]int{"a": 1}))
}
