package publisher

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloodlink/pkg/domain"
	audit "bloodlink/pkg/platform/audit"
	"bloodlink/pkg/platform/audit/store/memory"
)

func TestPublisher_SyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	accountID := domain.AccountID(uuid.New())
	event := audit.Event{
		AccountID: accountID,
		Action:    string(audit.EventDonorRegistered),
		BloodType: "O-",
	}

	err := pub.Emit(context.Background(), event)
	require.NoError(t, err)

	events, err := pub.List(context.Background(), accountID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, string(audit.EventDonorRegistered), events[0].Action)
	assert.False(t, events[0].Timestamp.IsZero(), "emit should stamp missing timestamps")
}

func TestPublisher_AsyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(10))
	defer pub.Close()

	accountID := domain.AccountID(uuid.New())
	err := pub.Emit(context.Background(), audit.Event{
		AccountID: accountID,
		Action:    string(audit.EventRequestCreated),
	})
	require.NoError(t, err)

	// Wait for async processing
	time.Sleep(100 * time.Millisecond)

	events, err := pub.List(context.Background(), accountID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, string(audit.EventRequestCreated), events[0].Action)
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(100))

	accountID := domain.AccountID(uuid.New())
	for range 10 {
		err := pub.Emit(context.Background(), audit.Event{
			AccountID: accountID,
			Action:    string(audit.EventRequestFulfilled),
		})
		require.NoError(t, err)
	}

	// Close should drain all events
	pub.Close()

	events, err := store.ListByAccount(context.Background(), accountID)
	require.NoError(t, err)
	assert.Len(t, events, 10, "all events should be drained on close")
}

type recordingSink struct {
	events []audit.Event
}

func (s *recordingSink) Send(_ context.Context, event audit.Event) error {
	s.events = append(s.events, event)
	return nil
}

func TestPublisher_FansOutToSinks(t *testing.T) {
	store := memory.NewInMemoryStore()
	sink := &recordingSink{}
	pub := NewPublisher(store, WithSink(sink))
	defer pub.Close()

	err := pub.Emit(context.Background(), audit.Event{
		AccountID: domain.AccountID(uuid.New()),
		Action:    string(audit.EventRequestCreated),
	})
	require.NoError(t, err)
	require.Len(t, sink.events, 1)
}
