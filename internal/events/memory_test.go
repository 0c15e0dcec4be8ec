package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_RecordsPerTopic(t *testing.T) {
	pub := NewMemory()
	ctx := context.Background()

	require.NoError(t, pub.Publish(ctx, TopicProjectEvents, Event{Type: TypeProjectCreated, EntityID: "p1"}))
	require.NoError(t, pub.Publish(ctx, TopicTaskEvents, Event{Type: TypeTaskCreated, EntityID: "t1"}))

	assert.Len(t, pub.Published(TopicProjectEvents), 1)
	assert.Len(t, pub.Published(TopicTaskEvents), 1)
	assert.Empty(t, pub.Published(TopicUserEvents))
}

func TestMemory_FailWith(t *testing.T) {
	pub := NewMemory()
	pub.FailWith(errors.New("broker down"))

	err := pub.Publish(context.Background(), TopicUserEvents, Event{Type: TypeUserRegistered})
	require.Error(t, err)
	assert.Empty(t, pub.Published(TopicUserEvents))
}

func TestMemory_ConcurrentPublish(t *testing.T) {
	pub := NewMemory()
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = pub.Publish(ctx, TopicProjectEvents, Event{Type: TypeProjectUpdated, Timestamp: time.Now()})
		}()
	}
	wg.Wait()

	assert.Len(t, pub.Published(TopicProjectEvents), 20)
}
