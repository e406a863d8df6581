package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cipolleschi/instagram/model"
)

func TestSessionChannelCreation(t *testing.T) {
	sc := NewSessionChannels()
	ctx, cancel := context.WithCancel(context.Background())

	sc.AddNewConnection(ctx)
	assert.Equal(t, 1, sc.GetActiveConnectionsCount())

	cancel()

	// Force trigger an long IO operation to context swiching to clean up.
	time.Sleep(1 * time.Second)

	assert.Equal(t, 0, sc.GetActiveConnectionsCount())
}

func TestSessionChannelMultipleCreation(t *testing.T) {
	sc := NewSessionChannels()
	ctx1, cancel1 := context.WithCancel(context.Background())
	ctx2, cancel2 := context.WithCancel(context.Background())
	ctx3, cancel3 := context.WithCancel(context.Background())

	sc.AddNewConnection(ctx1)
	sc.AddNewConnection(ctx2)
	sc.AddNewConnection(ctx3)

	assert.Equal(t, 3, sc.GetActiveConnectionsCount())

	cancel1()
	cancel2()
	cancel3()

	// Force trigger an long IO operation to context swiching to clean up.
	time.Sleep(1 * time.Second)
	assert.Equal(t, 0, sc.GetActiveConnectionsCount())
}

func TestPushFansOutToAllSubscribers(t *testing.T) {
	sc := NewSessionChannels()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch1 := sc.AddNewConnection(ctx)
	ch2 := sc.AddNewConnection(ctx)

	sc.Push(&model.SessionEvent{Type: model.SessionEventLogin})

	assert.Equal(t, model.SessionEventLogin, (<-ch1).Type)
	assert.Equal(t, model.SessionEventLogin, (<-ch2).Type)
}

func TestPushDoesNotBlockOnSlowSubscriber(t *testing.T) {
	sc := NewSessionChannels()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := sc.AddNewConnection(ctx)

	// The buffer holds one event; a second push while nobody drains must
	// drop instead of blocking the publisher.
	sc.Push(&model.SessionEvent{Type: model.SessionEventLogin})
	sc.Push(&model.SessionEvent{Type: model.SessionEventRefresh})

	assert.Equal(t, model.SessionEventLogin, (<-ch).Type)
	select {
	case event := <-ch:
		t.Fatalf("unexpected buffered event: %s", event.Type)
	default:
	}
}
