package service

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/cipolleschi/instagram/model"
)

// SessionChannels contains all structures that handle session-change
// subscriptions. Consumers subscribe instead of polling the store: the auth
// service pushes an event on every login/signup/logout/refresh. All internal
// state should not be handled directly by hand but managed by its public
// receivers.
type SessionChannels struct {
	// connectionMap maps from channel id (uuid) to the subscriber's channel,
	// so that deletion of a channel is O(1). Each entry is deleted once the
	// subscriber's context terminates.
	connectionMap map[string]chan *model.SessionEvent

	// Adding/Removing a subscription must grab WriteLock, while all other
	// usage (e.g. pushing a new event) should grab a ReadLock.
	mu sync.RWMutex
}

func NewSessionChannels() *SessionChannels {
	return &SessionChannels{
		connectionMap: make(map[string]chan *model.SessionEvent),
		mu:            sync.RWMutex{},
	}
}

// cleanUp a single connection when the context terminates.
func (sc *SessionChannels) cleanUp(ctx context.Context, chId string) {
	<-ctx.Done()

	sc.mu.Lock()
	defer sc.mu.Unlock()

	delete(sc.connectionMap, chId)
}

// Thread-safe
func (sc *SessionChannels) AddNewConnection(ctx context.Context) chan *model.SessionEvent {
	chId := "sess_" + uuid.New().String()
	ch := make(chan *model.SessionEvent, 1)

	sc.mu.Lock()
	defer sc.mu.Unlock()

	sc.connectionMap[chId] = ch

	// Spin up a background garbage collector.
	go sc.cleanUp(ctx, chId)

	return ch
}

// Thread-safe
func (sc *SessionChannels) GetActiveConnectionsCount() int {
	sc.mu.RLock()
	defer sc.mu.RUnlock()

	return len(sc.connectionMap)
}

// Push fans the event out to every subscriber. A subscriber that has not
// drained its buffer misses the event rather than blocking the publisher.
// Thread-safe
func (sc *SessionChannels) Push(event *model.SessionEvent) {
	sc.mu.RLock()
	defer sc.mu.RUnlock()

	for _, ch := range sc.connectionMap {
		select {
		case ch <- event:
		default:
		}
	}
}
