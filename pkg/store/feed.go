package store

import (
	"sync"

	"github.com/google/uuid"
)

// Op is the kind of change a feed event describes.
type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Event is one change delta emitted by the store after a successful mutation.
type Event struct {
	Collection string
	Op         Op
	ID         uuid.UUID
}

// Feed fans out change events to subscribers. Consumers re-derive their
// aggregates on each delta; the feed itself carries no record data.
type Feed struct {
	mu   sync.Mutex
	next int
	subs map[int]*Subscription
}

// Subscription is a cancellable handle returned by Subscribe.
type Subscription struct {
	feed       *Feed
	id         int
	collection string
	fn         func(Event)
}

func NewFeed() *Feed {
	return &Feed{subs: make(map[int]*Subscription)}
}

// Subscribe registers fn for events on the given collection. An empty
// collection matches every collection. The callback runs synchronously on
// the mutating goroutine.
func (f *Feed) Subscribe(collection string, fn func(Event)) *Subscription {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	sub := &Subscription{feed: f, id: f.next, collection: collection, fn: fn}
	f.subs[sub.id] = sub
	return sub
}

// Cancel removes the subscription. Safe to call more than once.
func (s *Subscription) Cancel() {
	if s == nil || s.feed == nil {
		return
	}
	s.feed.mu.Lock()
	delete(s.feed.subs, s.id)
	s.feed.mu.Unlock()
	s.feed = nil
}

// Publish delivers the event to every matching subscriber.
func (f *Feed) Publish(ev Event) {
	if f == nil {
		return
	}
	f.mu.Lock()
	matched := make([]*Subscription, 0, len(f.subs))
	for _, sub := range f.subs {
		if sub.collection == "" || sub.collection == ev.Collection {
			matched = append(matched, sub)
		}
	}
	f.mu.Unlock()

	for _, sub := range matched {
		sub.fn(ev)
	}
}
