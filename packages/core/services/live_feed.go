package services

import (
	"sync"

	"afl-api/packages/core/models"
)

const liveFeedBuffer = 16

// LiveFeed fans game events out to in-process subscribers. A subscriber that
// falls behind misses events rather than blocking the publisher.
type LiveFeed struct {
	mu          sync.Mutex
	subscribers map[chan models.GameEvent]struct{}
}

func NewLiveFeed() *LiveFeed {
	return &LiveFeed{subscribers: make(map[chan models.GameEvent]struct{})}
}

// Subscribe returns the event channel and a function releasing it
func (f *LiveFeed) Subscribe() (<-chan models.GameEvent, func()) {
	ch := make(chan models.GameEvent, liveFeedBuffer)

	f.mu.Lock()
	f.subscribers[ch] = struct{}{}
	f.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subscribers, ch)
			f.mu.Unlock()
			close(ch)
		})
	}
}

func (f *LiveFeed) Publish(event models.GameEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for ch := range f.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

func (f *LiveFeed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subscribers)
}
