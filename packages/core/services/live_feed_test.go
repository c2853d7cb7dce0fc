package services

import (
	"testing"

	"afl-api/packages/core/models"

	"github.com/bmizerany/assert"
)

func TestLiveFeedFanOut(t *testing.T) {
	feed := NewLiveFeed()

	first, unsubscribeFirst := feed.Subscribe()
	second, unsubscribeSecond := feed.Subscribe()
	defer unsubscribeSecond()
	assert.Equal(t, 2, feed.Subscribers())

	feed.Publish(models.GameEvent{Type: models.EventGoal})
	assert.Equal(t, models.EventGoal, (<-first).Type)
	assert.Equal(t, models.EventGoal, (<-second).Type)

	unsubscribeFirst()
	unsubscribeFirst()
	assert.Equal(t, 1, feed.Subscribers())

	_, open := <-first
	assert.Equal(t, false, open)
}

func TestLiveFeedDropsForSlowSubscribers(t *testing.T) {
	feed := NewLiveFeed()
	events, unsubscribe := feed.Subscribe()
	defer unsubscribe()

	for i := 0; i < liveFeedBuffer+5; i++ {
		feed.Publish(models.GameEvent{Type: models.EventGoal})
	}

	assert.Equal(t, liveFeedBuffer, len(events))
}
