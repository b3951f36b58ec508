package notify

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	mqcontracts "routtie/contracts/mq"
)

type fakePublisher struct {
	mu        sync.Mutex
	published []mqcontracts.ReminderDuePayload
}

func (f *fakePublisher) Publish(routingKey string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, payload.(mqcontracts.ReminderDuePayload))
	return nil
}

func (f *fakePublisher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.published)
}

func TestScheduler_PastFireTimeIsDropped(t *testing.T) {
	pub := &fakePublisher{}
	s := NewScheduler(pub, 1, zap.NewNop())

	s.Schedule("a", time.Now().Add(-time.Minute), "t", "b")
	assert.Equal(t, 0, s.PendingCount())
}

func TestScheduler_FiresAndPublishes(t *testing.T) {
	pub := &fakePublisher{}
	s := NewScheduler(pub, 42, zap.NewNop())

	s.Schedule("a", time.Now().Add(20*time.Millisecond), "Don't miss it!", "Your routtie, Workout is coming up.")
	require.Equal(t, 1, s.PendingCount())

	require.Eventually(t, func() bool {
		return pub.count() == 1
	}, 2*time.Second, 5*time.Millisecond)

	pub.mu.Lock()
	got := pub.published[0]
	pub.mu.Unlock()
	assert.Equal(t, "a", got.AlertID)
	assert.Equal(t, 42, got.UserID)
	assert.Equal(t, "Don't miss it!", got.Title)
	assert.NotEmpty(t, got.TraceID)
	assert.Equal(t, 0, s.PendingCount())
}

func TestScheduler_CancelAllStopsPendingAlerts(t *testing.T) {
	pub := &fakePublisher{}
	s := NewScheduler(pub, 1, zap.NewNop())

	s.Schedule("a", time.Now().Add(30*time.Millisecond), "t", "b")
	s.Schedule("b", time.Now().Add(30*time.Millisecond), "t", "b")
	require.Equal(t, 2, s.PendingCount())

	s.CancelAll()
	assert.Equal(t, 0, s.PendingCount())

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, 0, pub.count())
}

func TestScheduler_RescheduleSameIDReplaces(t *testing.T) {
	pub := &fakePublisher{}
	s := NewScheduler(pub, 1, zap.NewNop())

	s.Schedule("a", time.Now().Add(time.Hour), "t", "b")
	s.Schedule("a", time.Now().Add(2*time.Hour), "t", "b")
	assert.Equal(t, 1, s.PendingCount())
}
