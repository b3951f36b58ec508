package notify

import (
	"sync"
	"time"

	"go.uber.org/zap"

	mqcontracts "routtie/contracts/mq"
	"routtie/pkg/metrics"
	"routtie/pkg/trace"
)

const RoutingKeyReminderDue = "reminder.due"

// Publisher is the slice of pkg/mq.Publisher the scheduler needs.
type Publisher interface {
	Publish(routingKey string, payload any) error
}

// Scheduler holds pending reminder alerts as in-process timers. At fire time
// each alert is published as a reminder.due event for the notifier worker to
// deliver. One Scheduler serves one store; CancelAll drops every pending
// alert of that store.
type Scheduler struct {
	mu        sync.Mutex
	pending   map[string]*time.Timer
	publisher Publisher
	userID    int
	logger    *zap.Logger
	now       func() time.Time
}

func NewScheduler(publisher Publisher, userID int, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		pending:   make(map[string]*time.Timer),
		publisher: publisher,
		userID:    userID,
		logger:    logger,
		now:       time.Now,
	}
}

// Schedule queues a fire-once alert. Fire times already in the past are
// dropped. Scheduling an id again replaces the previous alert.
func (s *Scheduler) Schedule(id string, fireAt time.Time, title, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delay := fireAt.Sub(s.now())
	if delay <= 0 {
		return
	}

	if prev, ok := s.pending[id]; ok {
		prev.Stop()
	}

	s.pending[id] = time.AfterFunc(delay, func() {
		s.fire(id, title, body)
	})

	s.logger.Debug("Reminder scheduled",
		zap.String("alert_id", id),
		zap.Time("fire_at", fireAt),
	)
}

// CancelAll stops every pending alert.
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, timer := range s.pending {
		timer.Stop()
		delete(s.pending, id)
	}
}

// PendingCount returns the number of queued alerts.
func (s *Scheduler) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

func (s *Scheduler) fire(id, title, body string) {
	s.mu.Lock()
	if _, ok := s.pending[id]; !ok {
		// cancelled between timer fire and lock acquisition
		s.mu.Unlock()
		return
	}
	delete(s.pending, id)
	s.mu.Unlock()

	// Timer-originated events start a fresh trace; the notifier worker picks
	// it up from the payload.
	traceID := trace.GenerateTraceID()

	payload := mqcontracts.ReminderDuePayload{
		AlertID: id,
		UserID:  s.userID,
		Title:   title,
		Body:    body,
		FiredAt: s.now(),
		TraceID: traceID,
	}

	if err := s.publisher.Publish(RoutingKeyReminderDue, payload); err != nil {
		s.logger.Error("Failed to publish reminder.due event",
			zap.String("alert_id", id),
			zap.Error(err),
		)
		metrics.IncrementReminderPublished("failed")
		return
	}

	metrics.IncrementReminderPublished("success")
	s.logger.Info("Published reminder.due event",
		zap.String("alert_id", id),
		zap.Int("user_id", s.userID),
		zap.String("trace_id", traceID),
	)
}
