package store

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"routtie/internal/model"
	"routtie/pkg/metrics"
)

const (
	kvKeyRoutines  = "routines"
	kvKeyCompleted = "completedRoutines"

	tickInterval = time.Hour
	ioTimeout    = 10 * time.Second

	reminderLeadTime = 5 * time.Minute
)

// Store is the single owner of the active and completed routine collections.
// All operations serialize through one mutex; remote document sync runs on
// goroutines and is best-effort. A sync epoch guards against stale remote
// loads landing after the identity changed.
type Store struct {
	mu        sync.Mutex
	active    []model.Routine
	completed []model.Routine
	userID    int // 0 while signed out
	epoch     uint64

	docs      DocumentStore
	kv        KeyValue
	scheduler ReminderScheduler
	logger    *zap.Logger
	now       func() time.Time
	tick      time.Duration

	subscribers []chan struct{}

	done   chan struct{}
	closed bool
}

type Option func(*Store)

// WithClock overrides the store's time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithTickInterval overrides the maintenance tick period.
func WithTickInterval(d time.Duration) Option {
	return func(s *Store) { s.tick = d }
}

func New(docs DocumentStore, kv KeyValue, scheduler ReminderScheduler, logger *zap.Logger, opts ...Option) *Store {
	s := &Store{
		docs:      docs,
		kv:        kv,
		scheduler: scheduler,
		logger:    logger,
		now:       time.Now,
		tick:      tickInterval,
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mu.Lock()
	s.loadLocalLocked()
	s.sortLocked()
	s.rescheduleLocked()
	s.mu.Unlock()

	go s.runTicker()
	return s
}

// Close stops the hourly tick and cancels every pending reminder. The store
// must not be used afterwards.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.epoch++
	close(s.done)
	s.scheduler.CancelAll()
}

// Subscribe returns a channel receiving one signal per completed mutation.
// Delivery is non-blocking; a slow consumer sees at least the latest change.
func (s *Store) Subscribe() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan struct{}, 1)
	s.subscribers = append(s.subscribers, ch)
	return ch
}

// Create appends a new routine. Input validation is the caller's
// responsibility (model.ValidateRoutineInput); the store accepts any input.
func (s *Store) Create(title string, days []string, times []model.TimeOfDay) model.Routine {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := model.NewRoutine(title, days, times)
	s.active = append(s.active, r)

	s.logger.Info("Routine created",
		zap.String("routine_id", r.ID.String()),
		zap.String("title", r.Title),
	)
	s.afterMutationLocked("create")
	return r
}

// Update replaces title, days and times of the routine with the given id.
// Unknown ids are a silent no-op. Selections and dates are untouched.
func (s *Store) Update(id uuid.UUID, title string, days []string, times []model.TimeOfDay) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := indexByID(s.active, id)
	if idx < 0 {
		return
	}
	s.active[idx].Title = title
	s.active[idx].Days = days
	s.active[idx].Times = times

	s.afterMutationLocked("update")
}

// Delete removes the routine from both collections. Deletion is final.
func (s *Store) Delete(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := false
	if idx := indexByID(s.active, id); idx >= 0 {
		s.active = append(s.active[:idx], s.active[idx+1:]...)
		removed = true
	}
	if idx := indexByID(s.completed, id); idx >= 0 {
		s.completed = append(s.completed[:idx], s.completed[idx+1:]...)
		removed = true
	}
	if !removed {
		return
	}

	s.logger.Info("Routine deleted", zap.String("routine_id", id.String()))
	s.afterMutationLocked("delete")
}

// ToggleOccurrence selects or deselects one configured time for today. When
// every occurrence is acknowledged the routine moves to completed with a
// completion stamp. Completed routines are not toggleable.
func (s *Store) ToggleOccurrence(id uuid.UUID, t model.TimeOfDay) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := indexByID(s.active, id)
	if idx < 0 {
		return
	}
	r := &s.active[idx]

	if r.IsTimeSelected(t) {
		kept := r.SelectedTimes[:0]
		for _, sel := range r.SelectedTimes {
			if sel != t {
				kept = append(kept, sel)
			}
		}
		r.SelectedTimes = kept
	} else {
		r.SelectedTimes = append(r.SelectedTimes, t)
		now := s.now()
		r.LastSelectedDate = &now
	}

	if r.AllTimesSelected() {
		done := s.active[idx]
		now := s.now()
		done.CompletionDate = &now
		s.active = append(s.active[:idx], s.active[idx+1:]...)
		s.completed = append(s.completed, done)

		s.logger.Info("Routine completed",
			zap.String("routine_id", done.ID.String()),
			zap.String("title", done.Title),
		)
	}

	s.afterMutationLocked("toggle")
}

// ResetStaleSelections clears selections whose last mutation was not today.
// Idempotent.
func (s *Store) ResetStaleSelections() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	now := s.now()
	changed := 0
	for i := range s.active {
		r := &s.active[i]
		if r.LastSelectedDate != nil && !sameDay(*r.LastSelectedDate, now) {
			r.SelectedTimes = nil
			stamp := now
			r.LastSelectedDate = &stamp
			changed++
		}
	}
	if changed == 0 {
		return
	}

	s.logger.Info("Stale selections reset", zap.Int("count", changed))
	s.afterMutationLocked("reset")
}

// RecycleStaleCompletions moves completed routines back to active once their
// completion day has passed, clearing selections and the completion stamp.
// Idempotent.
func (s *Store) RecycleStaleCompletions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	now := s.now()
	var remaining []model.Routine
	moved := 0
	for _, r := range s.completed {
		if r.CompletionDate != nil && !sameDay(*r.CompletionDate, now) {
			r.CompletionDate = nil
			r.SelectedTimes = nil
			s.active = append(s.active, r)
			moved++
			continue
		}
		remaining = append(remaining, r)
	}
	s.completed = remaining
	if moved == 0 {
		return
	}

	s.logger.Info("Completed routines recycled", zap.Int("count", moved))
	s.afterMutationLocked("recycle")
}

// RoutinesForToday returns the active routines configured for today's
// weekday.
func (s *Store) RoutinesForToday() []model.Routine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filterActiveLocked(true)
}

// OtherRoutines returns the active routines not configured for today.
func (s *Store) OtherRoutines() []model.Routine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filterActiveLocked(false)
}

// Routines returns a copy of the active collection.
func (s *Store) Routines() []model.Routine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyRoutines(s.active)
}

// CompletedRoutines returns a copy of the completed collection.
func (s *Store) CompletedRoutines() []model.Routine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyRoutines(s.completed)
}

// SortByClosestUpcomingTime reorders the active collection by each routine's
// configured time closest (by absolute distance) to now. A routine with no
// times compares with distance zero and sorts as happening now.
func (s *Store) SortByClosestUpcomingTime() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sortLocked()
}

// Attach binds the store to a signed-in identity and starts loading its
// remote documents. Any previously in-flight load is invalidated.
func (s *Store) Attach(userID int) {
	s.mu.Lock()
	s.userID = userID
	s.epoch++
	epoch := s.epoch
	s.mu.Unlock()

	go s.loadRemote(epoch, userID)
}

// Detach clears the identity and discards all local state. Remote documents
// are kept for the next sign-in; the local fallback is emptied.
func (s *Store) Detach() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.userID = 0
	s.epoch++
	s.active = nil
	s.completed = nil

	s.saveLocalLocked()
	s.rescheduleLocked()
	s.notifyLocked()
}

func (s *Store) runTicker() {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.RecycleStaleCompletions()
			s.ResetStaleSelections()

			s.mu.Lock()
			if !s.closed {
				s.rescheduleLocked()
			}
			s.mu.Unlock()
		}
	}
}

// afterMutationLocked runs the shared post-mutation pipeline: metrics,
// persistence, reminder rescheduling, change notification.
func (s *Store) afterMutationLocked(operation string) {
	metrics.IncrementRoutineMutation(operation)
	s.persistLocked()
	s.rescheduleLocked()
	s.notifyLocked()
}

// persistLocked triggers a remote full-replace sync while signed in, or a
// local fallback write while signed out.
func (s *Store) persistLocked() {
	if s.userID != 0 {
		epoch := s.epoch
		userID := s.userID
		snapshot := copyRoutines(s.active)
		go s.saveRemote(epoch, userID, snapshot)
		return
	}
	s.saveLocalLocked()
}

// saveRemote replaces the user's remote collection with the given snapshot.
// Two concurrent saves race last-write-wins; the store does not remediate
// this, matching the source behavior.
func (s *Store) saveRemote(epoch uint64, userID int, routines []model.Routine) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), ioTimeout)
	defer cancel()

	if err := s.docs.DeleteAll(ctx, userID); err != nil {
		s.logger.Error("Failed to clear remote routines",
			zap.Int("user_id", userID),
			zap.Error(err),
		)
		metrics.IncrementSyncFailure("save")
		return
	}

	for _, r := range routines {
		doc, err := json.Marshal(r)
		if err != nil {
			s.logger.Error("Failed to encode routine",
				zap.String("routine_id", r.ID.String()),
				zap.Error(err),
			)
			continue
		}
		if err := s.docs.Upsert(ctx, userID, r.ID.String(), doc); err != nil {
			s.logger.Error("Failed to save routine",
				zap.String("routine_id", r.ID.String()),
				zap.Error(err),
			)
			metrics.IncrementSyncFailure("save")
			continue
		}
	}

	metrics.RecordSyncDuration("save", time.Since(start))
	s.logger.Debug("Remote sync completed",
		zap.Int("user_id", userID),
		zap.Uint64("epoch", epoch),
		zap.Int("count", len(routines)),
	)
}

// loadRemote fetches and decodes the user's documents, then installs them as
// the active collection. Malformed documents are skipped. The result is
// dropped when the epoch moved on (sign-out or a newer sign-in).
func (s *Store) loadRemote(epoch uint64, userID int) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), ioTimeout)
	defer cancel()

	docs, err := s.docs.List(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to load remote routines",
			zap.Int("user_id", userID),
			zap.Error(err),
		)
		metrics.IncrementSyncFailure("load")
		return
	}

	var loaded []model.Routine
	for _, doc := range docs {
		var r model.Routine
		if err := json.Unmarshal(doc, &r); err != nil {
			s.logger.Warn("Skipping malformed routine document",
				zap.Int("user_id", userID),
				zap.Error(err),
			)
			continue
		}
		loaded = append(loaded, r)
	}
	metrics.RecordSyncDuration("load", time.Since(start))

	s.mu.Lock()
	defer s.mu.Unlock()

	if epoch != s.epoch {
		s.logger.Info("Dropping stale remote load",
			zap.Int("user_id", userID),
			zap.Uint64("epoch", epoch),
			zap.Uint64("current_epoch", s.epoch),
		)
		return
	}

	s.active = loaded
	s.sortLocked()
	s.rescheduleLocked()
	s.notifyLocked()

	s.logger.Info("Remote routines loaded",
		zap.Int("user_id", userID),
		zap.Int("count", len(loaded)),
	)
}

func (s *Store) loadLocalLocked() {
	ctx, cancel := context.WithTimeout(context.Background(), ioTimeout)
	defer cancel()

	if data, err := s.kv.Get(ctx, kvKeyRoutines); err != nil {
		s.logger.Warn("Failed to read local routines", zap.Error(err))
	} else if len(data) > 0 {
		if err := json.Unmarshal(data, &s.active); err != nil {
			s.logger.Warn("Failed to decode local routines", zap.Error(err))
		}
	}

	if data, err := s.kv.Get(ctx, kvKeyCompleted); err != nil {
		s.logger.Warn("Failed to read local completed routines", zap.Error(err))
	} else if len(data) > 0 {
		if err := json.Unmarshal(data, &s.completed); err != nil {
			s.logger.Warn("Failed to decode local completed routines", zap.Error(err))
		}
	}
}

func (s *Store) saveLocalLocked() {
	ctx, cancel := context.WithTimeout(context.Background(), ioTimeout)
	defer cancel()

	if len(s.active) == 0 && len(s.completed) == 0 {
		if err := s.kv.Delete(ctx, kvKeyRoutines, kvKeyCompleted); err != nil {
			s.logger.Warn("Failed to clear local routines", zap.Error(err))
		}
		return
	}

	if data, err := json.Marshal(s.active); err == nil {
		if err := s.kv.Set(ctx, kvKeyRoutines, data); err != nil {
			s.logger.Warn("Failed to write local routines", zap.Error(err))
		}
	}
	if data, err := json.Marshal(s.completed); err == nil {
		if err := s.kv.Set(ctx, kvKeyCompleted, data); err != nil {
			s.logger.Warn("Failed to write local completed routines", zap.Error(err))
		}
	}
}

// rescheduleLocked fully replaces the pending reminder set: cancel
// everything, then schedule an upcoming and a due alert per configured time
// of every routine occurring today.
func (s *Store) rescheduleLocked() {
	now := s.now()
	s.scheduler.CancelAll()

	count := 0
	for i := range s.active {
		r := &s.active[i]
		if !r.OccursOn(now) {
			continue
		}
		for _, t := range r.Times {
			moment := t.On(now)
			s.scheduler.Schedule(
				r.ID.String()+":"+t.String()+":pre",
				moment.Add(-reminderLeadTime),
				"Don't miss it!",
				"Your routtie, "+r.Title+" is coming up.",
			)
			s.scheduler.Schedule(
				r.ID.String()+":"+t.String()+":due",
				moment,
				"Time for your routtie,",
				r.Title,
			)
			count += 2
		}
	}
	metrics.IncrementRemindersScheduled(count)
}

func (s *Store) notifyLocked() {
	for _, ch := range s.subscribers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (s *Store) filterActiveLocked(forToday bool) []model.Routine {
	now := s.now()
	var out []model.Routine
	for i := range s.active {
		if s.active[i].OccursOn(now) == forToday {
			out = append(out, s.active[i].Clone())
		}
	}
	return out
}

func (s *Store) sortLocked() {
	now := s.now()
	sort.SliceStable(s.active, func(i, j int) bool {
		return closestOffset(&s.active[i], now) < closestOffset(&s.active[j], now)
	})
}

// closestOffset returns the signed distance from now to the routine's time
// closest by absolute distance. No times yields zero, so such a routine
// sorts as happening now.
func closestOffset(r *model.Routine, now time.Time) time.Duration {
	found := false
	var best, bestAbs time.Duration
	for _, t := range r.Times {
		d := t.On(now).Sub(now)
		abs := d
		if abs < 0 {
			abs = -abs
		}
		if !found || abs < bestAbs {
			found = true
			best = d
			bestAbs = abs
		}
	}
	if !found {
		return 0
	}
	return best
}

func indexByID(routines []model.Routine, id uuid.UUID) int {
	for i := range routines {
		if routines[i].ID == id {
			return i
		}
	}
	return -1
}

// copyRoutines deep-copies the collection. Snapshots handed to goroutines and
// callers must not alias the live slices the mutation path appends into.
func copyRoutines(routines []model.Routine) []model.Routine {
	if routines == nil {
		return nil
	}
	out := make([]model.Routine, len(routines))
	for i := range routines {
		out[i] = routines[i].Clone()
	}
	return out
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
