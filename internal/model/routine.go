package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// DaysOfWeek holds the weekday tags in time.Weekday order (Sunday first).
var DaysOfWeek = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// DayTag returns the weekday tag for t.
func DayTag(t time.Time) string {
	return DaysOfWeek[int(t.Weekday())]
}

var (
	ErrTitleRequired = errors.New("Title is required.")
	ErrDayRequired   = errors.New("Please select at least one day.")
	ErrTimeRequired  = errors.New("Please select at least one time.")
)

// ValidateRoutineInput checks user-supplied routine fields. The first failing
// field wins: title, then days, then times.
func ValidateRoutineInput(title string, days []string, times []TimeOfDay) error {
	if title == "" {
		return ErrTitleRequired
	}
	if len(days) == 0 {
		return ErrDayRequired
	}
	if len(times) == 0 {
		return ErrTimeRequired
	}
	return nil
}

type Routine struct {
	ID               uuid.UUID   `json:"id"`
	Title            string      `json:"title"`
	Days             []string    `json:"days"`
	Times            []TimeOfDay `json:"times"`
	SelectedTimes    []TimeOfDay `json:"selected_times"`
	CompletionDate   *time.Time  `json:"completion_date,omitempty"`
	LastSelectedDate *time.Time  `json:"last_selected_date,omitempty"`
}

func NewRoutine(title string, days []string, times []TimeOfDay) Routine {
	return Routine{
		ID:    uuid.New(),
		Title: title,
		Days:  days,
		Times: times,
	}
}

// Clone returns a copy owning its own slice and date storage, safe to hand
// out while the original keeps mutating.
func (r Routine) Clone() Routine {
	out := r
	out.Days = append([]string(nil), r.Days...)
	out.Times = append([]TimeOfDay(nil), r.Times...)
	out.SelectedTimes = append([]TimeOfDay(nil), r.SelectedTimes...)
	if r.CompletionDate != nil {
		d := *r.CompletionDate
		out.CompletionDate = &d
	}
	if r.LastSelectedDate != nil {
		d := *r.LastSelectedDate
		out.LastSelectedDate = &d
	}
	return out
}

// OccursOn reports whether the routine is configured for day's weekday.
func (r *Routine) OccursOn(day time.Time) bool {
	tag := DayTag(day)
	for _, d := range r.Days {
		if d == tag {
			return true
		}
	}
	return false
}

// IsTimeSelected reports whether time is acknowledged for the current day.
func (r *Routine) IsTimeSelected(t TimeOfDay) bool {
	for _, s := range r.SelectedTimes {
		if s == t {
			return true
		}
	}
	return false
}

// AllTimesSelected reports whether every occurrence is acknowledged.
func (r *Routine) AllTimesSelected() bool {
	return len(r.SelectedTimes) == len(r.Times)
}

// NextReminderTime returns the earliest configured time strictly after now
// on now's date, or nil when none remain today.
func (r *Routine) NextReminderTime(now time.Time) *time.Time {
	var next *time.Time
	for _, t := range r.Times {
		moment := t.On(now)
		if !moment.After(now) {
			continue
		}
		if next == nil || moment.Before(*next) {
			m := moment
			next = &m
		}
	}
	return next
}
