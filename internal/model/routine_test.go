package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRoutineInput_FirstFailingFieldWins(t *testing.T) {
	times := []TimeOfDay{NewTimeOfDay(9, 0)}

	tests := []struct {
		name  string
		title string
		days  []string
		times []TimeOfDay
		want  error
	}{
		{"empty title wins over empty days and times", "", nil, nil, ErrTitleRequired},
		{"empty days wins over empty times", "Workout", nil, nil, ErrDayRequired},
		{"empty times", "Workout", []string{"Mon"}, nil, ErrTimeRequired},
		{"valid input", "Workout", []string{"Mon"}, times, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRoutineInput(tt.title, tt.days, tt.times)
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestValidationMessages(t *testing.T) {
	assert.Equal(t, "Title is required.", ErrTitleRequired.Error())
	assert.Equal(t, "Please select at least one day.", ErrDayRequired.Error())
	assert.Equal(t, "Please select at least one time.", ErrTimeRequired.Error())
}

func TestDayTag(t *testing.T) {
	// 2025-06-02 is a Monday
	monday := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "Mon", DayTag(monday))
	assert.Equal(t, "Sun", DayTag(monday.AddDate(0, 0, -1)))
	assert.Equal(t, "Sat", DayTag(monday.AddDate(0, 0, 5)))
}

func TestRoutine_OccursOn(t *testing.T) {
	r := NewRoutine("Workout", []string{"Mon", "Wed"}, []TimeOfDay{NewTimeOfDay(9, 0)})

	monday := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
	assert.True(t, r.OccursOn(monday))
	assert.False(t, r.OccursOn(monday.AddDate(0, 0, 1)))
	assert.True(t, r.OccursOn(monday.AddDate(0, 0, 2)))
}

func TestRoutine_NextReminderTime(t *testing.T) {
	r := NewRoutine("Workout", []string{"Mon"}, []TimeOfDay{
		NewTimeOfDay(9, 0),
		NewTimeOfDay(18, 30),
	})

	now := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	next := r.NextReminderTime(now)
	require.NotNil(t, next)
	assert.Equal(t, time.Date(2025, 6, 2, 18, 30, 0, 0, time.UTC), *next)

	// All times passed
	assert.Nil(t, r.NextReminderTime(time.Date(2025, 6, 2, 19, 0, 0, 0, time.UTC)))

	// A time exactly now is not in the future
	assert.Nil(t, r.NextReminderTime(time.Date(2025, 6, 2, 18, 30, 0, 0, time.UTC)))
}

func TestRoutine_DocumentRoundTrip(t *testing.T) {
	completion := time.Date(2025, 6, 2, 20, 15, 0, 0, time.UTC)
	selected := time.Date(2025, 6, 2, 9, 5, 0, 0, time.UTC)

	r := NewRoutine("Workout", []string{"Mon", "Wed"}, []TimeOfDay{
		NewTimeOfDay(9, 0),
		NewTimeOfDay(18, 30),
	})
	r.SelectedTimes = []TimeOfDay{NewTimeOfDay(9, 0)}
	r.CompletionDate = &completion
	r.LastSelectedDate = &selected

	doc, err := json.Marshal(r)
	require.NoError(t, err)

	var decoded Routine
	require.NoError(t, json.Unmarshal(doc, &decoded))

	assert.Equal(t, r.ID, decoded.ID)
	assert.Equal(t, r.Title, decoded.Title)
	assert.Equal(t, r.Days, decoded.Days)
	assert.Equal(t, r.Times, decoded.Times)
	assert.Equal(t, r.SelectedTimes, decoded.SelectedTimes)
	require.NotNil(t, decoded.CompletionDate)
	assert.True(t, completion.Equal(*decoded.CompletionDate))
	require.NotNil(t, decoded.LastSelectedDate)
	assert.True(t, selected.Equal(*decoded.LastSelectedDate))
}

func TestTimeOfDay_Parse(t *testing.T) {
	tod, err := ParseTimeOfDay("09:05")
	require.NoError(t, err)
	assert.Equal(t, NewTimeOfDay(9, 5), tod)
	assert.Equal(t, "09:05", tod.String())

	for _, bad := range []string{"", "9", "24:00", "12:60", "ab:cd"} {
		_, err := ParseTimeOfDay(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestTimeOfDay_On(t *testing.T) {
	day := time.Date(2025, 6, 2, 23, 59, 0, 0, time.UTC)
	moment := NewTimeOfDay(9, 30).On(day)
	assert.Equal(t, time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC), moment)
}
