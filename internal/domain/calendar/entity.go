package calendar

import (
	"time"

	"github.com/google/uuid"
)

// Event is a user calendar entry. Title, description and location are free
// text; the interpreter classifies them into candidate domain records.
type Event struct {
	ID          int64      `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Location    string     `json:"location"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// DurationMinutes returns the event length in whole minutes, or false when
// the end time is absent.
func (e *Event) DurationMinutes() (int, bool) {
	if e.EndTime == nil {
		return 0, false
	}
	return int(e.EndTime.Sub(e.StartTime) / time.Minute), true
}
