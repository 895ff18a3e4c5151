package httpdto

import "time"

// CalendarEventRequest is used for POST /api/calendar/events and
// PUT /api/calendar/events/:id
type CalendarEventRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description,omitempty"`
	Location    string     `json:"location,omitempty"`
	StartTime   time.Time  `json:"start_time" binding:"required"`
	EndTime     *time.Time `json:"end_time,omitempty"`
}

// CalendarEventDTO represents a calendar event in API responses
type CalendarEventDTO struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Location    string     `json:"location,omitempty"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
