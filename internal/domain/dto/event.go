package dto

import "time"

// Event describes the show itself. Used for calendar invites and email copy.
type Event struct {
	ID          string
	Name        string
	Description string
	Location    string
	StartTime   time.Time
	EndTime     time.Time
}
