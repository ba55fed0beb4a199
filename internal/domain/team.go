package domain

import "time"

// Team is a maintenance crew that tickets get allocated to.
type Team struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
