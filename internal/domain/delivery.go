package domain

import "time"

// DeliveredPost records a post the watcher has already announced.
type DeliveredPost struct {
	ID          int
	PostID      int
	Creator     string
	DeliveredAt time.Time
}
