package model

import "time"

// Category partitions all matching activity. Requests and matches never span
// categories.
type Category struct {
	ID          string    `db:"id" json:"id"`
	Slug        string    `db:"slug" json:"slug"`
	Name        string    `db:"name" json:"name"`
	IsSensitive bool      `db:"is_sensitive" json:"is_sensitive"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
