package model

import (
	"time"
)

const (
	RequestStatusPending  = "pending"
	RequestStatusMatched  = "matched"
	RequestStatusCanceled = "canceled"
)

// MatchRequest is a profile's intent to be paired within one category.
// Matched and canceled are terminal.
type MatchRequest struct {
	ID         string     `db:"id" json:"id"`
	ProfileID  string     `db:"profile_id" json:"profile_id"`
	CategoryID string     `db:"category_id" json:"category_id"`
	Status     string     `db:"status" json:"status"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	ResolvedAt *time.Time `db:"resolved_at" json:"resolved_at,omitempty"`
}

func (r *MatchRequest) IsPending() bool {
	return r.Status == RequestStatusPending
}
