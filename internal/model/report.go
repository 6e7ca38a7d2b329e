package model

import "time"

type Report struct {
	ID         string    `db:"id" json:"id"`
	ReporterID string    `db:"reporter_id" json:"reporter_id"`
	ReportedID string    `db:"reported_id" json:"reported_id"`
	MatchID    *string   `db:"match_id" json:"match_id,omitempty"`
	Reason     string    `db:"reason" json:"reason"`
	Details    string    `db:"details" json:"details"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
