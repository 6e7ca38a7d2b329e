package model

import (
	"time"
)

const (
	CheckInDidIt   = "did_it"
	CheckInPartial = "partial"
	CheckInMissed  = "missed"
)

// DateLayout is the civil date format of CheckIn.CheckinDate.
const DateLayout = "2006-01-02"

type CheckIn struct {
	ID          string    `db:"id" json:"id"`
	MatchID     string    `db:"match_id" json:"match_id"`
	ProfileID   string    `db:"profile_id" json:"profile_id"`
	CategoryID  string    `db:"category_id" json:"category_id"`
	CheckinDate string    `db:"checkin_date" json:"checkin_date"`
	Result      string    `db:"result" json:"result"`
	Note        string    `db:"note" json:"note"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

func ValidCheckInResult(result string) bool {
	switch result {
	case CheckInDidIt, CheckInPartial, CheckInMissed:
		return true
	}
	return false
}
