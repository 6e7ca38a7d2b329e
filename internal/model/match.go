package model

import (
	"time"
)

const (
	MatchStatusActive = "active"
	MatchStatusEnded  = "ended"
)

type Match struct {
	ID         string     `db:"id" json:"id"`
	CategoryID string     `db:"category_id" json:"category_id"`
	Status     string     `db:"status" json:"status"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	EndedAt    *time.Time `db:"ended_at" json:"ended_at,omitempty"`
	EndReason  string     `db:"end_reason" json:"end_reason,omitempty"`

	Members []*MatchMember `db:"-" json:"members,omitempty"`
}

func (m *Match) IsActive() bool {
	return m.Status == MatchStatusActive
}

func (m *Match) Member(profileID string) (*MatchMember, bool) {
	for _, member := range m.Members {
		if member.ProfileID == profileID {
			return member, true
		}
	}
	return nil, false
}

// Partners returns the other members of the match.
func (m *Match) Partners(profileID string) []string {
	var ids []string
	for _, member := range m.Members {
		if member.ProfileID != profileID {
			ids = append(ids, member.ProfileID)
		}
	}
	return ids
}

type MatchMember struct {
	MatchID   string    `db:"match_id" json:"match_id"`
	ProfileID string    `db:"profile_id" json:"profile_id"`
	JoinedAt  time.Time `db:"joined_at" json:"joined_at"`
}
