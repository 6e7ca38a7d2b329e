package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatch_MemberAndPartners(t *testing.T) {
	m := &Match{
		Status: MatchStatusActive,
		Members: []*MatchMember{
			{ProfileID: "p1"},
			{ProfileID: "p2"},
			{ProfileID: "p3"},
		},
	}

	member, ok := m.Member("p2")
	assert.True(t, ok)
	assert.Equal(t, "p2", member.ProfileID)

	_, ok = m.Member("p4")
	assert.False(t, ok)

	assert.Equal(t, []string{"p1", "p3"}, m.Partners("p2"))
	assert.Equal(t, []string{"p1", "p2", "p3"}, m.Partners("p4"))
	assert.True(t, m.IsActive())
}
