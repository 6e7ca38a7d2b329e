package model

import "time"

const DefaultTimezone = "America/Denver"

type Profile struct {
	ID                     string    `db:"id" json:"id"`
	DisplayName            string    `db:"display_name" json:"display_name"`
	Timezone               string    `db:"timezone" json:"timezone"`
	Bio                    string    `db:"bio" json:"bio"`
	OnboardingComplete     bool      `db:"onboarding_complete" json:"onboarding_complete"`
	IsAvailableForMatching bool      `db:"is_available_for_matching" json:"is_available_for_matching"`
	CreatedAt              time.Time `db:"created_at" json:"created_at"`
	UpdatedAt              time.Time `db:"updated_at" json:"updated_at"`
}
