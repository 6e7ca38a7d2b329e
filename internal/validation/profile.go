package validation

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

const (
	MaxDisplayNameLength = 40
	MaxBioLength         = 240
)

// ValidateDisplayName validates profile display name
func ValidateDisplayName(name string) error {
	return ValidateRequired("display name", name, MaxDisplayNameLength)
}

func ValidateBio(bio string) error {
	return ValidateText("bio", bio, MaxBioLength)
}

// ValidateTimezone accepts IANA zone names known to the runtime.
func ValidateTimezone(tz string) error {
	if tz == "" {
		return nil
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return fmt.Errorf("%w: unknown timezone %q", ErrInvalid, tz)
	}
	return nil
}
