package validation

import (
	"fmt"
	"regexp"
)

const (
	MaxSlugLength         = 40
	MaxCategoryNameLength = 60
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// ValidateSlug accepts lowercase words separated by single hyphens, e.g. "gym"
// or "quit-smoking".
func ValidateSlug(slug string) error {
	if slug == "" {
		return fmt.Errorf("%w: slug is required", ErrInvalid)
	}
	if len(slug) > MaxSlugLength {
		return fmt.Errorf("%w: slug is too long (max %d characters)", ErrInvalid, MaxSlugLength)
	}
	if !slugPattern.MatchString(slug) {
		return fmt.Errorf("%w: slug must be lowercase letters, digits and hyphens", ErrInvalid)
	}
	return nil
}

func ValidateCategoryName(name string) error {
	return ValidateRequired("name", name, MaxCategoryNameLength)
}
