package validation

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MinTitleLength       = 1
	MaxTitleLength       = 100
	MaxDescriptionLength = 500

	DefaultHistoryLimit = 30
	MaxHistoryLimit     = 100
)

// ValidateTitle validates a habit title
func ValidateTitle(title string) error {
	title = strings.TrimSpace(title)

	if title == "" {
		return fmt.Errorf("title is required")
	}

	if utf8.RuneCountInString(title) > MaxTitleLength {
		return fmt.Errorf("title is too long (max %d characters)", MaxTitleLength)
	}

	return nil
}

// ValidateDescription validates an optional habit description
func ValidateDescription(description *string) error {
	if description == nil {
		return nil
	}

	if utf8.RuneCountInString(*description) > MaxDescriptionLength {
		return fmt.Errorf("description is too long (max %d characters)", MaxDescriptionLength)
	}

	return nil
}

// ValidateTimezone validates an IANA timezone name
func ValidateTimezone(timezone string) error {
	if timezone == "" {
		return fmt.Errorf("timezone is required")
	}

	// time.LoadLocation accepts "Local", which is host dependent
	if timezone == "Local" {
		return fmt.Errorf("invalid timezone %q", timezone)
	}

	if _, err := time.LoadLocation(timezone); err != nil {
		return fmt.Errorf("invalid timezone %q", timezone)
	}

	return nil
}

// NormalizePage clamps history pagination parameters
func NormalizePage(limit, offset int32) (int32, int32) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
