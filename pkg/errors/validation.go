package errors

import (
	"regexp"
	"unicode"
)

// ValidateRegionName validates an authored region name.
// Names are optional; a non-empty name must be printable and short enough to
// be used as a label in rendered output.
func ValidateRegionName(name string) error {
	if name == "" {
		return nil
	}

	if len(name) > 128 {
		return New(ErrCodeInvalidBlueprint, "region name too long (max 128 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidBlueprint, "region name contains invalid control characters")
		}
	}

	return nil
}

// colorRegex matches #RGB, #RRGGBB and #RRGGBBAA hex colors.
var colorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

// ValidateColor validates a display color tag. Empty means "use the default".
func ValidateColor(color string) error {
	if color == "" {
		return nil
	}
	if !colorRegex.MatchString(color) {
		return New(ErrCodeInvalidInput, "invalid color %q (want #RGB, #RRGGBB or #RRGGBBAA)", color)
	}
	return nil
}
