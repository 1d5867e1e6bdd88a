package validation

import (
	"fmt"
	"regexp"
	"strings"
)

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

func MaxLen(field, value string, maxLen int, v Violations) {
	if len(value) > maxLen {
		v[field] = fmt.Sprintf("longer_than_%d", maxLen)
	}
}

func OneOf(field, value string, allowed []string, v Violations) {
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	v[field] = "invalid_value"
}

// Username enforces the account naming rules: 3-50 chars, alphanumerics and
// underscore only.
func Username(field, value string, v Violations) {
	if len(value) < 3 || len(value) > 50 {
		v[field] = "must_be_3_to_50_chars"
		return
	}
	if !usernameRe.MatchString(value) {
		v[field] = "invalid_characters"
	}
}

// Password enforces the minimum password length.
func Password(field, value string, v Violations) {
	if len(value) < 6 {
		v[field] = "must_be_at_least_6_chars"
	}
}
