package catalog

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

const (
	maxNameLen        = 100
	maxTypeLen        = 50
	maxSizeLen        = 50
	maxDescriptionLen = 500
	maxImageURLLen    = 2000
)

// namePattern permits Latin and Cyrillic letters, digits, whitespace and
// the punctuation that shows up in real part names.
var namePattern = regexp.MustCompile(`^[A-Za-zА-Яа-я0-9\s\-_,\.]+$`)

// ValidateName checks a part name against length and character rules.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("name must not be empty")
	}
	if len(name) > maxNameLen {
		return fmt.Errorf("name must be at most %d characters", maxNameLen)
	}
	if !namePattern.MatchString(name) {
		return fmt.Errorf("name contains unsupported characters")
	}
	return nil
}

// ValidateQuantity parses and bounds a quantity string.
func ValidateQuantity(s string, max int) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("quantity must be a whole number")
	}
	if n < 0 || n > max {
		return 0, fmt.Errorf("quantity must be between 0 and %d", max)
	}
	return n, nil
}

// ValidateField checks a single named field value against the category
// schema. Quantity strings are validated separately with ValidateQuantity.
func ValidateField(field, value string, maxQuantity int) error {
	value = strings.TrimSpace(value)
	switch field {
	case "name":
		return ValidateName(value)
	case "type":
		if len(value) > maxTypeLen {
			return fmt.Errorf("type must be at most %d characters", maxTypeLen)
		}
	case "size":
		if len(value) > maxSizeLen {
			return fmt.Errorf("size must be at most %d characters", maxSizeLen)
		}
	case "quantity":
		_, err := ValidateQuantity(value, maxQuantity)
		return err
	case "image_url":
		if value == "" {
			return nil
		}
		if len(value) > maxImageURLLen {
			return fmt.Errorf("image URL must be at most %d characters", maxImageURLLen)
		}
		u, err := url.Parse(value)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("image URL must be a valid absolute URL")
		}
	case "description":
		if len(value) > maxDescriptionLen {
			return fmt.Errorf("description must be at most %d characters", maxDescriptionLen)
		}
	default:
		return fmt.Errorf("unknown field %q", field)
	}
	return nil
}
