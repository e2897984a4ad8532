package validate

import (
	"strings"

	"github.com/google/uuid"
)

func Required(value string) bool {
	return strings.TrimSpace(value) != ""
}

// Key reports whether value is a non-blank identifier of at most maxLen bytes.
func Key(value string, maxLen int) bool {
	value = strings.TrimSpace(value)
	return value != "" && len(value) <= maxLen
}

func UUID(value string) bool {
	_, err := uuid.Parse(strings.TrimSpace(value))
	return err == nil
}
