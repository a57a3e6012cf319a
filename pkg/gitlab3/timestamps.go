package gitlab3

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// TimestampFields lists the payload fields that carry timestamps.
var TimestampFields = map[string]bool{
	"created_at":       true,
	"updated_at":       true,
	"last_activity_at": true,
	"expires_at":       true,
	"closed_at":        true,
	"merged_at":        true,
	"due_date":         true,
	"committed_date":   true,
	"authored_date":    true,
}

// IsTimestampField reports whether name is one of TimestampFields.
func IsTimestampField(name string) bool {
	return TimestampFields[name]
}

// ParseTimestamp parses the timestamps GitLab emits: RFC 3339 with a "Z" or
// "+HH:MM" offset and an optional fraction, or a plain date.
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, Errorf(KindInvalidArgument, "empty timestamp")
	}

	parsed, err := cast.ToTimeE(value)
	if err != nil {
		return time.Time{}, &Error{Kind: KindInvalidArgument, Message: fmt.Sprintf("parsing timestamp %q", value), Err: err}
	}

	return parsed, nil
}
