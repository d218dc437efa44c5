// Defines the review status labels.

package wordbook

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownStatus is returned when a label is not one of the known statuses.
var ErrUnknownStatus = errors.New("unknown status")

// Status is a word's review progress label as shown in Notion.
//
// The labels form a progression but any label may be set to any other.
type Status string

const (
	// StatusNotSure is the initial label.
	StatusNotSure Status = "Not sure"
	// StatusSeenIt marks a word recognized at least once.
	StatusSeenIt Status = "Seen it"
	// StatusAlmostThere marks a word nearly learned.
	StatusAlmostThere Status = "Almost there"
	// StatusMastered excludes a word from the review set.
	StatusMastered Status = "Mastered"
)

// Statuses returns all known labels in progression order.
func Statuses() []Status {
	return []Status{StatusNotSure, StatusSeenIt, StatusAlmostThere, StatusMastered}
}

// Valid reports whether s is one of the known labels.
func (s Status) Valid() bool {
	switch s {
	case StatusNotSure, StatusSeenIt, StatusAlmostThere, StatusMastered:
		return true
	default:
		return false
	}
}

// ParseStatus maps a user supplied label to its canonical Status.
//
// Matching ignores case, spaces, dashes and underscores so "seen-it",
// "SeenIt" and "Seen it" are all accepted.
func ParseStatus(s string) (Status, error) {
	key := statusKey(s)
	for _, st := range Statuses() {
		if statusKey(string(st)) == key {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

func statusKey(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch r {
		case ' ', '-', '_', '\t':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
