package models

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var ErrInvalidStatus = errors.New("invalid status")

type Status string

const (
	StatusAvailable Status = "available"
	StatusBusy      Status = "busy"
	StatusAway      Status = "away"
	StatusOffline   Status = "offline"
)

// DefaultStatus is the status a user starts with before their first update.
const DefaultStatus = StatusAvailable

// AllStatuses lists the statuses in the order the roster controls show them.
var AllStatuses = []Status{StatusAvailable, StatusBusy, StatusAway, StatusOffline}

func (s Status) String() string {
	return string(s)
}

func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusBusy, StatusAway, StatusOffline:
		return true
	}
	return false
}

// ParseStatus is used on the write path. Unknown values are rejected.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	return s, nil
}

// NormalizeStatus is used on the read path, where the store does not enforce
// the enum. Unknown values read back as offline; ok reports whether raw was valid.
func NormalizeStatus(raw string) (s Status, ok bool) {
	s, err := ParseStatus(raw)
	if err != nil {
		return StatusOffline, false
	}
	return s, true
}

// Display holds everything a view needs to draw a status.
type Display struct {
	Icon  string
	Color string
	Label string
}

// Casers are stateful, so labels are computed once and shared read-only.
var statusLabels = func() map[Status]string {
	caser := cases.Title(language.English)
	labels := make(map[Status]string, len(AllStatuses))
	for _, s := range AllStatuses {
		labels[s] = caser.String(string(s))
	}
	return labels
}()

// Display maps each status to its icon and colour. Every Status has exactly one
// entry; invalid values fall back to the offline appearance.
func (s Status) Display() Display {
	switch s {
	case StatusAvailable:
		return Display{Icon: "sun", Color: "green", Label: statusLabels[s]}
	case StatusBusy:
		return Display{Icon: "activity", Color: "red", Label: statusLabels[s]}
	case StatusAway:
		return Display{Icon: "coffee", Color: "yellow", Label: statusLabels[s]}
	default:
		return Display{Icon: "moon", Color: "gray", Label: statusLabels[StatusOffline]}
	}
}
