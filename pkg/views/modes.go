package views

import (
	"fmt"
	"strings"
)

// RefreshMode decides if a materialized view is refreshed concurrently.
type RefreshMode int

const (
	// RefreshAuto refreshes concurrently when the view is populated, the
	// server supports it and the view has a unique index.
	RefreshAuto RefreshMode = iota
	// RefreshNever always refreshes with an exclusive lock.
	RefreshNever
	// RefreshAlways always refreshes concurrently.
	RefreshAlways
)

func (m RefreshMode) String() string {
	switch m {
	case RefreshNever:
		return "never"
	case RefreshAlways:
		return "always"
	default:
		return "auto"
	}
}

// ParseRefreshMode converts "never", "always" or "auto" to RefreshMode.
func ParseRefreshMode(s string) (RefreshMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "never":
		return RefreshNever, nil
	case "always":
		return RefreshAlways, nil
	case "auto", "":
		return RefreshAuto, nil
	}
	return RefreshAuto, fmt.Errorf("unknown refresh mode '%s'", s)
}

// Mode decides when declarations are applied.
type Mode int

const (
	// ModeApply runs DDL as soon as a view is declared.
	ModeApply Mode = iota
	// ModeEnqueue keeps declarations until Flush.
	ModeEnqueue
)

func (m Mode) String() string {
	if m == ModeEnqueue {
		return "enqueue"
	}
	return "apply"
}

// ParseMode converts "apply" or "enqueue" to Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "apply", "":
		return ModeApply, nil
	case "enqueue":
		return ModeEnqueue, nil
	}
	return ModeApply, fmt.Errorf("unknown views mode '%s'", s)
}
