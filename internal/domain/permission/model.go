package permission

import (
	"fmt"
	"strings"
	"time"
)

// Flag names a user-facing action that admins can switch off.
type Flag string

const (
	FlagBracketSwitching  Flag = "bracket_switching"
	FlagTeamModifications Flag = "team_modifications"
	FlagScrimmageRequests Flag = "scrimmage_requests"
	FlagCodeSubmissions   Flag = "code_submissions"
)

func AllFlags() []Flag {
	return []Flag{FlagBracketSwitching, FlagTeamModifications, FlagScrimmageRequests, FlagCodeSubmissions}
}

func ParseFlag(v string) (Flag, error) {
	f := Flag(strings.ToLower(strings.TrimSpace(v)))
	for _, known := range AllFlags() {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown permission flag %q", v)
}

// Flags is the singleton toggle record. Flags are independent booleans.
type Flags struct {
	BracketSwitching  bool
	TeamModifications bool
	ScrimmageRequests bool
	CodeSubmissions   bool
	UpdatedAt         time.Time
}

// DefaultFlags is used when the config record has never been written.
func DefaultFlags() Flags {
	return Flags{
		BracketSwitching:  true,
		TeamModifications: true,
		ScrimmageRequests: true,
		CodeSubmissions:   true,
	}
}

func (f Flags) Enabled(flag Flag) bool {
	switch flag {
	case FlagBracketSwitching:
		return f.BracketSwitching
	case FlagTeamModifications:
		return f.TeamModifications
	case FlagScrimmageRequests:
		return f.ScrimmageRequests
	case FlagCodeSubmissions:
		return f.CodeSubmissions
	default:
		return false
	}
}

// With returns a copy with updates applied; untouched flags keep their value.
func (f Flags) With(updates map[Flag]bool) Flags {
	out := f
	for flag, enabled := range updates {
		switch flag {
		case FlagBracketSwitching:
			out.BracketSwitching = enabled
		case FlagTeamModifications:
			out.TeamModifications = enabled
		case FlagScrimmageRequests:
			out.ScrimmageRequests = enabled
		case FlagCodeSubmissions:
			out.CodeSubmissions = enabled
		}
	}
	return out
}

func (f Flags) AsMap() map[Flag]bool {
	out := make(map[Flag]bool, 4)
	for _, flag := range AllFlags() {
		out[flag] = f.Enabled(flag)
	}
	return out
}
