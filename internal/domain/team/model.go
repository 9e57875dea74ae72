package team

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

var (
	ErrNotFound      = errors.New("team not found")
	ErrAlreadyExists = errors.New("team already exists")
)

// Bracket is the competitive tier a team plays in.
type Bracket string

const (
	BracketBeginner Bracket = "beginner"
	BracketAdvanced Bracket = "advanced"
)

func ParseBracket(v string) (Bracket, error) {
	switch b := Bracket(strings.ToLower(strings.TrimSpace(v))); b {
	case BracketBeginner, BracketAdvanced:
		return b, nil
	default:
		return "", fmt.Errorf("invalid bracket %q: valid values are %s, %s", v, BracketBeginner, BracketAdvanced)
	}
}

// Team is a competing group of users. ActiveVersion is the object key of the
// submission entered into matches, empty until a bot is activated.
type Team struct {
	Name          string
	Bracket       Bracket
	Members       []string
	ActiveVersion string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (t Team) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("team name is required")
	}
	if _, err := ParseBracket(string(t.Bracket)); err != nil {
		return err
	}
	if len(t.Members) == 0 {
		return fmt.Errorf("team must have at least one member")
	}

	return nil
}

func (t Team) HasActiveVersion() bool {
	return strings.TrimSpace(t.ActiveVersion) != ""
}

func (t Team) HasMember(username string) bool {
	return slices.Contains(t.Members, username)
}
