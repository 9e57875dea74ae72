package submission

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrAlreadyExists = errors.New("submission already exists")

// Submission is an uploaded bot file. Records are immutable; only the owning
// team's active version pointer moves between them.
type Submission struct {
	ObjectKey    string
	Team         string
	UploadedName string
	CreatedAt    time.Time
}

func (s Submission) Validate() error {
	if strings.TrimSpace(s.ObjectKey) == "" {
		return fmt.Errorf("submission object key is required")
	}
	if strings.TrimSpace(s.Team) == "" {
		return fmt.Errorf("submission team is required")
	}
	if !strings.HasPrefix(s.ObjectKey, KeyPrefix(s.Team)) {
		return fmt.Errorf("submission object key %q is outside team prefix", s.ObjectKey)
	}

	return nil
}

// KeyPrefix is the object store prefix every key of a team's submissions starts with.
func KeyPrefix(team string) string {
	return team + "/"
}
