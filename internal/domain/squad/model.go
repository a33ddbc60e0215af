package squad

import (
	"fmt"
	"strings"
	"time"
)

const DefaultDescription = "No description provided"

// Squad is a named community team. Name is the identity and compares
// case-insensitively.
type Squad struct {
	Name        string    `json:"name" validate:"required,max=100"`
	Description string    `json:"description" validate:"max=1024"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// Summary pairs a squad with its current member count.
type Summary struct {
	Squad       Squad
	MemberCount int
}

func (s Squad) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("squad name is required")
	}
	if s.CreatedAt.IsZero() {
		return fmt.Errorf("squad created_at is required")
	}

	return nil
}

// Matches reports whether name refers to this squad.
func (s Squad) Matches(name string) bool {
	return NameKey(s.Name) == NameKey(name)
}

// NameKey normalizes a squad name for comparisons.
func NameKey(name string) string {
	return strings.ToLower(name)
}

// IndexByName returns the position of the squad matching name, or -1.
func IndexByName(squads []Squad, name string) int {
	for i := range squads {
		if squads[i].Matches(name) {
			return i
		}
	}

	return -1
}
