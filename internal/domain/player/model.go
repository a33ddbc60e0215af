package player

import (
	"fmt"
	"strings"
)

// PreferredRole is one of the in-game lanes a player lists heroes against.
// It is unrelated to the title a player holds inside a squad.
type PreferredRole string

const (
	RoleGold   PreferredRole = "gold"
	RoleExp    PreferredRole = "exp"
	RoleMid    PreferredRole = "mid"
	RoleJungle PreferredRole = "jungle"
	RoleRoam   PreferredRole = "roam"
)

// PreferredRoles lists the lanes in display order.
var PreferredRoles = []PreferredRole{RoleGold, RoleExp, RoleMid, RoleJungle, RoleRoam}

var AllPreferredRoles = map[PreferredRole]struct{}{
	RoleGold:   {},
	RoleExp:    {},
	RoleMid:    {},
	RoleJungle: {},
	RoleRoam:   {},
}

const (
	DefaultMaxRank      = "Unranked"
	DefaultWinRate      = "Unknown"
	DefaultAvailability = "Not specified"
	DefaultSquadTitle   = "Member"

	// ClearSquadValue is the value that removes a squad assignment.
	ClearSquadValue = "none"
)

// ParsePreferredRole normalizes raw and reports whether it names a lane.
func ParsePreferredRole(raw string) (PreferredRole, bool) {
	role := PreferredRole(strings.ToLower(strings.TrimSpace(raw)))
	_, ok := AllPreferredRoles[role]
	return role, ok
}

// Player is a registered community member tied to one platform account and
// one MLBB account.
type Player struct {
	ID                 string                   `json:"id" validate:"required"`
	Username           string                   `json:"username"`
	MlbbID             string                   `json:"mlbb_id"`
	MlbbUsername       string                   `json:"mlbb_username"`
	Squad              string                   `json:"squad"`
	SquadTitle         string                   `json:"role,omitempty"`
	MaxRank            string                   `json:"max_rank,omitempty"`
	WinRate            string                   `json:"win_rate,omitempty"`
	Availability       string                   `json:"availability,omitempty"`
	PreferredPositions map[PreferredRole]string `json:"roles,omitempty"`
}

// New builds a fully defaulted player record.
func New(id, username, mlbbID, mlbbUsername string) Player {
	p := Player{
		ID:           id,
		Username:     username,
		MlbbID:       mlbbID,
		MlbbUsername: mlbbUsername,
	}
	p.Normalize()
	return p
}

// Normalize back-fills the optional profile fields with their defaults.
func (p *Player) Normalize() {
	if p.MaxRank == "" {
		p.MaxRank = DefaultMaxRank
	}
	if p.WinRate == "" {
		p.WinRate = DefaultWinRate
	}
	if p.Availability == "" {
		p.Availability = DefaultAvailability
	}
	if p.PreferredPositions == nil {
		p.PreferredPositions = make(map[PreferredRole]string)
	}
}

func (p Player) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("player id is required")
	}
	for role := range p.PreferredPositions {
		if _, ok := AllPreferredRoles[role]; !ok {
			return fmt.Errorf("invalid preferred role: %s", role)
		}
	}

	return nil
}

// IsFreeAgent reports whether the player has no squad assignment.
func (p Player) IsFreeAgent() bool {
	return strings.TrimSpace(p.Squad) == ""
}

// InSquad reports whether the player belongs to the named squad.
func (p Player) InSquad(name string) bool {
	return strings.ToLower(p.Squad) == strings.ToLower(name)
}

// LeaveSquad clears every squad-scoped field.
func (p *Player) LeaveSquad() {
	p.Squad = ""
	p.SquadTitle = ""
}

// DisplaySquadTitle returns the squad title or the default one.
func (p Player) DisplaySquadTitle() string {
	if strings.TrimSpace(p.SquadTitle) == "" {
		return DefaultSquadTitle
	}
	return p.SquadTitle
}

// HasPreferredRole reports whether role is listed on the profile.
func (p Player) HasPreferredRole(role PreferredRole) bool {
	_, ok := p.PreferredPositions[role]
	return ok
}

// Clone returns a deep copy.
func (p Player) Clone() Player {
	copied := p
	if p.PreferredPositions != nil {
		copied.PreferredPositions = make(map[PreferredRole]string, len(p.PreferredPositions))
		for role, heroes := range p.PreferredPositions {
			copied.PreferredPositions[role] = heroes
		}
	}
	return copied
}

// NormalizeWinRate appends a percent sign unless one is already present.
func NormalizeWinRate(raw string) string {
	if strings.HasSuffix(raw, "%") {
		return raw
	}
	return raw + "%"
}

// IndexByID returns the position of the player with id, or -1.
func IndexByID(players []Player, id string) int {
	for i := range players {
		if players[i].ID == id {
			return i
		}
	}

	return -1
}
