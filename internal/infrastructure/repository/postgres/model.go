package postgres

import (
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/mlbb-squad-tracker/internal/domain/player"
	"github.com/riskibarqy/mlbb-squad-tracker/internal/domain/squad"
)

type squadTableModel struct {
	Position    int       `db:"position"`
	NameKey     string    `db:"name_key"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	CreatedBy   string    `db:"created_by"`
	CreatedAt   time.Time `db:"created_at"`
}

type playerTableModel struct {
	Position     int     `db:"position"`
	ID           string  `db:"id"`
	Username     string  `db:"username"`
	MlbbID       string  `db:"mlbb_id"`
	MlbbUsername string  `db:"mlbb_username"`
	Squad        *string `db:"squad"`
	SquadTitle   *string `db:"squad_title"`
	MaxRank      string  `db:"max_rank"`
	WinRate      string  `db:"win_rate"`
	Availability string  `db:"availability"`
	Roles        string  `db:"roles"`
}

func squadToModel(position int, s squad.Squad) squadTableModel {
	return squadTableModel{
		Position:    position,
		NameKey:     squad.NameKey(s.Name),
		Name:        s.Name,
		Description: s.Description,
		CreatedBy:   s.CreatedBy,
		CreatedAt:   s.CreatedAt.UTC(),
	}
}

func (m squadTableModel) toDomain() squad.Squad {
	return squad.Squad{
		Name:        m.Name,
		Description: m.Description,
		CreatedBy:   m.CreatedBy,
		CreatedAt:   m.CreatedAt.UTC(),
	}
}

func playerToModel(position int, p player.Player) playerTableModel {
	roles := make(map[string]string, len(p.PreferredPositions))
	for role, heroes := range p.PreferredPositions {
		roles[string(role)] = heroes
	}

	return playerTableModel{
		Position:     position,
		ID:           p.ID,
		Username:     p.Username,
		MlbbID:       p.MlbbID,
		MlbbUsername: p.MlbbUsername,
		Squad:        nullableString(p.Squad),
		SquadTitle:   nullableString(p.SquadTitle),
		MaxRank:      p.MaxRank,
		WinRate:      p.WinRate,
		Availability: p.Availability,
		Roles:        encodeRoles(roles),
	}
}

func (m playerTableModel) toDomain() player.Player {
	p := player.Player{
		ID:           m.ID,
		Username:     m.Username,
		MlbbID:       m.MlbbID,
		MlbbUsername: m.MlbbUsername,
		MaxRank:      m.MaxRank,
		WinRate:      m.WinRate,
		Availability: m.Availability,
	}
	if m.Squad != nil {
		p.Squad = *m.Squad
	}
	if m.SquadTitle != nil {
		p.SquadTitle = *m.SquadTitle
	}
	roles := decodeRoles(m.Roles)
	p.PreferredPositions = make(map[player.PreferredRole]string, len(roles))
	for role, heroes := range roles {
		p.PreferredPositions[player.PreferredRole(role)] = heroes
	}
	p.Normalize()
	return p
}

func nullableString(value string) *string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	v := value
	return &v
}

func encodeRoles(value map[string]string) string {
	if len(value) == 0 {
		return "{}"
	}
	encoded, err := sonic.Marshal(value)
	if err != nil {
		return "{}"
	}
	return string(encoded)
}

func decodeRoles(raw string) map[string]string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return map[string]string{}
	}
	out := make(map[string]string)
	if err := sonic.Unmarshal([]byte(raw), &out); err != nil {
		return map[string]string{}
	}
	return out
}
