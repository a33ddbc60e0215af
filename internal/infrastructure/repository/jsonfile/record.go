package jsonfile

import (
	"bytes"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/mlbb-squad-tracker/internal/domain/player"
	"github.com/riskibarqy/mlbb-squad-tracker/internal/domain/squad"
)

// flexString accepts either a JSON string or a bare number. Platform ids in
// older documents were written as integers.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := sonic.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	for _, c := range data {
		if (c < '0' || c > '9') && c != '-' {
			return crerr.Newf("unexpected id literal %q", string(data))
		}
	}
	*f = flexString(data)
	return nil
}

var createdAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

type squadRecord struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	CreatedBy   flexString `json:"created_by"`
	CreatedAt   string     `json:"created_at"`
}

func (r squadRecord) toDomain() squad.Squad {
	return squad.Squad{
		Name:        r.Name,
		Description: r.Description,
		CreatedBy:   string(r.CreatedBy),
		CreatedAt:   parseCreatedAt(r.CreatedAt),
	}
}

func squadToRecord(s squad.Squad) squadRecord {
	createdAt := ""
	if !s.CreatedAt.IsZero() {
		createdAt = s.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	return squadRecord{
		Name:        s.Name,
		Description: s.Description,
		CreatedBy:   flexString(s.CreatedBy),
		CreatedAt:   createdAt,
	}
}

func parseCreatedAt(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

type playerRecord struct {
	ID           flexString        `json:"id"`
	Username     string            `json:"username"`
	MlbbID       flexString        `json:"mlbb_id"`
	MlbbUsername string            `json:"mlbb_username"`
	Squad        *string           `json:"squad"`
	Role         *string           `json:"role,omitempty"`
	MaxRank      string            `json:"max_rank,omitempty"`
	WinRate      string            `json:"win_rate,omitempty"`
	Availability string            `json:"availability,omitempty"`
	Roles        map[string]string `json:"roles"`
}

func (r playerRecord) toDomain() player.Player {
	p := player.Player{
		ID:           string(r.ID),
		Username:     r.Username,
		MlbbID:       string(r.MlbbID),
		MlbbUsername: r.MlbbUsername,
		MaxRank:      r.MaxRank,
		WinRate:      r.WinRate,
		Availability: r.Availability,
	}
	if r.Squad != nil {
		p.Squad = *r.Squad
	}
	if r.Role != nil {
		p.SquadTitle = *r.Role
	}
	if r.Roles != nil {
		p.PreferredPositions = make(map[player.PreferredRole]string, len(r.Roles))
		for role, heroes := range r.Roles {
			p.PreferredPositions[player.PreferredRole(role)] = heroes
		}
	}
	p.Normalize()
	return p
}

func playerToRecord(p player.Player) playerRecord {
	squadName := p.Squad
	rec := playerRecord{
		ID:           flexString(p.ID),
		Username:     p.Username,
		MlbbID:       flexString(p.MlbbID),
		MlbbUsername: p.MlbbUsername,
		Squad:        &squadName,
		MaxRank:      p.MaxRank,
		WinRate:      p.WinRate,
		Availability: p.Availability,
		Roles:        make(map[string]string, len(p.PreferredPositions)),
	}
	if p.SquadTitle != "" {
		title := p.SquadTitle
		rec.Role = &title
	}
	for role, heroes := range p.PreferredPositions {
		rec.Roles[string(role)] = heroes
	}
	return rec
}
