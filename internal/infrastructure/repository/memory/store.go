package memory

import (
	"context"
	"sync"

	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/mlbb-squad-tracker/internal/domain/player"
	"github.com/riskibarqy/mlbb-squad-tracker/internal/domain/squad"
)

var ErrSaveRejected = crerr.New("memory store: save rejected")

// Store holds squad and player snapshots in process memory.
type Store struct {
	mu      sync.RWMutex
	squads  []squad.Squad
	players []player.Player

	failSaves   bool
	squadSaves  int
	playerSaves int
}

func NewStore() *Store {
	return &Store{}
}

// Seed replaces both collections.
func (s *Store) Seed(squads []squad.Squad, players []player.Player) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.squads = cloneSquads(squads)
	s.players = clonePlayers(players)
}

// FailSaves makes subsequent saves return ErrSaveRejected.
func (s *Store) FailSaves(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failSaves = fail
}

// SaveCounts reports how many successful saves each collection received.
func (s *Store) SaveCounts() (squads, players int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.squadSaves, s.playerSaves
}

func (s *Store) EnsureExists(_ context.Context) error {
	return nil
}

func (s *Store) LoadSquads(_ context.Context) []squad.Squad {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSquads(s.squads)
}

func (s *Store) SaveSquads(_ context.Context, squads []squad.Squad) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failSaves {
		return ErrSaveRejected
	}
	s.squads = cloneSquads(squads)
	s.squadSaves++
	return nil
}

func (s *Store) LoadPlayers(_ context.Context) []player.Player {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := clonePlayers(s.players)
	for i := range out {
		out[i].Normalize()
	}
	return out
}

func (s *Store) SavePlayers(_ context.Context, players []player.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failSaves {
		return ErrSaveRejected
	}
	s.players = clonePlayers(players)
	s.playerSaves++
	return nil
}

func cloneSquads(in []squad.Squad) []squad.Squad {
	return append(make([]squad.Squad, 0, len(in)), in...)
}

func clonePlayers(in []player.Player) []player.Player {
	out := make([]player.Player, 0, len(in))
	for _, p := range in {
		out = append(out, p.Clone())
	}
	return out
}
