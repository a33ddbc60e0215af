package jsonfile

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/mlbb-squad-tracker/internal/domain/player"
	"github.com/riskibarqy/mlbb-squad-tracker/internal/domain/squad"
	"github.com/riskibarqy/mlbb-squad-tracker/internal/platform/logging"
)

const (
	SquadsFile  = "squads.json"
	PlayersFile = "players.json"

	documentIndent = "    "
)

// Store keeps squads and players as two indented JSON documents under one
// directory. Every save overwrites the whole document.
type Store struct {
	dir    string
	logger *logging.Logger

	mu sync.Mutex
}

func NewStore(dir string, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{dir: dir, logger: logger.Named("jsonfile")}
}

func (s *Store) squadsPath() string  { return filepath.Join(s.dir, SquadsFile) }
func (s *Store) playersPath() string { return filepath.Join(s.dir, PlayersFile) }

// EnsureExists creates the data directory and empty documents when missing.
func (s *Store) EnsureExists(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return crerr.Wrapf(err, "create data dir %s", s.dir)
	}
	for _, path := range []string{s.squadsPath(), s.playersPath()} {
		_, err := os.Stat(path)
		if err == nil {
			continue
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return crerr.Wrapf(err, "stat %s", path)
		}
		if err := writeDocument(path, []byte("[]")); err != nil {
			return err
		}
		s.logger.InfoContext(ctx, "created empty document", "path", path)
	}

	return nil
}

func (s *Store) LoadSquads(ctx context.Context) []squad.Squad {
	var records []squadRecord
	if err := s.readDocument(s.squadsPath(), &records); err != nil {
		s.logger.ErrorContext(ctx, "load squads failed", "path", s.squadsPath(), "error", err)
		return []squad.Squad{}
	}

	out := make([]squad.Squad, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.toDomain())
	}
	return out
}

func (s *Store) SaveSquads(ctx context.Context, squads []squad.Squad) error {
	records := make([]squadRecord, 0, len(squads))
	for _, item := range squads {
		records = append(records, squadToRecord(item))
	}

	if err := s.writeJSON(s.squadsPath(), records); err != nil {
		s.logger.ErrorContext(ctx, "save squads failed", "path", s.squadsPath(), "error", err)
		return crerr.Wrap(err, "write squads document")
	}
	return nil
}

// LoadPlayers returns every stored player with missing profile fields
// back-filled.
func (s *Store) LoadPlayers(ctx context.Context) []player.Player {
	var records []playerRecord
	if err := s.readDocument(s.playersPath(), &records); err != nil {
		s.logger.ErrorContext(ctx, "load players failed", "path", s.playersPath(), "error", err)
		return []player.Player{}
	}

	out := make([]player.Player, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.toDomain())
	}
	return out
}

func (s *Store) SavePlayers(ctx context.Context, players []player.Player) error {
	records := make([]playerRecord, 0, len(players))
	for _, item := range players {
		records = append(records, playerToRecord(item))
	}

	if err := s.writeJSON(s.playersPath(), records); err != nil {
		s.logger.ErrorContext(ctx, "save players failed", "path", s.playersPath(), "error", err)
		return crerr.Wrap(err, "write players document")
	}
	return nil
}

func (s *Store) readDocument(path string, target any) error {
	s.mu.Lock()
	raw, err := os.ReadFile(path)
	s.mu.Unlock()
	if err != nil {
		return crerr.Wrapf(err, "read %s", path)
	}
	if err := sonic.ConfigStd.Unmarshal(raw, target); err != nil {
		return crerr.Wrapf(err, "decode %s", path)
	}
	return nil
}

func (s *Store) writeJSON(path string, value any) error {
	encoded, err := sonic.ConfigStd.MarshalIndent(value, "", documentIndent)
	if err != nil {
		return crerr.Wrapf(err, "encode %s", path)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return writeDocument(path, encoded)
}

// writeDocument replaces path atomically through a temp file in the same dir.
func writeDocument(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return crerr.Wrapf(err, "create temp for %s", path)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return crerr.Wrapf(err, "write %s", tmpName)
	}
	if err := tmp.Close(); err != nil {
		return crerr.Wrapf(err, "close %s", tmpName)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return crerr.Wrapf(err, "replace %s", path)
	}
	return nil
}
