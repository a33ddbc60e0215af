package postgres

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/mlbb-squad-tracker/internal/domain/player"
	"github.com/riskibarqy/mlbb-squad-tracker/internal/domain/squad"
	"github.com/riskibarqy/mlbb-squad-tracker/internal/platform/logging"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS squads (
	name_key    TEXT PRIMARY KEY,
	position    INTEGER NOT NULL,
	name        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	created_by  TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS players (
	id            TEXT PRIMARY KEY,
	position      INTEGER NOT NULL,
	username      TEXT NOT NULL DEFAULT '',
	mlbb_id       TEXT NOT NULL DEFAULT '',
	mlbb_username TEXT NOT NULL DEFAULT '',
	squad         TEXT NULL,
	squad_title   TEXT NULL,
	max_rank      TEXT NOT NULL DEFAULT '',
	win_rate      TEXT NOT NULL DEFAULT '',
	availability  TEXT NOT NULL DEFAULT '',
	roles         JSONB NOT NULL DEFAULT '{}'::jsonb
);`

// Store keeps the squad and player snapshots in two tables. Each save
// replaces the whole table inside one transaction.
type Store struct {
	db        *sqlx.DB
	logger    *logging.Logger
	validator *validator.Validate
}

func NewStore(db *sqlx.DB, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{
		db:        db,
		logger:    logger.Named("postgres"),
		validator: validator.New(),
	}
}

// EnsureExists creates both tables when the migrations have not run.
func (s *Store) EnsureExists(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaDDL); err != nil {
		return fmt.Errorf("ensure registry tables: %w", err)
	}
	return nil
}

func (s *Store) LoadSquads(ctx context.Context) []squad.Squad {
	var rows []squadTableModel
	query := `
SELECT position, name_key, name, description, created_by, created_at
FROM squads
ORDER BY position ASC`
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		s.logger.ErrorContext(ctx, "load squads failed", "error", err)
		return []squad.Squad{}
	}

	out := make([]squad.Squad, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out
}

func (s *Store) SaveSquads(ctx context.Context, squads []squad.Squad) error {
	for _, item := range squads {
		if err := s.validator.StructCtx(ctx, item); err != nil {
			return fmt.Errorf("validate squad %q: %w", item.Name, err)
		}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save squads tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM squads`); err != nil {
		return fmt.Errorf("clear squads: %w", err)
	}

	insert := `
INSERT INTO squads (name_key, position, name, description, created_by, created_at)
VALUES (:name_key, :position, :name, :description, :created_by, :created_at)`
	for i, item := range squads {
		sqlQuery, args, err := sqlx.Named(insert, squadToModel(i, item))
		if err != nil {
			return fmt.Errorf("bind insert squad %q: %w", item.Name, err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(sqlQuery), args...); err != nil {
			return fmt.Errorf("insert squad %q: %w", item.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.ErrorContext(ctx, "save squads failed", "error", err)
		return fmt.Errorf("commit save squads tx: %w", err)
	}
	return nil
}

func (s *Store) LoadPlayers(ctx context.Context) []player.Player {
	var rows []playerTableModel
	query := `
SELECT position, id, username, mlbb_id, mlbb_username, squad, squad_title,
       max_rank, win_rate, availability, roles::text AS roles
FROM players
ORDER BY position ASC`
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		s.logger.ErrorContext(ctx, "load players failed", "error", err)
		return []player.Player{}
	}

	out := make([]player.Player, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out
}

func (s *Store) SavePlayers(ctx context.Context, players []player.Player) error {
	for _, item := range players {
		if err := s.validator.StructCtx(ctx, item); err != nil {
			return fmt.Errorf("validate player %q: %w", item.ID, err)
		}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save players tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM players`); err != nil {
		return fmt.Errorf("clear players: %w", err)
	}

	insert := `
INSERT INTO players (
	id, position, username, mlbb_id, mlbb_username, squad, squad_title,
	max_rank, win_rate, availability, roles
)
VALUES (
	:id, :position, :username, :mlbb_id, :mlbb_username, :squad, :squad_title,
	:max_rank, :win_rate, :availability, CAST(:roles AS JSONB)
)`
	for i, item := range players {
		sqlQuery, args, err := sqlx.Named(insert, playerToModel(i, item))
		if err != nil {
			return fmt.Errorf("bind insert player %q: %w", item.ID, err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(sqlQuery), args...); err != nil {
			return fmt.Errorf("insert player %q: %w", item.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.ErrorContext(ctx, "save players failed", "error", err)
		return fmt.Errorf("commit save players tx: %w", err)
	}
	return nil
}
