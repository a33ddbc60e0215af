package player

import "context"

// Repository persists the player collection as a whole snapshot.
// LoadPlayers never fails and returns normalized records; read or decode
// errors are logged by the implementation and yield an empty collection.
type Repository interface {
	LoadPlayers(ctx context.Context) []Player
	SavePlayers(ctx context.Context, players []Player) error
}
