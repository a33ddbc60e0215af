package squad

import "context"

// Repository persists the squad collection as a whole snapshot.
// LoadSquads never fails: read or decode errors are logged by the
// implementation and surface as an empty collection.
type Repository interface {
	LoadSquads(ctx context.Context) []Squad
	SaveSquads(ctx context.Context, squads []Squad) error
}
