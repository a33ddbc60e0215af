package hero

import "context"

// Hero is a playable MLBB character.
type Hero struct {
	Name  string
	Image string
}

// Catalog lists the known heroes.
type Catalog interface {
	ListHeroes(ctx context.Context) ([]Hero, error)
}
