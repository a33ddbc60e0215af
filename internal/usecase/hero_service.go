package usecase

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/riskibarqy/mlbb-squad-tracker/internal/domain/hero"
	"github.com/riskibarqy/mlbb-squad-tracker/internal/platform/logging"
)

type HeroService struct {
	catalog hero.Catalog
	logger  *logging.Logger
	pick    func(n int) int
}

func NewHeroService(catalog hero.Catalog, logger *logging.Logger) *HeroService {
	if logger == nil {
		logger = logging.Default()
	}

	return &HeroService{
		catalog: catalog,
		logger:  logger,
		pick:    rand.IntN,
	}
}

// RandomHero picks one hero from the catalog.
func (s *HeroService) RandomHero(ctx context.Context) (hero.Hero, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.HeroService.RandomHero")
	defer span.End()

	heroes, err := s.catalog.ListHeroes(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "hero catalog unavailable", "error", err)
		return hero.Hero{}, fmt.Errorf("%w: hero catalog: %v", ErrDependencyUnavailable, err)
	}
	if len(heroes) == 0 {
		return hero.Hero{}, fmt.Errorf("%w: hero catalog is empty", ErrNotFound)
	}

	return heroes[s.pick(len(heroes))], nil
}
