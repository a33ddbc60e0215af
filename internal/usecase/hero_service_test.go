package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/mlbb-squad-tracker/internal/domain/hero"
)

type stubCatalog struct {
	heroes []hero.Hero
	err    error
}

func (c stubCatalog) ListHeroes(context.Context) ([]hero.Hero, error) {
	return c.heroes, c.err
}

func TestHeroService_RandomHero(t *testing.T) {
	t.Parallel()

	catalog := stubCatalog{heroes: []hero.Hero{{Name: "Layla"}, {Name: "Miya"}, {Name: "Tigreal"}}}
	svc := NewHeroService(catalog, nil)
	svc.pick = func(n int) int { return n - 1 }

	got, err := svc.RandomHero(t.Context())
	if err != nil {
		t.Fatalf("random hero: %v", err)
	}
	if got.Name != "Tigreal" {
		t.Fatalf("unexpected hero: %+v", got)
	}
}

func TestHeroService_RandomHeroErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		catalog stubCatalog
		want    error
	}{
		{name: "empty", catalog: stubCatalog{}, want: ErrNotFound},
		{name: "unreadable", catalog: stubCatalog{err: errors.New("no file")}, want: ErrDependencyUnavailable},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewHeroService(tc.catalog, nil).RandomHero(t.Context())
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}
