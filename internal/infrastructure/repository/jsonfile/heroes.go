package jsonfile

import (
	"context"
	"os"
	"sort"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/mlbb-squad-tracker/internal/domain/hero"
)

type heroDocument struct {
	Heroes map[string]struct {
		Image string `json:"image"`
	} `json:"heroes"`
}

// HeroCatalog reads heroes from a document shaped
// {"heroes": {"<name>": {"image": "<url>"}}}.
type HeroCatalog struct {
	path string
}

func NewHeroCatalog(path string) *HeroCatalog {
	return &HeroCatalog{path: path}
}

// ListHeroes returns the heroes sorted by name.
func (c *HeroCatalog) ListHeroes(_ context.Context) ([]hero.Hero, error) {
	raw, err := os.ReadFile(c.path)
	if err != nil {
		return nil, crerr.Wrapf(err, "read hero catalog %s", c.path)
	}

	var doc heroDocument
	if err := sonic.Unmarshal(raw, &doc); err != nil {
		return nil, crerr.Wrapf(err, "decode hero catalog %s", c.path)
	}

	out := make([]hero.Hero, 0, len(doc.Heroes))
	for name, entry := range doc.Heroes {
		out = append(out, hero.Hero{Name: name, Image: entry.Image})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
