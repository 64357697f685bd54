package app

import (
	"sort"

	"github.com/jose-valero/lfg-bot/internal/lfg"
)

// Catalog resolves dungeon ids to their metadata.
type Catalog map[lfg.DungeonID]lfg.Dungeon

// DefaultCatalog is the built-in dungeon list used when no other source is
// configured.
func DefaultCatalog() Catalog {
	return NewCatalog(
		lfg.Dungeon{ID: 1, Category: lfg.CategoryRandom, Name: "Random Dungeon"},
		lfg.Dungeon{ID: 2, Category: lfg.CategoryRandom, Name: "Random Heroic"},
		lfg.Dungeon{ID: 10, Category: lfg.CategoryDungeon, Name: "Ragefire Chasm"},
		lfg.Dungeon{ID: 11, Category: lfg.CategoryDungeon, Name: "Deadmines"},
		lfg.Dungeon{ID: 12, Category: lfg.CategoryDungeon, Name: "Shadowfang Keep"},
		lfg.Dungeon{ID: 20, Category: lfg.CategoryHeroic, Name: "Utgarde Keep (Heroic)"},
		lfg.Dungeon{ID: 21, Category: lfg.CategoryHeroic, Name: "The Nexus (Heroic)"},
		lfg.Dungeon{ID: 30, Category: lfg.CategoryRaid, Name: "Naxxramas"},
	)
}

func NewCatalog(ds ...lfg.Dungeon) Catalog {
	c := make(Catalog, len(ds))
	for _, d := range ds {
		c[d.ID] = d
	}
	return c
}

// Lookup resolves every id, failing on the first unknown one.
func (c Catalog) Lookup(ids ...lfg.DungeonID) ([]lfg.Dungeon, error) {
	out := make([]lfg.Dungeon, 0, len(ids))
	for _, id := range ids {
		d, ok := c[id]
		if !ok {
			return nil, ErrUnknownDungeon
		}
		out = append(out, d)
	}
	return out, nil
}

// Sorted lists the catalog by id.
func (c Catalog) Sorted() []lfg.Dungeon {
	out := make([]lfg.Dungeon, 0, len(c))
	for _, d := range c {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
