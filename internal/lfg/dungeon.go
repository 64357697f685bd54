package lfg

import "sort"

// Dungeon is the part of a dungeon entry the LFG state needs.
type Dungeon struct {
	ID       DungeonID
	Category Category
	Name     string
}

// DungeonSet is a set of selectable dungeons plus the category derived from
// them. The category is CategoryNone iff the set is empty; otherwise it is the
// category of the member with the lowest ID. Every mutation recomputes it.
//
// The zero value is an empty set.
type DungeonSet struct {
	dungeons map[DungeonID]Dungeon
	category Category
}

func NewDungeonSet(ds ...Dungeon) DungeonSet {
	var s DungeonSet
	s.Replace(ds...)
	return s
}

// Replace swaps the whole membership.
func (s *DungeonSet) Replace(ds ...Dungeon) {
	s.dungeons = make(map[DungeonID]Dungeon, len(ds))
	for _, d := range ds {
		s.dungeons[d.ID] = d
	}
	s.recompute()
}

func (s *DungeonSet) Add(d Dungeon) {
	if s.dungeons == nil {
		s.dungeons = make(map[DungeonID]Dungeon)
	}
	s.dungeons[d.ID] = d
	s.recompute()
}

func (s *DungeonSet) Remove(id DungeonID) {
	delete(s.dungeons, id)
	s.recompute()
}

func (s *DungeonSet) Clear() {
	s.dungeons = nil
	s.category = CategoryNone
}

func (s DungeonSet) Contains(id DungeonID) bool {
	_, ok := s.dungeons[id]
	return ok
}

func (s DungeonSet) Len() int           { return len(s.dungeons) }
func (s DungeonSet) Category() Category { return s.category }

// IDs returns the member ids in ascending order.
func (s DungeonSet) IDs() []DungeonID {
	ids := make([]DungeonID, 0, len(s.dungeons))
	for id := range s.dungeons {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Dungeons returns a copy of the members ordered by id.
func (s DungeonSet) Dungeons() []Dungeon {
	out := make([]Dungeon, 0, len(s.dungeons))
	for _, id := range s.IDs() {
		out = append(out, s.dungeons[id])
	}
	return out
}

func (s DungeonSet) clone() DungeonSet {
	cp := DungeonSet{category: s.category}
	if s.dungeons != nil {
		cp.dungeons = make(map[DungeonID]Dungeon, len(s.dungeons))
		for k, v := range s.dungeons {
			cp.dungeons[k] = v
		}
	}
	return cp
}

func (s *DungeonSet) recompute() {
	if len(s.dungeons) == 0 {
		s.category = CategoryNone
		return
	}
	first := true
	var low DungeonID
	for id := range s.dungeons {
		if first || id < low {
			low, first = id, false
		}
	}
	s.category = s.dungeons[low].Category
}
