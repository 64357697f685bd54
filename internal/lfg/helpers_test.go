package lfg

import (
	"sync"
	"time"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type fakeParties struct {
	members map[PartyID][]PlayerID
	leaders map[PartyID]PlayerID
}

func newFakeParties() *fakeParties {
	return &fakeParties{
		members: map[PartyID][]PlayerID{},
		leaders: map[PartyID]PlayerID{},
	}
}

func (f *fakeParties) add(party PartyID, leader PlayerID, members ...PlayerID) {
	f.members[party] = append([]PlayerID{leader}, members...)
	f.leaders[party] = leader
}

func (f *fakeParties) Members(party PartyID) []PlayerID {
	return append([]PlayerID(nil), f.members[party]...)
}

func (f *fakeParties) PartyOf(player PlayerID) (PartyID, bool) {
	for party, ms := range f.members {
		for _, m := range ms {
			if m == player {
				return party, true
			}
		}
	}
	return "", false
}

func (f *fakeParties) Leader(party PartyID) (PlayerID, bool) {
	l, ok := f.leaders[party]
	return l, ok
}

func fivePlayers() []PlayerID {
	return []PlayerID{"p1", "p2", "p3", "p4", "p5"}
}

func seqIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return "prop-" + string(rune('a'+n-1))
	}
}
