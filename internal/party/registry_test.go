package party

import (
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jose-valero/lfg-bot/internal/lfg"
)

func seqRegistry() *Registry {
	r := NewRegistry()
	n := 0
	r.newID = func() string {
		n++
		return fmt.Sprintf("party-%d", n)
	}
	return r
}

func TestRegistry_Form(t *testing.T) {
	r := seqRegistry()

	id, err := r.Form("A", "B", "B", "C")
	require.NoError(t, err)
	require.Equal(t, []lfg.PlayerID{"A", "B", "C"}, r.Members(id))

	leader, ok := r.Leader(id)
	require.True(t, ok)
	require.Equal(t, lfg.PlayerID("A"), leader)

	got, ok := r.PartyOf("C")
	require.True(t, ok)
	require.Equal(t, id, got)

	_, err = r.Form("C", "D")
	require.ErrorIs(t, err, ErrInParty)
	_, ok = r.PartyOf("D")
	require.False(t, ok, "a refused form must not touch the roster")

	_, err = r.Form()
	require.ErrorIs(t, err, ErrEmptyParty)
	_, err = r.Form("1", "2", "3", "4", "5", "6")
	require.ErrorIs(t, err, ErrPartyFull)
	_, err = r.Form("")
	require.ErrorIs(t, err, ErrEmptyPlayer)
}

func TestRegistry_Invite(t *testing.T) {
	r := seqRegistry()

	id, err := r.Invite("lead", "p2")
	require.NoError(t, err)
	require.Equal(t, []lfg.PlayerID{"lead", "p2"}, r.Members(id))

	_, err = r.Invite("p2", "p3")
	require.ErrorIs(t, err, ErrNotLeader)
	_, err = r.Invite("lead", "p2")
	require.ErrorIs(t, err, ErrInParty)

	for _, p := range []lfg.PlayerID{"p3", "p4", "p5"} {
		_, err = r.Invite("lead", p)
		require.NoError(t, err)
	}
	_, err = r.Invite("lead", "p6")
	require.ErrorIs(t, err, ErrPartyFull)
	require.Equal(t, MaxSize, r.Size(id))
}

func TestRegistry_RemovePassesLeadership(t *testing.T) {
	r := seqRegistry()
	id, _ := r.Form("A", "B", "C")

	left, alive, err := r.Remove("A")
	require.NoError(t, err)
	require.Equal(t, id, left)
	require.True(t, alive)
	leader, _ := r.Leader(id)
	require.Equal(t, lfg.PlayerID("B"), leader)

	_, _, err = r.Remove("A")
	require.ErrorIs(t, err, ErrNotInParty)

	_, _, _ = r.Remove("B")
	_, alive, _ = r.Remove("C")
	require.False(t, alive)
	require.Nil(t, r.Members(id))
	_, ok := r.Leader(id)
	require.False(t, ok)
}

func TestRegistry_Disband(t *testing.T) {
	r := seqRegistry()
	id, _ := r.Form("A", "B")

	require.NoError(t, r.Disband(id))
	require.ErrorIs(t, r.Disband(id), ErrNotFound)
	_, ok := r.PartyOf("A")
	require.False(t, ok)

	_, err := r.Form("A", "B")
	require.NoError(t, err)
}

func TestRegistry_RaceRandomOps(t *testing.T) {
	r := NewRegistry()
	players := []lfg.PlayerID{"a", "b", "c", "d", "e", "f", "g", "h"}

	var wg sync.WaitGroup
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for j := 0; j < 200; j++ {
				p := players[rng.Intn(len(players))]
				q := players[rng.Intn(len(players))]
				switch rng.Intn(4) {
				case 0:
					_, _ = r.Invite(p, q)
				case 1:
					_, _, _ = r.Remove(p)
				case 2:
					_, _ = r.Form(p, q)
				case 3:
					if id, ok := r.PartyOf(p); ok {
						_ = r.Members(id)
					}
				}
			}
		}(int64(g))
	}
	wg.Wait()

	// every indexed player is in the roster it points at
	r.mu.RLock()
	defer r.mu.RUnlock()
	for pl, id := range r.byPlayer {
		p, ok := r.parties[id]
		require.True(t, ok, "player %s points at missing party", pl)
		found := false
		for _, m := range p.members {
			found = found || m == pl
		}
		require.True(t, found, "player %s missing from %s", pl, id)
	}
}
