package lfg

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestProposal_RoundTrip(t *testing.T) {
	p := NewProposal("prop", nil)
	p.AddMember("A")
	p.AddMember("B")
	p.RemoveDecliner("A")

	require.False(t, p.IsMember("A"))
	require.True(t, p.IsDecliner("A"))
	require.True(t, p.IsMember("B"))
	require.False(t, p.IsDecliner("B"))
}

func TestProposal_IdempotentMembership(t *testing.T) {
	p := NewProposal("prop", nil)
	p.AddMember("A")
	p.AddMember("A")
	require.Equal(t, []PlayerID{"A"}, p.Members())

	p.RemoveMember("ghost")
	p.RemoveMember("")
	p.RemoveDecliner("")
	p.AddMember("")
	require.Equal(t, []PlayerID{"A"}, p.Members())
	require.Empty(t, p.Decliners())

	p.RemoveDecliner("A")
	p.RemoveDecliner("A")
	require.Equal(t, []PlayerID{"A"}, p.Decliners())
}

func TestProposal_MembersIsSnapshot(t *testing.T) {
	p := NewProposal("prop", nil)
	p.AddMember("A")
	p.AddMember("B")

	snap := p.Members()
	snap[0] = "mutated"
	require.True(t, p.IsMember("A"))

	p.RemoveMember("B")
	require.Len(t, snap, 2)
}

func TestProposal_StartAndType(t *testing.T) {
	p := NewProposal("prop", nil)
	require.Equal(t, CategoryNone, p.Type())
	require.Equal(t, ProposalInitiating, p.State())
	require.True(t, p.CancelAt().IsZero())

	d := testDungeons[1]
	p = NewProposal("prop", &d)
	d.Category = CategoryRaid
	require.Equal(t, CategoryHeroic, p.Type())

	p.Start(t0, 45*time.Second)
	require.Equal(t, ProposalActive, p.State())
	require.Equal(t, t0.Add(45*time.Second), p.CancelAt())
}

func TestProposal_Group(t *testing.T) {
	p := NewProposal("prop", nil)
	require.Empty(t, p.Group())

	p.SetGroup("party-1")
	require.Equal(t, PartyID("party-1"), p.Group())

	p.SetGroup("")
	require.Empty(t, p.Group())
}

func TestNewQueueEntry(t *testing.T) {
	_, err := NewQueueEntry("", EntryPlayer, CategoryDungeon, 1, RoleTargets{}, t0)
	require.ErrorIs(t, err, ErrEmptyID)

	targets := DefaultConfig().RoleTargets
	e, err := NewQueueEntry("p1", EntryPlayer, CategoryHeroic, 7, targets, t0)
	require.NoError(t, err)
	require.Equal(t, "p1", e.ID)
	require.Equal(t, uint32(7), e.QueueID)
	require.Equal(t, RoleTargets{Tanks: 1, Healers: 1, DPS: 3}, e.Targets)
	require.Equal(t, t0, e.EnqueuedAt)
}
