package app

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jose-valero/lfg-bot/internal/lfg"
)

func TestParseRoles(t *testing.T) {
	cases := []struct {
		in   string
		want lfg.RoleMask
		err  bool
	}{
		{in: "tank", want: lfg.NewRoleMask(lfg.RoleTank)},
		{in: "Tank, DPS", want: lfg.NewRoleMask(lfg.RoleTank, lfg.RoleDPS)},
		{in: "heals+dps", want: lfg.NewRoleMask(lfg.RoleHealer, lfg.RoleDPS)},
		{in: "leader healer", want: lfg.NewRoleMask(lfg.RoleLeader, lfg.RoleHealer)},
		{in: "", want: lfg.RoleMaskNone},
		{in: "tank,bard", err: true},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			got, err := parseRoles(c.in)
			if c.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, c.want, got)
		})
	}
}

func TestHasCombatRole(t *testing.T) {
	require.False(t, hasCombatRole(lfg.RoleMaskNone))
	require.False(t, hasCombatRole(lfg.NewRoleMask(lfg.RoleLeader)))
	require.True(t, hasCombatRole(lfg.NewRoleMask(lfg.RoleLeader, lfg.RoleDPS)))
}

func TestFitsTargets(t *testing.T) {
	tank := lfg.NewRoleMask(lfg.RoleTank)
	heal := lfg.NewRoleMask(lfg.RoleHealer)
	dd := lfg.NewRoleMask(lfg.RoleDPS)
	flex := lfg.NewRoleMask(lfg.RoleTank, lfg.RoleHealer, lfg.RoleDPS)
	targets := lfg.RoleTargets{Tanks: 1, Healers: 1, DPS: 3}

	cases := []struct {
		name    string
		members []lfg.RoleMask
		want    bool
	}{
		{"empty", nil, true},
		{"full group", []lfg.RoleMask{tank, heal, dd, dd, dd}, true},
		{"two tanks", []lfg.RoleMask{tank, tank}, false},
		{"four dps", []lfg.RoleMask{dd, dd, dd, dd}, false},
		{"flex fills the gap", []lfg.RoleMask{tank, flex, dd, dd, dd}, true},
		{"flex needs backtracking", []lfg.RoleMask{flex, tank, heal}, true},
		{"leader only", []lfg.RoleMask{lfg.NewRoleMask(lfg.RoleLeader)}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			require.Equal(t, c.want, fitsTargets(c.members, targets))
		})
	}
}
