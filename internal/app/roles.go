package app

import (
	"fmt"
	"strings"

	"github.com/jose-valero/lfg-bot/internal/lfg"
)

// parseRoles reads a comma or space separated role list such as
// "tank, dps".
func parseRoles(s string) (lfg.RoleMask, error) {
	var mask lfg.RoleMask
	for _, f := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return r == ',' || r == ' ' || r == '+'
	}) {
		switch f {
		case "tank":
			mask = mask.With(lfg.RoleTank)
		case "healer", "heal", "heals":
			mask = mask.With(lfg.RoleHealer)
		case "dps", "damage":
			mask = mask.With(lfg.RoleDPS)
		case "leader":
			mask = mask.With(lfg.RoleLeader)
		default:
			return lfg.RoleMaskNone, fmt.Errorf("unknown role %q", f)
		}
	}
	return mask, nil
}

func hasCombatRole(m lfg.RoleMask) bool {
	return !m.Without(lfg.RoleLeader).IsEmpty()
}

// fitsTargets reports whether every member can take one of its roles
// without any role going over its target.
func fitsTargets(members []lfg.RoleMask, t lfg.RoleTargets) bool {
	left := map[lfg.Role]uint{
		lfg.RoleTank:   t.Tanks,
		lfg.RoleHealer: t.Healers,
		lfg.RoleDPS:    t.DPS,
	}
	var assign func(i int) bool
	assign = func(i int) bool {
		if i == len(members) {
			return true
		}
		for _, r := range []lfg.Role{lfg.RoleTank, lfg.RoleHealer, lfg.RoleDPS} {
			if !members[i].Has(r) || left[r] == 0 {
				continue
			}
			left[r]--
			ok := assign(i + 1)
			left[r]++
			if ok {
				return true
			}
		}
		return false
	}
	return assign(0)
}
