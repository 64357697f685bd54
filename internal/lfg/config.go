package lfg

import (
	"fmt"
	"strings"
	"time"
)

// DeclinePolicy decides what a single Deny does to an active proposal.
type DeclinePolicy uint8

const (
	// DeclineFails fails the whole proposal on the first Deny.
	DeclineFails DeclinePolicy = iota
	// DeclineDrops moves the decliner out of the candidates and keeps the
	// proposal open for a replacement.
	DeclineDrops
)

func (p DeclinePolicy) String() string {
	if p == DeclineDrops {
		return "drop"
	}
	return "fail"
}

// ParseDeclinePolicy accepts "fail" or "drop" (case-insensitive).
func ParseDeclinePolicy(s string) (DeclinePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fail":
		return DeclineFails, nil
	case "drop":
		return DeclineDrops, nil
	default:
		return DeclineFails, fmt.Errorf("lfg: unknown decline policy %q", s)
	}
}

// Config holds the fixed windows and budgets the Manager applies.
type Config struct {
	RoleCheckWindow time.Duration
	BootWindow      time.Duration
	ProposalWindow  time.Duration
	VotesNeeded     uint
	MaxKicks        uint
	RoleTargets     RoleTargets
	DeclinePolicy   DeclinePolicy
}

func DefaultConfig() Config {
	return Config{
		RoleCheckWindow: 45 * time.Second,
		BootWindow:      120 * time.Second,
		ProposalWindow:  45 * time.Second,
		VotesNeeded:     DefaultVotesNeeded,
		MaxKicks:        3,
		RoleTargets:     RoleTargets{Tanks: 1, Healers: 1, DPS: 3},
		DeclinePolicy:   DeclineFails,
	}
}
