package lfg

// Eligibility reports why a player is locked out of dungeons. An empty map
// means no locks.
type Eligibility interface {
	LockMap(player PlayerID) LockMap
}

// EligibilityFunc adapts a function to Eligibility.
type EligibilityFunc func(PlayerID) LockMap

func (f EligibilityFunc) LockMap(player PlayerID) LockMap { return f(player) }

// Parties resolves party membership and leadership.
type Parties interface {
	Members(party PartyID) []PlayerID
	PartyOf(player PlayerID) (PartyID, bool)
	Leader(party PartyID) (PlayerID, bool)
}

type noEligibility struct{}

func (noEligibility) LockMap(PlayerID) LockMap { return LockMap{} }

type noParties struct{}

func (noParties) Members(PartyID) []PlayerID       { return nil }
func (noParties) PartyOf(PlayerID) (PartyID, bool) { return "", false }
func (noParties) Leader(PartyID) (PlayerID, bool)  { return "", false }
