package party

type partyErr string

func (e partyErr) Error() string { return string(e) }

var (
	ErrEmptyParty  = partyErr("party needs at least one member")
	ErrInParty     = partyErr("player already in a party")
	ErrNotInParty  = partyErr("player not in a party")
	ErrNotFound    = partyErr("party not found")
	ErrNotLeader   = partyErr("only the party leader can do that")
	ErrPartyFull   = partyErr("party is full")
	ErrEmptyPlayer = partyErr("empty player id")
)
