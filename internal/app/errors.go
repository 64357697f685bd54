package app

type appErr string

func (e appErr) Error() string { return string(e) }

var (
	ErrNoRoles          = appErr("pick at least one of tank, healer or dps")
	ErrNoDungeons       = appErr("pick at least one dungeon")
	ErrUnknownDungeon   = appErr("unknown dungeon")
	ErrAllLocked        = appErr("every selected dungeon is locked for you")
	ErrInParty          = appErr("you are in a party; the leader queues with /lfgparty")
	ErrNotLeader        = appErr("only the party leader can queue the party")
	ErrNotQueued        = appErr("not queued")
	ErrNotEnoughPlayers = appErr("not enough players queued")
)
