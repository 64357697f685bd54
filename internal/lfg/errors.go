// Comparable error values returned by the state types and the Manager.

package lfg

// lfgErr is a lightweight comparable error type so errors.Is works on the
// constants below.
type lfgErr string

func (e lfgErr) Error() string { return string(e) }

var (
	ErrEmptyID          = lfgErr("lfg: empty identifier")
	ErrPlayerNotFound   = lfgErr("lfg: player not found")
	ErrGroupNotFound    = lfgErr("lfg: group not found")
	ErrProposalNotFound = lfgErr("lfg: proposal not found")
	ErrNotVoter         = lfgErr("lfg: voter has no ballot in this boot")
	ErrNotMember        = lfgErr("lfg: player is not a member")
	ErrNoKicksLeft      = lfgErr("lfg: no kicks left")
	ErrBootInProgress   = lfgErr("lfg: boot vote already in progress")
	ErrBootNotActive    = lfgErr("lfg: no boot vote in progress")
	ErrRoleCheckActive  = lfgErr("lfg: role check already in progress")
	ErrRoleCheckIdle    = lfgErr("lfg: no role check in progress")
	ErrProposalClosed   = lfgErr("lfg: proposal already resolved")
)
