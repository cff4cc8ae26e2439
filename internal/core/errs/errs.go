// Package errs defines the sentinel error kinds shared by every session
// operation. The session loop never inspects these beyond errors.Is: any
// non-nil error from an operation collapses to a NACK reply.
package errs

import "errors"

var (
	// ErrInvalidPacket signals a malformed header or a size/payload mismatch.
	ErrInvalidPacket = errors.New("jeux: invalid packet")
	// ErrDisconnected signals the local socket was closed or read failed.
	ErrDisconnected = errors.New("jeux: disconnected")
	// ErrPeerGone signals a write to a peer session failed.
	ErrPeerGone = errors.New("jeux: peer gone")

	ErrNotLoggedIn     = errors.New("jeux: not logged in")
	ErrAlreadyLoggedIn = errors.New("jeux: already logged in")
	ErrNameInUse       = errors.New("jeux: name in use")
	ErrInvalidUsername = errors.New("jeux: invalid username")

	ErrUnknownID     = errors.New("jeux: unknown invitation id")
	ErrWrongSide     = errors.New("jeux: wrong side")
	ErrWrongState    = errors.New("jeux: wrong invitation state")
	ErrInvalidTarget = errors.New("jeux: invalid invitation target")

	ErrNoGame      = errors.New("jeux: no game in progress")
	ErrInvalidMove = errors.New("jeux: invalid move")
	ErrIllegalMove = errors.New("jeux: illegal move")

	ErrCapacity = errors.New("jeux: registry at capacity")
)
