package session

import (
	"sync"

	"jeux/internal/core/errs"
	"jeux/internal/game"
	"jeux/internal/protocol"
)

type invitationState uint8

const (
	invitationOpen invitationState = iota
	invitationAccepted
	invitationClosed
)

// Invitation is shared by exactly two Client sessions and carries the
// Game once accepted. source and target, and their roles, are fixed at
// creation; state and game change only under mu.
type Invitation struct {
	source, target         *Client
	sourceRole, targetRole protocol.Role

	mu    sync.Mutex
	state invitationState
	game  *game.Game
}

func newInvitation(source, target *Client, sourceRole, targetRole protocol.Role) *Invitation {
	return &Invitation{
		source:     source,
		target:     target,
		sourceRole: sourceRole,
		targetRole: targetRole,
		state:      invitationOpen,
	}
}

func (i *Invitation) Source() *Client           { return i.source }
func (i *Invitation) Target() *Client           { return i.target }
func (i *Invitation) SourceRole() protocol.Role { return i.sourceRole }
func (i *Invitation) TargetRole() protocol.Role { return i.targetRole }

// RoleOf returns the role c plays in this invitation (source or target).
func (i *Invitation) RoleOf(c *Client) protocol.Role {
	if c == i.source {
		return i.sourceRole
	}
	return i.targetRole
}

// Opponent returns the other side of this invitation from c's perspective.
func (i *Invitation) Opponent(c *Client) *Client {
	if c == i.source {
		return i.target
	}
	return i.source
}

// Game returns the bound Game, or nil before ACCEPTED.
func (i *Invitation) Game() *game.Game {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.game
}

// HasGame reports whether Game() would return non-nil.
func (i *Invitation) HasGame() bool {
	return i.Game() != nil
}

// Accept transitions OPEN -> ACCEPTED, creating the Game. It fails if the
// invitation is not OPEN.
func (i *Invitation) Accept() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.state != invitationOpen {
		return errs.ErrWrongState
	}
	i.state = invitationAccepted
	i.game = game.New()
	return nil
}

// Close transitions to CLOSED. With role == RoleNone the invitation must be
// OPEN and have no game (a plain revoke/decline); with role != RoleNone the
// invitation must be ACCEPTED, and its game is resigned with role losing.
func (i *Invitation) Close(role protocol.Role) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if role == protocol.RoleNone {
		if i.state != invitationOpen || i.game != nil {
			return errs.ErrWrongState
		}
	} else {
		if i.state != invitationAccepted || i.game == nil {
			return errs.ErrWrongState
		}
		if err := i.game.Resign(role); err != nil {
			return err
		}
	}

	i.state = invitationClosed
	return nil
}
