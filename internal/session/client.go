// Package session implements the per-connection Client session and the
// Invitation state machine that binds two sessions into a shared game.
// Client and Invitation live in one package because each holds direct
// pointers into the other (source/target sessions, a session's invitation
// list) and Go has no forward-declared cross-package pointer type; splitting
// them would require an import cycle.
package session

import (
	"net"
	"sync"

	"github.com/sirupsen/logrus"

	"jeux/internal/core/errs"
	"jeux/internal/player"
	"jeux/internal/protocol"
)

// Client is the server-side state for one connected socket: login identity,
// the invitations this session participates in, and the write path used to
// deliver replies and asynchronous notifications.
type Client struct {
	conn net.Conn
	log  logrus.FieldLogger

	sendMu sync.Mutex

	mu          sync.Mutex
	loggedIn    bool
	player      *player.Player
	invitations map[int]*Invitation
}

// NewClient wraps conn in a fresh, not-yet-logged-in Client.
func NewClient(conn net.Conn, log logrus.FieldLogger) *Client {
	return &Client{
		conn:        conn,
		log:         log,
		invitations: make(map[int]*Invitation),
	}
}

// Conn returns the underlying connection, for the session loop's Recv calls.
func (c *Client) Conn() net.Conn { return c.conn }

// Send serializes and writes hdr/payload to the client's socket, serialized
// against any concurrent Send on the same Client by sendMu. Errors are
// returned so callers can decide whether to log-and-swallow (notifications
// to peers) or propagate (the requesting session's own reply).
func (c *Client) Send(hdr protocol.Header, payload []byte) error {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	return protocol.Send(c.conn, hdr, payload)
}

// notify sends hdr/payload and logs-and-swallows any error, per the policy
// that I/O errors delivering an asynchronous notification to a peer never
// fail the operation that triggered it; the peer will be reaped by its own
// session loop.
func (c *Client) notify(hdr protocol.Header, payload []byte) {
	if err := c.Send(hdr, payload); err != nil {
		c.log.WithError(err).Warn("failed to deliver notification")
	}
}

// Shutdown half-closes the read side of the client's socket, causing its
// session loop to observe EOF on its next Recv without disturbing any
// in-flight write.
func (c *Client) Shutdown() {
	if tc, ok := c.conn.(*net.TCPConn); ok {
		_ = tc.CloseRead()
		return
	}
	_ = c.conn.Close()
}

// IsLoggedIn reports whether the session has completed LOGIN.
func (c *Client) IsLoggedIn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loggedIn
}

// Player returns the Player this session is logged in as, or nil.
func (c *Client) Player() *player.Player {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.player
}

// Login marks the session logged in as p. It fails if already logged in, or
// if nameInUse reports that some other live session is using p's name.
//
// nameInUse is called with no session mutex held: in production it walks the
// client registry, which reads each live session's Player through its own
// mutex, and c may be among those sessions. Holding c.mu across that call
// would self-deadlock the registry walk.
func (c *Client) Login(p *player.Player, nameInUse func(name string) bool) error {
	c.mu.Lock()
	loggedIn := c.loggedIn
	c.mu.Unlock()
	if loggedIn {
		return errs.ErrAlreadyLoggedIn
	}

	if nameInUse(p.Name()) {
		return errs.ErrNameInUse
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loggedIn {
		return errs.ErrAlreadyLoggedIn
	}
	c.loggedIn = true
	c.player = p
	return nil
}

// Logout ends the session, resigning/revoking/declining every invitation the
// session still holds before dropping its player reference. It fails if the
// session was never logged in.
func (c *Client) Logout() error {
	c.mu.Lock()
	if !c.loggedIn {
		c.mu.Unlock()
		return errs.ErrNotLoggedIn
	}
	ids := make([]int, 0, len(c.invitations))
	for id := range c.invitations {
		ids = append(ids, id)
	}
	c.mu.Unlock()

	for _, id := range ids {
		c.mu.Lock()
		inv, ok := c.invitations[id]
		c.mu.Unlock()
		if !ok {
			continue
		}

		switch {
		case inv.HasGame():
			_ = c.ResignGame(id)
		case inv.Source() == c:
			_ = c.RevokeInvitation(id)
		default:
			_ = c.DeclineInvitation(id)
		}
	}

	c.mu.Lock()
	c.loggedIn = false
	c.player = nil
	c.mu.Unlock()
	return nil
}

// addInvitation inserts inv under the smallest non-negative integer not
// currently used by this session's invitation list and returns that id.
func (c *Client) addInvitation(inv *Invitation) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := 0
	for {
		if _, used := c.invitations[id]; !used {
			break
		}
		id++
	}
	c.invitations[id] = inv
	return id
}

// removeInvitation removes inv from this session's list, returning the id it
// was filed under.
func (c *Client) removeInvitation(inv *Invitation) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for id, v := range c.invitations {
		if v == inv {
			delete(c.invitations, id)
			return id, true
		}
	}
	return 0, false
}

func (c *Client) findInvitation(id int) (*Invitation, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	inv, ok := c.invitations[id]
	return inv, ok
}

func (c *Client) idFor(inv *Invitation) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, v := range c.invitations {
		if v == inv {
			return id, true
		}
	}
	return 0, false
}

// MakeInvitation creates an OPEN invitation between c (source) and target,
// files it in both sessions' lists, and notifies target. It returns c's own
// local id for the new invitation.
func (c *Client) MakeInvitation(target *Client, sourceRole, targetRole protocol.Role) (int, error) {
	if target == c || !target.IsLoggedIn() {
		return 0, errs.ErrInvalidTarget
	}

	inv := newInvitation(c, target, sourceRole, targetRole)
	sourceID := c.addInvitation(inv)
	targetID := target.addInvitation(inv)

	payload := []byte(c.Player().Name())
	hdr := protocol.NewHeader(protocol.Invited, uint8(targetID), targetRole, len(payload))
	target.notify(hdr, payload)

	return sourceID, nil
}

// RevokeInvitation closes an OPEN invitation on which c is the source and
// notifies the target.
func (c *Client) RevokeInvitation(localID int) error {
	inv, ok := c.findInvitation(localID)
	if !ok {
		return errs.ErrUnknownID
	}
	if inv.Source() != c {
		return errs.ErrWrongSide
	}
	if err := inv.Close(protocol.RoleNone); err != nil {
		return err
	}

	c.removeInvitation(inv)
	targetID, _ := inv.Target().removeInvitation(inv)

	hdr := protocol.NewHeader(protocol.Revoked, uint8(targetID), protocol.RoleNone, 0)
	inv.Target().notify(hdr, nil)
	return nil
}

// DeclineInvitation closes an OPEN invitation on which c is the target and
// notifies the source.
func (c *Client) DeclineInvitation(localID int) error {
	inv, ok := c.findInvitation(localID)
	if !ok {
		return errs.ErrUnknownID
	}
	if inv.Target() != c {
		return errs.ErrWrongSide
	}
	if err := inv.Close(protocol.RoleNone); err != nil {
		return err
	}

	c.removeInvitation(inv)
	sourceID, _ := inv.Source().removeInvitation(inv)

	hdr := protocol.NewHeader(protocol.Declined, uint8(sourceID), protocol.RoleNone, 0)
	inv.Source().notify(hdr, nil)
	return nil
}

// AcceptInvitation accepts an OPEN invitation on which c is the target,
// creating its Game. It notifies the source and returns the payload the
// session loop should attach to c's own ACK: empty when the source plays
// first (the source's ACCEPTED notification carries the state instead), or
// the rendered initial state otherwise.
func (c *Client) AcceptInvitation(localID int) (string, error) {
	inv, ok := c.findInvitation(localID)
	if !ok {
		return "", errs.ErrUnknownID
	}
	if inv.Target() != c {
		return "", errs.ErrWrongSide
	}
	if err := inv.Accept(); err != nil {
		return "", err
	}

	sourceID, _ := inv.Source().idFor(inv)
	state := inv.Game().Render()

	if inv.SourceRole() == protocol.RoleFirst {
		hdr := protocol.NewHeader(protocol.Accepted, uint8(sourceID), protocol.RoleNone, len(state))
		inv.Source().notify(hdr, []byte(state))
		return "", nil
	}

	hdr := protocol.NewHeader(protocol.Accepted, uint8(sourceID), protocol.RoleNone, 0)
	inv.Source().notify(hdr, nil)
	return state, nil
}

// MakeMove parses and applies moveStr against the game bound to localID on
// behalf of c, notifies the opponent, and if the game ends as a result,
// notifies both sides and posts the Elo result.
func (c *Client) MakeMove(localID int, moveStr string) error {
	inv, ok := c.findInvitation(localID)
	if !ok {
		return errs.ErrUnknownID
	}
	g := inv.Game()
	if g == nil {
		return errs.ErrNoGame
	}

	role := inv.RoleOf(c)
	move, err := g.ParseMove(role, moveStr)
	if err != nil {
		return errs.ErrInvalidMove
	}
	if err := g.ApplyMove(move); err != nil {
		return errs.ErrIllegalMove
	}

	opponent := inv.Opponent(c)
	oppID, _ := opponent.idFor(inv)
	state := g.Render()
	opponent.notify(protocol.NewHeader(protocol.Moved, uint8(oppID), protocol.RoleNone, len(state)), []byte(state))

	if g.Terminated() {
		winner := g.Winner()
		opponent.notify(protocol.NewHeader(protocol.Ended, uint8(oppID), winner, 0), nil)
		c.notify(protocol.NewHeader(protocol.Ended, uint8(localID), winner, 0), nil)

		c.removeInvitation(inv)
		opponent.removeInvitation(inv)

		postEloForInvitation(inv, winner)
	}
	return nil
}

// ResignGame resigns the game bound to localID on behalf of c, notifying the
// opponent and posting the Elo result.
func (c *Client) ResignGame(localID int) error {
	inv, ok := c.findInvitation(localID)
	if !ok {
		return errs.ErrUnknownID
	}
	if inv.Game() == nil {
		return errs.ErrNoGame
	}

	role := inv.RoleOf(c)
	if err := inv.Close(role); err != nil {
		return errs.ErrIllegalMove
	}

	opponent := inv.Opponent(c)
	oppID, _ := opponent.idFor(inv)
	winner := inv.Game().Winner()

	opponent.notify(protocol.NewHeader(protocol.Resigned, uint8(oppID), protocol.RoleNone, 0), nil)
	opponent.notify(protocol.NewHeader(protocol.Ended, uint8(oppID), winner, 0), nil)
	c.notify(protocol.NewHeader(protocol.Ended, uint8(localID), winner, 0), nil)

	c.removeInvitation(inv)
	opponent.removeInvitation(inv)

	postEloForInvitation(inv, winner)
	return nil
}

// postEloForInvitation posts the Elo result for a just-ended game, always in
// (source, target) order regardless of which side triggered the end or
// which of FIRST/SECOND the source happens to be playing.
func postEloForInvitation(inv *Invitation, winner protocol.Role) {
	var r player.Result
	switch winner {
	case inv.SourceRole():
		r = player.Win1
	case inv.TargetRole():
		r = player.Win2
	default:
		r = player.Draw
	}
	player.PostResult(inv.Source().Player(), inv.Target().Player(), r)
}
