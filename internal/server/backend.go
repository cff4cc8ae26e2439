// Package server implements the session loop: an accept loop that hands
// each new connection its own goroutine, and a packet dispatcher that reads
// requests off that connection, routes them to session.Client operations,
// and replies ACK or NACK. The accept-loop/dispatch split mirrors the
// frontend/backend split this codebase used for its original multi-server
// layout, collapsed here to the single socket jeux exposes.
package server

import (
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"jeux/internal/player"
	"jeux/internal/protocol"
	"jeux/internal/session"
)

// Backend owns the process-wide registries and implements the packet-type
// dispatch table described by the session loop.
type Backend struct {
	Clients *session.Registry
	Players *player.Registry
	Log     *logrus.Logger
}

// NewBackend constructs a Backend with fresh registries sized to
// maxConnections.
func NewBackend(maxConnections int, log *logrus.Logger) *Backend {
	return &Backend{
		Clients: session.NewRegistry(maxConnections),
		Players: player.NewRegistry(),
		Log:     log,
	}
}

// Identifier names this backend for log lines.
func (b *Backend) Identifier() string { return "jeux" }

// dispatch routes one received packet to the Client operation it names and
// replies ACK or NACK on c's connection. Until LOGIN succeeds every other
// packet type is rejected; after LOGIN succeeds, further LOGIN packets are.
func (b *Backend) dispatch(c *session.Client, hdr protocol.Header, payload []byte) {
	if hdr.Type == protocol.Login {
		b.handleLogin(c, payload)
		return
	}

	if !c.IsLoggedIn() {
		b.nack(c)
		return
	}

	switch hdr.Type {
	case protocol.Users:
		b.handleUsers(c)
	case protocol.Invite:
		b.handleInvite(c, hdr, payload)
	case protocol.Revoke:
		b.handleRevoke(c, hdr)
	case protocol.Decline:
		b.handleDecline(c, hdr)
	case protocol.Accept:
		b.handleAccept(c, hdr)
	case protocol.Move:
		b.handleMove(c, hdr, payload)
	case protocol.Resign:
		b.handleResign(c, hdr)
	default:
		b.nack(c)
	}
}

func (b *Backend) ack(c *session.Client, id uint8, role protocol.Role, payload []byte) {
	hdr := protocol.NewHeader(protocol.Ack, id, role, len(payload))
	if err := c.Send(hdr, payload); err != nil {
		b.Log.WithError(err).Warn("failed to send ACK")
	}
}

func (b *Backend) nack(c *session.Client) {
	hdr := protocol.NewHeader(protocol.Nack, 0, protocol.RoleNone, 0)
	if err := c.Send(hdr, nil); err != nil {
		b.Log.WithError(err).Warn("failed to send NACK")
	}
}

func (b *Backend) handleLogin(c *session.Client, payload []byte) {
	name := string(payload)
	if c.IsLoggedIn() || !validUsername(name) {
		b.nack(c)
		return
	}

	p := b.Players.Register(name)
	if err := c.Login(p, b.Clients.IsNameInUse); err != nil {
		b.nack(c)
		return
	}
	b.ack(c, 0, protocol.RoleNone, nil)
}

// validUsername rejects the empty name and embedded NUL/TAB/newline, which
// would make the USERS listing's "name\trating\n" encoding ambiguous.
func validUsername(name string) bool {
	return name != "" && !strings.ContainsAny(name, "\x00\t\n")
}

func (b *Backend) handleUsers(c *session.Client) {
	var sb strings.Builder
	for _, p := range b.Clients.AllPlayers() {
		sb.WriteString(p.Name())
		sb.WriteByte('\t')
		sb.WriteString(strconv.FormatInt(int64(p.Rating()), 10))
		sb.WriteByte('\n')
	}
	b.ack(c, 0, protocol.RoleNone, []byte(sb.String()))
}

func (b *Backend) handleInvite(c *session.Client, hdr protocol.Header, payload []byte) {
	if hdr.Role != protocol.RoleFirst && hdr.Role != protocol.RoleSecond {
		b.nack(c)
		return
	}
	target := b.Clients.Lookup(string(payload))
	if target == nil {
		b.nack(c)
		return
	}

	targetRole := hdr.Role
	sourceRole := targetRole.Other()

	id, err := c.MakeInvitation(target, sourceRole, targetRole)
	if err != nil {
		b.nack(c)
		return
	}
	b.ack(c, uint8(id), protocol.RoleNone, nil)
}

func (b *Backend) handleRevoke(c *session.Client, hdr protocol.Header) {
	if err := c.RevokeInvitation(int(hdr.ID)); err != nil {
		b.nack(c)
		return
	}
	b.ack(c, hdr.ID, protocol.RoleNone, nil)
}

func (b *Backend) handleDecline(c *session.Client, hdr protocol.Header) {
	if err := c.DeclineInvitation(int(hdr.ID)); err != nil {
		b.nack(c)
		return
	}
	b.ack(c, hdr.ID, protocol.RoleNone, nil)
}

func (b *Backend) handleAccept(c *session.Client, hdr protocol.Header) {
	state, err := c.AcceptInvitation(int(hdr.ID))
	if err != nil {
		b.nack(c)
		return
	}
	b.ack(c, hdr.ID, protocol.RoleNone, []byte(state))
}

func (b *Backend) handleMove(c *session.Client, hdr protocol.Header, payload []byte) {
	if err := c.MakeMove(int(hdr.ID), string(payload)); err != nil {
		b.nack(c)
		return
	}
	b.ack(c, hdr.ID, protocol.RoleNone, nil)
}

func (b *Backend) handleResign(c *session.Client, hdr protocol.Header) {
	if err := c.ResignGame(int(hdr.ID)); err != nil {
		b.nack(c)
		return
	}
	b.ack(c, hdr.ID, protocol.RoleNone, nil)
}
