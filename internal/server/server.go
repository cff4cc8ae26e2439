package server

import (
	"context"
	"fmt"
	"net"
	"runtime/debug"
	"sync"

	"github.com/sirupsen/logrus"

	"jeux/internal/core"
	"jeux/internal/protocol"
	"jeux/internal/session"
)

// Server is the jeux accept loop: it owns the listening socket and spawns
// one session goroutine per accepted connection, each running its own
// blocking receive/dispatch loop against the shared Backend.
type Server struct {
	Address string
	Backend *Backend
	Config  *core.Config
	Logger  *logrus.Logger
}

// New builds a Server bound to cfg.Address(), dispatching through backend.
func New(cfg *core.Config, backend *Backend, log *logrus.Logger) *Server {
	return &Server{
		Address: cfg.Address(),
		Backend: backend,
		Config:  cfg,
		Logger:  log,
	}
}

// Start opens the listening socket and runs the accept loop until ctx is
// canceled, at which point the listener is closed and Start waits for every
// in-flight session goroutine to return before returning itself.
func (s *Server) Start(ctx context.Context) error {
	addr, err := net.ResolveTCPAddr("tcp", s.Address)
	if err != nil {
		return fmt.Errorf("error resolving address %s: %w", s.Address, err)
	}

	listener, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return fmt.Errorf("error listening on %s: %w", s.Address, err)
	}

	s.Logger.Infof("[%s] waiting for connections on %s", s.Backend.Identifier(), s.Address)

	var wg sync.WaitGroup
	go func() {
		<-ctx.Done()
		_ = listener.Close()
	}()

	for {
		conn, err := listener.AcceptTCP()
		if err != nil {
			select {
			case <-ctx.Done():
				wg.Wait()
				s.Logger.Infof("[%s] exited", s.Backend.Identifier())
				return nil
			default:
				s.Logger.Warnf("failed to accept connection: %s", err)
				continue
			}
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			s.runSession(conn)
		}()
	}
}

// runSession registers conn as a Client and blocks processing its packets
// until it disconnects, at which point it logs out the session (triggering
// any cleanup notifications to peers) and unregisters it.
func (s *Server) runSession(conn net.Conn) {
	log := s.Logger.WithField("remote_addr", conn.RemoteAddr().String())

	c, err := s.Backend.Clients.Register(conn, log)
	if err != nil {
		log.WithError(err).Warn("rejecting connection: registry at capacity")
		_ = conn.Close()
		return
	}

	defer s.closeSessionAndRecover(c, log)
	s.processPackets(c, log)
}

// processPackets is the per-session blocking loop: read one packet, dispatch
// it, repeat, until Recv reports the connection is gone.
func (s *Server) processPackets(c *session.Client, log logrus.FieldLogger) {
	for {
		hdr, payload, err := protocol.Recv(c.Conn())
		if err != nil {
			return
		}
		s.Backend.dispatch(c, hdr, payload)
	}
}

// closeSessionAndRecover is the failsafe that catches any panic from a
// session's dispatch, then logs the session out (best-effort, which is what
// triggers revoke/decline/resign notifications to its peers) and removes it
// from the registry regardless of how the loop above exited.
func (s *Server) closeSessionAndRecover(c *session.Client, log logrus.FieldLogger) {
	if err := recover(); err != nil {
		log.Errorf("panic handling session: %v\n%s", err, debug.Stack())
	}

	_ = c.Logout()
	s.Backend.Clients.Unregister(c)
	_ = c.Conn().Close()

	log.Info("session closed")
}
