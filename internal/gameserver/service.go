// Package gameserver implements the session protocol: connection
// lifecycle, command dispatch, and room transition handling over the
// directory and room index.
package gameserver

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/gridmud/internal/game/command"
	"github.com/cory-johannsen/gridmud/internal/game/session"
	"github.com/cory-johannsen/gridmud/internal/game/world"
)

// Typed reasons for silently dropped events. The client never sees these;
// they exist so dispatch outcomes are testable without a live connection.
var (
	errEmptyLine      = errors.New("empty message")
	errUnknownCommand = errors.New("unknown command")
	errMissingArgs    = errors.New("missing arguments")
)

// Service is the session protocol engine and the single logical point of
// mutation: every inbound event (login, message, disconnect) is handled
// as one atomic step under the event lock, so no handler ever observes a
// partially updated directory or room index, and a move and a disconnect
// for the same identity can never interleave.
type Service struct {
	mu       sync.Mutex
	world    *world.Manager
	sessions *session.Manager
	commands *command.Registry
	notifier *Notifier
	logger   *zap.Logger
	helpText string
}

// NewService creates a Service with the given dependencies.
//
// Precondition: worldMgr, sessions, registry, notifier, and logger must
// be non-nil.
func NewService(worldMgr *world.Manager, sessions *session.Manager, registry *command.Registry, notifier *Notifier, logger *zap.Logger) *Service {
	return &Service{
		world:    worldMgr,
		sessions: sessions,
		commands: registry,
		notifier: notifier,
		logger:   logger,
		helpText: buildHelpText(registry),
	}
}

// Login establishes or resumes the identity for username on conn and
// runs the room transition into the session's persisted (or origin)
// location. A rejected login changes no state and sends nothing; the
// caller must not bind the identity to the connection in that case.
//
// Postcondition: Returns nil on success, or the session package's typed
// rejection.
func (s *Service) Login(conn session.Conn, username, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Login(username, token, conn)
	if err != nil {
		s.logger.Debug("login rejected",
			zap.String("username", username),
			zap.Error(err),
		)
		return err
	}

	s.enterRoom(sess, sess.Location)
	s.logger.Info("connection established",
		zap.String("username", username),
		zap.String("location", sess.Location.Key()),
	)
	return nil
}

// HandleMessage processes one chat line from an authenticated client.
// Unauthenticated, empty, malformed, and unknown input is dropped
// without a reply.
//
// Postcondition: Returns nil when the line was handled (including an
// Invalid Move reply), or the typed reason it was dropped.
func (s *Service) HandleMessage(username, token, line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Authenticate(username, token)
	if err != nil {
		s.logger.Debug("message dropped",
			zap.String("username", username),
			zap.Error(err),
		)
		return err
	}

	parsed := command.Parse(line)
	if parsed.Command == "" {
		return errEmptyLine
	}
	cmd, ok := s.commands.Resolve(parsed.Command)
	if !ok {
		return errUnknownCommand
	}
	if len(parsed.Args) < cmd.MinArgs {
		return errMissingArgs
	}

	switch cmd.Handler {
	case command.HandlerHelp:
		s.notifier.SendMessage(sess, session.SenderLog, s.helpText)
	case command.HandlerSay:
		s.notifier.RoomMessage(sess.Location, sess.Username, parsed.RawArgs)
	case command.HandlerYell:
		s.notifier.All(sess.Username, parsed.RawArgs)
	case command.HandlerMove:
		s.handleMove(sess, cmd.Name)
	}
	return nil
}

// Disconnect handles a transport-level close for conn. It is an implicit
// leave of the current room, guarded so a stale connection closing after
// a reconnect changes nothing. Disconnect is a normal lifecycle step,
// not an error.
func (s *Service) Disconnect(conn session.Conn, username string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if username == "" {
		return
	}
	loc, wasMember := s.sessions.Disconnect(username, conn)
	if wasMember {
		s.notifier.RoomMessage(loc, session.SenderServer, username+" left the room.")
		s.notifier.Room(loc, EventRoomLeft, RoomLeftEvent{Member: username})
	}
	s.logger.Info("player disconnected",
		zap.String("username", username),
	)
}

// handleMove resolves a movement word against the current legal moves
// and either runs the room transition or replies with an Invalid Move
// notice.
func (s *Service) handleMove(sess *session.Session, word string) {
	dir, ok := world.FromCommand(word)
	if !ok {
		return
	}
	dest, legal := s.world.LegalMoves(sess.Location)[dir]
	if !legal {
		s.notifier.SendMessage(sess, session.SenderLog, "Invalid Move")
		return
	}
	s.enterRoom(sess, dest)
}

// enterRoom transitions sess into dest. The ordering is load-bearing:
// the former room observes the departure before the snapshot is
// computed, and the snapshot reaches the enterer before the join
// broadcast does, so a client always has a rendered room before it is
// told about its own join.
func (s *Service) enterRoom(sess *session.Session, dest world.Location) {
	// Leave the former room, notifying its occupants first.
	if s.sessions.IsMember(sess.Location, sess.Username) {
		s.notifier.RoomMessage(sess.Location, session.SenderServer, sess.Username+" left the room.")
		s.notifier.Room(sess.Location, EventRoomLeft, RoomLeftEvent{Member: sess.Username})
		s.sessions.Leave(sess.Location, sess.Username)
	}

	s.sessions.SetLocation(sess.Username, dest)

	room, ok := s.world.RoomAt(dest)
	if !ok {
		// Destinations come from LegalMoves or the validated start room.
		s.logger.Error("entering unknown room",
			zap.String("username", sess.Username),
			zap.String("location", dest.Key()),
		)
		return
	}

	// Snapshot before joining, so the member list excludes the enterer.
	s.notifier.Send(sess, EventRoomEnter, RoomEnterEvent{
		Members:     s.sessions.MembersOf(dest),
		Label:       room.Label,
		Location:    dest,
		Description: room.Description,
		Directions:  s.world.LegalMoves(dest),
	})

	s.sessions.Join(dest, sess.Username)
	s.notifier.Room(dest, EventRoomJoin, RoomJoinEvent{Member: sess.Username})
	s.notifier.RoomMessage(dest, session.SenderServer, sess.Username+" entered the room.")
}

// buildHelpText renders the help listing from the registry: one line per
// non-movement command plus a single line covering the six directions.
func buildHelpText(registry *command.Registry) string {
	var lines []string
	for _, cmd := range registry.Commands() {
		if cmd.Handler == command.HandlerMove {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s.", cmd.Name, cmd.Help))
	}
	lines = append(lines, "<direction>: Move to the room in that direction (north, south, east, west, up, down).")
	return strings.Join(lines, "\n")
}
