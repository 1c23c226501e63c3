package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/cory-johannsen/gridmud/internal/config"
	"github.com/cory-johannsen/gridmud/internal/game/session"
)

// GameService handles the lifecycle of a connected client: login,
// inbound command lines, and disconnect.
type GameService interface {
	Login(conn session.Conn, username, token string) error
	HandleMessage(username, token, line string) error
	Disconnect(conn session.Conn, username string)
}

// clientFrame is the inbound wire format. Every frame carries the sender's
// credentials; "login" frames establish the session and "message" frames
// carry a command line.
type clientFrame struct {
	Type      string `json:"type"`
	Username  string `json:"username"`
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

const (
	frameLogin   = "login"
	frameMessage = "message"
)

// Acceptor serves the websocket endpoint at /ws and, when configured,
// static client assets at /. Each accepted socket gets a read loop that
// dispatches frames to the GameService.
type Acceptor struct {
	cfg      config.ServerConfig
	service  GameService
	logger   *zap.Logger
	upgrader websocket.Upgrader

	httpServer *http.Server
	listener   net.Listener
	wg         sync.WaitGroup

	mu      sync.Mutex
	running bool
	conns   map[*Conn]struct{}
}

// NewAcceptor creates a websocket acceptor with the given configuration.
//
// Precondition: cfg must have a valid port; service and logger must be non-nil.
// Postcondition: Returns an Acceptor ready to be started with ListenAndServe.
func NewAcceptor(cfg config.ServerConfig, service GameService, logger *zap.Logger) *Acceptor {
	return &Acceptor{
		cfg:     cfg,
		service: service,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser clients connect from arbitrary origins.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		conns: make(map[*Conn]struct{}),
	}
}

// ListenAndServe starts the HTTP listener and serves until Stop is called.
// This method blocks until the acceptor is stopped.
//
// Precondition: The acceptor must not already be running.
// Postcondition: The listener is closed when this method returns.
func (a *Acceptor) ListenAndServe() error {
	start := time.Now()

	listener, err := net.Listen("tcp", a.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", a.cfg.Addr(), err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", a.handleSocket)
	if a.cfg.StaticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(a.cfg.StaticDir)))
	}
	server := &http.Server{Handler: mux}

	a.mu.Lock()
	a.listener = listener
	a.httpServer = server
	a.running = true
	a.mu.Unlock()

	a.logger.Info("websocket acceptor listening",
		zap.String("addr", listener.Addr().String()),
		zap.String("static_dir", a.cfg.StaticDir),
		zap.Duration("startup", time.Since(start)),
	)

	if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("serving: %w", err)
	}
	return nil
}

// handleSocket upgrades an HTTP request and runs its read loop.
func (a *Acceptor) handleSocket(w http.ResponseWriter, r *http.Request) {
	raw, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.logger.Error("websocket upgrade failed",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		return
	}

	conn := newConn(raw, a.cfg.WriteTimeout, a.logger)

	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		conn.Close()
		return
	}
	a.conns[conn] = struct{}{}
	a.mu.Unlock()

	a.logger.Info("client connected",
		zap.String("conn_id", conn.ID()),
		zap.String("remote_addr", r.RemoteAddr),
	)

	a.wg.Add(1)
	go a.readLoop(conn, r.RemoteAddr)
}

// readLoop decodes inbound frames until the socket closes, then reports
// the disconnect to the game service.
func (a *Acceptor) readLoop(conn *Conn, addr string) {
	defer a.wg.Done()
	start := time.Now()

	// Username of the last successful login on this socket; the
	// disconnect report carries it so the session can be released.
	var boundUsername string

	defer func() {
		a.mu.Lock()
		delete(a.conns, conn)
		a.mu.Unlock()

		a.service.Disconnect(conn, boundUsername)
		conn.Close()

		a.logger.Info("client disconnected",
			zap.String("conn_id", conn.ID()),
			zap.String("username", boundUsername),
			zap.Duration("duration", time.Since(start)),
		)
	}()

	for {
		_, payload, err := conn.ws.ReadMessage()
		if err != nil {
			return
		}

		var frame clientFrame
		if err := json.Unmarshal(payload, &frame); err != nil {
			a.logger.Debug("discarding malformed frame",
				zap.String("conn_id", conn.ID()),
				zap.Error(err),
			)
			continue
		}

		switch frame.Type {
		case frameLogin:
			if err := a.service.Login(conn, frame.Username, frame.SessionID); err != nil {
				a.logger.Debug("login rejected",
					zap.String("conn_id", conn.ID()),
					zap.String("username", frame.Username),
					zap.Error(err),
				)
				continue
			}
			boundUsername = frame.Username
		case frameMessage:
			if err := a.service.HandleMessage(frame.Username, frame.SessionID, frame.Message); err != nil {
				a.logger.Debug("message dropped",
					zap.String("conn_id", conn.ID()),
					zap.String("username", frame.Username),
					zap.Error(err),
				)
			}
		default:
			a.logger.Debug("unknown frame type",
				zap.String("conn_id", conn.ID()),
				zap.String("frame_type", frame.Type),
			)
		}
	}
}

// Stop gracefully stops the acceptor, closing the listener and all active
// connections and waiting for their read loops to finish.
//
// Postcondition: All connections are closed and goroutines have exited.
func (a *Acceptor) Stop() {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return
	}
	a.running = false
	server := a.httpServer
	open := make([]*Conn, 0, len(a.conns))
	for c := range a.conns {
		open = append(open, c)
	}
	a.mu.Unlock()

	if server != nil {
		ctx := context.Background()
		if a.cfg.ShutdownTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, a.cfg.ShutdownTimeout)
			defer cancel()
		}
		// Shutdown stops the listener; upgraded sockets are closed below.
		_ = server.Shutdown(ctx)
	}
	for _, c := range open {
		c.Close()
	}
	a.wg.Wait()

	a.logger.Info("websocket acceptor stopped")
}

// Addr returns the actual listening address, or empty string if not yet listening.
func (a *Acceptor) Addr() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listener != nil {
		return a.listener.Addr().String()
	}
	return ""
}

// IsRunning returns whether the acceptor is currently accepting connections.
func (a *Acceptor) IsRunning() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running
}
