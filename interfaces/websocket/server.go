package websocket

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"socialhub/domain/core/valueobjects"
	"socialhub/pkg/auth"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var (
	ErrIdentityMismatch = errors.New("identity does not match bearer token")
	ErrInvalidIdentity  = errors.New("identity is required")
	ErrTokenRequired    = errors.New("bearer token is required")
)

// Limits supplies the per-identity connection cap, read on every join
type Limits interface {
	MaxSessionsPerIdentity() int
}

// ServerConfig holds websocket upgrade settings
type ServerConfig struct {
	ReadBufferSize  int
	WriteBufferSize int

	// AllowedOrigins restricts the Origin header; empty or "*" allows any
	AllowedOrigins []string

	// RequireToken refuses upgrades without a bearer token
	RequireToken bool
}

// DefaultServerConfig returns default websocket server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{ReadBufferSize: 1024, WriteBufferSize: 1024}
}

// Server upgrades HTTP requests to websocket clients and binds joined
// clients in the registry
type Server struct {
	hub       *Hub
	registry  *Registry
	validator    *auth.JWTValidator
	limits       Limits
	requireToken bool
	upgrader     websocket.Upgrader
	logger       *zap.Logger
}

// NewServer creates a websocket server. validator and limits may be nil.
func NewServer(hub *Hub, registry *Registry, validator *auth.JWTValidator, limits Limits, cfg ServerConfig, logger *zap.Logger) *Server {
	return &Server{
		hub:          hub,
		registry:     registry,
		validator:    validator,
		limits:       limits,
		requireToken: cfg.RequireToken,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			CheckOrigin:     originChecker(cfg.AllowedOrigins),
		},
		logger: logger,
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 || slices.Contains(allowed, "*") {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(allowed, origin)
	}
}

// ServeHTTP upgrades the request. An invalid bearer token is rejected before
// the upgrade, and so is a missing one when the server requires tokens.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	bearer, err := s.authenticate(r)
	if err != nil {
		s.logger.Debug("Websocket authentication failed",
			zap.String("remoteAddr", r.RemoteAddr),
			zap.Error(err),
		)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("Websocket upgrade failed", zap.Error(err))
		return
	}

	client := newClient(bearer, s, conn, s.logger)
	if !s.hub.register(client) {
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
		conn.Close()
		return
	}
	client.start()

	s.logger.Debug("Websocket connected",
		zap.String("connectionID", client.id),
		zap.String("bearer", bearer.String()),
	)
}

func (s *Server) authenticate(r *http.Request) (valueobjects.IdentityID, error) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	}
	if token == "" {
		if s.requireToken {
			return "", ErrTokenRequired
		}
		return "", nil
	}
	if s.validator == nil {
		return "", auth.ErrInvalidToken
	}

	claims, err := s.validator.ValidateToken(token)
	if err != nil {
		return "", err
	}
	return valueobjects.ParseIdentityID(claims.UserID)
}

func (s *Server) join(c *Client, raw string) (valueobjects.IdentityID, error) {
	identity, err := valueobjects.ParseIdentityID(raw)
	if err != nil {
		return "", ErrInvalidIdentity
	}
	if !c.bearer.IsZero() && c.bearer != identity {
		return "", ErrIdentityMismatch
	}

	max := 0
	if s.limits != nil {
		max = s.limits.MaxSessionsPerIdentity()
	}
	if err := s.registry.JoinLimited(c.id, identity, max); err != nil {
		return "", err
	}

	c.logger.Debug("Websocket joined", zap.String("identity", identity.String()))
	return identity, nil
}

func (s *Server) disconnect(c *Client) {
	s.hub.unregister(c.id)
	s.registry.Leave(c.id)
}
