package websocket

import (
	"context"
	"encoding/json"
	"time"

	"socialhub/domain/core/valueobjects"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 4 * 1024

	sendBufferSize = 64
)

// Frame types exchanged with clients
const (
	FrameJoin      = "join"
	FrameJoined    = "joined"
	FrameConnected = "connected"
	FrameError     = "error"
	FramePing      = "ping"
	FramePong      = "pong"
)

// inboundFrame is a client-to-server text frame
type inboundFrame struct {
	Type     string `json:"type"`
	Identity string `json:"identity,omitempty"`
}

// outboundFrame is a server-to-client control frame
type outboundFrame struct {
	Type         string `json:"type"`
	ConnectionID string `json:"connectionId,omitempty"`
	Identity     string `json:"identity,omitempty"`
	Message      string `json:"message,omitempty"`
}

// Client is one websocket connection. It is anonymous until a join frame
// binds it to an identity.
type Client struct {
	id     string
	bearer valueobjects.IdentityID // identity proven by the upgrade token, if any
	server *Server
	conn   *websocket.Conn
	send   chan []byte
	logger *zap.Logger
}

func newClient(bearer valueobjects.IdentityID, server *Server, conn *websocket.Conn, logger *zap.Logger) *Client {
	id := uuid.New().String()
	return &Client{
		id:     id,
		bearer: bearer,
		server: server,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		logger: logger.With(zap.String("connectionID", id)),
	}
}

// ID returns the connection id
func (c *Client) ID() string { return c.id }

func (c *Client) start() {
	go c.writePump()
	go c.readPump()
	c.reply(outboundFrame{Type: FrameConnected, ConnectionID: c.id})
}

// readPump reads frames until the peer goes away, then disconnects the client
func (c *Client) readPump() {
	defer func() {
		c.server.disconnect(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("Websocket read error", zap.Error(err))
			}
			return
		}

		switch messageType {
		case websocket.TextMessage:
			c.handleTextMessage(message)
		case websocket.BinaryMessage:
			c.logger.Debug("Ignoring binary frame")
		}
	}
}

// writePump drains the send buffer to the connection and keeps it alive
// with pings. It exits when the hub closes the send buffer.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Debug("Websocket write failed", zap.Error(err))
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Debug("Websocket ping failed", zap.Error(err))
				return
			}
		}
	}
}

func (c *Client) handleTextMessage(message []byte) {
	var frame inboundFrame
	if err := json.Unmarshal(message, &frame); err != nil {
		c.reply(outboundFrame{Type: FrameError, Message: "malformed frame"})
		return
	}

	switch frame.Type {
	case FrameJoin:
		identity, err := c.server.join(c, frame.Identity)
		if err != nil {
			c.reply(outboundFrame{Type: FrameError, Message: err.Error()})
			return
		}
		c.reply(outboundFrame{Type: FrameJoined, Identity: identity.String()})
	case FramePing:
		c.reply(outboundFrame{Type: FramePong})
	case FramePong:
	default:
		c.logger.Debug("Ignoring frame", zap.String("type", frame.Type))
	}
}

func (c *Client) reply(frame outboundFrame) {
	raw, err := json.Marshal(frame)
	if err != nil {
		return
	}
	if err := c.server.hub.Push(context.Background(), c.id, raw); err != nil {
		c.logger.Debug("Reply dropped", zap.String("type", frame.Type), zap.Error(err))
	}
}
