// Package gateway implements C5: the WebSocket endpoint that streams
// a user's live notification/message events out of Redis. Session
// state lives in Postgres (relay_ws_connections), not an in-process
// hub, since any gateway instance can terminate any user's
// connection and sessions must survive a single process's restart
// for observability. Grounded on go-server/pkg/websocket/client.go's
// read/write pump split and pingPeriod/pongWait tuning, and
// original_source/relay-api/src/websocket.rs for the outbound-pump
// XREAD-from-last-id loop and inbound ping/close handling.
package gateway

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/mysocial/relay/internal/auth"
	"github.com/mysocial/relay/internal/cache"
	"github.com/mysocial/relay/internal/db"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
	streamBlock    = 1 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  2048,
	WriteBufferSize: 2048,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Gateway upgrades authenticated requests to WebSocket connections
// and streams each user's live stream to them.
type Gateway struct {
	db    *db.DB
	cache *cache.Cache
	auth  *auth.Manager
	log   zerolog.Logger
}

func New(database *db.DB, c *cache.Cache, authManager *auth.Manager, log zerolog.Logger) *Gateway {
	return &Gateway{db: database, cache: c, auth: authManager, log: log}
}

// ServeHTTP upgrades the request, authenticating via query param or
// header (§4.5 / §6), registers the session, and runs the two pumps
// until either exits.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims, err := g.auth.WebSocketAuth(r)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	userAddress := claims.UserAddress

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	connectionID := uuid.NewString()
	ctx := r.Context()
	if err := g.db.InsertSession(ctx, userAddress, connectionID); err != nil {
		g.log.Error().Err(err).Msg("register session failed")
		conn.Close()
		return
	}

	session := &connection{
		gateway:      g,
		conn:         conn,
		userAddress:  userAddress,
		connectionID: connectionID,
		done:         make(chan struct{}),
	}
	session.run()
}

// connection coordinates one live WebSocket: an outbound pump reading
// the user's Redis stream and an inbound pump servicing pings/close.
// Either exiting terminates the other and marks the session closed.
type connection struct {
	gateway      *Gateway
	conn         *websocket.Conn
	userAddress  string
	connectionID string
	done         chan struct{}
	closeOnce    sync.Once
}

func (c *connection) terminate() {
	c.closeOnce.Do(func() { close(c.done) })
}

func (c *connection) run() {
	defer func() {
		_ = c.gateway.db.CloseSession(context.Background(), c.connectionID)
		c.conn.Close()
	}()

	go c.inboundPump()
	c.outboundPump()
}

// outboundPump blocks on the recipient's live stream and forwards
// each entry as a text frame. A cache read failure sleeps briefly and
// retries rather than tearing down the connection (§4.5: "a transient
// Redis blip should not drop the socket").
func (c *connection) outboundPump() {
	lastID := "0"
	for {
		select {
		case <-c.done:
			return
		default:
		}

		entries, err := c.gateway.cache.ReadStream(context.Background(), c.userAddress, lastID, streamBlock)
		if err != nil {
			c.gateway.log.Error().Err(err).Str("user_address", c.userAddress).Msg("read live stream failed")
			time.Sleep(time.Second)
			continue
		}

		for _, entry := range entries {
			lastID = entry.ID
			payload, _ := entry.Fields["data"].(string)
			if payload == "" {
				continue
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, []byte(payload)); err != nil {
				c.terminate()
				return
			}
		}
	}
}

// inboundPump handles heartbeats: a Pong refreshes the read deadline
// and the Postgres heartbeat timestamp; a Close (or any read error)
// ends the session.
func (c *connection) inboundPump() {
	defer c.terminate()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		_ = c.gateway.db.TouchHeartbeat(context.Background(), c.connectionID)
		return nil
	})

	pingTicker := time.NewTicker(pingPeriod)
	defer pingTicker.Stop()

	readErr := make(chan error, 1)
	go func() {
		for {
			if _, _, err := c.conn.ReadMessage(); err != nil {
				readErr <- err
				return
			}
		}
	}()

	for {
		select {
		case <-readErr:
			return
		case <-pingTicker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}
