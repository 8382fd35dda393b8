// network/connection.go
package network

import (
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wfunc/roomserver/protocol"
)

// Connection is one transport-level client session. Implementations must
// allow concurrent Send calls; Read is driven by a single goroutine.
type Connection interface {
	Send(env *protocol.Envelope) error
	Read() (*protocol.Envelope, error)
	Close() error
	RemoteAddr() net.Addr
	SetHeartbeat(interval time.Duration)
}

// WSConnection frames one JSON envelope per WebSocket text message.
type WSConnection struct {
	conn      *websocket.Conn
	sendMutex sync.Mutex
	heartbeat time.Duration
}

func NewWSConnection(conn *websocket.Conn) *WSConnection {
	return &WSConnection{conn: conn}
}

func (c *WSConnection) Send(env *protocol.Envelope) error {
	data, err := env.Marshal()
	if err != nil {
		return err
	}

	c.sendMutex.Lock()
	defer c.sendMutex.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *WSConnection) Read() (*protocol.Envelope, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	return protocol.Unmarshal(data)
}

// SetHeartbeat arms the read deadline; a client missing two intervals is
// dropped by the transport.
func (c *WSConnection) SetHeartbeat(interval time.Duration) {
	c.heartbeat = interval
	c.conn.SetReadDeadline(time.Now().Add(interval * 2))
}

func (c *WSConnection) Close() error {
	return c.conn.Close()
}

func (c *WSConnection) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}
