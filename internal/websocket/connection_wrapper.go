package websocket

import (
	"github.com/gorilla/websocket"
)

// upgradedConn lets a gorilla connection serve as a client Connection. The
// embedded conn supplies every method except RemoteAddr, which clients log
// as a plain string.
type upgradedConn struct {
	*websocket.Conn
}

func newUpgradedConn(conn *websocket.Conn) Connection {
	return upgradedConn{Conn: conn}
}

// RemoteAddr is the peer address, or empty once the socket is gone
func (c upgradedConn) RemoteAddr() string {
	if addr := c.Conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return ""
}
