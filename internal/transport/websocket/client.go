package websocket

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// ConnectionManager tracks the one socket seated at each game.
type ConnectionManager struct {
	connections map[string]*websocket.Conn

	// gorilla connections allow a single concurrent writer
	writeMu map[*websocket.Conn]*sync.Mutex

	mu sync.RWMutex
}

func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{
		connections: make(map[string]*websocket.Conn),
		writeMu:     make(map[*websocket.Conn]*sync.Mutex),
	}
}

// Register makes conn writable. It is called once per socket before any
// message is sent on it.
func (cm *ConnectionManager) Register(conn *websocket.Conn) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if _, ok := cm.writeMu[conn]; !ok {
		cm.writeMu[conn] = &sync.Mutex{}
	}
}

// Seat binds conn to gameID. A socket already seated there is closed, so a
// resumed game has exactly one client.
func (cm *ConnectionManager) Seat(gameID string, conn *websocket.Conn) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if old, ok := cm.connections[gameID]; ok && old != conn {
		old.Close()
	}
	cm.connections[gameID] = conn
}

// Release drops conn everywhere it is seated.
func (cm *ConnectionManager) Release(conn *websocket.Conn) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	for gameID, c := range cm.connections {
		if c == conn {
			delete(cm.connections, gameID)
		}
	}
	delete(cm.writeMu, conn)
}

func (cm *ConnectionManager) IsSeated(gameID string, conn *websocket.Conn) bool {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	current, ok := cm.connections[gameID]
	return ok && current == conn
}

// Send writes msg to conn under its write lock. Unregistered sockets are
// ignored.
func (cm *ConnectionManager) Send(conn *websocket.Conn, msg ServerMessage) error {
	cm.mu.RLock()
	mu, ok := cm.writeMu[conn]
	cm.mu.RUnlock()
	if !ok {
		return nil
	}

	mu.Lock()
	defer mu.Unlock()

	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(msg)
}

// Ping sends a websocket ping under the write lock.
func (cm *ConnectionManager) Ping(conn *websocket.Conn) error {
	cm.mu.RLock()
	mu, ok := cm.writeMu[conn]
	cm.mu.RUnlock()
	if !ok {
		return websocket.ErrCloseSent
	}

	mu.Lock()
	defer mu.Unlock()
	return conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}
