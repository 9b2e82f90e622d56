package watch

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// ReloadMessage is sent to every connected client
type ReloadMessage struct {
	// Type is "reload" or "error"
	Type        string `json:"type"`
	Contract    string `json:"contract,omitempty"`
	Fingerprint string `json:"fingerprint,omitempty"`
	Previous    string `json:"previous,omitempty"`
	Error       string `json:"error,omitempty"`
	Timestamp   int64  `json:"timestamp"`
}

// ReloadServer pushes manifest reload notifications over WebSocket
type ReloadServer struct {
	connections map[*websocket.Conn]bool
	broadcast   chan *ReloadMessage
	register    chan *websocket.Conn
	unregister  chan *websocket.Conn
	done        chan struct{}
	closeOnce   sync.Once
	mutex       sync.RWMutex
	upgrader    websocket.Upgrader
	log         *zap.Logger
}

// NewReloadServer creates a reload server. Connections without an Origin
// header, from localhost, or from one of origins are accepted; "*" allows
// any origin.
func NewReloadServer(log *zap.Logger, origins []string) *ReloadServer {
	if log == nil {
		log = zap.NewNop()
	}
	rs := &ReloadServer{
		connections: make(map[*websocket.Conn]bool),
		broadcast:   make(chan *ReloadMessage, 256),
		register:    make(chan *websocket.Conn),
		unregister:  make(chan *websocket.Conn),
		done:        make(chan struct{}),
		log:         log.Named("reload"),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return originAllowed(r.Header.Get("Origin"), origins)
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}

	go rs.run()
	return rs
}

func originAllowed(origin string, allowed []string) bool {
	if origin == "" {
		return true
	}
	for _, o := range allowed {
		if o == "*" || o == origin {
			return true
		}
	}
	return strings.HasPrefix(origin, "http://localhost") ||
		strings.HasPrefix(origin, "https://localhost") ||
		strings.HasPrefix(origin, "http://127.0.0.1") ||
		strings.HasPrefix(origin, "https://127.0.0.1")
}

func (rs *ReloadServer) run() {
	for {
		select {
		case <-rs.done:
			return

		case conn := <-rs.register:
			rs.mutex.Lock()
			rs.connections[conn] = true
			n := len(rs.connections)
			rs.mutex.Unlock()
			rs.log.Debug("client connected", zap.Int("clients", n))

		case conn := <-rs.unregister:
			rs.mutex.Lock()
			if _, ok := rs.connections[conn]; ok {
				delete(rs.connections, conn)
				conn.Close()
			}
			n := len(rs.connections)
			rs.mutex.Unlock()
			rs.log.Debug("client disconnected", zap.Int("clients", n))

		case message := <-rs.broadcast:
			rs.sendToAll(message)
		}
	}
}

func (rs *ReloadServer) sendToAll(message *ReloadMessage) {
	payload, err := json.Marshal(message)
	if err != nil {
		rs.log.Error("failed to marshal message", zap.Error(err))
		return
	}

	rs.mutex.RLock()
	var failed []*websocket.Conn
	for conn := range rs.connections {
		_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			rs.log.Debug("failed to send message", zap.Error(err))
			failed = append(failed, conn)
		}
	}
	rs.mutex.RUnlock()

	if len(failed) > 0 {
		rs.mutex.Lock()
		for _, conn := range failed {
			if _, ok := rs.connections[conn]; ok {
				conn.Close()
				delete(rs.connections, conn)
			}
		}
		rs.mutex.Unlock()
	}
}

// ServeHTTP upgrades the request to a WebSocket subscription
func (rs *ReloadServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := rs.upgrader.Upgrade(w, r, nil)
	if err != nil {
		rs.log.Debug("failed to upgrade connection", zap.Error(err))
		return
	}

	select {
	case rs.register <- conn:
	case <-rs.done:
		conn.Close()
		return
	}
	go rs.readMessages(conn)
}

// readMessages drains the client so close frames and pongs are handled
func (rs *ReloadServer) readMessages(conn *websocket.Conn) {
	defer func() {
		select {
		case rs.unregister <- conn:
		case <-rs.done:
		}
	}()

	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				rs.log.Debug("websocket error", zap.Error(err))
			}
			return
		}
	}
}

func (rs *ReloadServer) send(m *ReloadMessage) {
	m.Timestamp = time.Now().Unix()
	select {
	case rs.broadcast <- m:
	case <-rs.done:
	}
}

// NotifyReload tells clients the served manifest changed
func (rs *ReloadServer) NotifyReload(contract, fingerprint, previous string) {
	rs.send(&ReloadMessage{
		Type:        "reload",
		Contract:    contract,
		Fingerprint: fingerprint,
		Previous:    previous,
	})
}

// NotifyError tells clients a reload failed and the old manifest stays
func (rs *ReloadServer) NotifyError(err error) {
	rs.send(&ReloadMessage{Type: "error", Error: err.Error()})
}

// ConnectionCount returns the number of active connections
func (rs *ReloadServer) ConnectionCount() int {
	rs.mutex.RLock()
	defer rs.mutex.RUnlock()
	return len(rs.connections)
}

// Close disconnects every client and stops the server. It is safe to call
// more than once.
func (rs *ReloadServer) Close() {
	rs.closeOnce.Do(func() {
		close(rs.done)

		rs.mutex.Lock()
		defer rs.mutex.Unlock()
		for conn := range rs.connections {
			conn.Close()
		}
		rs.connections = make(map[*websocket.Conn]bool)
	})
}
