package ws

import (
	"encoding/json"
	"log"
	"sync"
)

const sendBuffer = 256

// Session is one live WebSocket connection. PlayerID is empty until the
// handshake binds an identity.
type Session struct {
	ID       string
	PlayerID string
	Send     chan []byte
}

// Hub tracks live sessions and routes outbound messages to them. It
// implements service.Broadcaster; the orchestrator only ever addresses
// sessions by id.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewHub() *Hub {
	return &Hub{sessions: make(map[string]*Session)}
}

// Register adds a session to the routing table.
func (h *Hub) Register(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sessions[s.ID] = s
	log.Printf("session %s connected", s.ID)
}

// Unregister drops a session. Closing Send stops its write pump.
func (h *Hub) Unregister(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if existing, ok := h.sessions[s.ID]; ok && existing == s {
		delete(h.sessions, s.ID)
		close(s.Send)
		log.Printf("session %s disconnected", s.ID)
	}
}

// Bind records the player identity established by a handshake.
func (h *Hub) Bind(sessionID, playerID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if s, ok := h.sessions[sessionID]; ok {
		s.PlayerID = playerID
	}
}

// IsConnected reports whether the session is still registered. The
// matchmaking sweep uses it to evict orphaned queue entries.
func (h *Hub) IsConnected(sessionID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.sessions[sessionID]
	return ok
}

// SendToSession marshals a push envelope and queues it. A full send
// buffer drops the message; state pushes are superseded every tick.
func (h *Hub) SendToSession(sessionID string, msgType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("marshal %s payload: %v", msgType, err)
		return
	}
	frame, err := json.Marshal(Envelope{T: msgType, P: data})
	if err != nil {
		return
	}

	h.mu.RLock()
	s, ok := h.sessions[sessionID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	select {
	case s.Send <- frame:
	default:
	}
}

// sendAck queues a reply envelope for a client request, echoing the
// request's seq.
func (h *Hub) sendAck(s *Session, seq *int64, ack AckPayload) {
	data, err := json.Marshal(ack)
	if err != nil {
		return
	}
	frame, err := json.Marshal(Envelope{T: MsgAck, Seq: seq, P: data})
	if err != nil {
		return
	}
	select {
	case s.Send <- frame:
	default:
	}
}
