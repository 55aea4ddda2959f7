package ws

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"rockduel/internal/game"
	"rockduel/internal/matchmaking"
	"rockduel/internal/reward"
	"rockduel/internal/service"
	"rockduel/internal/store"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096

	// intentMinInterval drops intent updates arriving faster than the
	// simulation can consume them.
	intentMinInterval = 20 * time.Millisecond
)

// Handler upgrades connections and runs the per-session message loop.
type Handler struct {
	hub      *Hub
	orch     *service.Orchestrator
	authSvc  *service.AuthService
	shopSvc  *service.ShopService
	upgrader websocket.Upgrader
}

func NewHandler(hub *Hub, orch *service.Orchestrator, authSvc *service.AuthService, shopSvc *service.ShopService, allowedOrigins []string) *Handler {
	return &Handler{
		hub:     hub,
		orch:    orch,
		authSvc: authSvc,
		shopSvc: shopSvc,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set[origin]
	}
}

// Serve handles GET /ws.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	wsConn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade: %v", err)
		return
	}

	session := &Session{
		ID:   "sess_" + uuid.NewString(),
		Send: make(chan []byte, sendBuffer),
	}
	h.hub.Register(session)

	go h.writePump(wsConn, session)
	go h.readPump(wsConn, session)
}

func (h *Handler) readPump(wsConn *websocket.Conn, s *Session) {
	defer func() {
		h.orch.Disconnect(s.ID, s.PlayerID)
		h.hub.Unregister(s)
		wsConn.Close()
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	var lastIntent time.Time
	for {
		_, data, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("session %s read: %v", s.ID, err)
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			continue
		}
		h.dispatch(s, env, &lastIntent)
	}
}

func (h *Handler) dispatch(s *Session, env Envelope, lastIntent *time.Time) {
	if env.T == MsgHandshake {
		h.handleHandshake(s, env)
		return
	}
	if s.PlayerID == "" {
		h.hub.sendAck(s, env.Seq, AckPayload{Code: CodeNotAuthed, Message: "handshake required"})
		return
	}

	switch env.T {
	case MsgIntent:
		now := time.Now()
		if now.Sub(*lastIntent) < intentMinInterval {
			return
		}
		*lastIntent = now
		var in game.Intent
		if err := json.Unmarshal(env.P, &in); err != nil {
			return
		}
		h.orch.UpdateIntent(s.PlayerID, in)

	case MsgQueueJoin:
		var req QueueJoinRequest
		if err := json.Unmarshal(env.P, &req); err != nil {
			h.hub.sendAck(s, env.Seq, AckPayload{Code: CodeBadRequest, Message: "malformed payload"})
			return
		}
		if err := h.orch.JoinQueue(s.ID, s.PlayerID, req.Ranked); err != nil {
			h.hub.sendAck(s, env.Seq, ackError(err))
			return
		}
		h.hub.sendAck(s, env.Seq, AckPayload{OK: true})

	case MsgQueueLeave:
		h.orch.LeaveQueue(s.ID, s.PlayerID)
		h.hub.sendAck(s, env.Seq, AckPayload{OK: true})

	case MsgOfflineResult:
		var req OfflineResultRequest
		if err := json.Unmarshal(env.P, &req); err != nil {
			h.hub.sendAck(s, env.Seq, AckPayload{Code: CodeBadRequest, Message: "malformed payload"})
			return
		}
		prof, lb, err := h.orch.OfflineResult(s.PlayerID, req.Won)
		if err != nil {
			h.hub.sendAck(s, env.Seq, ackError(err))
			return
		}
		h.hub.sendAck(s, env.Seq, AckPayload{OK: true, Data: map[string]interface{}{
			"profile":     prof,
			"leaderboard": lb,
		}})

	case MsgShopBuy, MsgShopEquip:
		var req ShopRequest
		if err := json.Unmarshal(env.P, &req); err != nil {
			h.hub.sendAck(s, env.Seq, AckPayload{Code: CodeBadRequest, Message: "malformed payload"})
			return
		}
		var prof interface{}
		var err error
		if env.T == MsgShopBuy {
			prof, err = h.shopSvc.Buy(s.PlayerID, req.Item, time.Now())
		} else {
			prof, err = h.shopSvc.Equip(s.PlayerID, req.Item, time.Now())
		}
		if err != nil {
			h.hub.sendAck(s, env.Seq, ackError(err))
			return
		}
		h.hub.sendAck(s, env.Seq, AckPayload{OK: true, Data: map[string]interface{}{"profile": prof}})
	}
}

func (h *Handler) handleHandshake(s *Session, env Envelope) {
	var req HandshakeRequest
	if err := json.Unmarshal(env.P, &req); err != nil {
		h.hub.sendAck(s, env.Seq, AckPayload{Code: CodeBadRequest, Message: "malformed payload"})
		return
	}

	playerID := req.ID
	if req.Token != "" {
		claims, err := h.authSvc.ValidateSessionToken(req.Token)
		if err == nil {
			playerID = claims.PlayerID
		}
	}

	prof, lb, err := h.orch.Handshake(playerID, req.Name)
	if err != nil {
		h.hub.sendAck(s, env.Seq, ackError(err))
		return
	}

	token, err := h.authSvc.GenerateSessionToken(prof.ID)
	if err != nil {
		log.Printf("session token for %s: %v", prof.ID, err)
	}

	h.hub.Bind(s.ID, prof.ID)

	h.hub.sendAck(s, env.Seq, AckPayload{OK: true, Data: map[string]interface{}{
		"profile":     prof,
		"leaderboard": lb,
		"catalog":     h.shopSvc.Catalog(),
		"token":       token,
	}})
}

// ackError maps service errors to wire codes with machine-readable
// details where the client can act on them.
func ackError(err error) AckPayload {
	var locked *matchmaking.RankLockedError
	if errors.As(err, &locked) {
		return AckPayload{
			Code:    CodeRankLocked,
			Message: err.Error(),
			Data:    map[string]interface{}{"needLevel": locked.NeedLevel},
		}
	}
	var cd *reward.CooldownError
	if errors.As(err, &cd) {
		return AckPayload{
			Code:    CodeCooldown,
			Message: err.Error(),
			Data:    map[string]interface{}{"waitMs": cd.Wait.Milliseconds()},
		}
	}

	code := CodeBadRequest
	switch {
	case errors.Is(err, service.ErrAlreadyInMatch):
		code = CodeAlreadyInMatch
	case errors.Is(err, service.ErrUnknownItem):
		code = CodeNoItem
	case errors.Is(err, service.ErrInsufficientRubies):
		code = CodeNoRubies
	case errors.Is(err, service.ErrSkinNotOwned):
		code = CodeNotOwned
	case errors.Is(err, service.ErrUnknownPlayer), errors.Is(err, store.ErrInvalidIdentity):
		code = CodeInvalidProfile
	}
	return AckPayload{Code: code, Message: err.Error()}
}

func (h *Handler) writePump(wsConn *websocket.Conn, s *Session) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-s.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := wsConn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
