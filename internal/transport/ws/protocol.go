package ws

import "encoding/json"

// Envelope is the wire format in both directions. Client requests that
// carry a seq receive an ack envelope echoing the same seq; server
// pushes omit it. Seq is a pointer so a client-chosen seq of 0 still
// round-trips instead of being dropped as a zero value.
type Envelope struct {
	T   string          `json:"t"`
	Seq *int64          `json:"seq,omitempty"`
	P   json.RawMessage `json:"p,omitempty"`
}

// Client message types.
const (
	MsgHandshake     = "handshake"
	MsgQueueJoin     = "queue_join"
	MsgQueueLeave    = "queue_leave"
	MsgIntent        = "intent"
	MsgOfflineResult = "offline_result"
	MsgShopBuy       = "shop_buy"
	MsgShopEquip     = "shop_equip"

	MsgAck = "ack"
)

// Ack error codes.
const (
	CodeInvalidProfile = "invalid_profile"
	CodeNotAuthed      = "not_authed"
	CodeRankLocked     = "rank_locked"
	CodeAlreadyInMatch = "already_in_match"
	CodeCooldown       = "cooldown"
	CodeNoItem         = "no_item"
	CodeNoRubies       = "no_rubies"
	CodeNotOwned       = "not_owned"
	CodeBadRequest     = "bad_request"
)

// HandshakeRequest binds a session to a player identity. Token, when
// present, re-binds a reconnecting client without trusting the id field.
type HandshakeRequest struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Token string `json:"token,omitempty"`
}

type QueueJoinRequest struct {
	Ranked bool `json:"ranked"`
}

type OfflineResultRequest struct {
	Won bool `json:"won"`
}

type ShopRequest struct {
	Item string `json:"item"`
}

// AckPayload reports the outcome of a client request. Data carries the
// success result or machine-readable error details (needLevel, waitMs).
type AckPayload struct {
	OK      bool        `json:"ok"`
	Code    string      `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}
