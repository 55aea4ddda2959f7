package service

// Broadcaster delivers outbound messages to connected sessions
// (implemented by the websocket hub; kept as an interface to avoid an
// import cycle).
type Broadcaster interface {
	SendToSession(sessionID string, msgType string, payload interface{})
}
