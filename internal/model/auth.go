package model

import "github.com/golang-jwt/jwt/v5"

// SessionClaims are JWT claims binding a websocket session to a player identity.
type SessionClaims struct {
	PlayerID string `json:"playerId"`
	jwt.RegisteredClaims
}
