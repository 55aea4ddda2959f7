package model

// SkinItem is one purchasable rock skin in the catalog.
type SkinItem struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price int64   `json:"price"`
	Color string  `json:"color"`
	Trail float64 `json:"trail"`
}

// DefaultSkinID is owned by every player and equipped on first handshake.
const DefaultSkinID = "default"
