package service

import (
	"errors"
	"time"

	"rockduel/internal/model"
	"rockduel/internal/store"
)

var (
	ErrUnknownItem        = errors.New("unknown shop item")
	ErrInsufficientRubies = errors.New("insufficient rubies")
	ErrSkinNotOwned       = errors.New("skin not owned")
	ErrUnknownPlayer      = errors.New("unknown player")
)

// ShopService sells and equips rock skins against player currency.
type ShopService struct {
	store *store.PlayerStore
}

func NewShopService(s *store.PlayerStore) *ShopService {
	return &ShopService{store: s}
}

// Catalog is the fixed skin catalog, sent with every handshake.
func (s *ShopService) Catalog() []model.SkinItem {
	return []model.SkinItem{
		{ID: model.DefaultSkinID, Name: "Basic Rock", Price: 0, Color: "#9aa0a6", Trail: 0.15},
		{ID: "ruby", Name: "Ruby Rock", Price: 120, Color: "#ff4b4b", Trail: 0.22},
		{ID: "emerald", Name: "Emerald Rock", Price: 160, Color: "#2ee59d", Trail: 0.22},
		{ID: "sapphire", Name: "Sapphire Rock", Price: 200, Color: "#4b7bff", Trail: 0.24},
		{ID: "gold", Name: "Gold Rock", Price: 260, Color: "#ffd34b", Trail: 0.26},
	}
}

func (s *ShopService) item(skinID string) (model.SkinItem, bool) {
	for _, it := range s.Catalog() {
		if it.ID == skinID {
			return it, true
		}
	}
	return model.SkinItem{}, false
}

// Buy purchases a skin. Buying an owned skin is an idempotent success;
// validation failures mutate nothing. The balance check and deduction
// run under a single store lock so concurrent buys from the same
// identity cannot drive the balance negative.
func (s *ShopService) Buy(playerID, skinID string, now time.Time) (model.Profile, error) {
	item, ok := s.item(skinID)
	if !ok {
		return model.Profile{}, ErrUnknownItem
	}

	err := s.store.Mutate(playerID, now, func(r *model.PlayerRecord) error {
		if r.OwnsSkin(skinID) {
			return nil
		}
		if r.Rubies < item.Price {
			return ErrInsufficientRubies
		}
		r.Rubies -= item.Price
		r.OwnedSkins = append(r.OwnedSkins, skinID)
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return model.Profile{}, ErrUnknownPlayer
		}
		return model.Profile{}, err
	}

	prof, _ := s.store.Profile(playerID)
	return prof, nil
}

// Equip selects an owned skin as the player's rock skin.
func (s *ShopService) Equip(playerID, skinID string, now time.Time) (model.Profile, error) {
	err := s.store.Mutate(playerID, now, func(r *model.PlayerRecord) error {
		if !r.OwnsSkin(skinID) {
			return ErrSkinNotOwned
		}
		r.RockSkin = skinID
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return model.Profile{}, ErrUnknownPlayer
		}
		return model.Profile{}, err
	}

	prof, _ := s.store.Profile(playerID)
	return prof, nil
}
