package view

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/domain"
)

var ErrCardIdle = errors.New("card is not selecting a quantity")

type CardMode int

const (
	CardIdle CardMode = iota
	CardSelecting
)

func (m CardMode) String() string {
	if m == CardSelecting {
		return "selecting"
	}
	return "idle"
}

type CardState struct {
	Mode     CardMode
	Quantity int
}

// Cards tracks the add-to-cart control of every product card. Cards not
// present in the map are idle.
type Cards struct {
	states map[string]CardState
}

func NewCards() *Cards {
	return &Cards{states: make(map[string]CardState)}
}

func (c *Cards) State(productID string) CardState {
	if s, ok := c.states[productID]; ok {
		return s
	}
	return CardState{Mode: CardIdle}
}

// Select opens the quantity selector with a quantity of one.
func (c *Cards) Select(p domain.Product) error {
	if !p.InStock() {
		return fmt.Errorf("product %s: %w", p.ID, cart.ErrOutOfStock)
	}
	c.states[p.ID] = CardState{Mode: CardSelecting, Quantity: 1}
	return nil
}

// Adjust moves the selected quantity by delta, kept within [1, stock].
func (c *Cards) Adjust(p domain.Product, delta int) (int, error) {
	s := c.State(p.ID)
	if s.Mode != CardSelecting {
		return 0, fmt.Errorf("product %s: %w", p.ID, ErrCardIdle)
	}
	s.Quantity = min(max(s.Quantity+delta, 1), max(p.Stock, 1))
	c.states[p.ID] = s
	return s.Quantity, nil
}

// Confirm adds the selected quantity to the store. The card returns to
// idle whether or not the store accepted it.
func (c *Cards) Confirm(ctx context.Context, p domain.Product, store *cart.Store) error {
	s := c.State(p.ID)
	if s.Mode != CardSelecting {
		return fmt.Errorf("product %s: %w", p.ID, ErrCardIdle)
	}
	delete(c.states, p.ID)
	return store.AddOrIncrease(ctx, p.ID, p.Title, p.Price, s.Quantity, p.Stock)
}

func (c *Cards) Reset(productID string) {
	delete(c.states, productID)
}

// Retain drops states of products that are no longer in the catalog.
func (c *Cards) Retain(products []domain.Product) {
	keep := make(map[string]struct{}, len(products))
	for _, p := range products {
		keep[p.ID] = struct{}{}
	}
	for id := range c.states {
		if _, ok := keep[id]; !ok {
			delete(c.states, id)
		}
	}
}

type ProductCardView struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Price       string  `json:"price"`
	Rating      float64 `json:"rating"`
	Thumbnail   string  `json:"thumbnail"`
	Category    string  `json:"category"`
	Brand       string  `json:"brand,omitempty"`
	Stock       int     `json:"stock"`
	InCart      int     `json:"inCart"`
	Selecting   bool    `json:"selecting"`
	Quantity    int     `json:"quantity,omitempty"`
	CanAdd      bool    `json:"canAdd"`
	CanIncrease bool    `json:"canIncrease"`
	CanDecrease bool    `json:"canDecrease"`
}

// RenderCatalog projects products into cards. inCart may be nil.
func RenderCatalog(products []domain.Product, cards *Cards, inCart func(productID string) int) []ProductCardView {
	out := make([]ProductCardView, 0, len(products))
	for _, p := range products {
		card := ProductCardView{
			ID:        p.ID,
			Title:     p.Title,
			Price:     domain.FormatMoney(p.Price),
			Rating:    p.Rating,
			Thumbnail: p.ThumbnailOrPlaceholder(),
			Category:  p.Category,
			Brand:     p.Brand,
			Stock:     p.Stock,
			CanAdd:    p.InStock(),
		}
		if inCart != nil {
			card.InCart = inCart(p.ID)
		}
		if cards != nil {
			if s := cards.State(p.ID); s.Mode == CardSelecting {
				card.Selecting = true
				card.CanAdd = false
				card.Quantity = s.Quantity
				card.CanIncrease = s.Quantity < p.Stock
				card.CanDecrease = s.Quantity > 1
			}
		}
		out = append(out, card)
	}
	return out
}

type CatalogView struct {
	Products     []ProductCardView `json:"products"`
	Page         int               `json:"page"`
	TotalPages   int               `json:"totalPages"`
	ItemsPerPage int               `json:"itemsPerPage"`
	TotalItems   int               `json:"totalItems"`
	Categories   []string          `json:"categories"`
	MinPrice     string            `json:"minPrice"`
	MaxPrice     string            `json:"maxPrice"`
	Available    bool              `json:"available"`
	// Stale is set while the catalog is served from the stored snapshot.
	Stale     bool       `json:"stale"`
	FetchedAt *time.Time `json:"fetchedAt,omitempty"`
}
