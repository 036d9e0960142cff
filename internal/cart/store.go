package cart

import (
	"strings"
	"sync"
)

// Store holds the authoritative in-memory carts keyed by owner. The owner
// key is the shopper's user id for authenticated sessions or an anonymous
// session key for guests.
type Store struct {
	mu    sync.Mutex
	carts map[string]*Cart
}

// NewStore returns an empty cart store.
func NewStore() *Store {
	return &Store{carts: map[string]*Cart{}}
}

// WithCart runs fn against the owner's cart while holding the store lock,
// creating the cart on first use. fn must not retain the *Cart.
func (s *Store) WithCart(ownerKey string, fn func(*Cart)) {
	key := strings.TrimSpace(ownerKey)
	s.mu.Lock()
	defer s.mu.Unlock()
	cart, ok := s.carts[key]
	if !ok {
		cart = NewCart()
		s.carts[key] = cart
	}
	fn(cart)
}

// Snapshot returns a copy of the owner's cart lines with derived totals.
func (s *Store) Snapshot(ownerKey string) ([]Line, int, int) {
	var lines []Line
	var total, count int
	s.WithCart(ownerKey, func(c *Cart) {
		lines = c.Lines()
		total = c.TotalCents()
		count = c.ItemCount()
	})
	return lines, total, count
}

// Drop discards the owner's cart entirely.
func (s *Store) Drop(ownerKey string) {
	key := strings.TrimSpace(ownerKey)
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, key)
}
