// Package warehouse implements the supply-requisition domain logic: per-user
// carts, tiered quantity limits and the history-derived cooldown. It has no
// Discord dependency beyond message decoding, so every rule is unit-testable.
package warehouse

import (
	"fmt"
	"sync"
	"time"
)

// Holder is the submitter's identity snapshot, captured when a line is
// added. 快照在入单时拍下, 提交前的晋升或调职不影响已加入的行。
type Holder struct {
	Name     string
	Static   string
	Position string
	Rank     string
}

// Item is one cart line. Lines are merged on (Category, Name).
type Item struct {
	Category string
	Name     string
	Quantity int
	Holder   Holder
}

// Cart is one user's in-progress requisition.
type Cart struct {
	UserID    string
	Items     []Item
	UpdatedAt time.Time
}

// ValidationError carries a user-facing reason for a rejected cart edit.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// Store holds the live carts. Carts are process-local: losing them on restart
// is acceptable, a user simply starts over.
type Store struct {
	mu    sync.Mutex
	carts map[string]*Cart
	ttl   time.Duration
}

// NewStore creates a cart store whose carts expire after ttl of inactivity.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		carts: make(map[string]*Cart),
		ttl:   ttl,
	}
}

// Get returns the user's cart, or nil if they have none.
func (s *Store) Get(userID string) *Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.carts[userID]
}

// Add merges an item into the user's cart, creating the cart when needed.
// The returned quantity is the line's total after merging.
func (s *Store) Add(userID, category, name string, qty int, holder Holder) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, ok := s.carts[userID]
	if !ok {
		cart = &Cart{UserID: userID}
		s.carts[userID] = cart
	}
	cart.UpdatedAt = time.Now()

	for i := range cart.Items {
		if cart.Items[i].Category == category && cart.Items[i].Name == name {
			cart.Items[i].Quantity += qty
			return cart.Items[i].Quantity
		}
	}
	cart.Items = append(cart.Items, Item{Category: category, Name: name, Quantity: qty, Holder: holder})
	return qty
}

// Existing returns the quantity the user already has in cart for an item.
func (s *Store) Existing(userID, category, name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, ok := s.carts[userID]
	if !ok {
		return 0
	}
	for _, it := range cart.Items {
		if it.Category == category && it.Name == name {
			return it.Quantity
		}
	}
	return 0
}

// Remove deletes the cart line at the given 1-based index.
func (s *Store) Remove(userID string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, ok := s.carts[userID]
	if !ok || len(cart.Items) == 0 {
		return &ValidationError{Reason: "购物车是空的"}
	}
	if index < 1 || index > len(cart.Items) {
		return &ValidationError{Reason: fmt.Sprintf("序号无效, 请输入 1 到 %d 之间的数字", len(cart.Items))}
	}
	cart.Items = append(cart.Items[:index-1], cart.Items[index:]...)
	cart.UpdatedAt = time.Now()
	return nil
}

// Clear drops the user's cart entirely.
func (s *Store) Clear(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, userID)
}

// Sweep removes carts idle longer than the store TTL and returns how many
// were dropped.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var dropped int
	for id, cart := range s.carts {
		if time.Since(cart.UpdatedAt) > s.ttl {
			delete(s.carts, id)
			dropped++
		}
	}
	return dropped
}
