// Package memory keeps every repository in process behind one lock. Each write
// works on copies and only publishes them when it succeeds, so a failed call
// leaves the store as it found it, like a rolled back transaction.
package memory

import (
	"sort"
	"sync"

	"github.com/fekuna/blueice-inventory-service/internal/model"
)

type walletKey struct {
	customerID string
	productID  string
}

type deltaKey struct {
	orderID   string
	productID string
}

type Store struct {
	mu        sync.RWMutex
	products  map[string]model.Product
	movements []model.StockMovement
	routes    map[string]model.Route
	customers map[string]model.RouteCustomer
	wallets   map[walletKey]model.BottleWallet
	deltas    map[deltaKey]model.BottleDelta
}

func NewStore() *Store {
	return &Store{
		products:  make(map[string]model.Product),
		routes:    make(map[string]model.Route),
		customers: make(map[string]model.RouteCustomer),
		wallets:   make(map[walletKey]model.BottleWallet),
		deltas:    make(map[deltaKey]model.BottleDelta),
	}
}

func (s *Store) Inventory() *InventoryRepository { return &InventoryRepository{s: s} }
func (s *Store) Products() *ProductRepository    { return &ProductRepository{s: s} }
func (s *Store) Wallets() *WalletRepository      { return &WalletRepository{s: s} }
func (s *Store) Routes() *RouteRepository        { return &RouteRepository{s: s} }

// AddProduct seeds a product as is, stock counters included.
func (s *Store) AddProduct(p model.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
}

func (s *Store) AddRoute(r model.Route) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[r.ID] = r
}

// AddCustomer seeds a customer profile. RouteID may be empty.
func (s *Store) AddCustomer(c model.RouteCustomer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customers[c.ID] = c
}

// SetWallet overwrites a wallet balance without recording a delta.
func (s *Store) SetWallet(customerID, productID string, balance int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wallets[walletKey{customerID, productID}] = model.BottleWallet{
		CustomerID:    customerID,
		ProductID:     productID,
		BottleBalance: balance,
	}
}

// Movements returns the whole log, oldest first.
func (s *Store) Movements() []model.StockMovement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.StockMovement, len(s.movements))
	copy(out, s.movements)
	return out
}

func (s *Store) Product(id string) (model.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	return p, ok
}

func (s *Store) Customer(id string) (model.RouteCustomer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.customers[id]
	return c, ok
}

// sortedProducts must be called with the lock held.
func (s *Store) sortedProducts() []model.Product {
	out := make([]model.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}
