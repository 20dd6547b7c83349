package store

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/user-auth-service/internal/model"
)

// ProductStore is the in-memory product catalog.  Like the user directory it
// is an explicit store object with an injected lifecycle; no globals.
type ProductStore struct {
	mu       sync.RWMutex
	products map[string]*model.Product
}

// NewProductStore creates an empty catalog.
func NewProductStore() *ProductStore {
	return &ProductStore{products: make(map[string]*model.Product)}
}

// ProductFilters narrows FindAll results.  Nil fields are ignored.
type ProductFilters struct {
	Category  string
	InStock   *bool
	MinPrice  *float64
	MaxPrice  *float64
	CreatedBy string
}

// ProductPatch describes a partial update.  Nil fields are left untouched.
type ProductPatch struct {
	Name        *string
	Description *string
	Price       *float64
	Category    *string
	InStock     *bool
}

func (f ProductFilters) matches(p *model.Product) bool {
	if f.Category != "" && !strings.Contains(strings.ToLower(p.Category), strings.ToLower(f.Category)) {
		return false
	}
	if f.InStock != nil && p.InStock != *f.InStock {
		return false
	}
	if f.MinPrice != nil && p.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}
	if f.CreatedBy != "" && p.CreatedBy != f.CreatedBy {
		return false
	}
	return true
}

// Create inserts a product owned by the given user and returns a copy.
func (s *ProductStore) Create(p *model.Product, createdBy string) *model.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	cp := *p
	cp.ID = uuid.NewString()
	cp.CreatedBy = createdBy
	cp.CreatedAt = now
	cp.UpdatedAt = now
	s.products[cp.ID] = &cp
	out := cp
	return &out
}

// FindByID returns a copy of the product, or nil when absent.
func (s *ProductStore) FindByID(id string) *model.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return nil
	}
	cp := *p
	return &cp
}

// FindAll returns copies of every product passing the filters.
func (s *ProductStore) FindAll(f ProductFilters) []*model.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.Product, 0, len(s.products))
	for _, p := range s.products {
		if f.matches(p) {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out
}

// FindByCategory returns products whose category matches case-insensitively.
func (s *ProductStore) FindByCategory(category string) []*model.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*model.Product
	for _, p := range s.products {
		if strings.EqualFold(p.Category, category) {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out
}

// FindByCreator returns products created by the given user.
func (s *ProductStore) FindByCreator(userID string) []*model.Product {
	return s.FindAll(ProductFilters{CreatedBy: userID})
}

// Update applies a patch and returns the updated copy, or nil when absent.
func (s *ProductStore) Update(id string, patch ProductPatch) *model.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.InStock != nil {
		p.InStock = *patch.InStock
	}
	p.UpdatedAt = time.Now().UTC()
	cp := *p
	return &cp
}

// Delete removes the product and returns the deleted copy, or nil.
func (s *ProductStore) Delete(id string) *model.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil
	}
	delete(s.products, id)
	cp := *p
	return &cp
}

// CanModify reports whether the user may change the product: admins always,
// everyone else only for products they created.
func (s *ProductStore) CanModify(id, userID, role string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return false
	}
	return role == model.RoleAdmin || p.CreatedBy == userID
}

// Categories returns the distinct category names in the catalog.
func (s *ProductStore) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]bool)
	var out []string
	for _, p := range s.products {
		if !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	return out
}

// Count returns the number of products in the catalog.
func (s *ProductStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products)
}
