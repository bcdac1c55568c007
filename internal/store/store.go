// Package store holds the in-memory product catalog: products, ingredients
// and suppliers.
//
// A Store is safe for concurrent use. Readers get copies of the stored
// records; AddProduct takes the write lock for the whole update.
package store

import (
	"errors"
	"fmt"
	"sync"
)

var (
	ErrNotFound       = errors.New("store: not found")
	ErrDuplicateID    = errors.New("store: duplicate id")
	ErrMissingVariant = errors.New("store: product has no variant")
)

// Seed is the initial content of a Store.
type Seed struct {
	Products    []Product
	Ingredients []Ingredient
	Suppliers   []Supplier
}

// Store is the catalog store.
type Store struct {
	mu          sync.RWMutex
	products    []Product
	ingredients []Ingredient
	suppliers   []Supplier

	productIdx    map[string]int
	ingredientIdx map[string]int
	supplierIdx   map[string]int
}

// New builds a store from seed. The seed slices are copied.
func New(seed Seed) (*Store, error) {
	s := &Store{
		productIdx:    make(map[string]int, len(seed.Products)),
		ingredientIdx: make(map[string]int, len(seed.Ingredients)),
		supplierIdx:   make(map[string]int, len(seed.Suppliers)),
	}

	for _, sup := range seed.Suppliers {
		if _, ok := s.supplierIdx[sup.ID]; ok {
			return nil, fmt.Errorf("supplier %q: %w", sup.ID, ErrDuplicateID)
		}
		s.supplierIdx[sup.ID] = len(s.suppliers)
		s.suppliers = append(s.suppliers, sup)
	}
	for _, ing := range seed.Ingredients {
		if _, ok := s.ingredientIdx[ing.ID]; ok {
			return nil, fmt.Errorf("ingredient %q: %w", ing.ID, ErrDuplicateID)
		}
		s.ingredientIdx[ing.ID] = len(s.ingredients)
		s.ingredients = append(s.ingredients, ing.clone())
	}
	for _, p := range seed.Products {
		if p.Variant == nil {
			return nil, fmt.Errorf("product %q: %w", p.ID, ErrMissingVariant)
		}
		if _, ok := s.productIdx[p.ID]; ok {
			return nil, fmt.Errorf("product %q: %w", p.ID, ErrDuplicateID)
		}
		s.productIdx[p.ID] = len(s.products)
		s.products = append(s.products, p.clone())
	}
	return s, nil
}

// Products returns every product in store order.
func (s *Store) Products() []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Product, len(s.products))
	for i, p := range s.products {
		out[i] = p.clone()
	}
	return out
}

// Product looks up a product by id.
func (s *Store) Product(id string) (Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.productIdx[id]
	if !ok {
		return Product{}, fmt.Errorf("product %q: %w", id, ErrNotFound)
	}
	return s.products[i].clone(), nil
}

// Ingredients returns every ingredient in store order.
func (s *Store) Ingredients() []Ingredient {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Ingredient, len(s.ingredients))
	for i, ing := range s.ingredients {
		out[i] = ing.clone()
	}
	return out
}

// Ingredient looks up an ingredient by id.
func (s *Store) Ingredient(id string) (Ingredient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.ingredientIdx[id]
	if !ok {
		return Ingredient{}, fmt.Errorf("ingredient %q: %w", id, ErrNotFound)
	}
	return s.ingredients[i].clone(), nil
}

// Suppliers returns every supplier in store order.
func (s *Store) Suppliers() []Supplier {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]Supplier(nil), s.suppliers...)
}

// Supplier looks up a supplier by id.
func (s *Store) Supplier(id string) (Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.supplierIdx[id]
	if !ok {
		return Supplier{}, fmt.Errorf("supplier %q: %w", id, ErrNotFound)
	}
	return s.suppliers[i], nil
}

// AddProduct appends p to the catalog and records it on the ingredients its
// recipe references. Every referenced ingredient must exist.
func (s *Store) AddProduct(p Product) (Product, error) {
	if p.Variant == nil {
		return Product{}, fmt.Errorf("product %q: %w", p.ID, ErrMissingVariant)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.productIdx[p.ID]; ok {
		return Product{}, fmt.Errorf("product %q: %w", p.ID, ErrDuplicateID)
	}
	for _, entry := range p.Ingredients {
		if _, ok := s.ingredientIdx[entry.IngredientID]; !ok {
			return Product{}, fmt.Errorf("ingredient %q: %w", entry.IngredientID, ErrNotFound)
		}
	}

	stored := p.clone()
	s.productIdx[stored.ID] = len(s.products)
	s.products = append(s.products, stored)

	for _, entry := range stored.Ingredients {
		ing := &s.ingredients[s.ingredientIdx[entry.IngredientID]]
		if !containsString(ing.ProductIDs, stored.ID) {
			ing.ProductIDs = append(ing.ProductIDs, stored.ID)
		}
	}
	return stored.clone(), nil
}

func containsString(values []string, v string) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}
	return false
}
