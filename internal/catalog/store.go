package catalog

import (
	"context"
	"errors"
	"fmt"
)

var errStoreNotLoaded = errors.New("catalog not loaded")

// Store is the read-only product snapshot. It is built once and never mutated,
// so concurrent readers need no locking.
type Store struct {
	products []Product
	byID     map[string]int
}

func NewStore(products []Product) (*Store, error) {
	s := &Store{
		products: make([]Product, 0, len(products)),
		byID:     make(map[string]int, len(products)),
	}

	for i, p := range products {
		if p.ID == "" {
			return nil, fmt.Errorf("product #%d: empty id", i)
		}
		if p.Name == "" {
			return nil, fmt.Errorf("product %q: empty name", p.ID)
		}
		if _, dup := s.byID[p.ID]; dup {
			return nil, fmt.Errorf("product %q: duplicate id", p.ID)
		}
		if p.Price.IsNegative() || p.OldPrice.IsNegative() {
			return nil, fmt.Errorf("product %q: negative price", p.ID)
		}
		if p.Stock < 0 {
			return nil, fmt.Errorf("product %q: negative stock", p.ID)
		}

		if p.Tags == nil {
			p.Tags = []string{}
		}

		s.byID[p.ID] = len(s.products)
		s.products = append(s.products, p)
	}

	return s, nil
}

// Open loads the catalog from src and builds the store. Any failure is a
// *StartupError.
func Open(ctx context.Context, src Source) (*Store, error) {
	products, err := src.Load(ctx)
	if err != nil {
		return nil, &StartupError{Source: src.Name(), Err: err}
	}

	s, err := NewStore(products)
	if err != nil {
		return nil, &StartupError{Source: src.Name(), Err: err}
	}
	return s, nil
}

// All returns every product in load order. The slice is shared; callers must
// not modify it.
func (s *Store) All() []Product {
	return s.products
}

func (s *Store) Get(id string) (Product, error) {
	i, ok := s.byID[id]
	if !ok {
		return Product{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.products[i], nil
}

func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.products)
}

func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.byID == nil {
		return errStoreNotLoaded
	}
	return ctx.Err()
}
