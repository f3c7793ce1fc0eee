package store

import (
	"context"
	"sync"

	cerrors "github.com/belos/catalog/internal/catalog/errors"
	"github.com/belos/catalog/internal/catalog/model"
)

// inMemory implements ProductStore with an insertion-ordered slice.
type inMemory struct {
	mu       sync.RWMutex
	products []model.Product
	index    map[int64]int
	lastID   int64
}

// NewInMemoryStore creates a new instance of ProductStore kept in process memory.
func NewInMemoryStore() ProductStore {
	return &inMemory{
		products: make([]model.Product, 0),
		index:    make(map[int64]int),
	}
}

func (s *inMemory) Create(_ context.Context, p model.Product) (*model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastID++
	p.ID = s.lastID
	s.index[p.ID] = len(s.products)
	s.products = append(s.products, p)
	return &p, nil
}

func (s *inMemory) FindAll(_ context.Context) ([]model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]model.Product, len(s.products))
	copy(list, s.products)
	return list, nil
}

func (s *inMemory) FindByID(_ context.Context, id int64) (*model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return nil, cerrors.ErrProductNotFound
	}
	p := s.products[i]
	return &p, nil
}

func (s *inMemory) Update(_ context.Context, p model.Product) (*model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[p.ID]
	if !ok {
		return nil, cerrors.ErrProductNotFound
	}
	s.products[i] = p
	return &p, nil
}

func (s *inMemory) DeleteByID(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return cerrors.ErrProductNotFound
	}
	s.products = append(s.products[:i], s.products[i+1:]...)
	delete(s.index, id)
	for j := i; j < len(s.products); j++ {
		s.index[s.products[j].ID] = j
	}
	return nil
}

// DeleteAll empties the store. The id counter keeps running.
func (s *inMemory) DeleteAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.products = make([]model.Product, 0)
	s.index = make(map[int64]int)
	return nil
}

func (s *inMemory) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.products)), nil
}

func (s *inMemory) Ping(_ context.Context) error {
	return nil
}
