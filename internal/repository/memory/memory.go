// Package memory provides in-process repositories used when no database
// is configured, and by tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/storefront/internal/domain"
	"github.com/spec-kit/storefront/internal/repository"
)

// Store keeps users and products in maps guarded by a single lock.
type Store struct {
	mu       sync.RWMutex
	users    map[string]domain.User
	emails   map[string]string
	products map[string]domain.Product
	now      func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		users:    make(map[string]domain.User),
		emails:   make(map[string]string),
		products: make(map[string]domain.Product),
		now:      time.Now,
	}
}

// Users returns the store's user repository view.
func (s *Store) Users() repository.UserRepository {
	return userRepository{s}
}

// Products returns the store's product repository view.
func (s *Store) Products() repository.ProductRepository {
	return productRepository{s}
}

type userRepository struct{ s *Store }

func (r userRepository) Create(_ context.Context, user *domain.User) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.emails[user.Email]; exists {
		return repository.ErrConflict
	}
	now := s.now()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now
	s.users[user.ID] = *user
	s.emails[user.Email] = user.ID
	return nil
}

func (r userRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (r userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	id, ok := r.s.emails[email]
	r.s.mu.RUnlock()
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return r.GetByID(ctx, id)
}

type productRepository struct{ s *Store }

func (r productRepository) Create(_ context.Context, product *domain.Product) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[product.VendorID]; !ok {
		// mirrors the vendor_id foreign key
		return pgx.ErrNoRows
	}
	now := s.now()
	product.ID = uuid.NewString()
	product.CreatedAt = now
	product.UpdatedAt = now
	s.products[product.ID] = *product
	return nil
}

func (r productRepository) Update(_ context.Context, product *domain.Product) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.products[product.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.Name = product.Name
	stored.Price = product.Price
	stored.Category = product.Category
	stored.UpdatedAt = s.now()
	s.products[product.ID] = stored
	product.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r productRepository) Delete(_ context.Context, id string) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(s.products, id)
	return nil
}

func (r productRepository) GetByID(_ context.Context, id string) (*domain.Product, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	product, ok := s.products[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &product, nil
}

func (r productRepository) List(_ context.Context, filter repository.ProductFilter) ([]domain.Product, error) {
	matched := r.matching(filter)
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID < matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	limit, offset := filter.Limit, filter.Offset
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(matched) {
		return []domain.Product{}, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func (r productRepository) Count(_ context.Context, filter repository.ProductFilter) (int, error) {
	return len(r.matching(filter)), nil
}

func (r productRepository) matching(filter repository.ProductFilter) []domain.Product {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	var search string
	if filter.Search != nil {
		search = strings.ToLower(strings.TrimSpace(*filter.Search))
	}

	result := make([]domain.Product, 0, len(s.products))
	for _, product := range s.products {
		if filter.VendorID != nil && product.VendorID != *filter.VendorID {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(product.Name), search) &&
			!strings.Contains(strings.ToLower(product.Category), search) {
			continue
		}
		result = append(result, product)
	}
	return result
}
