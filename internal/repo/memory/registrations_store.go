package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/geocoder89/meetuphub/internal/domain/page"
	"github.com/geocoder89/meetuphub/internal/domain/registration"
)

// RegistrationsStore is the in-memory twin of the postgres repo. It backs
// the service unit tests and local runs without a database.
type RegistrationsStore struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]registration.Registration
}

func NewRegistrationsStore() *RegistrationsStore {
	return &RegistrationsStore{
		nextID: 1,
		items:  make(map[int64]registration.Registration),
	}
}

func (s *RegistrationsStore) Create(ctx context.Context, reg registration.Registration) (registration.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reg.ID = s.nextID
	s.nextID++
	s.items[reg.ID] = reg

	return reg, nil
}

func (s *RegistrationsStore) GetByID(ctx context.Context, id int64) (registration.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.items[id]

	if !ok {
		return registration.Registration{}, registration.ErrNotFound
	}

	return r, nil
}

func (s *RegistrationsStore) Update(ctx context.Context, reg registration.Registration) (registration.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.items[reg.ID]

	if !ok {
		return registration.Registration{}, registration.ErrNotFound
	}

	s.items[reg.ID] = reg

	return reg, nil
}

func (s *RegistrationsStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.items[id]

	if !ok {
		return registration.ErrNotFound
	}

	delete(s.items, id)

	return nil
}

func (s *RegistrationsStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.items {
		if strings.EqualFold(r.Email, email) {
			return true, nil
		}
	}

	return false, nil
}

func (s *RegistrationsStore) FindByEmail(ctx context.Context, email string) (registration.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.sortedLocked() {
		if strings.EqualFold(r.Email, email) {
			return r, nil
		}
	}

	return registration.Registration{}, registration.ErrNotFound
}

func (s *RegistrationsStore) FindByAttribute(ctx context.Context, attribute string) ([]registration.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []registration.Registration{}

	for _, r := range s.sortedLocked() {
		if strings.EqualFold(r.Attribute, attribute) {
			out = append(out, r)
		}
	}

	return out, nil
}

func (s *RegistrationsStore) Find(ctx context.Context, filter registration.Filter, req page.Request) (page.Page[registration.Registration], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := []registration.Registration{}

	for _, r := range s.sortedLocked() {
		if containsFold(r.Name, filter.Name) &&
			containsFold(r.Email, filter.Email) &&
			containsFold(r.Attribute, filter.Attribute) {
			matched = append(matched, r)
		}
	}

	return page.New(slicePage(matched, req), len(matched), req), nil
}

// sortedLocked snapshots the map in id order; callers hold the lock.
func (s *RegistrationsStore) sortedLocked() []registration.Registration {
	out := make([]registration.Registration, 0, len(s.items))

	for _, r := range s.items {
		out = append(out, r)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out
}

// containsFold mirrors the SQL filter semantics: a nil field matches
// everything, a set field matches as a case-insensitive substring.
func containsFold(value string, want *string) bool {
	if want == nil {
		return true
	}

	return strings.Contains(strings.ToLower(value), strings.ToLower(*want))
}

func slicePage[T any](items []T, req page.Request) []T {
	start := req.Offset()

	if start >= len(items) {
		return []T{}
	}

	end := start + req.Size

	if end > len(items) {
		end = len(items)
	}

	return items[start:end]
}
