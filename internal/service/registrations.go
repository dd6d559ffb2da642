package service

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/meetuphub/internal/domain/page"
	"github.com/geocoder89/meetuphub/internal/domain/registration"
)

// RegistrationStore is the slice of the persistence gateway the registration
// rules need. Postgres and memory repos both implement it.
type RegistrationStore interface {
	Create(ctx context.Context, reg registration.Registration) (registration.Registration, error)
	GetByID(ctx context.Context, id int64) (registration.Registration, error)
	Update(ctx context.Context, reg registration.Registration) (registration.Registration, error)
	Delete(ctx context.Context, id int64) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	FindByEmail(ctx context.Context, email string) (registration.Registration, error)
	FindByAttribute(ctx context.Context, attribute string) ([]registration.Registration, error)
	Find(ctx context.Context, filter registration.Filter, req page.Request) (page.Page[registration.Registration], error)
}

type Registrations struct {
	store RegistrationStore
}

func NewRegistrations(store RegistrationStore) *Registrations {
	return &Registrations{store: store}
}

// Save creates a new registration: the email must not exist yet, the
// registration date is stamped server-side and the version starts at 1.
func (s *Registrations) Save(ctx context.Context, req registration.CreateRegistrationRequest) (registration.Registration, error) {
	taken, err := s.store.ExistsByEmail(ctx, req.Email)

	if err != nil {
		return registration.Registration{}, err
	}

	if taken {
		return registration.Registration{}, registration.ErrEmailAlreadyExists
	}

	return s.store.Create(ctx, registration.NewFromCreateRequest(req))
}

func (s *Registrations) GetByID(ctx context.Context, id int64) (registration.Registration, error) {
	if id <= 0 {
		return registration.Registration{}, registration.ErrInvalidID
	}

	return s.store.GetByID(ctx, id)
}

// Delete removes a registration after the usual existence check, so a
// missing id surfaces as ErrNotFound rather than a silent no-op.
func (s *Registrations) Delete(ctx context.Context, id int64) error {
	_, err := s.GetByID(ctx, id)

	if err != nil {
		return err
	}

	return s.store.Delete(ctx, id)
}

// Update rebuilds the record at id. If nothing exists there it falls back to
// Save: update-of-absent is a documented upsert, not an error. On a real
// update the email may only collide with the record being updated itself,
// the version is incremented and the date re-stamped.
func (s *Registrations) Update(ctx context.Context, id int64, req registration.UpdateRegistrationRequest) (registration.Registration, error) {
	current, err := s.GetByID(ctx, id)

	if err != nil {
		if errors.Is(err, registration.ErrNotFound) {
			return s.Save(ctx, req.AsCreate())
		}

		return registration.Registration{}, err
	}

	owner, err := s.store.FindByEmail(ctx, req.Email)

	if err != nil && !errors.Is(err, registration.ErrNotFound) {
		return registration.Registration{}, err
	}

	if err == nil && owner.ID != id {
		return registration.Registration{}, registration.ErrEmailAlreadyExists
	}

	updated := registration.Registration{
		ID:                 id,
		Name:               req.Name,
		Email:              req.Email,
		Attribute:          req.Attribute,
		Version:            current.Version + 1,
		DateOfRegistration: time.Now().UTC(),
	}

	return s.store.Update(ctx, updated)
}

// Find delegates the null-ignoring, case-insensitive, substring filter to the
// store and returns the page envelope untouched.
func (s *Registrations) Find(ctx context.Context, filter registration.Filter, req page.Request) (page.Page[registration.Registration], error) {
	return s.store.Find(ctx, filter, req.Normalize())
}

// GetByAttribute returns every registration whose attribute matches
// case-insensitively, in insertion order. A blank attribute matches nothing.
func (s *Registrations) GetByAttribute(ctx context.Context, attribute string) ([]registration.Registration, error) {
	if attribute == "" {
		return []registration.Registration{}, nil
	}

	return s.store.FindByAttribute(ctx, attribute)
}
