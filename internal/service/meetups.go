package service

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/meetuphub/internal/domain/meetup"
	"github.com/geocoder89/meetuphub/internal/domain/page"
	"github.com/geocoder89/meetuphub/internal/domain/registration"
)

// MeetupStore is the meetup slice of the persistence gateway. Create and
// Update persist the registration association alongside the row.
type MeetupStore interface {
	Create(ctx context.Context, m meetup.Meetup) (meetup.Meetup, error)
	GetByID(ctx context.Context, id int64) (meetup.Meetup, error)
	Update(ctx context.Context, m meetup.Meetup) (meetup.Meetup, error)
	Delete(ctx context.Context, id int64) error
	FindByEventAndDate(ctx context.Context, event string, date time.Time) (meetup.Meetup, error)
	Find(ctx context.Context, filter meetup.Filter, req page.Request) (page.Page[meetup.Meetup], error)
}

// registrationDirectory is the part of the registration engine the meetup
// rules lean on for auto-enrollment and explicit-id resolution.
type registrationDirectory interface {
	GetByID(ctx context.Context, id int64) (registration.Registration, error)
	GetByAttribute(ctx context.Context, attribute string) ([]registration.Registration, error)
}

type Meetups struct {
	store         MeetupStore
	registrations registrationDirectory
}

func NewMeetups(store MeetupStore, registrations registrationDirectory) *Meetups {
	return &Meetups{
		store:         store,
		registrations: registrations,
	}
}

// Save creates a meetup. The (event, date-time) pair must be free,
// case-insensitively on the event name. The registration set is
// reconciled before the write: attribute matches come first, explicitly
// supplied ids after, deduplicated by id without reordering.
func (s *Meetups) Save(ctx context.Context, req meetup.CreateMeetupRequest) (meetup.Meetup, error) {
	_, err := s.store.FindByEventAndDate(ctx, req.Event, req.MeetupDate)

	if err == nil {
		return meetup.Meetup{}, meetup.ErrAlreadyExists
	}

	if !errors.Is(err, meetup.ErrNotFound) {
		return meetup.Meetup{}, err
	}

	regs, err := s.reconcileRegistrations(ctx, req.Attribute, req.RegistrationIDs)

	if err != nil {
		return meetup.Meetup{}, err
	}

	m := meetup.NewFromCreateRequest(req)
	m.Registrations = regs

	return s.store.Create(ctx, m)
}

func (s *Meetups) GetByID(ctx context.Context, id int64) (meetup.Meetup, error) {
	if id <= 0 {
		return meetup.Meetup{}, meetup.ErrInvalidID
	}

	return s.store.GetByID(ctx, id)
}

func (s *Meetups) Delete(ctx context.Context, id int64) error {
	_, err := s.GetByID(ctx, id)

	if err != nil {
		return err
	}

	return s.store.Delete(ctx, id)
}

// Update rebuilds the meetup at id, or falls back to Save when nothing is
// there (same upsert policy as registrations). The uniqueness re-check
// excludes the record under update. Unlike Save, the registration set is
// taken from the payload as supplied: no attribute-based auto-enrollment.
func (s *Meetups) Update(ctx context.Context, id int64, req meetup.UpdateMeetupRequest) (meetup.Meetup, error) {
	_, err := s.GetByID(ctx, id)

	if err != nil {
		if errors.Is(err, meetup.ErrNotFound) {
			return s.Save(ctx, req.AsCreate())
		}

		return meetup.Meetup{}, err
	}

	owner, err := s.store.FindByEventAndDate(ctx, req.Event, req.MeetupDate)

	if err != nil && !errors.Is(err, meetup.ErrNotFound) {
		return meetup.Meetup{}, err
	}

	if err == nil && owner.ID != id {
		return meetup.Meetup{}, meetup.ErrAlreadyExists
	}

	regs, err := s.resolveExplicit(ctx, req.RegistrationIDs, nil, nil)

	if err != nil {
		return meetup.Meetup{}, err
	}

	updated := meetup.Meetup{
		ID:            id,
		Event:         req.Event,
		MeetupDate:    req.MeetupDate,
		Attribute:     req.Attribute,
		Registrations: regs,
	}

	return s.store.Update(ctx, updated)
}

func (s *Meetups) Find(ctx context.Context, filter meetup.Filter, req page.Request) (page.Page[meetup.Meetup], error) {
	return s.store.Find(ctx, filter, req.Normalize())
}

// reconcileRegistrations builds the ordered, deduplicated registration set
// for a new meetup: attribute matches first, then explicit ids.
func (s *Meetups) reconcileRegistrations(ctx context.Context, attribute string, ids []int64) ([]registration.Registration, error) {
	out := []registration.Registration{}
	seen := make(map[int64]struct{})

	matched, err := s.registrations.GetByAttribute(ctx, attribute)

	if err != nil {
		return nil, err
	}

	for _, r := range matched {
		if _, ok := seen[r.ID]; ok {
			continue
		}

		seen[r.ID] = struct{}{}
		out = append(out, r)
	}

	return s.resolveExplicit(ctx, ids, out, seen)
}

// resolveExplicit appends the registrations behind the given ids onto out,
// skipping ids that do not resolve. An unknown explicit id is not an error.
func (s *Meetups) resolveExplicit(ctx context.Context, ids []int64, out []registration.Registration, seen map[int64]struct{}) ([]registration.Registration, error) {
	if out == nil {
		out = []registration.Registration{}
	}

	if seen == nil {
		seen = make(map[int64]struct{}, len(ids))
	}

	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}

		r, err := s.registrations.GetByID(ctx, id)

		if err != nil {
			if errors.Is(err, registration.ErrNotFound) || errors.Is(err, registration.ErrInvalidID) {
				continue
			}

			return nil, err
		}

		seen[r.ID] = struct{}{}
		out = append(out, r)
	}

	return out, nil
}
