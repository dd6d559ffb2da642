package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/geocoder89/meetuphub/internal/domain/meetup"
	"github.com/geocoder89/meetuphub/internal/domain/page"
)

type MeetupsStore struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]meetup.Meetup
}

func NewMeetupsStore() *MeetupsStore {
	return &MeetupsStore{
		nextID: 1,
		items:  make(map[int64]meetup.Meetup),
	}
}

func (s *MeetupsStore) Create(ctx context.Context, m meetup.Meetup) (meetup.Meetup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m.ID = s.nextID
	s.nextID++
	s.items[m.ID] = m

	return m, nil
}

func (s *MeetupsStore) GetByID(ctx context.Context, id int64) (meetup.Meetup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.items[id]

	if !ok {
		return meetup.Meetup{}, meetup.ErrNotFound
	}

	return m, nil
}

func (s *MeetupsStore) Update(ctx context.Context, m meetup.Meetup) (meetup.Meetup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.items[m.ID]

	if !ok {
		return meetup.Meetup{}, meetup.ErrNotFound
	}

	s.items[m.ID] = m

	return m, nil
}

func (s *MeetupsStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.items[id]

	if !ok {
		return meetup.ErrNotFound
	}

	delete(s.items, id)

	return nil
}

func (s *MeetupsStore) FindByEventAndDate(ctx context.Context, event string, date time.Time) (meetup.Meetup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, m := range s.sortedLocked() {
		if strings.EqualFold(m.Event, event) && m.MeetupDate.Equal(date) {
			return m, nil
		}
	}

	return meetup.Meetup{}, meetup.ErrNotFound
}

func (s *MeetupsStore) Find(ctx context.Context, filter meetup.Filter, req page.Request) (page.Page[meetup.Meetup], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := []meetup.Meetup{}

	for _, m := range s.sortedLocked() {
		if containsFold(m.Event, filter.Event) && containsFold(m.Attribute, filter.Attribute) {
			matched = append(matched, m)
		}
	}

	return page.New(slicePage(matched, req), len(matched), req), nil
}

func (s *MeetupsStore) sortedLocked() []meetup.Meetup {
	out := make([]meetup.Meetup, 0, len(s.items))

	for _, m := range s.items {
		out = append(out, m)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out
}
