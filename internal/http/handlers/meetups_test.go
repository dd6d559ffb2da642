package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/geocoder89/meetuphub/internal/domain/meetup"
	"github.com/geocoder89/meetuphub/internal/domain/page"
	"github.com/geocoder89/meetuphub/internal/domain/registration"
	"github.com/geocoder89/meetuphub/internal/http/handlers"
)

// Fake implementation of the handlers.MeetupService interface

type fakeMeetupsService struct {
	saveFn   func(ctx context.Context, req meetup.CreateMeetupRequest) (meetup.Meetup, error)
	getFn    func(ctx context.Context, id int64) (meetup.Meetup, error)
	updateFn func(ctx context.Context, id int64, req meetup.UpdateMeetupRequest) (meetup.Meetup, error)
	deleteFn func(ctx context.Context, id int64) error
	findFn   func(ctx context.Context, filter meetup.Filter, req page.Request) (page.Page[meetup.Meetup], error)
}

func (f *fakeMeetupsService) Save(ctx context.Context, req meetup.CreateMeetupRequest) (meetup.Meetup, error) {
	if f.saveFn != nil {
		return f.saveFn(ctx, req)
	}

	return meetup.Meetup{}, nil
}

func (f *fakeMeetupsService) GetByID(ctx context.Context, id int64) (meetup.Meetup, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}

	return meetup.Meetup{}, nil
}

func (f *fakeMeetupsService) Update(ctx context.Context, id int64, req meetup.UpdateMeetupRequest) (meetup.Meetup, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, req)
	}

	return meetup.Meetup{}, nil
}

func (f *fakeMeetupsService) Delete(ctx context.Context, id int64) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}

	return nil
}

func (f *fakeMeetupsService) Find(ctx context.Context, filter meetup.Filter, req page.Request) (page.Page[meetup.Meetup], error) {
	if f.findFn != nil {
		return f.findFn(ctx, filter, req)
	}

	return page.Page[meetup.Meetup]{Items: []meetup.Meetup{}}, nil
}

func sampleMeetup() meetup.Meetup {
	return meetup.Meetup{
		ID:         7,
		Event:      "Womakerscode Dados",
		MeetupDate: time.Date(2026, 10, 10, 19, 0, 0, 0, time.UTC),
		Attribute:  "dados",
	}
}

func TestCreateMeetupHandler(t *testing.T) {
	validBody := `{"event": "Womakerscode Dados", "meetupDate": "2026-10-10T19:00:00Z", "registrationAttribute": "dados"}`

	tests := []struct {
		name           string
		body           string
		svcSetup       func(*fakeMeetupsService)
		wantStatusCode int
	}{
		{
			name: "success",
			body: validBody,
			svcSetup: func(f *fakeMeetupsService) {
				f.saveFn = func(ctx context.Context, req meetup.CreateMeetupRequest) (meetup.Meetup, error) {
					return sampleMeetup(), nil
				}
			},
			wantStatusCode: http.StatusCreated,
		},
		{
			name:           "validation_error",
			body:           `{"meetupDate": "2026-10-10T19:00:00Z"}`,
			svcSetup:       nil,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "bad_registration_id",
			body:           `{"event": "Womakerscode Dados", "meetupDate": "2026-10-10T19:00:00Z", "registrationIds": [0]}`,
			svcSetup:       nil,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "duplicate_event_and_date",
			body: validBody,
			svcSetup: func(f *fakeMeetupsService) {
				f.saveFn = func(ctx context.Context, req meetup.CreateMeetupRequest) (meetup.Meetup, error) {
					return meetup.Meetup{}, meetup.ErrAlreadyExists
				}
			},
			wantStatusCode: http.StatusConflict,
		},
		{
			name: "service_error",
			body: validBody,
			svcSetup: func(f *fakeMeetupsService) {
				f.saveFn = func(ctx context.Context, req meetup.CreateMeetupRequest) (meetup.Meetup, error) {
					return meetup.Meetup{}, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeMeetupsService{}

			if tt.svcSetup != nil {
				tt.svcSetup(fake)
			}

			h := handlers.NewMeetupsHandler(fake)
			r := setupRouter(http.MethodPost, "/meetups", h.Create)

			req := httptest.NewRequest(http.MethodPost, "/meetups", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestGetMeetupByIDHandler(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		svcSetup       func(*fakeMeetupsService)
		wantStatusCode int
	}{
		{
			name: "success",
			url:  "/meetups/7",
			svcSetup: func(f *fakeMeetupsService) {
				f.getFn = func(ctx context.Context, id int64) (meetup.Meetup, error) {
					return sampleMeetup(), nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "not_found",
			url:  "/meetups/42",
			svcSetup: func(f *fakeMeetupsService) {
				f.getFn = func(ctx context.Context, id int64) (meetup.Meetup, error) {
					return meetup.Meetup{}, meetup.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name:           "malformed_id",
			url:            "/meetups/-1",
			svcSetup:       nil,
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeMeetupsService{}

			if tt.svcSetup != nil {
				tt.svcSetup(fake)
			}

			h := handlers.NewMeetupsHandler(fake)
			r := setupRouter(http.MethodGet, "/meetups/:id", h.GetByID)

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestGetMeetupByIDHandler_EmbedsRegistrations(t *testing.T) {
	fake := &fakeMeetupsService{
		getFn: func(ctx context.Context, id int64) (meetup.Meetup, error) {
			m := sampleMeetup()
			m.Registrations = []registration.Registration{sampleRegistration()}
			return m, nil
		},
	}

	h := handlers.NewMeetupsHandler(fake)
	r := setupRouter(http.MethodGet, "/meetups/:id", h.GetByID)

	req := httptest.NewRequest(http.MethodGet, "/meetups/7", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Registrations []struct {
			Email   string `json:"email"`
			Version string `json:"registrationVersion"`
		} `json:"registrations"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if len(resp.Registrations) != 1 {
		t.Fatalf("got %d registrations, want 1", len(resp.Registrations))
	}

	if resp.Registrations[0].Email != "amanda@test.com" || resp.Registrations[0].Version != "001" {
		t.Fatalf("unexpected embedded registration: %+v", resp.Registrations[0])
	}
}

func TestUpdateMeetupHandler(t *testing.T) {
	validBody := `{"event": "Womakerscode Dados", "meetupDate": "2026-10-10T19:00:00Z"}`

	tests := []struct {
		name           string
		url            string
		body           string
		svcSetup       func(*fakeMeetupsService)
		wantStatusCode int
	}{
		{
			name: "success",
			url:  "/meetups/7",
			body: validBody,
			svcSetup: func(f *fakeMeetupsService) {
				f.updateFn = func(ctx context.Context, id int64, req meetup.UpdateMeetupRequest) (meetup.Meetup, error) {
					return sampleMeetup(), nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "validation_error",
			url:            "/meetups/7",
			body:           `{"event": ""}`,
			svcSetup:       nil,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "duplicate_event_and_date",
			url:  "/meetups/8",
			body: validBody,
			svcSetup: func(f *fakeMeetupsService) {
				f.updateFn = func(ctx context.Context, id int64, req meetup.UpdateMeetupRequest) (meetup.Meetup, error) {
					return meetup.Meetup{}, meetup.ErrAlreadyExists
				}
			},
			wantStatusCode: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeMeetupsService{}

			if tt.svcSetup != nil {
				tt.svcSetup(fake)
			}

			h := handlers.NewMeetupsHandler(fake)
			r := setupRouter(http.MethodPut, "/meetups/:id", h.Update)

			req := httptest.NewRequest(http.MethodPut, tt.url, bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestDeleteMeetupHandler(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		svcSetup       func(*fakeMeetupsService)
		wantStatusCode int
	}{
		{
			name: "success",
			url:  "/meetups/7",
			svcSetup: func(f *fakeMeetupsService) {
				f.deleteFn = func(ctx context.Context, id int64) error {
					return nil
				}
			},
			wantStatusCode: http.StatusNoContent,
		},
		{
			name: "not_found",
			url:  "/meetups/42",
			svcSetup: func(f *fakeMeetupsService) {
				f.deleteFn = func(ctx context.Context, id int64) error {
					return meetup.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeMeetupsService{}

			if tt.svcSetup != nil {
				tt.svcSetup(fake)
			}

			h := handlers.NewMeetupsHandler(fake)
			r := setupRouter(http.MethodDelete, "/meetups/:id", h.Delete)

			req := httptest.NewRequest(http.MethodDelete, tt.url, nil)
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestListMeetupsHandler(t *testing.T) {
	fake := &fakeMeetupsService{
		findFn: func(ctx context.Context, filter meetup.Filter, req page.Request) (page.Page[meetup.Meetup], error) {
			if filter.Event == nil || *filter.Event != "dados" {
				return page.Page[meetup.Meetup]{}, errors.New("event filter not passed")
			}

			if req.Size != 5 {
				return page.Page[meetup.Meetup]{}, errors.New("size not passed through")
			}

			return page.New([]meetup.Meetup{sampleMeetup()}, 1, req), nil
		},
	}

	h := handlers.NewMeetupsHandler(fake)
	r := setupRouter(http.MethodGet, "/meetups", h.List)

	req := httptest.NewRequest(http.MethodGet, "/meetups?event=dados&page=0&size=5", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		TotalElements int `json:"totalElements"`
		Size          int `json:"size"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if resp.TotalElements != 1 || resp.Size != 5 {
		t.Fatalf("got total=%d size=%d, want 1/5", resp.TotalElements, resp.Size)
	}
}
