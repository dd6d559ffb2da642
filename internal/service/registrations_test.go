package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/geocoder89/meetuphub/internal/domain/page"
	"github.com/geocoder89/meetuphub/internal/domain/registration"
	"github.com/geocoder89/meetuphub/internal/repo/memory"
	"github.com/geocoder89/meetuphub/internal/service"
)

func newRegistrations() *service.Registrations {
	return service.NewRegistrations(memory.NewRegistrationsStore())
}

func mustSave(t *testing.T, svc *service.Registrations, name, email, attribute string) registration.Registration {
	t.Helper()

	r, err := svc.Save(context.Background(), registration.CreateRegistrationRequest{
		Name:      name,
		Email:     email,
		Attribute: attribute,
	})

	if err != nil {
		t.Fatalf("save %s: %v", email, err)
	}

	return r
}

func TestRegistrationsSave(t *testing.T) {
	svc := newRegistrations()

	r := mustSave(t, svc, "Amanda Lima", "amanda@test.com", "leadership")

	if r.ID != 1 {
		t.Fatalf("got id %d, want 1", r.ID)
	}

	if r.Version != 1 {
		t.Fatalf("got version %d, want 1", r.Version)
	}

	if got := registration.FormatVersion(r.Version); got != "001" {
		t.Fatalf("got version token %q, want %q", got, "001")
	}

	// date of registration is stamped server-side
	if time.Since(r.DateOfRegistration) > time.Minute {
		t.Fatalf("dateOfRegistration not stamped to now: %v", r.DateOfRegistration)
	}

	// round-trip
	found, err := svc.GetByID(context.Background(), r.ID)

	if err != nil {
		t.Fatalf("get after save: %v", err)
	}

	if found != r {
		t.Fatalf("round-trip mismatch: got %+v want %+v", found, r)
	}
}

func TestRegistrationsSaveDuplicateEmail(t *testing.T) {
	svc := newRegistrations()
	mustSave(t, svc, "Amanda Lima", "amanda@test.com", "")

	_, err := svc.Save(context.Background(), registration.CreateRegistrationRequest{
		Name:  "Other Person",
		Email: "amanda@test.com",
	})

	if !errors.Is(err, registration.ErrEmailAlreadyExists) {
		t.Fatalf("got %v, want ErrEmailAlreadyExists", err)
	}

	// duplicate detection ignores case
	_, err = svc.Save(context.Background(), registration.CreateRegistrationRequest{
		Name:  "Other Person",
		Email: "Amanda@TEST.com",
	})

	if !errors.Is(err, registration.ErrEmailAlreadyExists) {
		t.Fatalf("got %v for case-variant email, want ErrEmailAlreadyExists", err)
	}
}

func TestRegistrationsGetByIDGuards(t *testing.T) {
	svc := newRegistrations()

	_, err := svc.GetByID(context.Background(), 0)

	if !errors.Is(err, registration.ErrInvalidID) {
		t.Fatalf("got %v, want ErrInvalidID for zero id", err)
	}

	_, err = svc.GetByID(context.Background(), 42)

	if !errors.Is(err, registration.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestRegistrationsDelete(t *testing.T) {
	svc := newRegistrations()
	r := mustSave(t, svc, "Amanda Lima", "amanda@test.com", "")

	if err := svc.Delete(context.Background(), r.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	_, err := svc.GetByID(context.Background(), r.ID)

	if !errors.Is(err, registration.ErrNotFound) {
		t.Fatalf("got %v after delete, want ErrNotFound", err)
	}

	// deleting again propagates the existence check failure
	if err := svc.Delete(context.Background(), r.ID); !errors.Is(err, registration.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}

	if err := svc.Delete(context.Background(), 0); !errors.Is(err, registration.ErrInvalidID) {
		t.Fatalf("got %v, want ErrInvalidID", err)
	}
}

func TestRegistrationsUpdateIncrementsVersion(t *testing.T) {
	svc := newRegistrations()
	r := mustSave(t, svc, "Amanda Lima", "amanda@test.com", "gestão")

	updated, err := svc.Update(context.Background(), r.ID, registration.UpdateRegistrationRequest{
		Name:      "Amanda de Lima",
		Email:     "amanda@test.com",
		Attribute: "gestão",
	})

	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if updated.ID != r.ID {
		t.Fatalf("update changed id: got %d want %d", updated.ID, r.ID)
	}

	if updated.Version != 2 {
		t.Fatalf("got version %d, want 2", updated.Version)
	}

	if got := registration.FormatVersion(updated.Version); got != "002" {
		t.Fatalf("got version token %q, want %q", got, "002")
	}
}

func TestRegistrationsUpdateOfAbsentIsCreate(t *testing.T) {
	svc := newRegistrations()

	created, err := svc.Update(context.Background(), 99, registration.UpdateRegistrationRequest{
		Name:  "Amanda Lima",
		Email: "amanda@test.com",
	})

	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	// the store assigns the id, the stale one from the URL is not reused
	if created.ID != 1 {
		t.Fatalf("got id %d, want store-assigned 1", created.ID)
	}

	if created.Version != 1 {
		t.Fatalf("got version %d, want 1 for a fresh create", created.Version)
	}
}

func TestRegistrationsUpdateDuplicateEmail(t *testing.T) {
	svc := newRegistrations()
	mustSave(t, svc, "Amanda Lima", "amanda@test.com", "")
	other := mustSave(t, svc, "Bruno Costa", "bruno@test.com", "")

	// stealing someone else's email fails
	_, err := svc.Update(context.Background(), other.ID, registration.UpdateRegistrationRequest{
		Name:  "Bruno Costa",
		Email: "amanda@test.com",
	})

	if !errors.Is(err, registration.ErrEmailAlreadyExists) {
		t.Fatalf("got %v, want ErrEmailAlreadyExists", err)
	}

	// keeping your own email is fine
	if _, err := svc.Update(context.Background(), other.ID, registration.UpdateRegistrationRequest{
		Name:  "Bruno M. Costa",
		Email: "bruno@test.com",
	}); err != nil {
		t.Fatalf("self-email update: %v", err)
	}
}

func TestRegistrationsGetByAttribute(t *testing.T) {
	svc := newRegistrations()
	a := mustSave(t, svc, "Amanda Lima", "amanda@test.com", "Leadership")
	mustSave(t, svc, "Bruno Costa", "bruno@test.com", "backend")
	c := mustSave(t, svc, "Carla Souza", "carla@test.com", "leadership")

	got, err := svc.GetByAttribute(context.Background(), "LEADERSHIP")

	if err != nil {
		t.Fatalf("getByAttribute: %v", err)
	}

	if len(got) != 2 || got[0].ID != a.ID || got[1].ID != c.ID {
		t.Fatalf("got %+v, want [%d %d]", got, a.ID, c.ID)
	}

	empty, err := svc.GetByAttribute(context.Background(), "")

	if err != nil {
		t.Fatalf("blank attribute: %v", err)
	}

	if len(empty) != 0 {
		t.Fatalf("blank attribute matched %d registrations, want 0", len(empty))
	}
}

func TestRegistrationsFind(t *testing.T) {
	svc := newRegistrations()
	mustSave(t, svc, "Amanda Lima", "amanda@test.com", "leadership")
	mustSave(t, svc, "Bruno Costa", "bruno@test.com", "backend")
	mustSave(t, svc, "Ana Braga", "ana@test.com", "leadership")

	name := "an"

	res, err := svc.Find(context.Background(), registration.Filter{Name: &name}, page.Request{Page: 0, Size: 10})

	if err != nil {
		t.Fatalf("find: %v", err)
	}

	// substring, case-insensitive: Amanda + Ana
	if res.TotalElements != 2 || len(res.Items) != 2 {
		t.Fatalf("got total=%d items=%d, want 2/2", res.TotalElements, len(res.Items))
	}

	// unset fields are ignored entirely
	all, err := svc.Find(context.Background(), registration.Filter{}, page.Request{Size: 2})

	if err != nil {
		t.Fatalf("find all: %v", err)
	}

	if all.TotalElements != 3 || len(all.Items) != 2 || all.Size != 2 {
		t.Fatalf("got total=%d items=%d size=%d, want 3/2/2", all.TotalElements, len(all.Items), all.Size)
	}
}

func TestFormatVersion(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{1, "001"},
		{2, "002"},
		{10, "010"},
		{100, "100"},
		{1234, "1234"},
	}

	for _, tt := range tests {
		if got := registration.FormatVersion(tt.in); got != tt.want {
			t.Fatalf("FormatVersion(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
