package registration

import (
	"errors"
	"fmt"
	"time"
)

type Registration struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	Email              string    `json:"email"`
	Attribute          string    `json:"registrationAttribute,omitempty"`
	Version            int       `json:"version"`
	DateOfRegistration time.Time `json:"dateOfRegistration"`
}

// with pointers if optional, it will be nil
type Filter struct {
	Name      *string
	Email     *string
	Attribute *string
}

var ErrNotFound = errors.New("registration not found")

// when a second registration would share an email
var ErrEmailAlreadyExists = errors.New("email already exists")

// lookup/delete called with a missing or non-positive id
var ErrInvalidID = errors.New("id is required")

type CreateRegistrationRequest struct {
	Name      string `json:"name" binding:"required,min=2,max=120"`
	Email     string `json:"email" binding:"required,email"`
	Attribute string `json:"registrationAttribute" binding:"omitempty,max=80"`
}

// a full update payload, same shape as create; the id travels in the URL.
type UpdateRegistrationRequest struct {
	Name      string `json:"name" binding:"required,min=2,max=120"`
	Email     string `json:"email" binding:"required,email"`
	Attribute string `json:"registrationAttribute" binding:"omitempty,max=80"`
}

// A factory to build a Registration from the incoming DTO

func NewFromCreateRequest(req CreateRegistrationRequest) Registration {
	return Registration{
		Name:               req.Name,
		Email:              req.Email,
		Attribute:          req.Attribute,
		Version:            1,
		DateOfRegistration: time.Now().UTC(),
	}
}

func (r UpdateRegistrationRequest) AsCreate() CreateRegistrationRequest {
	return CreateRegistrationRequest{
		Name:      r.Name,
		Email:     r.Email,
		Attribute: r.Attribute,
	}
}

// FormatVersion renders the integer version as the fixed-width wire token
// ("001", "002", ... "010", "100"). The version is stored as an int and only
// formatted here, at the boundary.
func FormatVersion(v int) string {
	return fmt.Sprintf("%03d", v)
}
