package meetup

import (
	"errors"
	"time"

	"github.com/geocoder89/meetuphub/internal/domain/registration"
)

type Meetup struct {
	ID            int64                       `json:"id"`
	Event         string                      `json:"event"`
	MeetupDate    time.Time                   `json:"meetupDate"`
	Attribute     string                      `json:"registrationAttribute,omitempty"`
	Registrations []registration.Registration `json:"registrations"`
}

type Filter struct {
	Event     *string
	Attribute *string
}

var ErrNotFound = errors.New("meetup not found")

// another meetup already holds the same (event, date-time) pair
var ErrAlreadyExists = errors.New("meetup already exists")

var ErrInvalidID = errors.New("id is required")

type CreateMeetupRequest struct {
	Event           string    `json:"event" binding:"required,min=2,max=150"`
	MeetupDate      time.Time `json:"meetupDate" binding:"required"`
	Attribute       string    `json:"registrationAttribute" binding:"omitempty,max=80"`
	RegistrationIDs []int64   `json:"registrationIds" binding:"omitempty,dive,gt=0"`
}

type UpdateMeetupRequest struct {
	Event           string    `json:"event" binding:"required,min=2,max=150"`
	MeetupDate      time.Time `json:"meetupDate" binding:"required"`
	Attribute       string    `json:"registrationAttribute" binding:"omitempty,max=80"`
	RegistrationIDs []int64   `json:"registrationIds" binding:"omitempty,dive,gt=0"`
}

func NewFromCreateRequest(req CreateMeetupRequest) Meetup {
	return Meetup{
		Event:         req.Event,
		MeetupDate:    req.MeetupDate,
		Attribute:     req.Attribute,
		Registrations: []registration.Registration{},
	}
}

func (r UpdateMeetupRequest) AsCreate() CreateMeetupRequest {
	return CreateMeetupRequest{
		Event:           r.Event,
		MeetupDate:      r.MeetupDate,
		Attribute:       r.Attribute,
		RegistrationIDs: r.RegistrationIDs,
	}
}
