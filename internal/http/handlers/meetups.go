package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/meetuphub/internal/domain/meetup"
	"github.com/geocoder89/meetuphub/internal/domain/page"
	"github.com/gin-gonic/gin"
)

type MeetupService interface {
	Save(ctx context.Context, req meetup.CreateMeetupRequest) (meetup.Meetup, error)
	GetByID(ctx context.Context, id int64) (meetup.Meetup, error)
	Update(ctx context.Context, id int64, req meetup.UpdateMeetupRequest) (meetup.Meetup, error)
	Delete(ctx context.Context, id int64) error
	Find(ctx context.Context, filter meetup.Filter, req page.Request) (page.Page[meetup.Meetup], error)
}

type MeetupsHandler struct {
	svc MeetupService
}

func NewMeetupsHandler(svc MeetupService) *MeetupsHandler {
	return &MeetupsHandler{svc: svc}
}

type meetupResponse struct {
	ID            int64                  `json:"id"`
	Event         string                 `json:"event"`
	MeetupDate    time.Time              `json:"meetupDate"`
	Attribute     string                 `json:"registrationAttribute,omitempty"`
	Registrations []registrationResponse `json:"registrations"`
}

func newMeetupResponse(m meetup.Meetup) meetupResponse {
	return meetupResponse{
		ID:            m.ID,
		Event:         m.Event,
		MeetupDate:    m.MeetupDate,
		Attribute:     m.Attribute,
		Registrations: registrationResponses(m.Registrations),
	}
}

func (h *MeetupsHandler) Create(ctx *gin.Context) {
	var req meetup.CreateMeetupRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), requestTimeout)
	defer cancel()

	m, err := h.svc.Save(cctx, req)

	if err != nil {
		if errors.Is(err, meetup.ErrAlreadyExists) {
			RespondConflict(ctx, "meetup_already_exists", "a meetup for this event and date already exists.")
			return
		}

		RespondInternal(ctx, "Could not create meetup")
		return
	}

	ctx.JSON(http.StatusCreated, newMeetupResponse(m))
}

func (h *MeetupsHandler) GetByID(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")

	if !ok {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), requestTimeout)
	defer cancel()

	m, err := h.svc.GetByID(cctx, id)

	if err != nil {
		switch {
		case errors.Is(err, meetup.ErrNotFound):
			RespondNotFound(ctx, "Meetup not found")
		case errors.Is(err, meetup.ErrInvalidID):
			RespondBadRequest(ctx, "id is required", nil)
		default:
			RespondInternal(ctx, "Could not fetch meetup")
		}
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, newMeetupResponse(m))
}

func (h *MeetupsHandler) Update(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")

	if !ok {
		return
	}

	var req meetup.UpdateMeetupRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), requestTimeout)
	defer cancel()

	m, err := h.svc.Update(cctx, id, req)

	if err != nil {
		if errors.Is(err, meetup.ErrAlreadyExists) {
			RespondConflict(ctx, "meetup_already_exists", "a meetup for this event and date already exists.")
			return
		}

		RespondInternal(ctx, "Could not update meetup")
		return
	}

	ctx.JSON(http.StatusOK, newMeetupResponse(m))
}

func (h *MeetupsHandler) Delete(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")

	if !ok {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), requestTimeout)
	defer cancel()

	err := h.svc.Delete(cctx, id)

	if err != nil {
		switch {
		case errors.Is(err, meetup.ErrNotFound):
			RespondNotFound(ctx, "Meetup not found")
		case errors.Is(err, meetup.ErrInvalidID):
			RespondBadRequest(ctx, "id is required", nil)
		default:
			RespondInternal(ctx, "Could not delete meetup")
		}
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *MeetupsHandler) List(ctx *gin.Context) {
	filter := meetup.Filter{
		Event:     strQuery(ctx, "event"),
		Attribute: strQuery(ctx, "registrationAttribute"),
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), requestTimeout)
	defer cancel()

	res, err := h.svc.Find(cctx, filter, pageFromQuery(ctx))

	if err != nil {
		RespondInternal(ctx, "Could not list meetups")
		return
	}

	items := make([]meetupResponse, 0, len(res.Items))

	for _, m := range res.Items {
		items = append(items, newMeetupResponse(m))
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{
		"items":         items,
		"totalElements": res.TotalElements,
		"page":          res.Page,
		"size":          res.Size,
	})
}
