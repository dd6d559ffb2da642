package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/meetuphub/internal/domain/page"
	"github.com/geocoder89/meetuphub/internal/domain/registration"
	"github.com/gin-gonic/gin"
)

const requestTimeout = 2 * time.Second

// RegistrationService is the slice of the registration rule engine the
// handlers call into.
type RegistrationService interface {
	Save(ctx context.Context, req registration.CreateRegistrationRequest) (registration.Registration, error)
	GetByID(ctx context.Context, id int64) (registration.Registration, error)
	Update(ctx context.Context, id int64, req registration.UpdateRegistrationRequest) (registration.Registration, error)
	Delete(ctx context.Context, id int64) error
	Find(ctx context.Context, filter registration.Filter, req page.Request) (page.Page[registration.Registration], error)
	GetByAttribute(ctx context.Context, attribute string) ([]registration.Registration, error)
}

type RegistrationsHandler struct {
	svc RegistrationService
}

func NewRegistrationsHandler(svc RegistrationService) *RegistrationsHandler {
	return &RegistrationsHandler{svc: svc}
}

// registrationResponse is the wire shape: the integer version is rendered
// as the fixed-width token only here, at the boundary.
type registrationResponse struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	Email              string    `json:"email"`
	Attribute          string    `json:"registrationAttribute,omitempty"`
	Version            string    `json:"registrationVersion"`
	DateOfRegistration time.Time `json:"dateOfRegistration"`
}

func newRegistrationResponse(r registration.Registration) registrationResponse {
	return registrationResponse{
		ID:                 r.ID,
		Name:               r.Name,
		Email:              r.Email,
		Attribute:          r.Attribute,
		Version:            registration.FormatVersion(r.Version),
		DateOfRegistration: r.DateOfRegistration,
	}
}

func registrationResponses(regs []registration.Registration) []registrationResponse {
	out := make([]registrationResponse, 0, len(regs))

	for _, r := range regs {
		out = append(out, newRegistrationResponse(r))
	}

	return out
}

func (h *RegistrationsHandler) Create(ctx *gin.Context) {
	var req registration.CreateRegistrationRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), requestTimeout)
	defer cancel()

	reg, err := h.svc.Save(cctx, req)

	if err != nil {
		if errors.Is(err, registration.ErrEmailAlreadyExists) {
			RespondConflict(ctx, "email_already_exists", "a registration with this email already exists.")
			return
		}

		RespondInternal(ctx, "Could not create registration")
		return
	}

	ctx.JSON(http.StatusCreated, newRegistrationResponse(reg))
}

func (h *RegistrationsHandler) GetByID(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")

	if !ok {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), requestTimeout)
	defer cancel()

	reg, err := h.svc.GetByID(cctx, id)

	if err != nil {
		switch {
		case errors.Is(err, registration.ErrNotFound):
			RespondNotFound(ctx, "Registration not found")
		case errors.Is(err, registration.ErrInvalidID):
			RespondBadRequest(ctx, "id is required", nil)
		default:
			RespondInternal(ctx, "Could not fetch registration")
		}
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, newRegistrationResponse(reg))
}

func (h *RegistrationsHandler) Update(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")

	if !ok {
		return
	}

	var req registration.UpdateRegistrationRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), requestTimeout)
	defer cancel()

	reg, err := h.svc.Update(cctx, id, req)

	if err != nil {
		if errors.Is(err, registration.ErrEmailAlreadyExists) {
			RespondConflict(ctx, "email_already_exists", "a registration with this email already exists.")
			return
		}

		RespondInternal(ctx, "Could not update registration")
		return
	}

	ctx.JSON(http.StatusOK, newRegistrationResponse(reg))
}

func (h *RegistrationsHandler) Delete(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")

	if !ok {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), requestTimeout)
	defer cancel()

	err := h.svc.Delete(cctx, id)

	if err != nil {
		switch {
		case errors.Is(err, registration.ErrNotFound):
			RespondNotFound(ctx, "Registration not found")
		case errors.Is(err, registration.ErrInvalidID):
			RespondBadRequest(ctx, "id is required", nil)
		default:
			RespondInternal(ctx, "Could not delete registration")
		}
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *RegistrationsHandler) List(ctx *gin.Context) {
	filter := registration.Filter{
		Name:      strQuery(ctx, "name"),
		Email:     strQuery(ctx, "email"),
		Attribute: strQuery(ctx, "registrationAttribute"),
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), requestTimeout)
	defer cancel()

	res, err := h.svc.Find(cctx, filter, pageFromQuery(ctx))

	if err != nil {
		RespondInternal(ctx, "Could not list registrations")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{
		"items":         registrationResponses(res.Items),
		"totalElements": res.TotalElements,
		"page":          res.Page,
		"size":          res.Size,
	})
}

func (h *RegistrationsHandler) ListByAttribute(ctx *gin.Context) {
	attribute := ctx.Param("attribute")

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), requestTimeout)
	defer cancel()

	regs, err := h.svc.GetByAttribute(cctx, attribute)

	if err != nil {
		RespondInternal(ctx, "Could not list registrations")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{
		"registrationAttribute": attribute,
		"count":                 len(regs),
		"registrations":         registrationResponses(regs),
	})
}
