package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/Alijeyrad/mindbook_backend/internal/service/assignment"
	"github.com/Alijeyrad/mindbook_backend/pkg/slot"
)

type AssignmentHandler struct {
	svc assignment.Service
}

func NewAssignmentHandler(svc assignment.Service) *AssignmentHandler {
	return &AssignmentHandler{svc: svc}
}

func mapAssignmentError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, assignment.ErrAssignmentNotFound),
		errors.Is(err, assignment.ErrClientNotFound),
		errors.Is(err, assignment.ErrTherapistNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, assignment.ErrInvalidStatus),
		errors.Is(err, assignment.ErrInvalidDates):
		return badRequest(c, err.Error())
	case errors.Is(err, assignment.ErrForbidden):
		return forbidden(c)
	default:
		return internalError(c, err)
	}
}

// GET /api/assignments?status=&client_uid=&therapist_tid=
func (h *AssignmentHandler) List(c fiber.Ctx) error {
	f := assignment.ListFilter{Status: c.Query("status")}
	var valid bool
	if f.ClientUID, valid = queryUUID(c, "client_uid"); !valid {
		return badRequest(c, "invalid client id")
	}
	if f.TherapistTID, valid = queryUUID(c, "therapist_tid"); !valid {
		return badRequest(c, "invalid therapist id")
	}

	list, err := h.svc.List(c.Context(), f)
	if err != nil {
		return mapAssignmentError(c, err)
	}
	return ok(c, list)
}

// GET /api/assignments/:id
func (h *AssignmentHandler) Get(c fiber.Ctx) error {
	id, valid := paramUUID(c, "id")
	if !valid {
		return badRequest(c, "invalid assignment id")
	}

	a, err := h.svc.Get(c.Context(), id)
	if err != nil {
		return mapAssignmentError(c, err)
	}
	return ok(c, a)
}

// POST /api/assignments
func (h *AssignmentHandler) Create(c fiber.Ctx) error {
	var body struct {
		ClientUID       uuid.UUID     `json:"client_uid" validate:"required"`
		TherapistTID    uuid.UUID     `json:"therapist_tid" validate:"required"`
		StartDate       *slot.Date    `json:"start_date"`
		SessionsCount   int           `json:"sessions_count" validate:"gte=0"`
		NextSessionDate slot.NullDate `json:"next_session_date"`
		Notes           string        `json:"notes"`
	}
	if msg, valid := bindJSON(c, &body); !valid {
		return badRequest(c, msg)
	}

	a, err := h.svc.Create(c.Context(), assignment.CreateRequest{
		ClientUID:       body.ClientUID,
		TherapistTID:    body.TherapistTID,
		StartDate:       body.StartDate,
		SessionsCount:   body.SessionsCount,
		NextSessionDate: body.NextSessionDate,
		Notes:           clean(body.Notes),
	})
	if err != nil {
		return mapAssignmentError(c, err)
	}

	return created(c, a)
}

// PATCH /api/assignments/:id
func (h *AssignmentHandler) Update(c fiber.Ctx) error {
	id, valid := paramUUID(c, "id")
	if !valid {
		return badRequest(c, "invalid assignment id")
	}

	var body struct {
		TherapistTID    *uuid.UUID     `json:"therapist_tid"`
		Status          *string        `json:"status"`
		StartDate       *slot.Date     `json:"start_date"`
		EndDate         *slot.NullDate `json:"end_date"`
		SessionsCount   *int           `json:"sessions_count" validate:"omitnil,gte=0"`
		NextSessionDate *slot.NullDate `json:"next_session_date"`
		Notes           *string        `json:"notes"`
	}
	if msg, valid := bindJSON(c, &body); !valid {
		return badRequest(c, msg)
	}

	a, err := h.svc.Update(c.Context(), id, assignment.UpdateRequest{
		TherapistTID:    body.TherapistTID,
		Status:          body.Status,
		StartDate:       body.StartDate,
		EndDate:         body.EndDate,
		SessionsCount:   body.SessionsCount,
		NextSessionDate: body.NextSessionDate,
		Notes:           cleanPtr(body.Notes),
	})
	if err != nil {
		return mapAssignmentError(c, err)
	}

	return ok(c, a)
}
