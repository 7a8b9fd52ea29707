package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/Alijeyrad/mindbook_backend/internal/service/scheduling"
	"github.com/Alijeyrad/mindbook_backend/pkg/slot"
)

type ScheduleHandler struct {
	svc scheduling.Service
}

func NewScheduleHandler(svc scheduling.Service) *ScheduleHandler {
	return &ScheduleHandler{svc: svc}
}

func mapScheduleError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, scheduling.ErrScheduleNotFound),
		errors.Is(err, scheduling.ErrTherapistNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, scheduling.ErrOverlappingSlot):
		return conflict(c, err.Error())
	case errors.Is(err, scheduling.ErrInvalidTimeRange),
		errors.Is(err, scheduling.ErrInvalidDay):
		return badRequest(c, err.Error())
	case errors.Is(err, scheduling.ErrForbidden):
		return forbidden(c)
	default:
		return internalError(c, err)
	}
}

// GET /api/schedules?tid=
func (h *ScheduleHandler) List(c fiber.Ctx) error {
	tid, valid := queryUUID(c, "tid")
	if !valid {
		return badRequest(c, "invalid therapist id")
	}

	list, err := h.svc.List(c.Context(), tid)
	if err != nil {
		return mapScheduleError(c, err)
	}
	return ok(c, list)
}

// GET /api/schedules/therapist/:tid
func (h *ScheduleHandler) ListForTherapist(c fiber.Ctx) error {
	tid, valid := paramUUID(c, "tid")
	if !valid {
		return badRequest(c, "invalid therapist id")
	}

	list, err := h.svc.List(c.Context(), &tid)
	if err != nil {
		return mapScheduleError(c, err)
	}
	return ok(c, list)
}

// POST /api/schedules
func (h *ScheduleHandler) Create(c fiber.Ctx) error {
	var body struct {
		TID       *uuid.UUID  `json:"tid"`
		DayOfWeek *int        `json:"day_of_week" validate:"required"`
		StartTime *slot.Clock `json:"start_time" validate:"required"`
		EndTime   *slot.Clock `json:"end_time" validate:"required"`
	}
	if msg, valid := bindJSON(c, &body); !valid {
		return badRequest(c, msg)
	}

	s, err := h.svc.Create(c.Context(), scheduling.CreateRequest{
		TID:       body.TID,
		DayOfWeek: *body.DayOfWeek,
		StartTime: *body.StartTime,
		EndTime:   *body.EndTime,
	})
	if err != nil {
		return mapScheduleError(c, err)
	}

	return created(c, s)
}

// PATCH /api/schedules/:id
func (h *ScheduleHandler) Update(c fiber.Ctx) error {
	id, valid := paramUUID(c, "id")
	if !valid {
		return badRequest(c, "invalid schedule id")
	}

	var body struct {
		DayOfWeek *int        `json:"day_of_week"`
		StartTime *slot.Clock `json:"start_time"`
		EndTime   *slot.Clock `json:"end_time"`
	}
	if msg, valid := bindJSON(c, &body); !valid {
		return badRequest(c, msg)
	}

	s, err := h.svc.Update(c.Context(), id, scheduling.UpdateRequest{
		DayOfWeek: body.DayOfWeek,
		StartTime: body.StartTime,
		EndTime:   body.EndTime,
	})
	if err != nil {
		return mapScheduleError(c, err)
	}

	return ok(c, s)
}

// DELETE /api/schedules/:id
func (h *ScheduleHandler) Delete(c fiber.Ctx) error {
	id, valid := paramUUID(c, "id")
	if !valid {
		return badRequest(c, "invalid schedule id")
	}

	if err := h.svc.Delete(c.Context(), id); err != nil {
		return mapScheduleError(c, err)
	}
	return noContent(c)
}
