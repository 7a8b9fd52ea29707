package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/Alijeyrad/mindbook_backend/internal/service/scheduling"
	"github.com/Alijeyrad/mindbook_backend/internal/service/therapist"
	"github.com/Alijeyrad/mindbook_backend/pkg/slot"
)

type TherapistHandler struct {
	svc      therapist.Service
	schedule scheduling.Service
}

func NewTherapistHandler(svc therapist.Service, schedule scheduling.Service) *TherapistHandler {
	return &TherapistHandler{svc: svc, schedule: schedule}
}

func mapTherapistError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, therapist.ErrTherapistNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, therapist.ErrEmailExists),
		errors.Is(err, therapist.ErrUserAlreadyLinked),
		errors.Is(err, therapist.ErrTherapistInUse):
		return conflict(c, err.Error())
	case errors.Is(err, therapist.ErrInvalidImage),
		errors.Is(err, therapist.ErrImageTooLarge),
		errors.Is(err, therapist.ErrNameRequired):
		return badRequest(c, err.Error())
	case errors.Is(err, therapist.ErrForbidden):
		return forbidden(c)
	default:
		return internalError(c, err)
	}
}

// GET /api/therapists
func (h *TherapistHandler) List(c fiber.Ctx) error {
	list, err := h.svc.List(c.Context())
	if err != nil {
		return mapTherapistError(c, err)
	}
	return ok(c, list)
}

// GET /api/therapists/:tid
func (h *TherapistHandler) Get(c fiber.Ctx) error {
	tid, valid := paramUUID(c, "tid")
	if !valid {
		return badRequest(c, "invalid therapist id")
	}

	t, err := h.svc.Get(c.Context(), tid)
	if err != nil {
		return mapTherapistError(c, err)
	}
	return ok(c, t)
}

// POST /api/therapists
func (h *TherapistHandler) Create(c fiber.Ctx) error {
	var body struct {
		Name              string     `json:"name" validate:"required"`
		Email             string     `json:"email" validate:"required,email"`
		Bio               string     `json:"bio"`
		Education         string     `json:"education"`
		Languages         string     `json:"languages"`
		AreasCovered      string     `json:"areas_covered"`
		AvailabilityHours string     `json:"availability_hours"`
		ImageData         string     `json:"image_data"`
		UserID            *uuid.UUID `json:"user_id"`
	}
	if msg, valid := bindJSON(c, &body); !valid {
		return badRequest(c, msg)
	}

	t, err := h.svc.Create(c.Context(), therapist.CreateRequest{
		Name:              body.Name,
		Email:             body.Email,
		Bio:               clean(body.Bio),
		Education:         clean(body.Education),
		Languages:         clean(body.Languages),
		AreasCovered:      clean(body.AreasCovered),
		AvailabilityHours: clean(body.AvailabilityHours),
		Image:             body.ImageData,
		UserID:            body.UserID,
	})
	if err != nil {
		return mapTherapistError(c, err)
	}

	return created(c, t)
}

// PATCH /api/therapists/:tid
func (h *TherapistHandler) Update(c fiber.Ctx) error {
	tid, valid := paramUUID(c, "tid")
	if !valid {
		return badRequest(c, "invalid therapist id")
	}

	var body struct {
		Name              *string    `json:"name"`
		Email             *string    `json:"email" validate:"omitnil,email"`
		Bio               *string    `json:"bio"`
		Education         *string    `json:"education"`
		Languages         *string    `json:"languages"`
		AreasCovered      *string    `json:"areas_covered"`
		AvailabilityHours *string    `json:"availability_hours"`
		ImageData         *string    `json:"image_data"`
		UserID            *uuid.UUID `json:"user_id"`
	}
	if msg, valid := bindJSON(c, &body); !valid {
		return badRequest(c, msg)
	}

	t, err := h.svc.Update(c.Context(), tid, therapist.UpdateRequest{
		Name:              body.Name,
		Email:             body.Email,
		Bio:               cleanPtr(body.Bio),
		Education:         cleanPtr(body.Education),
		Languages:         cleanPtr(body.Languages),
		AreasCovered:      cleanPtr(body.AreasCovered),
		AvailabilityHours: cleanPtr(body.AvailabilityHours),
		Image:             body.ImageData,
		UserID:            body.UserID,
	})
	if err != nil {
		return mapTherapistError(c, err)
	}

	return ok(c, t)
}

// DELETE /api/therapists/:tid
func (h *TherapistHandler) Delete(c fiber.Ctx) error {
	tid, valid := paramUUID(c, "tid")
	if !valid {
		return badRequest(c, "invalid therapist id")
	}

	if err := h.svc.Delete(c.Context(), tid); err != nil {
		return mapTherapistError(c, err)
	}
	return noContent(c)
}

// GET /api/therapists/:tid/availability?date=YYYY-MM-DD
func (h *TherapistHandler) Availability(c fiber.Ctx) error {
	tid, valid := paramUUID(c, "tid")
	if !valid {
		return badRequest(c, "invalid therapist id")
	}
	date, err := slot.ParseDate(c.Query("date"))
	if err != nil {
		return badRequest(c, "date must be YYYY-MM-DD")
	}

	av, err := h.schedule.Availability(c.Context(), tid, date)
	if err != nil {
		return mapScheduleError(c, err)
	}
	return ok(c, av)
}
