package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/Alijeyrad/mindbook_backend/internal/service/session"
	"github.com/Alijeyrad/mindbook_backend/pkg/slot"
)

type SessionHandler struct {
	svc session.Service
}

func NewSessionHandler(svc session.Service) *SessionHandler {
	return &SessionHandler{svc: svc}
}

func mapSessionError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, session.ErrTherapistNotFound),
		errors.Is(err, session.ErrClientNotFound),
		errors.Is(err, session.ErrPackageNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, session.ErrOverlappingSession),
		errors.Is(err, session.ErrInvalidTransition):
		return conflict(c, err.Error())
	case errors.Is(err, session.ErrInvalidTimeRange),
		errors.Is(err, session.ErrOutsideSchedule),
		errors.Is(err, session.ErrInvalidStatus),
		errors.Is(err, session.ErrClientRequired):
		return badRequest(c, err.Error())
	case errors.Is(err, session.ErrForbidden):
		return forbidden(c)
	default:
		return internalError(c, err)
	}
}

// GET /api/sessions?tid=&uid=&date=&status=
func (h *SessionHandler) List(c fiber.Ctx) error {
	var f session.ListFilter
	var valid bool
	if f.TID, valid = queryUUID(c, "tid"); !valid {
		return badRequest(c, "invalid therapist id")
	}
	if f.UID, valid = queryUUID(c, "uid"); !valid {
		return badRequest(c, "invalid user id")
	}
	if raw := c.Query("date"); raw != "" {
		d, err := slot.ParseDate(raw)
		if err != nil {
			return badRequest(c, "date must be YYYY-MM-DD")
		}
		f.Date = &d
	}
	f.Status = c.Query("status")

	list, err := h.svc.List(c.Context(), f)
	if err != nil {
		return mapSessionError(c, err)
	}
	return ok(c, list)
}

// GET /api/sessions/:sid
func (h *SessionHandler) Get(c fiber.Ctx) error {
	sid, valid := paramUUID(c, "sid")
	if !valid {
		return badRequest(c, "invalid session id")
	}

	s, err := h.svc.Get(c.Context(), sid)
	if err != nil {
		return mapSessionError(c, err)
	}
	return ok(c, s)
}

// POST /api/sessions
func (h *SessionHandler) Book(c fiber.Ctx) error {
	var body struct {
		TID        uuid.UUID   `json:"tid" validate:"required"`
		UID        *uuid.UUID  `json:"uid"`
		Date       *slot.Date  `json:"date" validate:"required"`
		StartTime  *slot.Clock `json:"start_time" validate:"required"`
		EndTime    *slot.Clock `json:"end_time" validate:"required"`
		PackagePID *uuid.UUID  `json:"package_pid"`
	}
	if msg, valid := bindJSON(c, &body); !valid {
		return badRequest(c, msg)
	}

	s, err := h.svc.Book(c.Context(), session.BookRequest{
		TID:        body.TID,
		UID:        body.UID,
		Date:       *body.Date,
		StartTime:  *body.StartTime,
		EndTime:    *body.EndTime,
		PackagePID: body.PackagePID,
	})
	if err != nil {
		return mapSessionError(c, err)
	}

	return created(c, s)
}

// PATCH /api/sessions/:sid
func (h *SessionHandler) Update(c fiber.Ctx) error {
	sid, valid := paramUUID(c, "sid")
	if !valid {
		return badRequest(c, "invalid session id")
	}

	var body struct {
		TID        *uuid.UUID  `json:"tid"`
		Date       *slot.Date  `json:"date"`
		StartTime  *slot.Clock `json:"start_time"`
		EndTime    *slot.Clock `json:"end_time"`
		PackagePID *uuid.UUID  `json:"package_pid"`
	}
	if msg, valid := bindJSON(c, &body); !valid {
		return badRequest(c, msg)
	}

	s, err := h.svc.Update(c.Context(), sid, session.UpdateRequest{
		TID:        body.TID,
		Date:       body.Date,
		StartTime:  body.StartTime,
		EndTime:    body.EndTime,
		PackagePID: body.PackagePID,
	})
	if err != nil {
		return mapSessionError(c, err)
	}

	return ok(c, s)
}

// DELETE /api/sessions/:sid
func (h *SessionHandler) Delete(c fiber.Ctx) error {
	sid, valid := paramUUID(c, "sid")
	if !valid {
		return badRequest(c, "invalid session id")
	}

	if err := h.svc.Delete(c.Context(), sid); err != nil {
		return mapSessionError(c, err)
	}
	return noContent(c)
}

// PATCH /api/sessions/:sid/status
func (h *SessionHandler) SetStatus(c fiber.Ctx) error {
	sid, valid := paramUUID(c, "sid")
	if !valid {
		return badRequest(c, "invalid session id")
	}

	var body struct {
		Status string `json:"status" validate:"required"`
	}
	if msg, valid := bindJSON(c, &body); !valid {
		return badRequest(c, msg)
	}

	s, err := h.svc.SetStatus(c.Context(), sid, body.Status)
	if err != nil {
		return mapSessionError(c, err)
	}
	return ok(c, s)
}
