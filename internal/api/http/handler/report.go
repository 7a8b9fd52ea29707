package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/Alijeyrad/mindbook_backend/internal/service/report"
)

type ReportHandler struct {
	svc report.Service
}

func NewReportHandler(svc report.Service) *ReportHandler {
	return &ReportHandler{svc: svc}
}

func mapReportError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, report.ErrReportNotFound),
		errors.Is(err, report.ErrSessionNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, report.ErrReportExists):
		return conflict(c, err.Error())
	case errors.Is(err, report.ErrInvalidMood),
		errors.Is(err, report.ErrInvalidEngage):
		return badRequest(c, err.Error())
	case errors.Is(err, report.ErrForbidden):
		return forbidden(c)
	default:
		return internalError(c, err)
	}
}

func cleanAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = clean(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// GET /api/reports
func (h *ReportHandler) List(c fiber.Ctx) error {
	list, err := h.svc.List(c.Context())
	if err != nil {
		return mapReportError(c, err)
	}
	return ok(c, list)
}

// GET /api/reports/:sid
func (h *ReportHandler) Get(c fiber.Ctx) error {
	sid, valid := paramUUID(c, "sid")
	if !valid {
		return badRequest(c, "invalid session id")
	}

	r, err := h.svc.Get(c.Context(), sid)
	if err != nil {
		return mapReportError(c, err)
	}
	return ok(c, r)
}

// POST /api/reports
func (h *ReportHandler) Create(c fiber.Ctx) error {
	var body struct {
		SessionID                uuid.UUID `json:"session_id" validate:"required"`
		Activities               []string  `json:"activities"`
		MoodStart                string    `json:"mood_start" validate:"required"`
		MoodEnd                  string    `json:"mood_end" validate:"required"`
		Engagement               string    `json:"engagement" validate:"required"`
		KeyObservations          string    `json:"key_observations"`
		OverallComments          string    `json:"overall_comments"`
		ImprovementsOrChallenges string    `json:"improvements_or_challenges"`
	}
	if msg, valid := bindJSON(c, &body); !valid {
		return badRequest(c, msg)
	}

	r, err := h.svc.Create(c.Context(), report.CreateRequest{
		SessionID:                body.SessionID,
		Activities:               cleanAll(body.Activities),
		MoodStart:                body.MoodStart,
		MoodEnd:                  body.MoodEnd,
		Engagement:               body.Engagement,
		KeyObservations:          clean(body.KeyObservations),
		OverallComments:          clean(body.OverallComments),
		ImprovementsOrChallenges: clean(body.ImprovementsOrChallenges),
	})
	if err != nil {
		return mapReportError(c, err)
	}

	return created(c, r)
}

// PATCH /api/reports/:sid
func (h *ReportHandler) Update(c fiber.Ctx) error {
	sid, valid := paramUUID(c, "sid")
	if !valid {
		return badRequest(c, "invalid session id")
	}

	var body struct {
		Activities               *[]string `json:"activities"`
		MoodStart                *string   `json:"mood_start"`
		MoodEnd                  *string   `json:"mood_end"`
		Engagement               *string   `json:"engagement"`
		KeyObservations          *string   `json:"key_observations"`
		OverallComments          *string   `json:"overall_comments"`
		ImprovementsOrChallenges *string   `json:"improvements_or_challenges"`
	}
	if msg, valid := bindJSON(c, &body); !valid {
		return badRequest(c, msg)
	}
	if body.Activities != nil {
		a := cleanAll(*body.Activities)
		body.Activities = &a
	}

	r, err := h.svc.Update(c.Context(), sid, report.UpdateRequest{
		Activities:               body.Activities,
		MoodStart:                body.MoodStart,
		MoodEnd:                  body.MoodEnd,
		Engagement:               body.Engagement,
		KeyObservations:          cleanPtr(body.KeyObservations),
		OverallComments:          cleanPtr(body.OverallComments),
		ImprovementsOrChallenges: cleanPtr(body.ImprovementsOrChallenges),
	})
	if err != nil {
		return mapReportError(c, err)
	}

	return ok(c, r)
}
