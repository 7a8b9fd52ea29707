package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"

	"github.com/Alijeyrad/mindbook_backend/internal/service/onboarding"
)

type OnboardingHandler struct {
	svc onboarding.Service
}

func NewOnboardingHandler(svc onboarding.Service) *OnboardingHandler {
	return &OnboardingHandler{svc: svc}
}

func mapOnboardingError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, onboarding.ErrUserNotFound),
		errors.Is(err, onboarding.ErrFormNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, onboarding.ErrFormExists):
		return conflict(c, err.Error())
	case errors.Is(err, onboarding.ErrNotJSONObject):
		return badRequest(c, err.Error())
	case errors.Is(err, onboarding.ErrForbidden):
		return forbidden(c)
	default:
		return internalError(c, err)
	}
}

// GET /api/onboarding/:uid
func (h *OnboardingHandler) Get(c fiber.Ctx) error {
	uid, valid := paramUUID(c, "uid")
	if !valid {
		return badRequest(c, "invalid user id")
	}

	form, err := h.svc.Get(c.Context(), uid)
	if err != nil {
		return mapOnboardingError(c, err)
	}
	return ok(c, form)
}

// POST /api/onboarding/:uid
func (h *OnboardingHandler) Submit(c fiber.Ctx) error {
	return h.write(c, h.svc.Submit, fiber.StatusCreated)
}

// PATCH /api/onboarding/:uid
func (h *OnboardingHandler) Merge(c fiber.Ctx) error {
	return h.write(c, h.svc.Merge, fiber.StatusOK)
}

type formWriter func(ctx context.Context, uid uuid.UUID, body []byte) (types.JSONText, error)

func (h *OnboardingHandler) write(c fiber.Ctx, fn formWriter, status int) error {
	uid, valid := paramUUID(c, "uid")
	if !valid {
		return badRequest(c, "invalid user id")
	}

	// fasthttp reuses the body buffer after the handler returns
	body := append([]byte(nil), c.Body()...)

	form, err := fn(c.Context(), uid, body)
	if err != nil {
		return mapOnboardingError(c, err)
	}
	return c.Status(status).JSON(fiber.Map{"data": form})
}
