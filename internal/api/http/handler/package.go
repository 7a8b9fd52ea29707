package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/shopspring/decimal"

	"github.com/Alijeyrad/mindbook_backend/internal/service/pricing"
)

type PackageHandler struct {
	svc pricing.Service
}

func NewPackageHandler(svc pricing.Service) *PackageHandler {
	return &PackageHandler{svc: svc}
}

func mapPackageError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, pricing.ErrPackageNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, pricing.ErrPackageInUse):
		return conflict(c, err.Error())
	case errors.Is(err, pricing.ErrMissingField),
		errors.Is(err, pricing.ErrInvalidCost),
		errors.Is(err, pricing.ErrInvalidDuration):
		return badRequest(c, err.Error())
	default:
		return internalError(c, err)
	}
}

// GET /api/packages
func (h *PackageHandler) List(c fiber.Ctx) error {
	list, err := h.svc.List(c.Context())
	if err != nil {
		return mapPackageError(c, err)
	}
	return ok(c, list)
}

// GET /api/packages/:pid
func (h *PackageHandler) Get(c fiber.Ctx) error {
	pid, valid := paramUUID(c, "pid")
	if !valid {
		return badRequest(c, "invalid package id")
	}

	p, err := h.svc.Get(c.Context(), pid)
	if err != nil {
		return mapPackageError(c, err)
	}
	return ok(c, p)
}

// POST /api/packages
// Required fields are checked by the service so the 400 names the
// missing one consistently.
func (h *PackageHandler) Create(c fiber.Ctx) error {
	var body struct {
		Name          *string          `json:"name"`
		Description   string           `json:"description"`
		Cost          *decimal.Decimal `json:"cost"`
		Duration      *int             `json:"duration"`
		MinCommitment int              `json:"min_commitment" validate:"gte=0"`
	}
	if msg, valid := bindJSON(c, &body); !valid {
		return badRequest(c, msg)
	}

	p, err := h.svc.Create(c.Context(), pricing.CreateRequest{
		Name:          body.Name,
		Description:   clean(body.Description),
		Cost:          body.Cost,
		Duration:      body.Duration,
		MinCommitment: body.MinCommitment,
	})
	if err != nil {
		return mapPackageError(c, err)
	}

	return created(c, p)
}

// PATCH /api/packages/:pid
func (h *PackageHandler) Update(c fiber.Ctx) error {
	pid, valid := paramUUID(c, "pid")
	if !valid {
		return badRequest(c, "invalid package id")
	}

	var body struct {
		Name          *string          `json:"name"`
		Description   *string          `json:"description"`
		Cost          *decimal.Decimal `json:"cost"`
		Duration      *int             `json:"duration"`
		MinCommitment *int             `json:"min_commitment" validate:"omitnil,gte=0"`
	}
	if msg, valid := bindJSON(c, &body); !valid {
		return badRequest(c, msg)
	}

	p, err := h.svc.Update(c.Context(), pid, pricing.UpdateRequest{
		Name:          body.Name,
		Description:   cleanPtr(body.Description),
		Cost:          body.Cost,
		Duration:      body.Duration,
		MinCommitment: body.MinCommitment,
	})
	if err != nil {
		return mapPackageError(c, err)
	}

	return ok(c, p)
}

// DELETE /api/packages/:pid
func (h *PackageHandler) Delete(c fiber.Ctx) error {
	pid, valid := paramUUID(c, "pid")
	if !valid {
		return badRequest(c, "invalid package id")
	}

	if err := h.svc.Delete(c.Context(), pid); err != nil {
		return mapPackageError(c, err)
	}
	return noContent(c)
}
