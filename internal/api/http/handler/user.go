package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/mindbook_backend/internal/service/user"
)

type UserHandler struct {
	svc user.Service
}

func NewUserHandler(svc user.Service) *UserHandler {
	return &UserHandler{svc: svc}
}

func mapUserError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, user.ErrUserNotFound),
		errors.Is(err, user.ErrTherapistNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, user.ErrEmailAlreadyExists):
		return conflict(c, err.Error())
	case errors.Is(err, user.ErrInvalidEmail),
		errors.Is(err, user.ErrInvalidPhone),
		errors.Is(err, user.ErrNameRequired):
		return badRequest(c, err.Error())
	case errors.Is(err, user.ErrForbidden):
		return forbidden(c)
	default:
		return internalError(c, err)
	}
}

// GET /api/users?active=&call_request_status=
func (h *UserHandler) List(c fiber.Ctx) error {
	var f user.ListFilter
	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return badRequest(c, "active must be true or false")
		}
		f.Active = &active
	}
	f.CallRequestStatus = c.Query("call_request_status")

	list, err := h.svc.List(c.Context(), f)
	if err != nil {
		return mapUserError(c, err)
	}
	return ok(c, list)
}

// GET /api/users/:uid
func (h *UserHandler) Get(c fiber.Ctx) error {
	uid, valid := paramUUID(c, "uid")
	if !valid {
		return badRequest(c, "invalid user id")
	}

	u, err := h.svc.Get(c.Context(), uid)
	if err != nil {
		return mapUserError(c, err)
	}
	return ok(c, u)
}

// POST /api/users
func (h *UserHandler) Create(c fiber.Ctx) error {
	var body struct {
		Name  string `json:"name" validate:"required"`
		Email string `json:"email" validate:"required,email"`
		Phone string `json:"phone"`
	}
	if msg, valid := bindJSON(c, &body); !valid {
		return badRequest(c, msg)
	}

	u, err := h.svc.Create(c.Context(), user.CreateRequest{
		Name:  body.Name,
		Email: body.Email,
		Phone: body.Phone,
	})
	if err != nil {
		return mapUserError(c, err)
	}

	return created(c, u)
}

// PATCH /api/users/:uid
func (h *UserHandler) Update(c fiber.Ctx) error {
	uid, valid := paramUUID(c, "uid")
	if !valid {
		return badRequest(c, "invalid user id")
	}

	var body struct {
		Name     *string `json:"name"`
		Email    *string `json:"email" validate:"omitnil,email"`
		Phone    *string `json:"phone"`
		IsActive *bool   `json:"is_active"`
	}
	if msg, valid := bindJSON(c, &body); !valid {
		return badRequest(c, msg)
	}

	u, err := h.svc.Update(c.Context(), uid, user.UpdateRequest{
		Name:     body.Name,
		Email:    body.Email,
		Phone:    body.Phone,
		IsActive: body.IsActive,
	})
	if err != nil {
		return mapUserError(c, err)
	}

	return ok(c, u)
}

// DELETE /api/users/:uid
func (h *UserHandler) Delete(c fiber.Ctx) error {
	uid, valid := paramUUID(c, "uid")
	if !valid {
		return badRequest(c, "invalid user id")
	}

	if err := h.svc.Deactivate(c.Context(), uid); err != nil {
		return mapUserError(c, err)
	}
	return noContent(c)
}

// POST /api/users/:uid/callback-request
func (h *UserHandler) RequestCallback(c fiber.Ctx) error {
	uid, valid := paramUUID(c, "uid")
	if !valid {
		return badRequest(c, "invalid user id")
	}

	var body struct {
		Note string `json:"note"`
	}
	// the body is optional
	if len(c.Body()) > 0 {
		if msg, valid := bindJSON(c, &body); !valid {
			return badRequest(c, msg)
		}
	}

	u, err := h.svc.RequestCallback(c.Context(), uid, clean(body.Note))
	if err != nil {
		return mapUserError(c, err)
	}
	return ok(c, u)
}

// GET /api/callback-requests
func (h *UserHandler) CallbackRequests(c fiber.Ctx) error {
	list, err := h.svc.ListCallbackRequests(c.Context())
	if err != nil {
		return mapUserError(c, err)
	}
	return ok(c, list)
}

// GET /api/uniClients?email=
func (h *UserHandler) ClientsOfTherapist(c fiber.Ctx) error {
	email := c.Query("email")
	if email == "" {
		return badRequest(c, "email is required")
	}

	list, err := h.svc.ClientsOfTherapist(c.Context(), email)
	if err != nil {
		return mapUserError(c, err)
	}
	return ok(c, list)
}
