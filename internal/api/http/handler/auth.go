package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/Alijeyrad/mindbook_backend/internal/service/auth"
	pasetotoken "github.com/Alijeyrad/mindbook_backend/pkg/paseto"
)

type AuthHandler struct {
	svc auth.Service
}

func NewAuthHandler(svc auth.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

func mapAuthError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, auth.ErrEmailExists):
		return conflict(c, err.Error())
	case errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, auth.ErrPasswordTooShort),
		errors.Is(err, auth.ErrUnknownRole):
		return badRequest(c, err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrSessionNotFound),
		errors.Is(err, auth.ErrInvalidToken):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, auth.ErrAccountDisabled), errors.Is(err, auth.ErrForbidden):
		return forbidden(c)
	case errors.Is(err, auth.ErrAccountNotFound):
		return notFound(c, err.Error())
	default:
		return internalError(c, err)
	}
}

// POST /api/auth/register
func (h *AuthHandler) Register(c fiber.Ctx) error {
	var body struct {
		Name     string `json:"name" validate:"required"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
		Phone    string `json:"phone"`
	}
	if msg, valid := bindJSON(c, &body); !valid {
		return badRequest(c, msg)
	}

	tokens, err := h.svc.Register(c.Context(), auth.RegisterRequest{
		Name:     body.Name,
		Email:    body.Email,
		Password: body.Password,
		Phone:    body.Phone,
	})
	if err != nil {
		return mapAuthError(c, err)
	}

	return created(c, tokens)
}

// POST /api/auth/login
func (h *AuthHandler) Login(c fiber.Ctx) error {
	var body struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}
	if msg, valid := bindJSON(c, &body); !valid {
		return badRequest(c, msg)
	}

	tokens, err := h.svc.Login(c.Context(), auth.LoginRequest{Email: body.Email, Password: body.Password})
	if err != nil {
		return mapAuthError(c, err)
	}

	return ok(c, tokens)
}

// POST /api/auth/refresh
func (h *AuthHandler) Refresh(c fiber.Ctx) error {
	var body struct {
		RefreshToken string `json:"refresh_token" validate:"required"`
	}
	if msg, valid := bindJSON(c, &body); !valid {
		return badRequest(c, msg)
	}

	tokens, err := h.svc.RefreshTokens(c.Context(), body.RefreshToken)
	if err != nil {
		return mapAuthError(c, err)
	}

	return ok(c, tokens)
}

// POST /api/auth/logout
func (h *AuthHandler) Logout(c fiber.Ctx) error {
	claims, found := pasetotoken.ClaimsFromFiber(c)
	if !found || claims.SessionID == nil {
		return unauthorized(c)
	}

	if err := h.svc.Logout(c.Context(), claims.AccountID, *claims.SessionID); err != nil {
		return mapAuthError(c, err)
	}

	return noContent(c)
}

// GET /api/accounts/me
func (h *AuthHandler) Me(c fiber.Ctx) error {
	me, err := h.svc.Me(c.Context())
	if err != nil {
		return mapAuthError(c, err)
	}
	return ok(c, me)
}

type roleBody struct {
	AccountID uuid.UUID `json:"account_id" validate:"required"`
	Role      string    `json:"role" validate:"required"`
}

// POST /api/admin/roles
func (h *AuthHandler) GrantRole(c fiber.Ctx) error {
	var body roleBody
	if msg, valid := bindJSON(c, &body); !valid {
		return badRequest(c, msg)
	}

	if err := h.svc.GrantRole(c.Context(), body.AccountID, body.Role); err != nil {
		return mapAuthError(c, err)
	}

	return ok(c, fiber.Map{"account_id": body.AccountID, "role": body.Role})
}

// DELETE /api/admin/roles
func (h *AuthHandler) RevokeRole(c fiber.Ctx) error {
	var body roleBody
	if msg, valid := bindJSON(c, &body); !valid {
		return badRequest(c, msg)
	}

	if err := h.svc.RevokeRole(c.Context(), body.AccountID, body.Role); err != nil {
		return mapAuthError(c, err)
	}

	return noContent(c)
}
