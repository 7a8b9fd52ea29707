package handler

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

var (
	validate = newValidator()

	// free text is stored and later rendered in emails and pages
	strict = bluemonday.StrictPolicy()
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// bindJSON decodes the body into dst and runs its validate tags. The returned
// message is safe to send back as a 400.
func bindJSON(c fiber.Ctx, dst any) (string, bool) {
	if err := c.Bind().JSON(dst); err != nil {
		return "invalid request body", false
	}
	if err := validate.Struct(dst); err != nil {
		return validationMessage(err), false
	}
	return "", true
}

func validationMessage(err error) string {
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) || len(fields) == 0 {
		return "invalid request body"
	}
	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		switch f.Tag() {
		case "required":
			msgs = append(msgs, f.Field()+" is required")
		case "email":
			msgs = append(msgs, f.Field()+" must be a valid email")
		case "oneof":
			msgs = append(msgs, f.Field()+" must be one of "+f.Param())
		default:
			msgs = append(msgs, f.Field()+" is invalid")
		}
	}
	return strings.Join(msgs, "; ")
}

func clean(s string) string {
	return strings.TrimSpace(strict.Sanitize(s))
}

func cleanPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := clean(*s)
	return &v
}

func paramUUID(c fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	return id, err == nil
}

// queryUUID returns nil for an absent parameter and false for a malformed one.
func queryUUID(c fiber.Ctx, name string) (*uuid.UUID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, false
	}
	return &id, true
}
