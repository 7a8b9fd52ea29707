package handler

import (
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v3"
)

// PageHandler serves the HTML shells of the role areas. The shells are
// static; they load their data from /api with the caller's token.
type PageHandler struct {
	dir string
}

func NewPageHandler(dir string) *PageHandler {
	return &PageHandler{dir: dir}
}

// Shell returns a handler for <dir>/<area>/index.html.
func (h *PageHandler) Shell(area string) fiber.Handler {
	file := filepath.Join(h.dir, area, "index.html")
	return func(c fiber.Ctx) error {
		return h.send(c, file)
	}
}

// GET /login
func (h *PageHandler) Login(c fiber.Ctx) error {
	return h.send(c, filepath.Join(h.dir, "login.html"))
}

func (h *PageHandler) send(c fiber.Ctx, file string) error {
	if _, err := os.Stat(file); err != nil {
		return notFound(c, "page not found")
	}
	return c.SendFile(file)
}
