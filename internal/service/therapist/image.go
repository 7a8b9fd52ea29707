package therapist

import (
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/Alijeyrad/mindbook_backend/internal/repo"
)

const maxImageBytes = 2 << 20

// DecodeImage accepts "data:<mime>;base64,<payload>" or bare base64.
// An empty string clears the image.
func DecodeImage(s string) (*repo.Image, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return &repo.Image{}, nil
	}

	mime := ""
	payload := s
	if strings.HasPrefix(s, "data:") {
		header, data, ok := strings.Cut(s[len("data:"):], ",")
		if !ok || !strings.HasSuffix(header, ";base64") {
			return nil, ErrInvalidImage
		}
		mime = strings.TrimSuffix(header, ";base64")
		payload = data
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		if raw, err = base64.RawStdEncoding.DecodeString(payload); err != nil {
			return nil, ErrInvalidImage
		}
	}
	if len(raw) == 0 {
		return nil, ErrInvalidImage
	}
	if len(raw) > maxImageBytes {
		return nil, ErrImageTooLarge
	}
	if mime == "" {
		mime = http.DetectContentType(raw)
	}
	return &repo.Image{Data: raw, Mime: mime}, nil
}
