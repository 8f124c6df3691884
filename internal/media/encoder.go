// Package media turns user-selected files into transmittable encoded images.
package media

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/leafwise/leafwise/internal/domain"
)

// Candidate is one user-selected file: the reported name and MIME type plus
// a reader over the raw bytes.
type Candidate struct {
	Name     string
	MIMEType string
	Reader   io.Reader
}

// Encoder converts a Candidate into an EncodedImage. Only files whose MIME
// type begins with "image/" are accepted; everything else, including read
// failures, is rejected with domain.ErrInvalidMediaType and a single attempt
// is made per call (no retry).
type Encoder struct{}

func NewEncoder() *Encoder {
	return &Encoder{}
}

func (e *Encoder) Encode(ctx context.Context, c Candidate) (*domain.EncodedImage, error) {
	mimeType := c.MIMEType
	if mimeType == "" {
		mimeType = mime.TypeByExtension(filepath.Ext(c.Name))
	}

	// A declared non-image type is rejected before any bytes are read, so a
	// bad selection cannot disturb an existing one.
	if mimeType != "" && !strings.HasPrefix(mimeType, "image/") {
		return nil, fmt.Errorf("%w: got %q", domain.ErrInvalidMediaType, mimeType)
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidMediaType, err)
	}

	data, err := io.ReadAll(c.Reader)
	if err != nil {
		return nil, fmt.Errorf("%w: read %q: %v", domain.ErrInvalidMediaType, c.Name, err)
	}

	if mimeType == "" {
		mimeType = http.DetectContentType(data)
		if !strings.HasPrefix(mimeType, "image/") {
			return nil, fmt.Errorf("%w: got %q", domain.ErrInvalidMediaType, mimeType)
		}
	}

	payload := base64.StdEncoding.EncodeToString(data)
	img := domain.NewEncodedImage(mimeType, payload)
	return &img, nil
}
