package media

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var (
	// ErrNotImage is returned when the payload does not decode to an image.
	ErrNotImage = errors.New("payload is not an image")
	// ErrTooLarge is returned when the decoded payload exceeds the size cap.
	ErrTooLarge = errors.New("image too large")
)

// Uploader stores a user-supplied image and returns a URL clients can
// fetch it from. Profile pictures and message attachments arrive as
// base64 data-URLs, the way browsers produce them from a file input.
type Uploader interface {
	Upload(ctx context.Context, dataURL string) (string, error)
}

// LocalUploader writes images under a directory served at PublicPath.
type LocalUploader struct {
	dir      string
	maxBytes int64
}

// PublicPath is the URL prefix the upload directory is served under.
const PublicPath = "/uploads"

// NewLocalUploader creates the upload directory if needed.
func NewLocalUploader(dir string, maxBytes int64) (*LocalUploader, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalUploader{dir: dir, maxBytes: maxBytes}, nil
}

// Upload decodes a data-URL, verifies it really is an image by sniffing
// the decoded bytes (the data-URL's own media type is attacker-chosen),
// and writes it under a random name.
func (u *LocalUploader) Upload(_ context.Context, dataURL string) (string, error) {
	payload, err := decodeDataURL(dataURL)
	if err != nil {
		return "", err
	}
	if int64(len(payload)) > u.maxBytes {
		return "", ErrTooLarge
	}

	mtype := mimetype.Detect(payload)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return "", ErrNotImage
	}

	name := uuid.NewString() + mtype.Extension()
	if err := os.WriteFile(filepath.Join(u.dir, name), payload, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}

	return PublicPath + "/" + name, nil
}

// Dir returns the directory images are written to.
func (u *LocalUploader) Dir() string {
	return u.dir
}

func decodeDataURL(dataURL string) ([]byte, error) {
	// Expected shape: data:image/png;base64,<payload>
	rest, ok := strings.CutPrefix(dataURL, "data:")
	if !ok {
		return nil, ErrNotImage
	}
	_, encoded, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, ErrNotImage
	}

	payload, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode base64: %w", err)
	}
	return payload, nil
}
