// Package upload stores profile images on local disk.
//
// Files are named by a fresh xid plus an extension derived from the sniffed
// content type, never from the client's filename, so nothing the client
// sends ends up in a path.
package upload

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/rs/xid"

	"github.com/YadavAkhileshh/CrackBano/internal/apperror"
)

// DefaultMaxBytes is the largest image Save accepts when no limit is set.
const DefaultMaxBytes = 5 << 20

// sniffLen is how many bytes http.DetectContentType looks at.
const sniffLen = 512

// allowed maps accepted content types to the extension written to disk.
var allowed = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ErrNotImage is wrapped by the validation error Save returns for any
// content type outside the allow-list.
var ErrNotImage = errors.New("upload: only image files are allowed")

// ImageStore writes images under one directory.
type ImageStore struct {
	dir      string
	maxBytes int64
}

// NewImageStore creates dir if needed. A non-positive maxBytes uses
// DefaultMaxBytes.
func NewImageStore(dir string, maxBytes int64) (*ImageStore, error) {
	if dir == "" {
		return nil, errors.New("upload: directory must not be empty")
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("upload: creating %s: %w", dir, err)
	}
	return &ImageStore{dir: dir, maxBytes: maxBytes}, nil
}

// MaxBytes is the largest image Save accepts.
func (s *ImageStore) MaxBytes() int64 { return s.maxBytes }

// Save sniffs the content type, then copies r to a new file and returns
// its name. Non-images and files over the limit are validation errors and
// leave nothing on disk.
func (s *ImageStore) Save(r io.Reader) (string, error) {
	br := bufio.NewReaderSize(r, sniffLen)
	head, err := br.Peek(sniffLen)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("upload: reading image: %w", err)
	}
	if len(head) == 0 {
		return "", apperror.ValidationFailed("image", "image file is empty")
	}

	ext, ok := allowed[http.DetectContentType(head)]
	if !ok {
		return "", &apperror.AppError{Err: fmt.Errorf("%w: %w", apperror.ErrValidation, ErrNotImage),
			Message: "only image files are allowed", Field: "image"}
	}

	name := xid.New().String() + ext
	path := filepath.Join(s.dir, name)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("upload: creating %s: %w", name, err)
	}

	n, copyErr := io.Copy(f, io.LimitReader(br, s.maxBytes+1))
	closeErr := f.Close()
	switch {
	case copyErr != nil:
		os.Remove(path)
		return "", fmt.Errorf("upload: writing %s: %w", name, copyErr)
	case closeErr != nil:
		os.Remove(path)
		return "", fmt.Errorf("upload: closing %s: %w", name, closeErr)
	case n > s.maxBytes:
		os.Remove(path)
		return "", apperror.ValidationFailed("image",
			fmt.Sprintf("image must be %d bytes or fewer", s.maxBytes))
	}
	return name, nil
}

// FileServer serves stored images. Directory paths answer 404 instead of a
// listing.
func (s *ImageStore) FileServer() http.Handler {
	files := http.FileServer(http.Dir(s.dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := r.URL.Path
		if p == "" || p[len(p)-1] == '/' {
			http.NotFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	})
}
