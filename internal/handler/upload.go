package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/YadavAkhileshh/CrackBano/internal/apperror"
)

// multipartOverhead covers boundaries and part headers on top of the image.
const multipartOverhead = 64 << 10

// ImageSaver is the part of upload.ImageStore the handler uses.
type ImageSaver interface {
	Save(r io.Reader) (string, error)
	MaxBytes() int64
}

// UploadHandler accepts profile images.
type UploadHandler struct {
	images ImageSaver
	// urlPrefix is the path the stored files are served under.
	urlPrefix string
	errors    *Errors
	logger    *slog.Logger
}

func NewUploadHandler(images ImageSaver, urlPrefix string, errs *Errors, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{images: images, urlPrefix: urlPrefix, errors: errs, logger: logger}
}

type uploadResponse struct {
	ImageURL string `json:"imageUrl"`
	Success  bool   `json:"success"`
}

// HandleUploadImage stores the multipart "image" part and returns an
// absolute URL for it. Signup calls it before an account exists, so it is
// public.
//
// HTTP: POST /api/auth/upload-image
func (h *UploadHandler) HandleUploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.images.MaxBytes()+multipartOverhead)

	file, _, err := r.FormFile("image")
	if err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			err = apperror.ValidationFailed("image",
				fmt.Sprintf("image must be %d bytes or fewer", h.images.MaxBytes()))
		default:
			err = apperror.ValidationFailed("image", "no image file uploaded")
		}
		h.errors.Write(w, r, err)
		return
	}
	defer file.Close()

	name, err := h.images.Save(file)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}
	h.logger.Info("profile image stored", slog.String("file", name))

	writeJSON(w, http.StatusOK, uploadResponse{
		ImageURL: fmt.Sprintf("%s://%s%s/%s", scheme(r), r.Host, h.urlPrefix, name),
		Success:  true,
	})
}

func scheme(r *http.Request) string {
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "https" || proto == "http" {
		return proto
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}
