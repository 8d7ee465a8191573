package upload

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YadavAkhileshh/CrackBano/internal/apperror"
)

// pngHeader is enough for http.DetectContentType to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func newTestStore(t *testing.T, maxBytes int64) *ImageStore {
	t.Helper()
	s, err := NewImageStore(filepath.Join(t.TempDir(), "uploads"), maxBytes)
	require.NoError(t, err)
	return s
}

func dirEntries(t *testing.T, s *ImageStore) []os.DirEntry {
	t.Helper()
	entries, err := os.ReadDir(s.dir)
	require.NoError(t, err)
	return entries
}

func TestImageStore_SavePNG(t *testing.T) {
	s := newTestStore(t, 0)
	assert.Equal(t, int64(DefaultMaxBytes), s.MaxBytes())

	data := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, 2048)...)
	name, err := s.Save(bytes.NewReader(data))
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(name, ".png"), name)
	got, err := os.ReadFile(filepath.Join(s.dir, name))
	require.NoError(t, err)
	assert.Equal(t, data, got, "bytes past the sniffed header are kept")
}

func TestImageStore_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		message string
	}{
		{"empty", nil, "image file is empty"},
		{"plain text", []byte("hello, not an image"), "only image files are allowed"},
		{"html", []byte("<html><body>x</body></html>"), "only image files are allowed"},
		{"too large", append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{1}, 64)...), "image must be 32 bytes or fewer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t, 32)

			_, err := s.Save(bytes.NewReader(tt.data))

			require.ErrorIs(t, err, apperror.ErrValidation)
			var appErr *apperror.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, "image", appErr.Field)
			assert.Equal(t, tt.message, appErr.Message)
			assert.Empty(t, dirEntries(t, s), "nothing is left on disk")
		})
	}
}

func TestImageStore_NotImageWrapsSentinel(t *testing.T) {
	s := newTestStore(t, 0)
	_, err := s.Save(strings.NewReader("%PDF-1.7"))
	assert.ErrorIs(t, err, ErrNotImage)
}

func TestNewImageStore_RequiresDir(t *testing.T) {
	_, err := NewImageStore("", 0)
	assert.Error(t, err)
}

func TestImageStore_FileServer(t *testing.T) {
	s := newTestStore(t, 0)
	name, err := s.Save(bytes.NewReader(pngHeader))
	require.NoError(t, err)

	srv := http.StripPrefix("/uploads", s.FileServer())

	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/uploads/"+name, nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))

	rr = httptest.NewRecorder()
	srv.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/uploads/", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code, "no directory listing")
}
