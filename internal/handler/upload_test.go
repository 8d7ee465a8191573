package handler_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YadavAkhileshh/CrackBano/internal/handler"
	"github.com/YadavAkhileshh/CrackBano/internal/upload"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01")

func newUploadHandler(t *testing.T, maxBytes int64) (*handler.UploadHandler, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := upload.NewImageStore(dir, maxBytes)
	require.NoError(t, err)
	return handler.NewUploadHandler(store, "/uploads", handler.NewErrors(testLogger(), false), testLogger()), dir
}

func multipartBody(t *testing.T, field, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUploadHandler_StoresImage(t *testing.T) {
	h, dir := newUploadHandler(t, 0)
	body, contentType := multipartBody(t, "image", "../../etc/avatar.png", pngBytes)

	req := httptest.NewRequest(http.MethodPost, "http://api.example.com/api/auth/upload-image", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	h.HandleUploadImage(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var res struct {
		ImageURL string `json:"imageUrl"`
		Success  bool   `json:"success"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
	assert.True(t, res.Success)
	require.True(t, strings.HasPrefix(res.ImageURL, "http://api.example.com/uploads/"), res.ImageURL)
	assert.True(t, strings.HasSuffix(res.ImageURL, ".png"))
	assert.NotContains(t, res.ImageURL, "avatar", "client filename is not used")

	stored, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(res.ImageURL, "http://api.example.com/uploads/")))
	require.NoError(t, err)
	assert.Equal(t, pngBytes, stored)
}

func TestUploadHandler_ForwardedProto(t *testing.T) {
	h, _ := newUploadHandler(t, 0)
	body, contentType := multipartBody(t, "image", "a.png", pngBytes)

	req := httptest.NewRequest(http.MethodPost, "http://api.example.com/api/auth/upload-image", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Forwarded-Proto", "https")
	rr := httptest.NewRecorder()
	h.HandleUploadImage(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"imageUrl":"https://api.example.com/uploads/`)
}

func TestUploadHandler_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		data    []byte
		message string
	}{
		{"not an image", "image", []byte("#!/bin/sh\necho hi\n"), "only image files are allowed"},
		{"wrong field", "avatar", pngBytes, "no image file uploaded"},
		{"over the limit", "image", append(append([]byte{}, pngBytes...), bytes.Repeat([]byte{0}, 100)...), "image must be 64 bytes or fewer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, dir := newUploadHandler(t, 64)
			body, contentType := multipartBody(t, tt.field, "x.png", tt.data)

			req := httptest.NewRequest(http.MethodPost, "/api/auth/upload-image", body)
			req.Header.Set("Content-Type", contentType)
			rr := httptest.NewRecorder()
			h.HandleUploadImage(rr, req)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			got := decodeError(t, rr)
			assert.Equal(t, "image", got.Field)
			assert.Equal(t, tt.message, got.Message)

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			assert.Empty(t, entries)
		})
	}
}

func TestUploadHandler_NotMultipart(t *testing.T) {
	h, _ := newUploadHandler(t, 0)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/upload-image", strings.NewReader(`{"image":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.HandleUploadImage(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "validation_error", decodeError(t, rr).Error)
}
