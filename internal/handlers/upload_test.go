package handlers_test

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BradenHooton/scribe/internal/handlers"
	"github.com/BradenHooton/scribe/internal/models"
	"github.com/BradenHooton/scribe/internal/services"
	pkghttp "github.com/BradenHooton/scribe/pkg/http"
)

func multipartRequest(t *testing.T, field string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(field, "photo.png")
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/api/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUpload_Success(t *testing.T) {
	var got []byte
	mock := &handlers.MockUploadService{
		SaveFunc: func(ctx context.Context, data []byte) (string, error) {
			got = data
			return "/uploads/1_abc.png", nil
		},
	}
	handler := handlers.NewUploadHandler(mock, 1024, nil, nil)

	w := httptest.NewRecorder()
	handler.Upload(w, multipartRequest(t, "file", []byte("image-bytes")))

	resp := handlers.DecodeEnvelope(t, w, 200)
	assert.Equal(t, pkghttp.CodeOK, resp.Code)
	assert.Equal(t, "/uploads/1_abc.png", resp.URL)
	assert.Equal(t, []byte("image-bytes"), got)
}

func TestUpload_Errors(t *testing.T) {
	tests := []struct {
		name    string
		req     func(t *testing.T) *http.Request
		saveErr error
		status  int
		msg     string
	}{
		{
			name:   "no file",
			req:    func(t *testing.T) *http.Request { return multipartRequest(t, "other", []byte("x")) },
			status: http.StatusBadRequest,
			msg:    handlers.MsgUploadMissing,
		},
		{
			name:   "not multipart",
			req:    func(t *testing.T) *http.Request { return httptest.NewRequest("POST", "/api/upload", nil) },
			status: http.StatusBadRequest,
			msg:    handlers.MsgUploadMissing,
		},
		{
			name:   "too large",
			req:    func(t *testing.T) *http.Request { return multipartRequest(t, "file", bytes.Repeat([]byte("a"), 2048)) },
			status: http.StatusBadRequest,
			msg:    handlers.MsgUploadTooLarge,
		},
		{
			name:    "not an image",
			req:     func(t *testing.T) *http.Request { return multipartRequest(t, "file", []byte("text")) },
			saveErr: services.ErrUnsupportedUpload,
			status:  http.StatusBadRequest,
			msg:     handlers.MsgUploadBadType,
		},
		{
			name:    "store failure",
			req:     func(t *testing.T) *http.Request { return multipartRequest(t, "file", []byte("img")) },
			saveErr: models.ErrInternalServer,
			status:  http.StatusInternalServerError,
			msg:     handlers.MsgInternalFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &handlers.MockUploadService{
				SaveFunc: func(ctx context.Context, data []byte) (string, error) {
					return "", tt.saveErr
				},
			}
			handler := handlers.NewUploadHandler(mock, 1024, nil, nil)

			w := httptest.NewRecorder()
			handler.Upload(w, tt.req(t))
			handlers.AssertEnvelope(t, w, tt.status, pkghttp.CodeFail, tt.msg)
		})
	}
}

func TestUpload_OversizedBody(t *testing.T) {
	handler := handlers.NewUploadHandler(&handlers.MockUploadService{}, 16, nil, nil)

	w := httptest.NewRecorder()
	handler.Upload(w, multipartRequest(t, "file", bytes.Repeat([]byte("a"), 256<<10)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
