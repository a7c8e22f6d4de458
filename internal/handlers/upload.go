package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/BradenHooton/scribe/internal/services"
	pkghttp "github.com/BradenHooton/scribe/pkg/http"
	pkglogger "github.com/BradenHooton/scribe/pkg/logger"
)

const (
	MsgUploadMissing  = "上传失败，只允许图片类型，且大小不超过2MB"
	MsgUploadTooLarge = "文件过大，最大2MB"
	MsgUploadBadType  = "只允许上传图片类型文件！"

	uploadField = "file"
	// room for the multipart envelope around the file itself
	multipartOverhead = 64 << 10
)

// UploadServiceInterface stores an uploaded image and returns its URL
type UploadServiceInterface interface {
	Save(ctx context.Context, data []byte) (string, error)
}

type UploadHandler struct {
	service     UploadServiceInterface
	maxBytes    int64
	auditLogger *pkglogger.AuditLogger
	ipConfig    *pkghttp.IPConfig
}

func NewUploadHandler(service UploadServiceInterface, maxBytes int64, auditLogger *pkglogger.AuditLogger, ipConfig *pkghttp.IPConfig) *UploadHandler {
	return &UploadHandler{service: service, maxBytes: maxBytes, auditLogger: auditLogger, ipConfig: ipConfig}
}

func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartOverhead)

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			pkghttp.WriteBadRequest(w, MsgUploadTooLarge)
			return
		}
		pkghttp.WriteBadRequest(w, MsgUploadMissing)
		return
	}
	defer file.Close()

	if header.Size > h.maxBytes {
		pkghttp.WriteBadRequest(w, MsgUploadTooLarge)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, h.maxBytes+1))
	if err != nil {
		pkghttp.WriteBadRequest(w, MsgUploadMissing)
		return
	}
	if int64(len(data)) > h.maxBytes {
		pkghttp.WriteBadRequest(w, MsgUploadTooLarge)
		return
	}

	url, err := h.service.Save(r.Context(), data)
	if err != nil {
		if errors.Is(err, services.ErrUnsupportedUpload) {
			pkghttp.WriteBadRequest(w, MsgUploadBadType)
			return
		}
		pkghttp.WriteInternalError(w, MsgInternalFailure)
		return
	}

	if h.auditLogger != nil {
		h.auditLogger.LogContentAction(pkglogger.EventUpload, username(r), pkghttp.ExtractClientIP(r, h.ipConfig),
			map[string]string{"url": url})
	}
	pkghttp.WriteJSON(w, http.StatusOK, pkghttp.Response{Code: pkghttp.CodeOK, URL: url})
}
