package handlers

import (
	"context"
	"net/http"

	"github.com/BradenHooton/scribe/internal/auth"
	"github.com/BradenHooton/scribe/internal/models"
	pkghttp "github.com/BradenHooton/scribe/pkg/http"
	pkglogger "github.com/BradenHooton/scribe/pkg/logger"
)

// ProfileServiceInterface defines the profile operations the handler needs
type ProfileServiceInterface interface {
	Get(ctx context.Context) (*models.Profile, error)
	Save(ctx context.Context, p *models.Profile) (*models.Profile, error)
}

type ProfileHandler struct {
	service     ProfileServiceInterface
	auditLogger *pkglogger.AuditLogger
	ipConfig    *pkghttp.IPConfig
}

func NewProfileHandler(service ProfileServiceInterface, auditLogger *pkglogger.AuditLogger, ipConfig *pkghttp.IPConfig) *ProfileHandler {
	return &ProfileHandler{service: service, auditLogger: auditLogger, ipConfig: ipConfig}
}

type ProfileRequest struct {
	Avatar   string `json:"avatar" validate:"max=512"`
	Nickname string `json:"nickname" validate:"max=128"`
	Bio      string `json:"bio"`
	Email    string `json:"email" validate:"max=255"`
}

// Get returns the profile, or {} before one has been saved
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.Get(r.Context())
	if err != nil {
		pkghttp.WriteInternalError(w, MsgInternalFailure)
		return
	}
	if profile == nil {
		pkghttp.WriteData(w, struct{}{})
		return
	}
	pkghttp.WriteData(w, profile)
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req ProfileRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	_, err := h.service.Save(r.Context(), &models.Profile{
		Avatar:   req.Avatar,
		Nickname: req.Nickname,
		Bio:      req.Bio,
		Email:    req.Email,
	})
	if err != nil {
		pkghttp.WriteInternalError(w, MsgInternalFailure)
		return
	}

	if h.auditLogger != nil {
		h.auditLogger.LogContentAction(pkglogger.EventProfileUpdate, username(r), pkghttp.ExtractClientIP(r, h.ipConfig), nil)
	}
	pkghttp.WriteOK(w, MsgUpdated)
}

// username is the logged-in account name, or "" outside a protected route
func username(r *http.Request) string {
	if claims := auth.ClaimsFromContext(r.Context()); claims != nil {
		return claims.Username
	}
	return ""
}
