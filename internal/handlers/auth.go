package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/BradenHooton/scribe/internal/auth"
	"github.com/BradenHooton/scribe/internal/models"
	"github.com/BradenHooton/scribe/internal/services"
	pkghttp "github.com/BradenHooton/scribe/pkg/http"
)

// Messages returned by the account endpoints
const (
	MsgRegisterOK      = "注册成功"
	MsgRegisterFailed  = "注册失败"
	MsgLoginOK         = "登录成功"
	MsgUserNotFound    = "用户不存在"
	MsgBadPassword     = "密码错误"
	MsgBadCredentials  = "用户名或密码错误"
	MsgLoginRateLimit  = "登录失败次数过多，请10分钟后再试"
	MsgInternalFailure = "服务器错误"
)

// AuthServiceInterface defines the interface for auth business logic
type AuthServiceInterface interface {
	Login(ctx context.Context, req services.LoginRequest) (*services.LoginResult, error)
	Register(ctx context.Context, username, password string) error
}

// AuthHandler handles registration, login and the current-user lookup
type AuthHandler struct {
	service       AuthServiceInterface
	ipConfig      *pkghttp.IPConfig
	genericErrors bool
}

// NewAuthHandler creates a new AuthHandler. With genericErrors set, unknown
// users and wrong passwords get the same message.
func NewAuthHandler(service AuthServiceInterface, ipConfig *pkghttp.IPConfig, genericErrors bool) *AuthHandler {
	return &AuthHandler{
		service:       service,
		ipConfig:      ipConfig,
		genericErrors: genericErrors,
	}
}

// CredentialsRequest is the body of both login and register
type CredentialsRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required"`
}

// CurrentUser is returned by Me
type CurrentUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// Register handles account creation
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.service.Register(r.Context(), req.Username, req.Password); err != nil {
		detail := err.Error()
		var regErr *models.RegistrationError
		if errors.As(err, &regErr) {
			detail = regErr.Cause.Error()
		}
		pkghttp.WriteFailWithError(w, MsgRegisterFailed, detail)
		return
	}

	pkghttp.WriteOK(w, MsgRegisterOK)
}

// Login handles credential login and hands back a session token
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.service.Login(r.Context(), services.LoginRequest{
		Username:  req.Username,
		Password:  req.Password,
		Address:   pkghttp.ExtractClientIP(r, h.ipConfig),
		UserAgent: r.Header.Get("User-Agent"),
	})
	if err != nil {
		switch {
		case errors.Is(err, models.ErrRateLimited):
			pkghttp.WriteFail(w, MsgLoginRateLimit)
		case errors.Is(err, models.ErrUserNotFound):
			pkghttp.WriteFail(w, h.credentialMessage(MsgUserNotFound))
		case errors.Is(err, models.ErrBadPassword):
			pkghttp.WriteFail(w, h.credentialMessage(MsgBadPassword))
		default:
			pkghttp.WriteInternalError(w, MsgInternalFailure)
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, pkghttp.Response{
		Code:  pkghttp.CodeOK,
		Msg:   MsgLoginOK,
		Token: result.Token,
	})
}

func (h *AuthHandler) credentialMessage(specific string) string {
	if h.genericErrors {
		return MsgBadCredentials
	}
	return specific
}

// Me returns the account the session token was issued to
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		pkghttp.WriteUnauthorized(w, auth.MsgNotLoggedIn)
		return
	}

	pkghttp.WriteData(w, CurrentUser{ID: claims.UserID, Username: claims.Username})
}
