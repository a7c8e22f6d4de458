package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/BradenHooton/scribe/internal/models"
	"github.com/BradenHooton/scribe/internal/services"
	pkghttp "github.com/BradenHooton/scribe/pkg/http"
	pkglogger "github.com/BradenHooton/scribe/pkg/logger"
)

const (
	MsgCreated         = "新增成功"
	MsgUpdated         = "修改成功"
	MsgDeleted         = "删除成功"
	MsgArticleNotFound = "文章不存在"
	MsgEmptyContent    = "文章内容不能为空"
)

// ArticleServiceInterface defines the article operations the handler needs
type ArticleServiceInterface interface {
	List(ctx context.Context) ([]*models.Article, error)
	View(ctx context.Context, id int64) (*models.Article, error)
	Create(ctx context.Context, in services.ArticleInput) (*models.Article, error)
	Update(ctx context.Context, id int64, in services.ArticleInput) (*models.Article, error)
	Delete(ctx context.Context, id int64) error
	Like(ctx context.Context, id int64) (int64, error)
}

type ArticleHandler struct {
	service     ArticleServiceInterface
	auditLogger *pkglogger.AuditLogger
	ipConfig    *pkghttp.IPConfig
}

func NewArticleHandler(service ArticleServiceInterface, auditLogger *pkglogger.AuditLogger, ipConfig *pkghttp.IPConfig) *ArticleHandler {
	return &ArticleHandler{service: service, auditLogger: auditLogger, ipConfig: ipConfig}
}

// ArticleRequest is the editor payload. Content is HTML.
type ArticleRequest struct {
	Title   string `json:"title" validate:"required,max=255"`
	Content string `json:"content"`
	Cover   string `json:"cover" validate:"max=512"`
}

func (req ArticleRequest) input() services.ArticleInput {
	return services.ArticleInput{Title: req.Title, Content: req.Content, Cover: req.Cover}
}

type likeResponse struct {
	Code  int   `json:"code"`
	Likes int64 `json:"likes"`
}

// parseID reads the {id} URL parameter. On failure it writes the 400
// response and returns false.
func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeInvalidRequest(w, "invalid id")
		return 0, false
	}
	return id, true
}

// writeArticleError answers the errors ArticleService returns
func writeArticleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteFail(w, MsgArticleNotFound)
	case errors.Is(err, models.ErrEmptyContent):
		pkghttp.WriteFail(w, MsgEmptyContent)
	default:
		pkghttp.WriteInternalError(w, MsgInternalFailure)
	}
}

func (h *ArticleHandler) List(w http.ResponseWriter, r *http.Request) {
	articles, err := h.service.List(r.Context())
	if err != nil {
		writeArticleError(w, err)
		return
	}
	if articles == nil {
		articles = []*models.Article{}
	}
	pkghttp.WriteData(w, articles)
}

// Get returns one article and counts the view
func (h *ArticleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	article, err := h.service.View(r.Context(), id)
	if err != nil {
		writeArticleError(w, err)
		return
	}
	pkghttp.WriteData(w, article)
}

func (h *ArticleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ArticleRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	article, err := h.service.Create(r.Context(), req.input())
	if err != nil {
		writeArticleError(w, err)
		return
	}

	h.audit(r, pkglogger.EventArticleCreate, article.ID)
	pkghttp.WriteOK(w, MsgCreated)
}

func (h *ArticleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req ArticleRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if _, err := h.service.Update(r.Context(), id, req.input()); err != nil {
		writeArticleError(w, err)
		return
	}

	h.audit(r, pkglogger.EventArticleUpdate, id)
	pkghttp.WriteOK(w, MsgUpdated)
}

func (h *ArticleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeArticleError(w, err)
		return
	}

	h.audit(r, pkglogger.EventArticleDelete, id)
	pkghttp.WriteOK(w, MsgDeleted)
}

// Like is public; every call counts.
func (h *ArticleHandler) Like(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	likes, err := h.service.Like(r.Context(), id)
	if err != nil {
		writeArticleError(w, err)
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, likeResponse{Code: pkghttp.CodeOK, Likes: likes})
}

func (h *ArticleHandler) audit(r *http.Request, event string, id int64) {
	if h.auditLogger == nil {
		return
	}
	h.auditLogger.LogContentAction(event, username(r), pkghttp.ExtractClientIP(r, h.ipConfig),
		map[string]string{"article_id": strconv.FormatInt(id, 10)})
}
