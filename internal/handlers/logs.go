package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/BradenHooton/scribe/internal/models"
	"github.com/BradenHooton/scribe/internal/services"
	pkghttp "github.com/BradenHooton/scribe/pkg/http"
)

const (
	MsgLogsFailed  = "获取访客日志失败"
	MsgStatsFailed = "获取访客统计失败"

	dateLayout = "2006-01-02"
)

// AccessLogServiceInterface defines the visit log queries
type AccessLogServiceInterface interface {
	List(ctx context.Context, q services.AccessLogQuery) (*services.AccessLogPage, error)
	Stats(ctx context.Context) (*models.AccessStats, error)
}

type AccessLogHandler struct {
	service AccessLogServiceInterface
	loc     *time.Location
}

// NewAccessLogHandler creates a handler that reads date-only bounds in loc
func NewAccessLogHandler(service AccessLogServiceInterface, loc *time.Location) *AccessLogHandler {
	if loc == nil {
		loc = time.Local
	}
	return &AccessLogHandler{service: service, loc: loc}
}

// List handles GET /api/log?page=&pageSize=&startDate=&endDate=
func (h *AccessLogHandler) List(w http.ResponseWriter, r *http.Request) {
	q, err := h.parseQuery(r)
	if err != nil {
		writeInvalidRequest(w, err.Error())
		return
	}

	page, err := h.service.List(r.Context(), q)
	if err != nil {
		pkghttp.WriteFail(w, MsgLogsFailed)
		return
	}
	pkghttp.WriteData(w, page)
}

func (h *AccessLogHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		pkghttp.WriteFail(w, MsgStatsFailed)
		return
	}
	pkghttp.WriteData(w, stats)
}

func (h *AccessLogHandler) parseQuery(r *http.Request) (services.AccessLogQuery, error) {
	values := r.URL.Query()
	var (
		q   services.AccessLogQuery
		err error
	)

	q.Page = leadingInt(values.Get("page"))
	q.PageSize = leadingInt(values.Get("pageSize"))
	if q.StartDate, err = h.parseBound(values.Get("startDate"), false); err != nil {
		return q, err
	}
	if q.EndDate, err = h.parseBound(values.Get("endDate"), true); err != nil {
		return q, err
	}
	return q, nil
}

// leadingInt reads the integer at the start of raw ("2", "20abc", "1.5").
// Anything unreadable yields 0, which the service replaces with its default.
func leadingInt(raw string) int {
	raw = strings.TrimSpace(raw)
	end := 0
	if end < len(raw) && (raw[end] == '-' || raw[end] == '+') {
		end++
	}
	for end < len(raw) && raw[end] >= '0' && raw[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(raw[:end])
	if err != nil {
		return 0
	}
	return n
}

// parseBound accepts RFC 3339 or a bare date. A bare end date covers the
// whole day.
func (h *AccessLogHandler) parseBound(raw string, end bool) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}

	t, err := time.ParseInLocation(dateLayout, raw, h.loc)
	if err != nil {
		return nil, err
	}
	if end {
		t = t.AddDate(0, 0, 1).Add(-time.Microsecond)
	}
	return &t, nil
}
