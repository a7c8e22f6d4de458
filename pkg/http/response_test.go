package http_test

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	pkghttp "github.com/BradenHooton/scribe/pkg/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestWriteOK(t *testing.T) {
	w := httptest.NewRecorder()
	pkghttp.WriteOK(w, "注册成功")

	assert.Equal(t, 200, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	body := decode(t, w)
	assert.Equal(t, float64(0), body["code"])
	assert.Equal(t, "注册成功", body["msg"])
	assert.NotContains(t, body, "data")
	assert.NotContains(t, body, "token")
}

func TestWriteFail_StaysHTTP200(t *testing.T) {
	w := httptest.NewRecorder()
	pkghttp.WriteFail(w, "密码错误")

	assert.Equal(t, 200, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(1), body["code"])
	assert.Equal(t, "密码错误", body["msg"])
}

func TestWriteFailWithError(t *testing.T) {
	w := httptest.NewRecorder()
	pkghttp.WriteFailWithError(w, "注册失败", "duplicate key")

	body := decode(t, w)
	assert.Equal(t, float64(1), body["code"])
	assert.Equal(t, "duplicate key", body["error"])
}

func TestWriteUnauthorized(t *testing.T) {
	w := httptest.NewRecorder()
	pkghttp.WriteUnauthorized(w, "未登录")

	assert.Equal(t, 401, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(401), body["code"])
	assert.Equal(t, "未登录", body["msg"])
}

func TestWriteData_EmptyObjectIsKept(t *testing.T) {
	w := httptest.NewRecorder()
	pkghttp.WriteData(w, map[string]any{})

	assert.JSONEq(t, `{"code":0,"data":{}}`, w.Body.String())
}

func TestWriteBadRequestAndInternalError(t *testing.T) {
	w := httptest.NewRecorder()
	pkghttp.WriteBadRequest(w, "请求参数错误")
	assert.Equal(t, 400, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["code"])

	w = httptest.NewRecorder()
	pkghttp.WriteInternalError(w, "服务器错误")
	assert.Equal(t, 500, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["code"])
}
