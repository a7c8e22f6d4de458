package http

import (
	"encoding/json"
	"net/http"
)

// Response codes carried in the envelope. The blog frontend only checks
// code == 0; protected routes answer 401 in both the status and the code.
const (
	CodeOK           = 0
	CodeFail         = 1
	CodeUnauthorized = 401
)

// Response is the {code, msg} envelope every endpoint answers with.
type Response struct {
	Code  int    `json:"code"`
	Msg   string `json:"msg,omitempty"`
	Data  any    `json:"data,omitempty"`
	Token string `json:"token,omitempty"`
	URL   string `json:"url,omitempty"`
	Error string `json:"error,omitempty"`
}

// WriteJSON writes v as JSON with the given status code
func WriteJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	// Encoding errors are not exposed to the client
	_ = json.NewEncoder(w).Encode(v)
}

func WriteOK(w http.ResponseWriter, msg string) {
	WriteJSON(w, http.StatusOK, Response{Code: CodeOK, Msg: msg})
}

func WriteData(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, Response{Code: CodeOK, Data: data})
}

// WriteFail reports a handled business failure. The status stays 200 so the
// frontend reads msg instead of treating it as a transport error.
func WriteFail(w http.ResponseWriter, msg string) {
	WriteJSON(w, http.StatusOK, Response{Code: CodeFail, Msg: msg})
}

func WriteFailWithError(w http.ResponseWriter, msg, detail string) {
	WriteJSON(w, http.StatusOK, Response{Code: CodeFail, Msg: msg, Error: detail})
}

func WriteUnauthorized(w http.ResponseWriter, msg string) {
	WriteJSON(w, http.StatusUnauthorized, Response{Code: CodeUnauthorized, Msg: msg})
}

func WriteBadRequest(w http.ResponseWriter, msg string) {
	WriteJSON(w, http.StatusBadRequest, Response{Code: CodeFail, Msg: msg})
}

func WriteTooManyRequests(w http.ResponseWriter, msg string) {
	WriteJSON(w, http.StatusTooManyRequests, Response{Code: CodeFail, Msg: msg})
}

func WriteInternalError(w http.ResponseWriter, msg string) {
	WriteJSON(w, http.StatusInternalServerError, Response{Code: CodeFail, Msg: msg})
}
