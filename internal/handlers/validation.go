package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	pkghttp "github.com/BradenHooton/scribe/pkg/http"
)

// MsgInvalidRequest answers malformed bodies, failed validation and bad ids
const MsgInvalidRequest = "请求参数错误"

// Global validator instance (reused across all handlers)
var validate = validator.New()

// ValidateRequest validates a request struct using go-playground/validator.
// Only the first failing field is reported.
func ValidateRequest(req any) error {
	if err := validate.Struct(req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 {
			return fmt.Errorf("validation failed: %s: %s", ve[0].Field(), formatValidationError(ve[0]))
		}
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

// formatValidationError converts a validator FieldError to a readable message
func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "max":
		return fmt.Sprintf("must have a maximum of %s characters", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	default:
		return fmt.Sprintf("failed validation: %s", fe.Tag())
	}
}

// decodeAndValidate reads a JSON body into dst and validates it. On failure
// it writes the 400 response and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeInvalidRequest(w, "invalid JSON body")
		return false
	}
	if err := ValidateRequest(dst); err != nil {
		writeInvalidRequest(w, err.Error())
		return false
	}
	return true
}

func writeInvalidRequest(w http.ResponseWriter, detail string) {
	pkghttp.WriteJSON(w, http.StatusBadRequest, pkghttp.Response{
		Code:  pkghttp.CodeFail,
		Msg:   MsgInvalidRequest,
		Error: detail,
	})
}
