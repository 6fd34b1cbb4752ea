package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"quickgig/internal/common"
)

// ErrorCollector counts error responses by code; the metrics collector
// implements it.
type ErrorCollector interface {
	ObserveError(code string)
}

var collector ErrorCollector

func SetErrorCollector(c ErrorCollector) {
	collector = c
}

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

type errorBody struct {
	Error errorPayload `json:"error"`
}

type errorPayload struct {
	Code    common.Code       `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func Error(w http.ResponseWriter, err error) {
	var appErr *common.Error
	if !errors.As(err, &appErr) {
		appErr = &common.Error{Code: common.CodeInternal, Message: "internal error"}
	}
	if collector != nil {
		collector.ObserveError(string(appErr.Code))
	}
	status := statusFor(appErr.Code)
	body := errorBody{Error: errorPayload{Code: appErr.Code, Message: appErr.Message, Fields: appErr.Fields}}
	if status == http.StatusInternalServerError {
		// Never leak internals to callers.
		body.Error.Message = "internal error"
		body.Error.Fields = nil
	}
	JSON(w, status, body)
}

func statusFor(code common.Code) int {
	switch code {
	case common.CodeValidation:
		return http.StatusBadRequest
	case common.CodeUnauthorized:
		return http.StatusUnauthorized
	case common.CodeForbidden:
		return http.StatusForbidden
	case common.CodeNotFound:
		return http.StatusNotFound
	case common.CodeConflict:
		return http.StatusConflict
	case common.CodeInvalidState:
		return http.StatusUnprocessableEntity
	case common.CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
