package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"quickgig/internal/common"
	"quickgig/internal/http/response"
)

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return common.NewError(common.CodeValidation, "request body is required", nil)
	}
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dst); err != nil {
		return common.NewError(common.CodeValidation, "invalid json body", err)
	}
	return nil
}

// idFromPath extracts a UUID path segment, counting from the end of the
// path: 1 for /things/{id}, 2 for /things/{id}/action.
func idFromPath(r *http.Request, fromEnd int) (common.UUID, error) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if fromEnd < 1 || fromEnd > len(parts) {
		return "", common.NewError(common.CodeValidation, "invalid path", nil)
	}
	raw := parts[len(parts)-fromEnd]
	parsed, err := common.ParseUUID(raw)
	if err != nil {
		return "", common.NewValidationError("invalid id", map[string]string{"id": "invalid uuid"})
	}
	return parsed, nil
}

func errUnauthorized() error {
	return common.NewError(common.CodeUnauthorized, "authentication required", nil)
}

const internalAuthHeader = "X-Internal-Key"

// requireInternalAuth gates endpoints reserved for trusted internal
// processes, like the payment processor callback.
func requireInternalAuth(w http.ResponseWriter, r *http.Request, internalKey string) bool {
	key := strings.TrimSpace(internalKey)
	if key == "" {
		response.Error(w, errUnauthorized())
		return false
	}
	value := strings.TrimSpace(r.Header.Get(internalAuthHeader))
	bearer := strings.TrimSpace(r.Header.Get("Authorization"))
	if value == key || bearer == "Bearer "+key {
		return true
	}
	response.Error(w, errUnauthorized())
	return false
}
