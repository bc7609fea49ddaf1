package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	apperrors "rentwheels/pkg/errors"
)

// DecodeJSON reads a JSON request body into v. Unknown fields are accepted
// because listing documents carry client-defined extras.
func DecodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return apperrors.InvalidInput("Request body is required")
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.InvalidInput("Request body is required")
		}
		return apperrors.InvalidInput("Invalid request body")
	}
	return nil
}

// OptionalQuery returns the trimmed query value or "" when absent.
func OptionalQuery(r *http.Request, name string) string {
	return strings.TrimSpace(r.URL.Query().Get(name))
}
