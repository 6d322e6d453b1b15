package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/fulldump/box"
	"github.com/go-json-experiment/json"
)

// PrettyError is the body of every error response:
//
//	{"error": {"message": "...", "description": "..."}}
type PrettyError struct {
	Message     string `json:"message"`
	Description string `json:"description"`
}

func (p PrettyError) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"error": struct {
			Message     string `json:"message"`
			Description string `json:"description"`
		}{
			p.Message,
			p.Description,
		},
	})
}

func PrettyErrorInterceptor(next box.H) box.H {
	return func(ctx context.Context) {

		next(ctx)

		err := box.GetError(ctx)
		if err == nil {
			return
		}
		r := box.GetRequest(ctx)

		status, description := http.StatusInternalServerError, "Unexpected error"
		switch {
		case errors.Is(err, ErrResourceNotFound), errors.Is(err, ErrItemNotFound):
			status, description = http.StatusNotFound, fmt.Sprintf("'%s' not found", r.URL.Path)
		case errors.Is(err, ErrConflict):
			status, description = http.StatusConflict, "Duplicated id"
		case errors.Is(err, ErrBadRequest):
			status, description = http.StatusBadRequest, "Malformed request"
		case errors.Is(err, box.ErrResourceNotFound):
			status, description = http.StatusNotFound, fmt.Sprintf("resource '%s' not found", r.URL.String())
		case errors.Is(err, box.ErrMethodNotAllowed):
			status, description = http.StatusMethodNotAllowed, fmt.Sprintf("method '%s' not allowed", r.Method)
		}

		writeJSON(box.GetResponse(ctx), status, PrettyError{
			Message:     err.Error(),
			Description: description,
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.MarshalWrite(w, v)
}

// readItem decodes a JSON object from the request body.
func readItem(r *http.Request) (Item, error) {
	item := Item{}
	if err := json.UnmarshalRead(r.Body, &item); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	if item == nil {
		return nil, fmt.Errorf("%w: body must be a JSON object", ErrBadRequest)
	}
	return item, nil
}
