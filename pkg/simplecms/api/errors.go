package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"
	"github.com/tendant/simple-cms/pkg/simplecms"
)

// ErrorResponse is the JSON body returned for any failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeError maps domain errors to HTTP status codes.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, simplecms.ErrContentNotFound),
		errors.Is(err, simplecms.ErrCategoryNotFound),
		errors.Is(err, simplecms.ErrTagNotFound),
		errors.Is(err, simplecms.ErrAPIKeyNotFound):
		status = http.StatusNotFound
	case errors.Is(err, simplecms.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, simplecms.ErrInvalidAPIKey):
		status = http.StatusUnauthorized
	}

	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: err.Error()})
}
