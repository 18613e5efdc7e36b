package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/starford/itam/internal/apperr"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Detail string `json:"detail" validate:"required"`
}

func errorBody(msg string) errResponse {
	return errResponse{Detail: msg}
}

type messageResponse struct {
	Message string `json:"message"`
}

// writeError maps err onto a status and a {"detail": ...} body. noun names the
// resource for not-found details (e.g. "Asset").
func writeError(w http.ResponseWriter, r *http.Request, noun string, err error) {
	status := apperr.Status(err)
	detail := apperr.Detail(err)
	if detail == "" {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			detail = noun + " not found"
		case status == http.StatusInternalServerError:
			detail = "internal error"
		default:
			detail = err.Error()
		}
	}
	if status == http.StatusInternalServerError && !errors.Is(err, apperr.ErrConflict) {
		slog.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))
	}
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	writeJSON(w, status, errorBody(detail))
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.WithDetail(apperr.ErrValidation, "invalid JSON body: "+strings.TrimPrefix(err.Error(), "json: "))
	}
	return nil
}
