package utils

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/GlebRadaev/projecthub/pkg/apperr"
	"go.uber.org/zap"
)

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Error("can't encode response", zap.Error(err))
	}
}

func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, Response{Success: false, Message: message})
}

// RespondWithAppError maps apperr kinds to status codes. Anything else is a 500.
func RespondWithAppError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		RespondWithError(w, http.StatusBadRequest, apperr.Message(err, "Invalid request"))
	case errors.Is(err, apperr.ErrNotFound):
		RespondWithError(w, http.StatusNotFound, apperr.Message(err, "Not found"))
	case errors.Is(err, apperr.ErrForbidden):
		RespondWithError(w, http.StatusForbidden, apperr.Message(err, "Forbidden"))
	case errors.Is(err, apperr.ErrUnauthorized):
		RespondWithError(w, http.StatusUnauthorized, apperr.Message(err, "Unauthorized"))
	default:
		zap.L().Error("request failed", zap.Error(err))
		RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
