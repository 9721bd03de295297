package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"lms-backend/internal/model"
	"lms-backend/pkg/apierror"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "Internal server error"

	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		status = apiErr.HTTPStatus
		message = apiErr.Message
	}

	if status >= 500 {
		slog.Error("request failed", "error", err.Error())
	}

	writeJSON(w, status, model.ErrorResponse{Success: false, Message: message})
}
