package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"fanbase-quiz-service/internal/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeMethodNotAllowed(w http.ResponseWriter, allowedMethod string) {
	w.Header().Set("Allow", allowedMethod)
	writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
}

// writeServiceError maps domain sentinels onto HTTP statuses; anything else
// is an upstream failure the client may retry.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "session not found"})
	case errors.Is(err, domain.ErrNoQuestions):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no questions available"})
	case errors.Is(err, domain.ErrSessionCompleted):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "session already completed"})
	case errors.Is(err, domain.ErrAnswerOutOfTurn):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "answer does not match current question"})
	case errors.Is(err, domain.ErrNotSessionOwner):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "session belongs to another user"})
	default:
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "request failed"})
	}
}
