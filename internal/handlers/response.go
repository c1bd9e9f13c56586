package handlers

import (
	"encoding/json"
	"net/http"

	"chatbot-backend/internal/middleware"
	"chatbot-backend/internal/models"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(message string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error:     message,
		RequestID: middleware.GetRequestID(r),
	}
}
