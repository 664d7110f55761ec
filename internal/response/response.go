// Package response fournit les enveloppes JSON typées des réponses HTTP.
package response

import (
	"encoding/json"
	"net/http"
)

// StatusMessage est l'enveloppe de base {status, message}
type StatusMessage struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
}

// JSON sérialise payload avec le code HTTP donné
func JSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

// OK renvoie {status: true, message} avec un code 200
func OK(w http.ResponseWriter, message string) {
	JSON(w, http.StatusOK, StatusMessage{Status: true, Message: message})
}

// Error renvoie {status: false, message} avec le code donné
func Error(w http.ResponseWriter, statusCode int, message string) {
	JSON(w, statusCode, StatusMessage{Status: false, Message: message})
}
