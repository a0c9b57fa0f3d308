package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/princekumar9234/DarkBot/internal/core"
)

// envelope is the JSON shape every API response shares.
type envelope map[string]interface{}

func writeJSON(w http.ResponseWriter, status int, payload envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("write response: %v", err)
	}
}

// writeError is the single boundary mapping known error shapes onto the HTTP
// taxonomy. Unrecognized errors default to 500 with the message passed
// through.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	var ve *core.ValidationError
	switch {
	case errors.As(err, &ve), errors.Is(err, core.ErrDuplicateEmail):
		status = http.StatusBadRequest
	case errors.Is(err, core.ErrInvalidCredentials),
		errors.Is(err, core.ErrWrongPassword),
		errors.Is(err, core.ErrInvalidToken),
		errors.Is(err, core.ErrTokenExpired):
		status = http.StatusUnauthorized
	case errors.Is(err, core.ErrNotFound):
		status = http.StatusNotFound
	}

	if status == http.StatusInternalServerError {
		log.Printf("internal error: %v", err)
	}
	writeJSON(w, status, envelope{"success": false, "message": err.Error()})
}
