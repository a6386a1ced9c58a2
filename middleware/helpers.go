package middleware

import (
	"encoding/json"
	"net/http"
)

const msgInternal = "Error interno del servidor"

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"message": message})
}
