package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/replyhub/replyhub/modules/autoreply/presentation/controllers/dtos"
)

func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

func writeJSONError(w http.ResponseWriter, status int, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(dtos.ErrorResponse{Error: message, Code: code})
}
