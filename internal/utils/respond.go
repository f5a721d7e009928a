package utils

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
)

// Error codes the console client branches on.
const (
	CodePlanLimit       = "plan_limit"
	CodeVersionConflict = "version_conflict"
	CodeValidation      = "validation"
)

func GenerateUUID() string {
	return uuid.New().String()
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// WriteError answers with a {"error","code"} body.
func WriteError(w http.ResponseWriter, status int, code, msg string) {
	WriteJSON(w, status, map[string]string{"error": msg, "code": code})
}
