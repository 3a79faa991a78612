package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/timeledger/timeledger/internal/handler/dto"
)

// writeError writes the standard JSON error envelope.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:  message,
		Code:   code,
		Status: status,
		Path:   r.URL.Path,
	})
}
