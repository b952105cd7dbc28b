// Package httputil provides the gateway's JSON responses, gRPC status
// translation and HTTP middleware.
package httputil

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// MsgInternal is the body message of every 5xx reply.
const MsgInternal = "Internal server error"

// Reply is the success/message envelope shared by most endpoints.
type Reply struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// JSON writes data as a JSON response.
func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// Error writes {"success":false,"message":...}.
func Error(w http.ResponseWriter, statusCode int, message string) {
	JSON(w, statusCode, Reply{Success: false, Message: message})
}

// ValidationError writes a 400 listing the failed fields.
func ValidationError(w http.ResponseWriter, err error) {
	var verrs validator.ValidationErrors
	if ve, ok := err.(validator.ValidationErrors); ok {
		verrs = ve
	}
	if len(verrs) == 0 {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}

	fields := make([]string, 0, len(verrs))
	for _, e := range verrs {
		fields = append(fields, e.Field()+" ("+e.Tag()+")")
	}
	Error(w, http.StatusBadRequest, "Invalid request: "+strings.Join(fields, ", "))
}
