package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/aireap/aireap-auth/internal/domain"
)

// Envelope is the uniform JSON body of every mutating auth endpoint.
type Envelope struct {
	Type     string `json:"type"`
	Title    string `json:"title,omitempty"`
	Msg      string `json:"msg"`
	Field    string `json:"field,omitempty"`
	Redirect string `json:"redirect,omitempty"`
	Email    string `json:"email,omitempty"`
}

// JSON writes v as a JSON response with the given status.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Success writes a success envelope.
func Success(w http.ResponseWriter, env Envelope) {
	env.Type = "success"
	JSON(w, http.StatusOK, env)
}

// FlowError writes the envelope for a flow error. All flow errors are
// answered with 200 and distinguished by the envelope type, matching the
// form-driven clients this API serves.
func FlowError(w http.ResponseWriter, err *domain.FlowError) {
	env := Envelope{
		Type:  "error",
		Title: err.Title,
		Msg:   err.Msg,
		Field: err.Field,
	}
	if err.Alert {
		env.Type = "alert"
	}
	JSON(w, http.StatusOK, env)
}

// Error writes a bare error envelope, for failures outside the auth flows.
func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, Envelope{Type: "error", Msg: msg})
}
