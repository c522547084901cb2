package response

import (
	"net/http"

	"github.com/go-chi/render"
)

// ErrorBody is the failure envelope returned by the ok/error style endpoints.
type ErrorBody struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

// Error writes {"ok": false, "error": code}.
func Error(w http.ResponseWriter, r *http.Request, status int, code string) {
	JSON(w, r, status, ErrorBody{OK: false, Error: code})
}
