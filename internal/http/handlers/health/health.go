// Package health implements the liveness probe.
package health

import (
	"net/http"

	"github.com/go-chi/render"
)

// New returns the health handler.
func New() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "ok"})
	}
}
