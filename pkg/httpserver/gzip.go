package httpserver

import (
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// Gzip compresses application/json responses at level 5 when the client's
// Accept-Encoding allows it. chi's Compress applies no minimum size, so every
// JSON response to such a client is compressed. Response payloads for /optimize scale
// with order and channel counts, so this keeps large assignment bodies off
// the wire uncompressed by default.
func Gzip() func(http.Handler) http.Handler {
	return chimiddleware.Compress(5, "application/json")
}
