package middleware

import (
	"fmt"
	"net/http"

	"github.com/RafexStrike/eventment-server/internal/api/problem"
)

// DefaultMaxBodySize is 1MB, ample for event documents.
const DefaultMaxBodySize int64 = 1 << 20

// RequestSize limits the size of incoming request bodies.
//
// A declared Content-Length above maxBytes is rejected with 413 immediately.
// Otherwise the body is wrapped with http.MaxBytesReader, and handlers report
// a *http.MaxBytesError from decoding as 413 as well.
func RequestSize(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				problem.Write(w, r, http.StatusRequestEntityTooLarge, problem.TypePayloadTooLarge,
					"Payload too large", nil, "",
					problem.WithDetail(fmt.Sprintf("request body exceeds %d bytes", maxBytes)))
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// PublicRequestSize limits request bodies to DefaultMaxBodySize.
func PublicRequestSize() func(http.Handler) http.Handler {
	return RequestSize(DefaultMaxBodySize)
}
