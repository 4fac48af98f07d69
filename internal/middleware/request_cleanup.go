package middleware

import (
	"io"
	"net/http"
)

// MaxRequestBodyBytes bounds request bodies. Workout payloads are a few hundred bytes.
const MaxRequestBodyBytes int64 = 1 << 20

// DrainAndCloseRequest caps the request body at maxBodyBytes and, once the handler
// returns, discards whatever it left unread and closes the body so the connection
// can be reused. Handlers reading past the cap get an *http.MaxBytesError.
func DrainAndCloseRequest(maxBodyBytes int64) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body == nil || r.Body == http.NoBody {
				next.ServeHTTP(w, r)
				return
			}

			body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
			r.Body = body
			defer func() {
				_, _ = io.Copy(io.Discard, body)
				_ = body.Close()
			}()

			next.ServeHTTP(w, r)
		})
	}
}
