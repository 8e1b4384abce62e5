// Package api provides HTTP handlers for the winlog API.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/ashureev/winlog/internal/identity"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// maxRequestBodySize is the maximum allowed request body size (1MB).
const maxRequestBodySize = 1 << 20

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to encode response", "error", err)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// response is a successful handler outcome.
type response struct {
	status int
	body   any
}

func ok(body any) response {
	return response{status: http.StatusOK, body: body}
}

// apiError is a failed handler outcome carrying its transport status.
type apiError struct {
	status  int
	message string
	err     error
}

func (e *apiError) Error() string {
	if e.err != nil {
		return e.message + ": " + e.err.Error()
	}
	return e.message
}

func (e *apiError) Unwrap() error { return e.err }

func badRequest(message string) error {
	return &apiError{status: http.StatusBadRequest, message: message}
}

func notFound(message string) error {
	return &apiError{status: http.StatusNotFound, message: message}
}

// handlerFunc returns either a response or an error; adapt maps both to the wire.
type handlerFunc func(w http.ResponseWriter, r *http.Request) (response, error)

// adapt converts a handlerFunc into an http.HandlerFunc. Errors that are not
// an *apiError become 500 with the error text as the message; so do panics.
func adapt(fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			slog.Error("Handler panicked",
				"path", r.URL.Path,
				"request_id", chiMiddleware.GetReqID(r.Context()),
				"panic", rec,
			)
			Error(w, http.StatusInternalServerError, fmt.Sprint(rec))
		}()

		res, err := fn(w, r)
		if err == nil {
			JSON(w, res.status, res.body)
			return
		}

		var ae *apiError
		if !errors.As(err, &ae) {
			ae = &apiError{status: http.StatusInternalServerError, message: err.Error(), err: err}
		}

		if ae.status >= http.StatusInternalServerError {
			slog.Error("Request failed",
				"path", r.URL.Path,
				"request_id", chiMiddleware.GetReqID(r.Context()),
				"remote_ip", identity.IPFromRequest(r),
				"error", err,
			)
		}
		Error(w, ae.status, ae.message)
	}
}

// decode reads a JSON body into v. An empty body leaves v untouched when allowEmpty is set.
func decode(w http.ResponseWriter, r *http.Request, v any, allowEmpty bool) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) && allowEmpty {
		return nil
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return &apiError{status: http.StatusRequestEntityTooLarge, message: "request body too large"}
	}
	return badRequest("invalid request body")
}
