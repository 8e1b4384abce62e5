// Package identity resolves the client-chosen session key for a request.
package identity

import (
	"context"
	"errors"
	"net"
	"net/http"
	"regexp"
	"strings"
)

const (
	SessionHeaderName     = "X-Session-ID"
	DefaultSessionIDValue = "default"
)

type contextKey int

const sessionIDKey contextKey = iota

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,128}$`)

// ErrInvalidSessionID is returned for a supplied session id that is not a usable key.
var ErrInvalidSessionID = errors.New("invalid session_id")

// WithSessionID returns a copy of ctx carrying the session id.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDKey, id)
}

// SessionIDFromContext returns the session id carried by ctx, or the default
// key when none was supplied. The value is not validated; use Resolve for that.
func SessionIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(sessionIDKey).(string); ok && v != "" {
		return v
	}
	return DefaultSessionIDValue
}

// Validate trims id and checks it against the session key pattern.
// An empty id is returned as-is with no error.
func Validate(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", nil
	}
	if !sessionIDPattern.MatchString(id) {
		return "", ErrInvalidSessionID
	}
	return id, nil
}

// Resolve picks the session key for a request: an explicit value from the
// body wins over the one the middleware took from the header or query.
// The default key is used only when no id was supplied anywhere.
func Resolve(ctx context.Context, bodyValue string) (string, error) {
	id := bodyValue
	if strings.TrimSpace(id) == "" {
		id, _ = ctx.Value(sessionIDKey).(string)
	}
	id, err := Validate(id)
	if err != nil {
		return "", err
	}
	if id == "" {
		return DefaultSessionIDValue, nil
	}
	return id, nil
}

func sessionIDFromRequest(r *http.Request) string {
	sid := strings.TrimSpace(r.Header.Get(SessionHeaderName))
	if sid == "" {
		sid = strings.TrimSpace(r.URL.Query().Get("session_id"))
	}
	return sid
}

// Middleware carries the header or query session id into the request context.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if sid := sessionIDFromRequest(r); sid != "" {
				r = r.WithContext(WithSessionID(r.Context(), sid))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// IPFromRequest returns a normalized remote IP for optional request tracing.
func IPFromRequest(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
