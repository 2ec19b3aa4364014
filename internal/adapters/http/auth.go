package httpadapter

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/kirillkom/doc-lifecycle/internal/core/domain"
)

const workerIDHeader = "X-Worker-Id"

var errMissingWorker = domain.WrapError(domain.ErrUnauthorized, "identify worker", errors.New(workerIDHeader+" header is required"))

// workerID returns the caller identity or writes a 401.
func workerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := strings.TrimSpace(r.Header.Get(workerIDHeader))
	if id == "" {
		writeError(w, r, errMissingWorker)
		return "", false
	}
	return id, true
}

// adminAuthMiddleware requires the admin bearer key when one is configured.
func (rt *Router) adminAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rt.adminAPIKey == "" || isAuthorizedBearerHeader(r.Header.Get("Authorization"), rt.adminAPIKey) {
			next.ServeHTTP(w, r)
			return
		}
		writeError(w, r, domain.WrapError(domain.ErrUnauthorized, "admin", errors.New("admin bearer token required")))
	})
}

func isAuthorizedBearerHeader(headerValue, expectedToken string) bool {
	headerValue = strings.TrimSpace(headerValue)
	if headerValue == "" || expectedToken == "" {
		return false
	}
	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(headerValue, bearerPrefix) {
		return false
	}
	token := strings.TrimSpace(strings.TrimPrefix(headerValue, bearerPrefix))
	return subtle.ConstantTimeCompare([]byte(token), []byte(expectedToken)) == 1
}
