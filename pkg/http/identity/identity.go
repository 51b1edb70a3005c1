// Package identity extracts the caller identity set by the upstream
// auth gateway. The service itself performs no authentication.
package identity

import (
	"net/http"
	"strings"
)

// Header carries the authenticated user id, set by the gateway.
const Header = "X-User-ID"

// FromRequest returns the caller's user id. ok is false when the
// header is missing or blank.
func FromRequest(r *http.Request) (string, bool) {
	id := strings.TrimSpace(r.Header.Get(Header))
	return id, id != ""
}
