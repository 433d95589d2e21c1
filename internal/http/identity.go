package http

import (
	"net/http"
	"strconv"
	"strings"

	"spendtrack/internal/core"
)

// Identity headers set by the upstream identity proxy. The core never
// parses credentials itself; absence of a resolved identity is always
// Unauthorized, never a guessed default.
const (
	headerUserID = "X-User-ID"
	headerRole   = "X-User-Role"
)

// identityFromRequest reads the forwarded identity. It returns
// core.ErrUnauthorized when either header is missing or malformed.
func identityFromRequest(r *http.Request) (core.Identity, error) {
	rawID := strings.TrimSpace(r.Header.Get(headerUserID))
	rawRole := strings.TrimSpace(r.Header.Get(headerRole))
	if rawID == "" || rawRole == "" {
		return core.Identity{}, core.ErrUnauthorized
	}

	userID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || userID <= 0 {
		return core.Identity{}, core.ErrUnauthorized
	}

	role, err := core.ParseRole(rawRole)
	if err != nil {
		return core.Identity{}, core.ErrUnauthorized
	}

	return core.Identity{UserID: userID, Role: role}, nil
}
