package pkg

import (
	"net/http"
	"strings"
)

// BearerToken - the identity token of a request, from the Authorization header or the token query parameter.
func BearerToken(req *http.Request) string {
	if header := req.Header.Get("Authorization"); header != "" {
		scheme, token, found := strings.Cut(header, " ")
		if found && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}

	return req.URL.Query().Get("token")
}
