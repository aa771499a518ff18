package api

import (
	"net/http"
	"strings"

	"github.com/dayloop-io/dayloop/internal/auth"
)

// AuthMiddleware authenticates a request with either a bearer token from
// the Authorization header (programmatic clients) or the session cookie
// (the browser frontend). Any failure, including a store error during
// validation, ends in 401: absence of proof is treated as no session.
func (api *Api) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if authHeader := r.Header.Get("Authorization"); authHeader != "" && api.tokens != nil {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
				claims, err := api.tokens.ValidateToken(parts[1])
				if err == nil {
					person, err := api.store.GetPersonByKey(r.Context(), claims.PersonKey)
					if err == nil {
						identity := &auth.Identity{Person: person}
						next.ServeHTTP(w, r.WithContext(auth.ContextWithIdentity(r.Context(), identity)))
						return
					}
				}
			}
		}

		token := auth.ReadSessionToken(r)
		result, err := api.auth.ValidateSessionToken(r.Context(), token)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		switch result.State {
		case auth.StateActive:
			// fall through with the identity below
		case auth.StateActiveRenewed:
			// keep the cookie expiry in step with the renewed row
			auth.SetSessionCookie(w, result.Session.Token, result.Session.ExpiresAt, api.Config.Auth.SecureCookies)
		case auth.StateExpired:
			auth.ClearSessionCookie(w, api.Config.Auth.SecureCookies)
			respondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		default:
			respondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		identity := &auth.Identity{Person: result.Person, Session: result.Session}
		next.ServeHTTP(w, r.WithContext(auth.ContextWithIdentity(r.Context(), identity)))
	})
}
