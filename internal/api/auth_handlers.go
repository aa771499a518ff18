package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/dayloop-io/dayloop/internal/auth"
)

type registerRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Username *string `json:"username"`
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (api *Api) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	person, session, err := api.auth.SignUp(r.Context(), auth.SignUpInput{
		Email:    req.Email,
		Password: req.Password,
		Username: req.Username,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	auth.SetSessionCookie(w, session.Token, session.ExpiresAt, api.Config.Auth.SecureCookies)
	respondJSON(w, http.StatusCreated, person)
}

func (api *Api) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	person, session, err := api.auth.SignIn(r.Context(), auth.SignInInput{
		Email:    creds.Email,
		Password: creds.Password,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	auth.SetSessionCookie(w, session.Token, session.ExpiresAt, api.Config.Auth.SecureCookies)
	respondJSON(w, http.StatusOK, person)
}

// LogoutHandler invalidates the current session and clears the cookie.
// Idempotent: the cookie is cleared even when no session existed.
func (api *Api) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	token := auth.ReadSessionToken(r)
	if err := api.auth.SignOut(r.Context(), token); err != nil {
		respondServiceError(w, err)
		return
	}

	auth.ClearSessionCookie(w, api.Config.Auth.SecureCookies)
	w.WriteHeader(http.StatusNoContent)
}

func (api *Api) MeHandler(w http.ResponseWriter, r *http.Request) {
	person, err := auth.RequirePerson(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, person)
}

func (api *Api) SessionHandler(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok || identity.Session == nil {
		respondError(w, http.StatusNotFound, "No session")
		return
	}
	respondJSON(w, http.StatusOK, identity.Session)
}

// IssueTokenHandler mints a bearer token for programmatic API access.
func (api *Api) IssueTokenHandler(w http.ResponseWriter, r *http.Request) {
	if api.tokens == nil {
		respondError(w, http.StatusServiceUnavailable, "Token issuance is not configured")
		return
	}

	person, err := auth.RequirePerson(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	token, expiresAt, err := api.tokens.GenerateToken(person)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"token":      token,
		"expires_at": expiresAt.Format(time.RFC3339),
	})
}
