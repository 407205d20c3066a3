// Package httpapi exposes the authentication flows over JSON HTTP.
package httpapi

import (
	"net/http"
	"strings"

	"github.com/manishrnl/authservice/internal/logging"
	"github.com/manishrnl/authservice/internal/server/auth"
	"github.com/manishrnl/authservice/internal/server/services"
)

type API struct {
	auth         *services.AuthService
	accessTokens *auth.TokenService
	logger       logging.Logger
}

func NewAPI(authSvc *services.AuthService, accessTokens *auth.TokenService, logger logging.Logger) *API {
	return &API{auth: authSvc, accessTokens: accessTokens, logger: logger}
}

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

type meResponse struct {
	Username string `json:"username"`
}

func pairResponse(pair *services.TokenPair) tokenPairResponse {
	return tokenPairResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
	}
}

func (a *API) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	username := strings.TrimSpace(req.Username)
	if username == "" {
		writeError(w, errBadRequest)
		return
	}

	pair, err := a.auth.Signup(r.Context(), username, req.Email, req.Password)
	if err != nil {
		a.logger.Info(r.Context(), "signup rejected", "username", username, "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, pairResponse(pair))
}

func (a *API) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	username := strings.TrimSpace(req.Username)
	if username == "" {
		writeError(w, errBadRequest)
		return
	}

	pair, err := a.auth.Login(r.Context(), username, req.Password)
	if err != nil {
		a.logger.Info(r.Context(), "login rejected", "username", username)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pairResponse(pair))
}

func (a *API) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if strings.TrimSpace(req.RefreshToken) == "" {
		writeError(w, errBadRequest)
		return
	}

	pair, err := a.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pairResponse(pair))
}

func (a *API) Me(w http.ResponseWriter, r *http.Request) {
	username, ok := UsernameFromContext(r.Context())
	if !ok {
		writeError(w, errBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, meResponse{Username: username})
}
