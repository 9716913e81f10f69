package handlers

import (
	"net/http"

	"github.com/abrezinsky/awardpicks/internal/auth"
)

// handleLogin exchanges the admin password for a session. The token is set
// as a cookie and also returned for clients that send a bearer header.
func (h *Handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, err)
		return
	}

	token, ok := h.Auth.Login(req.Password)
	if !ok {
		h.Log.Warn("Failed admin login", "remote", r.RemoteAddr)
		respondError(w, Unauthorized("Invalid password"))
		return
	}

	auth.SetSessionCookie(w, token)
	respondOK(w, SessionResponse{Authenticated: true, Token: token})
}

// handleLogout clears the session
func (h *Handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := auth.TokenFromRequest(r); token != "" {
		h.Auth.Logout(token)
	}

	auth.ClearSessionCookie(w)
	respondOK(w, SessionResponse{Authenticated: false})
}

func (h *Handlers) handleSession(w http.ResponseWriter, r *http.Request) {
	respondOK(w, SessionResponse{Authenticated: h.Auth.GetSessionFromRequest(r)})
}
