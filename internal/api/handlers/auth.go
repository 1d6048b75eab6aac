package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/baharkarakas/reliefshare/internal/api/httpx"
	"github.com/baharkarakas/reliefshare/internal/auth"
	"github.com/baharkarakas/reliefshare/internal/middleware"
	"github.com/baharkarakas/reliefshare/internal/models"
	"github.com/baharkarakas/reliefshare/internal/services"
)

type AuthHandler struct {
	Users    *services.UserService
	Sessions *auth.SessionManager
	// Secure marks the session cookie HTTPS-only.
	Secure bool
}

func NewAuthHandler(users *services.UserService, sessions *auth.SessionManager, secure bool) *AuthHandler {
	return &AuthHandler{Users: users, Sessions: sessions, Secure: secure}
}

type credentialsReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func decodeCredentials(w http.ResponseWriter, r *http.Request) (credentialsReq, bool) {
	var req credentialsReq
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid request body", nil)
		return req, false
	}
	return req, true
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}
	u, err := h.Users.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, err, "Username already exists")
		return
	}
	h.startSession(w, r, u, http.StatusCreated)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}
	u, err := h.Users.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	h.startSession(w, r, u, http.StatusOK)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(middleware.SessionCookie); err == nil {
		if err := h.Sessions.Destroy(r.Context(), c.Value); err != nil {
			writeError(w, r, err, "")
			return
		}
	}
	h.setCookie(w, "", time.Unix(0, 0))
	httpx.WriteMessage(w, http.StatusOK, "Logged out")
}

func (h *AuthHandler) User(w http.ResponseWriter, r *http.Request) {
	u, err := h.Users.Get(r.Context(), middleware.UserID(r.Context()))
	if errors.Is(err, services.ErrNotFound) {
		writeError(w, r, services.ErrUnauthenticated, "")
		return
	}
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, u.Public())
}

func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, u models.User, status int) {
	token, exp, err := h.Sessions.Create(r.Context(), u.ID)
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	h.setCookie(w, token, exp)
	httpx.WriteJSON(w, status, u.Public())
}

func (h *AuthHandler) setCookie(w http.ResponseWriter, value string, exp time.Time) {
	c := &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    value,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		Secure:   h.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if value == "" {
		c.MaxAge = -1
	}
	http.SetCookie(w, c)
}
