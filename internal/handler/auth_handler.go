package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"booking-api/internal/auth"
	"booking-api/internal/middleware"
	"booking-api/internal/model"
	"booking-api/internal/store"
)

type registerRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Email == "" || req.Username == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "all fields required"})
		return
	}
	if len(req.Password) < 8 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "password too short"})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	u := &model.User{
		ID:           uuid.New().String(),
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := h.store.CreateUser(r.Context(), u); err != nil {
		// unique violation = dup email, but don't reveal that
		writeJSON(w, http.StatusConflict, map[string]string{"error": "registration failed"})
		return
	}

	tok, err := auth.MakeToken(u.ID, h.secret)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"user_id": u.ID, "token": tok})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req loginRequest
	if err := decodeJSON(r, &req); err != nil || req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "email and password required"})
		return
	}

	u, err := h.store.UserByEmail(r.Context(), req.Email)
	if err != nil || !auth.CheckPassword(u.PasswordHash, req.Password) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		return
	}

	tok, err := auth.MakeToken(u.ID, h.secret)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	rawRefresh, tokenHash, err := auth.GenerateRefreshToken()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if _, err := h.store.CreateRefreshToken(r.Context(), u.ID, tokenHash, time.Now().Add(auth.RefreshTokenTTL)); err != nil {
		writeServiceError(w, err)
		return
	}

	h.setAuthCookies(w, tok, rawRefresh)
	writeJSON(w, http.StatusOK, map[string]string{"user_id": u.ID, "username": u.Username, "token": tok})
}

// Refresh rotates the refresh token: the old one is revoked and linked to
// its replacement, so reuse of a stolen token is detectable.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	c, err := r.Cookie("refresh_token")
	if err != nil || c.Value == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "no refresh token"})
		return
	}

	rt, err := h.store.RefreshTokenByHash(r.Context(), auth.HashRefreshToken(c.Value))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid refresh token"})
			return
		}
		writeServiceError(w, err)
		return
	}
	if rt.Revoked || time.Now().After(rt.ExpiresAt) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid refresh token"})
		return
	}

	rawRefresh, newHash, err := auth.GenerateRefreshToken()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	newID := uuid.New().String()
	if err := h.store.RotateRefreshToken(r.Context(), rt.ID, newID, rt.UserID, newHash, time.Now().Add(auth.RefreshTokenTTL)); err != nil {
		writeServiceError(w, err)
		return
	}

	tok, err := auth.MakeToken(rt.UserID, h.secret)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.setAuthCookies(w, tok, rawRefresh)
	writeJSON(w, http.StatusOK, map[string]string{"token": tok})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	uid := middleware.UserID(r.Context())
	if err := h.store.RevokeRefreshTokens(r.Context(), uid); err != nil {
		writeServiceError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{Name: "access_token", Value: "", MaxAge: -1, Path: "/"})
	http.SetCookie(w, &http.Cookie{Name: "refresh_token", Value: "", MaxAge: -1, Path: "/auth/"})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) setAuthCookies(w http.ResponseWriter, accessToken, rawRefresh string) {
	http.SetCookie(w, &http.Cookie{
		Name: "access_token", Value: accessToken,
		HttpOnly: true, Path: "/", SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name: "refresh_token", Value: rawRefresh,
		HttpOnly: true, Path: "/auth/", SameSite: http.SameSiteLaxMode,
	})
}
