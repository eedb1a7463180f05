package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"sintiendo/internal/auth"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type AuthHandler struct {
	DB  *gorm.DB
	JWT *auth.JWT
	Log *zap.SugaredLogger
}

type signupReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Email == "" || len(req.Password) < 8 {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	role, err := auth.ParseRole(req.Role)
	if err != nil {
		http.Error(w, "invalid role", http.StatusBadRequest)
		return
	}

	// case-sensitive exact match on username
	var existing auth.User
	err = h.DB.Where("username = ?", req.Username).First(&existing).Error
	if err == nil {
		http.Error(w, "username already taken", http.StatusBadRequest)
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	u := auth.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role.String(),
	}
	if err := h.DB.Create(&u).Error; err != nil {
		// unique index on username or email
		http.Error(w, "username or email already used", http.StatusBadRequest)
		return
	}

	token, err := h.JWT.Sign(&u)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"token": token,
		"user":  toUserDTO(&u),
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	// The internal reason stays in the logs; the client always sees the same
	// generic 401.
	var u auth.User
	if err := h.DB.Where("email = ?", req.Email).First(&u).Error; err != nil {
		h.Log.Infow("login rejected", "reason", "unknown email", "email", req.Email)
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	if !auth.ComparePassword(u.PasswordHash, req.Password) {
		h.Log.Infow("login rejected", "reason", "bad password", "user_id", u.ID)
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := h.JWT.Sign(&u)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"token": token,
		"user":  toUserDTO(&u),
	})
}
