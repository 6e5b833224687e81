package authhandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"milpay/internal/domain/auth"
	"milpay/internal/platform/requestctx"
	"milpay/internal/transport/http/api"
	"milpay/internal/transport/http/shared"
)

type Handler struct {
	DB     *pgxpool.Pool
	Secret string
}

func NewHandler(db *pgxpool.Pool, secret string) *Handler {
	return &Handler{DB: db, Secret: secret}
}

type signupRequest struct {
	FullName        string `json:"fullName"`
	Rank            string `json:"rank"`
	ServiceNumber   string `json:"serviceNumber"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type loginRequest struct {
	ServiceNumber string `json:"serviceNumber"`
	Password      string `json:"password"`
}

func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())

	var payload signupRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("fullName", payload.FullName, "full name is required")
	v.Required("rank", payload.Rank, "rank is required")
	v.Required("serviceNumber", payload.ServiceNumber, "service number is required")
	v.Required("email", payload.Email, "email is required")
	v.Required("password", payload.Password, "password is required")
	if payload.Password != payload.ConfirmPassword {
		v.Add("confirmPassword", "passwords do not match")
	}
	if v.Reject(w, reqID) {
		return
	}

	var count int
	if err := h.DB.QueryRow(r.Context(), "SELECT COUNT(1) FROM users WHERE email = $1 OR service_number = $2", payload.Email, payload.ServiceNumber).Scan(&count); err != nil {
		api.Fail(w, http.StatusInternalServerError, "signup_failed", "failed to create user", reqID)
		return
	}
	if count > 0 {
		api.Fail(w, http.StatusConflict, "user_exists", "user already exists", reqID)
		return
	}

	hash, err := auth.HashPassword(payload.Password)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "signup_failed", "failed to create user", reqID)
		return
	}

	var id string
	if err := h.DB.QueryRow(r.Context(), `
    INSERT INTO users (full_name, rank, service_number, email, password_hash)
    VALUES ($1,$2,$3,$4,$5)
    RETURNING id
  `, payload.FullName, payload.Rank, payload.ServiceNumber, payload.Email, hash).Scan(&id); err != nil {
		api.Fail(w, http.StatusInternalServerError, "signup_failed", "failed to create user", reqID)
		return
	}

	token, err := auth.GenerateToken(h.Secret, auth.Claims{
		UserID:        id,
		FullName:      payload.FullName,
		Rank:          payload.Rank,
		ServiceNumber: payload.ServiceNumber,
	}, auth.TokenTTL)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", reqID)
		return
	}

	api.Created(w, map[string]any{
		"token": token,
		"user": map[string]string{
			"id":            id,
			"fullName":      payload.FullName,
			"rank":          payload.Rank,
			"serviceNumber": payload.ServiceNumber,
		},
	}, reqID)
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())

	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	if payload.ServiceNumber == "" || payload.Password == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "service number and password are required", reqID)
		return
	}

	var id, fullName, rank, hash string
	err := h.DB.QueryRow(r.Context(), `
    SELECT id, full_name, rank, password_hash
    FROM users
    WHERE service_number = $1
  `, payload.ServiceNumber).Scan(&id, &fullName, &rank, &hash)
	if errors.Is(err, pgx.ErrNoRows) {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid service number or password", reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "login_failed", "failed to log in", reqID)
		return
	}

	if err := auth.CheckPassword(hash, payload.Password); err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid service number or password", reqID)
		return
	}

	token, err := auth.GenerateToken(h.Secret, auth.Claims{
		UserID:        id,
		FullName:      fullName,
		Rank:          rank,
		ServiceNumber: payload.ServiceNumber,
	}, auth.TokenTTL)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", reqID)
		return
	}

	if _, err := h.DB.Exec(r.Context(), "UPDATE users SET last_login = now() WHERE id = $1", id); err != nil {
		slog.Warn("update last_login failed", "userId", id, "err", err)
	}

	api.Success(w, map[string]any{
		"token": token,
		"user": map[string]string{
			"id":            id,
			"fullName":      fullName,
			"rank":          rank,
			"serviceNumber": payload.ServiceNumber,
		},
	}, reqID)
}

// HandleLogout exists for client symmetry; tokens are stateless and
// simply expire.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	api.Success(w, map[string]string{"status": "logged_out"}, requestctx.GetRequestID(r.Context()))
}
