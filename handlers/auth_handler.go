package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Dosada05/poker-club/middleware"
	"github.com/Dosada05/poker-club/models"
	"github.com/Dosada05/poker-club/services"
	"github.com/golang-jwt/jwt/v4"
)

type AuthHandler struct {
	responder
	authService services.AuthService
	jwtSecret   []byte
	tokenTTL    time.Duration
}

func NewAuthHandler(authService services.AuthService, jwtSecret string, tokenTTL time.Duration, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		responder:   responder{logger: logger},
		authService: authService,
		jwtSecret:   []byte(jwtSecret),
		tokenTTL:    tokenTTL,
	}
}

// Login godoc
// @Summary Вход администратора
// @Tags auth
// @Accept json
// @Produce json
// @Param body body models.Credentials true "Email и пароль"
// @Success 200 {object} map[string]interface{} "JWT токен и пользователь"
// @Failure 400 {object} map[string]string "Пустые поля"
// @Failure 401 {object} map[string]string "Неверный email или пароль"
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input models.Credentials
	if err := readJSON(w, r, &input); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	if input.Email == "" || input.Password == "" {
		h.badRequestResponse(w, r, errors.New("email and password are required"))
		return
	}

	user, err := h.authService.Login(r.Context(), services.LoginInput{Email: input.Email, Password: input.Password})
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}

	now := time.Now()
	claims := jwt.MapClaims{
		middleware.ClaimUserID: user.ID,
		middleware.ClaimRole:   string(user.Role),
		middleware.ClaimName:   user.Name,
		"exp":                  now.Add(h.tokenTTL).Unix(),
		"iat":                  now.Unix(),
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.jwtSecret)
	if err != nil {
		h.serverErrorResponse(w, r, fmt.Errorf("failed to sign token: %w", err))
		return
	}

	h.respond(w, r, http.StatusOK, jsonResponse{"token": tokenString, "user": user})
}
