package handler

import (
	"errors"
	"net/http"
	"time"

	"pos-service/internal/model"
	"pos-service/internal/repository"
	"pos-service/pkg/jwtutil"
	"pos-service/pkg/logger"
	"pos-service/pkg/syncapi"
	"pos-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type AuthHandler struct {
	users   repository.UserRepository
	jwt     *jwtutil.JWTUtil
	metrics *prometheus.Metrics
}

func NewAuthHandler(users repository.UserRepository, jwt *jwtutil.JWTUtil, metrics *prometheus.Metrics) *AuthHandler {
	return &AuthHandler{users: users, jwt: jwt, metrics: metrics}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(c echo.Context) error {
	log := logger.FromContext(c)

	var req syncapi.RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		log.Warn("Failed to parse registration request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	user := model.User{
		Email:        req.Email,
		Name:         req.Name,
		BusinessName: req.BusinessName,
		PasswordHash: string(hashedPassword),
	}

	defer h.metrics.TrackDBOperation("insert")(time.Now())
	if err := h.users.Create(c.Request().Context(), &user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			log.Warn("User already exists", zap.String("email", req.Email))
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
		}
		log.Error("Failed to create user", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	token, err := h.jwt.GenerateToken(user.Email, user.ID)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	log.Info("User registered", zap.String("email", user.Email), zap.String("user_id", user.ID))
	return c.JSON(http.StatusCreated, syncapi.AuthResponse{Token: token, User: user.ToAPI()})
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c echo.Context) error {
	log := logger.FromContext(c)

	var req syncapi.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		log.Warn("Failed to parse login request", zap.Error(err))
		h.metrics.RecordAuth(false)
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	defer h.metrics.TrackDBOperation("query")(time.Now())
	user, err := h.users.GetByEmail(c.Request().Context(), req.Email)
	if err != nil {
		h.metrics.RecordAuth(false)
		if errors.Is(err, repository.ErrNotFound) {
			log.Warn("User not found", zap.String("email", req.Email))
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		log.Error("Failed to load user", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		log.Warn("Invalid password", zap.String("email", req.Email))
		h.metrics.RecordAuth(false)
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	token, err := h.jwt.GenerateToken(user.Email, user.ID)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		h.metrics.RecordAuth(false)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	h.metrics.RecordAuth(true)
	log.Info("User logged in", zap.String("email", user.Email))
	return c.JSON(http.StatusOK, syncapi.AuthResponse{Token: token, User: user.ToAPI()})
}
