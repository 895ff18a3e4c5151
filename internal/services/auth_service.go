package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"lifeos/internal/config"
	"lifeos/internal/domain/user"
	"lifeos/internal/repository"
	lifeos_errors "lifeos/pkg/errors"
)

type AuthService struct {
	userRepo  repository.UserRepository
	jwtSecret []byte
	accessTTL time.Duration
}

func NewAuthService(userRepo repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: []byte(cfg.JWT.Secret),
		accessTTL: time.Duration(cfg.JWT.ExpiryHours) * time.Hour,
	}
}

type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResponse struct {
	AccessToken string   `json:"access_token"`
	ExpiresIn   int64    `json:"expires_in"`
	User        UserInfo `json:"user"`
}

type UserInfo struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	IsAdmin     bool   `json:"is_admin,omitempty"`
}

type AccessClaims struct {
	UserID  string `json:"sub"`
	IsAdmin bool   `json:"adm,omitempty"`
	jwt.RegisteredClaims
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (AuthResponse, error) {
	if err := validateRegister(in); err != nil {
		return AuthResponse{}, err
	}

	if _, err := s.userRepo.GetByEmail(ctx, in.Email); err == nil {
		return AuthResponse{}, lifeos_errors.ErrAlreadyExists
	} else if !errors.Is(err, lifeos_errors.ErrNotFound) {
		return AuthResponse{}, err
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return AuthResponse{}, err
	}

	newUser := &user.User{
		ID:           uuid.New(),
		Email:        in.Email,
		PasswordHash: hash,
		DisplayName:  in.DisplayName,
		CreatedAt:    time.Now(),
	}
	if err := s.userRepo.Create(ctx, newUser); err != nil {
		return AuthResponse{}, err
	}

	return s.issueToken(*newUser)
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (AuthResponse, error) {
	if in.Email == "" || in.Password == "" {
		return AuthResponse{}, lifeos_errors.ErrInvalidInput
	}

	u, err := s.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, lifeos_errors.ErrNotFound) {
			return AuthResponse{}, lifeos_errors.ErrUnauthorized
		}
		return AuthResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		return AuthResponse{}, lifeos_errors.ErrUnauthorized
	}

	return s.issueToken(u)
}

func (s *AuthService) ParseAccessToken(tokenString string) (AccessClaims, error) {
	if tokenString == "" {
		return AccessClaims{}, lifeos_errors.ErrUnauthorized
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, lifeos_errors.ErrUnauthorized
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return AccessClaims{}, lifeos_errors.ErrUnauthorized
	}

	claims, ok := parsed.Claims.(*AccessClaims)
	if !ok || !parsed.Valid {
		return AccessClaims{}, lifeos_errors.ErrUnauthorized
	}
	return *claims, nil
}

func (s *AuthService) issueToken(u user.User) (AuthResponse, error) {
	now := time.Now()
	claims := AccessClaims{
		UserID:  u.ID.String(),
		IsAdmin: u.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return AuthResponse{}, err
	}

	return AuthResponse{
		AccessToken: signed,
		ExpiresIn:   int64(s.accessTTL.Seconds()),
		User: UserInfo{
			ID:          u.ID.String(),
			Email:       u.Email,
			DisplayName: u.DisplayName,
			IsAdmin:     u.IsAdmin,
		},
	}, nil
}

// HTTPStatus maps service errors onto response codes.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, lifeos_errors.ErrInvalidInput), errors.Is(err, lifeos_errors.ErrInvalidStatus):
		return http.StatusBadRequest
	case errors.Is(err, lifeos_errors.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, lifeos_errors.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, lifeos_errors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, lifeos_errors.ErrAlreadyExists), errors.Is(err, lifeos_errors.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, lifeos_errors.ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

type ctxKey string

var userIDKey ctxKey = "user_id"
var isAdminKey ctxKey = "is_admin"

func WithUserContext(ctx context.Context, userID uuid.UUID, isAdmin bool) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, isAdminKey, isAdmin)
}

func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(userIDKey).(uuid.UUID)
	return userID, ok
}

func IsAdminFromContext(ctx context.Context) bool {
	isAdmin, _ := ctx.Value(isAdminKey).(bool)
	return isAdmin
}

func validateRegister(in RegisterInput) error {
	if in.DisplayName == "" || !strings.Contains(in.Email, "@") {
		return lifeos_errors.ErrInvalidInput
	}
	if len(in.Password) < 8 {
		return lifeos_errors.ErrInvalidInput
	}
	return nil
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}
