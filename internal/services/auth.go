package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/barhand/barhand-backend/internal/data/repos/auth"
	types "github.com/barhand/barhand-backend/internal/domain"
	"github.com/barhand/barhand-backend/internal/pkg/apperr"
	"github.com/barhand/barhand-backend/internal/pkg/logger"
	"github.com/barhand/barhand-backend/internal/requestdata"
)

const minPasswordLen = 8

type AuthService interface {
	// Register creates the account and returns it with a signed token.
	Register(ctx context.Context, email, password, firstName, lastName string) (*types.User, string, error)
	Login(ctx context.Context, email, password string) (*types.User, string, error)
	ParseToken(token string) (*requestdata.RequestData, error)
}

type authClaims struct {
	IsAdmin bool `json:"adm"`
	jwt.RegisteredClaims
}

type authService struct {
	users  auth.UserRepo
	secret []byte
	ttl    time.Duration
	log    *logger.Logger
}

func NewAuthService(users auth.UserRepo, secret []byte, ttl time.Duration, baseLog *logger.Logger) AuthService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &authService{
		users:  users,
		secret: secret,
		ttl:    ttl,
		log:    baseLog.With("service", "AuthService"),
	}
}

func (s *authService) Register(ctx context.Context, email, password, firstName, lastName string) (*types.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, "", apperr.Validation("valid email required")
	}
	if len(password) < minPasswordLen {
		return nil, "", apperr.Validation(fmt.Sprintf("password must be at least %d characters", minPasswordLen))
	}

	exists, err := s.users.EmailExists(ctx, nil, email)
	if err != nil {
		return nil, "", err
	}
	if exists {
		return nil, "", apperr.Conflict("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}
	user := &types.User{
		ID:        uuid.New(),
		Email:     email,
		Password:  string(hash),
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
	}
	if _, err := s.users.Create(ctx, nil, user); err != nil {
		// Two concurrent registrations can both pass the EmailExists check.
		if apperr.IsUniqueViolation(err) {
			return nil, "", apperr.Conflict("email already registered")
		}
		return nil, "", err
	}

	token, err := s.signToken(user)
	if err != nil {
		return nil, "", err
	}
	s.log.Info("Registered user", "user_id", user.ID, "email", user.Email)
	return user, token, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*types.User, string, error) {
	user, err := s.users.GetByEmail(ctx, nil, strings.TrimSpace(email))
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		return nil, "", apperr.Validation("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", apperr.Validation("invalid credentials")
	}

	token, err := s.signToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *authService) signToken(user *types.User) (string, error) {
	now := time.Now()
	claims := authClaims{
		IsAdmin: user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *authService) ParseToken(token string) (*requestdata.RequestData, error) {
	var claims authClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, apperr.Validation("invalid token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, apperr.Validation("invalid token subject")
	}
	return &requestdata.RequestData{UserID: userID, IsAdmin: claims.IsAdmin}, nil
}
