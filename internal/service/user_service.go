package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"plotchat/internal/domain"
	"plotchat/internal/repository"
)

var validate = validator.New()

// UserService coordina registro, login y logout.
type UserService struct {
	logger  *zap.Logger
	users   repository.UserRepository
	tokens  *TokenService
	limiter LoginRateLimiter
}

func NewUserService(logger *zap.Logger, users repository.UserRepository, tokens *TokenService, limiter LoginRateLimiter) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if limiter == nil {
		limiter = NewLoginRateLimiter(5*time.Minute, 10)
	}
	return &UserService{
		logger:  logger,
		users:   users,
		tokens:  tokens,
		limiter: limiter,
	}
}

type SignupInput struct {
	Username string
	Email    string
	Password string
}

// LoginResult es el token emitido junto al usuario autenticado.
type LoginResult struct {
	Token string
	User  domain.User
}

var (
	ErrInvalidSignup      = errors.New("invalid signup")
	ErrUserExists         = repository.ErrUserExists
	ErrRateLimited        = errors.New("rate limited")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

func (s *UserService) Signup(ctx context.Context, input SignupInput) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errors.New("user service not configured")
	}

	username := strings.TrimSpace(input.Username)
	emailAddr := normalizeEmail(input.Email)
	if username == "" {
		return domain.User{}, fmt.Errorf("%w: username required", ErrInvalidSignup)
	}
	if err := validate.Var(emailAddr, "required,email"); err != nil {
		return domain.User{}, fmt.Errorf("%w: invalid email", ErrInvalidSignup)
	}
	if strings.TrimSpace(input.Password) == "" {
		return domain.User{}, fmt.Errorf("%w: password required", ErrInvalidSignup)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        emailAddr,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return domain.User{}, err
	}
	s.logger.Info("user signed up", zap.String("user_id", user.ID), zap.String("username", username))
	return user, nil
}

func (s *UserService) Login(ctx context.Context, username, password string) (LoginResult, error) {
	if s.users == nil || s.tokens == nil {
		return LoginResult{}, errors.New("user service not configured")
	}

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return LoginResult{}, ErrInvalidCredentials
	}
	if !s.limiter.Allow(username) {
		return LoginResult{}, ErrRateLimited
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}
	if user.PasswordHash == "" {
		return LoginResult{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return LoginResult{}, fmt.Errorf("issue token: %w", err)
	}
	return LoginResult{Token: token, User: user}, nil
}

func (s *UserService) Logout(_ context.Context, token string) error {
	if s.tokens == nil {
		return errors.New("user service not configured")
	}
	return s.tokens.Revoke(token)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
