package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"messenger/internal/domain"
	"messenger/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRateLimited        = errors.New("rate limited")
	ErrWeakPassword       = errors.New("password too weak")
)

const minPasswordLength = 8

// UserService coordina registro, login y mantenimiento de usuarios. El login
// es el emisor de sesiones que el SessionGate valida despues.
type UserService struct {
	logger  *zap.Logger
	users   repository.UserRepository
	gate    *SessionGate
	limiter LoginRateLimiter
}

func NewUserService(logger *zap.Logger, users repository.UserRepository, gate *SessionGate, limiter LoginRateLimiter) *UserService {
	if limiter == nil {
		limiter = NewMemoryLoginRateLimiter(time.Minute, 5)
	}
	return &UserService{
		logger:  logger,
		users:   users,
		gate:    gate,
		limiter: limiter,
	}
}

// Register da de alta un usuario con la password hasheada con bcrypt.
func (s *UserService) Register(ctx context.Context, username, name, password, email string) (int64, error) {
	if len(password) < minPasswordLength {
		return 0, ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, err
	}
	return s.users.Create(ctx, domain.User{
		Username:     strings.TrimSpace(username),
		Name:         strings.TrimSpace(name),
		PasswordHash: string(hash),
		Email:        strings.TrimSpace(email),
		CreatedAt:    time.Now().UTC(),
	})
}

// Login verifica credenciales y emite una sesion nueva.
func (s *UserService) Login(ctx context.Context, username, password string) (domain.Session, domain.User, error) {
	if !s.limiter.Allow(username) {
		return domain.Session{}, domain.User{}, ErrRateLimited
	}

	user, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Session{}, domain.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return domain.Session{}, domain.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.Session{}, domain.User{}, ErrInvalidCredentials
	}

	session, err := s.gate.Issue(ctx, user.ID)
	if err != nil {
		return domain.Session{}, domain.User{}, err
	}
	s.logger.Info("user logged in", zap.Int64("user_id", user.ID))
	return session, user, nil
}

// Update reemplaza los datos del usuario, rehasheando la password.
func (s *UserService) Update(ctx context.Context, id int64, username, name, password, email string) error {
	if len(password) < minPasswordLength {
		return ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.users.Update(ctx, domain.User{
		ID:           id,
		Username:     strings.TrimSpace(username),
		Name:         strings.TrimSpace(name),
		PasswordHash: string(hash),
		Email:        strings.TrimSpace(email),
	})
}
