package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgbank/dgbank/internal/config"
	"github.com/dgbank/dgbank/internal/domain"
	"github.com/dgbank/dgbank/pkg/logger"
	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 14

type userRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	UserByID(ctx context.Context, id int64) (*domain.User, error)
	UserByEmail(ctx context.Context, email string) (*domain.User, error)
	UserExists(ctx context.Context, id int64) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	DocumentNumberExists(ctx context.Context, number string) (bool, error)
}

type UserService struct {
	config *config.Config
	repo   userRepository
	now    func() time.Time
}

func NewUserService(repo userRepository, config *config.Config) *UserService {
	return &UserService{
		repo:   repo,
		config: config,
		now:    time.Now,
	}
}

// Register persists a new user and returns a signed token. The plain
// password is hashed before it reaches the store.
func (s *UserService) Register(ctx context.Context, user *domain.User, password string) (string, error) {
	taken, err := s.repo.EmailExists(ctx, user.Email)
	if err != nil {
		return "", err
	}
	if taken {
		logger.Log.Warn("email already registered", logger.String("email", user.Email))
		return "", domain.ErrEmailTaken
	}

	taken, err = s.repo.DocumentNumberExists(ctx, user.Document.Number)
	if err != nil {
		return "", err
	}
	if taken {
		logger.Log.Warn("document already registered", logger.String("email", user.Email))
		return "", domain.ErrDocumentTaken
	}

	now := s.now()
	if !user.IsAdult(now) {
		return "", domain.ErrUserNotAdult
	}
	if !user.ValidIdentity(now) {
		return "", domain.ErrInvalidIdentity
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		logger.Log.Warn("error while hashing password")
		return "", fmt.Errorf("error while hashing password: %w", err)
	}
	user.Password = string(hashedPassword)

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return "", err
	}

	return s.generateToken(user.Email)
}

func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.repo.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			logger.Log.Warn("login with unknown email", logger.String("email", email))
			return "", domain.ErrIncorrectCredentials
		}
		return "", err
	}

	if !user.IsActive {
		logger.Log.Warn("login for inactive user", logger.String("email", email))
		return "", domain.ErrIncorrectCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		logger.Log.Warn("incorrect password", logger.String("email", email))
		return "", domain.ErrIncorrectCredentials
	}

	return s.generateToken(user.Email)
}

func (s *UserService) ByID(ctx context.Context, userID int64) (*domain.User, error) {
	return s.repo.UserByID(ctx, userID)
}

func (s *UserService) ByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.repo.UserByEmail(ctx, email)
}

// generateToken signs an HS256 token whose subject is the verified
// email; the authorization guard resolves identity from it.
func (s *UserService) generateToken(email string) (string, error) {
	now := s.now()
	claims := jwt.StandardClaims{
		Subject:   email,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(s.config.TokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(s.config.PrivateKey))
	if err != nil {
		return "", fmt.Errorf("error while signing token: %w", err)
	}

	return signedToken, nil
}
