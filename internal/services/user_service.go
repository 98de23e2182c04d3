package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"storefront-api/internal/domain"
	"storefront-api/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserNotFound       = fmt.Errorf("user %w", domain.ErrNotFound)
	ErrEmailTaken         = fmt.Errorf("%w: user with this email already exists", domain.ErrConflict)
	ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", domain.ErrUnauthorized)
)

const minPasswordLength = 6

type TokenIssuer interface {
	Issue(p domain.Principal) (string, error)
}

type UserService struct {
	store    repository.Store
	tokens   TokenIssuer
	logger   *zap.Logger
	hashCost int
}

func NewUserService(store repository.Store, tokens TokenIssuer, logger *zap.Logger) *UserService {
	return &UserService{
		store:    store,
		tokens:   tokens,
		logger:   logger,
		hashCost: bcrypt.DefaultCost,
	}
}

// Register creates a regular account and returns it with a fresh token.
func (s *UserService) Register(ctx context.Context, in domain.RegisterInput) (*domain.User, string, error) {
	email := normalizeEmail(in.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, "", fmt.Errorf("%w: invalid email", domain.ErrInvalidInput)
	}
	if len(in.Password) < minPasswordLength {
		return nil, "", fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, minPasswordLength)
	}
	if strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.LastName) == "" {
		return nil, "", fmt.Errorf("%w: first and last name are required", domain.ErrInvalidInput)
	}

	existing, err := s.store.Users().FindByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Phone:        in.Phone,
		Address:      in.Address,
		City:         in.City,
		State:        in.State,
		ZipCode:      in.ZipCode,
		Country:      in.Country,
	}
	if err := s.store.Users().Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", err
	}

	token, err := s.tokens.Issue(domain.Principal{UserID: user.ID, IsAdmin: user.IsAdmin})
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("User registered", zap.Uint64("user_id", user.ID))
	return user, token, nil
}

func (s *UserService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := s.store.Users().FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		return nil, "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(domain.Principal{UserID: user.ID, IsAdmin: user.IsAdmin})
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *UserService) GetProfile(ctx context.Context, userID uint64) (*domain.User, error) {
	user, err := s.store.Users().FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uint64, upd domain.ProfileUpdate) (*domain.User, error) {
	if (upd.FirstName != nil && strings.TrimSpace(*upd.FirstName) == "") ||
		(upd.LastName != nil && strings.TrimSpace(*upd.LastName) == "") {
		return nil, fmt.Errorf("%w: name must not be empty", domain.ErrInvalidInput)
	}

	found, err := s.store.Users().Update(ctx, userID, upd)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrUserNotFound
	}
	return s.GetProfile(ctx, userID)
}

// EnsureAdmin creates the admin account on first start. It is a no-op when
// either credential is empty or the email is already registered.
func (s *UserService) EnsureAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	email = normalizeEmail(email)

	existing, err := s.store.Users().FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		if !existing.IsAdmin {
			s.logger.Warn("Configured admin email belongs to a regular user", zap.String("email", email))
		}
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    "Admin",
		LastName:     "User",
		IsAdmin:      true,
	}
	if err := s.store.Users().Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	s.logger.Info("Admin user created", zap.String("email", email))
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
