package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/riskibarqy/awap-platform/internal/domain/user"
	"github.com/riskibarqy/awap-platform/internal/platform/logging"
)

const (
	minPasswordLength = 8
	maxUsernameLength = 32
)

// PasswordHasher hashes and checks account passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Compare returns ErrUnauthorized when the password does not match.
	Compare(hash, password string) error
}

// TokenIssuer mints bearer tokens for a principal.
type TokenIssuer interface {
	Issue(principal user.Principal) (token string, expiresAt time.Time, err error)
}

type Session struct {
	Token     string
	ExpiresAt time.Time
	User      user.User
}

type AccountService struct {
	userRepo user.Repository
	hasher   PasswordHasher
	issuer   TokenIssuer
	logger   *logging.Logger
	now      func() time.Time
}

func NewAccountService(userRepo user.Repository, hasher PasswordHasher, issuer TokenIssuer, logger *logging.Logger) *AccountService {
	if logger == nil {
		logger = logging.Default()
	}
	return &AccountService{
		userRepo: userRepo,
		hasher:   hasher,
		issuer:   issuer,
		logger:   logger,
		now:      time.Now,
	}
}

// Register creates a player account. Admin accounts are provisioned out of band.
func (s *AccountService) Register(ctx context.Context, username, email, password string) (user.User, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AccountService.Register")
	defer span.End()

	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if err := validateCredentials(username, email, password); err != nil {
		return user.User{}, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		recordSpanError(span, err)
		return user.User{}, fmt.Errorf("hash password: %w", err)
	}

	item := user.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         user.RoleUser,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.userRepo.Create(ctx, item); err != nil {
		if errors.Is(err, user.ErrAlreadyExists) {
			return user.User{}, fmt.Errorf("%w: username %q is taken", ErrAlreadyExists, username)
		}
		recordSpanError(span, err)
		return user.User{}, fmt.Errorf("create user: %w", err)
	}

	s.logger.InfoContext(ctx, "user registered", "user", username)
	item.PasswordHash = ""
	return item, nil
}

// Login checks the password and issues a bearer token.
func (s *AccountService) Login(ctx context.Context, username, password string) (Session, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AccountService.Login")
	defer span.End()

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return Session{}, fmt.Errorf("%w: username and password are required", ErrInvalidInput)
	}

	item, exists, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		recordSpanError(span, err)
		return Session{}, fmt.Errorf("get user: %w", err)
	}
	if !exists {
		return Session{}, fmt.Errorf("%w: invalid username or password", ErrUnauthorized)
	}
	if err := s.hasher.Compare(item.PasswordHash, password); err != nil {
		s.logger.WarnContext(ctx, "login rejected", "user", username)
		return Session{}, fmt.Errorf("%w: invalid username or password", ErrUnauthorized)
	}

	token, expiresAt, err := s.issuer.Issue(item.Principal())
	if err != nil {
		recordSpanError(span, err)
		return Session{}, fmt.Errorf("issue token: %w", err)
	}

	item.PasswordHash = ""
	return Session{Token: token, ExpiresAt: expiresAt, User: item}, nil
}

// Me returns the stored account behind principal.
func (s *AccountService) Me(ctx context.Context, principal user.Principal) (user.User, error) {
	item, exists, err := s.userRepo.GetByUsername(ctx, principal.Name)
	if err != nil {
		return user.User{}, fmt.Errorf("get user: %w", err)
	}
	if !exists {
		// Remote identity providers may know users this store has never seen.
		return user.User{Username: principal.Name, Role: principal.Role}, nil
	}
	item.PasswordHash = ""
	return item, nil
}

func validateCredentials(username, email, password string) error {
	if username == "" {
		return fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	if len(username) > maxUsernameLength {
		return fmt.Errorf("%w: username must be at most %d characters", ErrInvalidInput, maxUsernameLength)
	}
	if strings.ContainsAny(username, "/:# ") {
		return fmt.Errorf("%w: username cannot contain spaces, '/', ':' or '#'", ErrInvalidInput)
	}
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return fmt.Errorf("%w: invalid email", ErrInvalidInput)
		}
	}
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}
	return nil
}
