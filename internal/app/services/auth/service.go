package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	domainuser "homeseek/internal/domain/user"
)

var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrPasswordTooShort   = errors.New("auth: password must be at least 6 characters")
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type TokenSigner interface {
	Sign(userID string) (string, error)
}

type Service struct {
	Users     domainuser.Repository
	Passwords PasswordHasher
	Tokens    TokenSigner
	Logger    *slog.Logger
}

type SignupParams struct {
	Username string
	Email    string
	Password string
}

type SigninParams struct {
	Email    string
	Password string
}

type GoogleParams struct {
	Email string
	Name  string
	Photo string
}

type AuthResult struct {
	User  *domainuser.User
	Token string
}

func (s *Service) Signup(ctx context.Context, params SignupParams) (*AuthResult, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	email := domainuser.NormalizeEmail(params.Email)
	if email == "" {
		return nil, domainuser.ErrEmailRequired
	}
	username := strings.TrimSpace(params.Username)
	if username == "" {
		return nil, domainuser.ErrUsernameRequired
	}
	if err := s.validatePassword(params.Password); err != nil {
		return nil, err
	}
	hash, err := s.Passwords.Hash(params.Password)
	if err != nil {
		return nil, err
	}
	user, err := domainuser.NewUser(domainuser.CreateParams{
		ID:           domainuser.ID(primitive.NewObjectID().Hex()),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	})
	if err != nil {
		return nil, err
	}
	if err := s.Users.Save(ctx, user); err != nil {
		return nil, err
	}
	token, err := s.Tokens.Sign(string(user.ID))
	if err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("user registered", "user_id", user.ID, "email", user.Email)
	}
	return &AuthResult{User: user, Token: token}, nil
}

func (s *Service) Signin(ctx context.Context, params SigninParams) (*AuthResult, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	email := domainuser.NormalizeEmail(params.Email)
	if email == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.Users.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domainuser.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := s.Passwords.Compare(user.PasswordHash, params.Password); err != nil {
		return nil, ErrInvalidCredentials
	}
	token, err := s.Tokens.Sign(string(user.ID))
	if err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("user authenticated", "user_id", user.ID)
	}
	return &AuthResult{User: user, Token: token}, nil
}

// Google authenticates via a verified external profile: an existing account
// is signed in, otherwise one is created with a generated username and an
// unusable random password.
func (s *Service) Google(ctx context.Context, params GoogleParams) (*AuthResult, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	email := domainuser.NormalizeEmail(params.Email)
	if email == "" {
		return nil, domainuser.ErrEmailRequired
	}

	user, err := s.Users.ByEmail(ctx, email)
	if err == nil {
		return s.issue(user)
	}
	if !errors.Is(err, domainuser.ErrNotFound) {
		return nil, err
	}

	hash, err := s.Passwords.Hash(uuid.NewString())
	if err != nil {
		return nil, err
	}
	user, err = domainuser.NewUser(domainuser.CreateParams{
		ID:           domainuser.ID(primitive.NewObjectID().Hex()),
		Username:     generatedUsername(params.Name, email),
		Email:        email,
		PasswordHash: hash,
		Avatar:       params.Photo,
		CreatedAt:    time.Now(),
	})
	if err != nil {
		return nil, err
	}
	if err := s.Users.Save(ctx, user); err != nil {
		// Lost the creation race: the account exists now, sign it in.
		if errors.Is(err, domainuser.ErrEmailAlreadyUsed) {
			existing, lookupErr := s.Users.ByEmail(ctx, email)
			if lookupErr != nil {
				return nil, lookupErr
			}
			return s.issue(existing)
		}
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("user registered via google", "user_id", user.ID, "email", user.Email)
	}
	return s.issue(user)
}

func (s *Service) issue(user *domainuser.User) (*AuthResult, error) {
	token, err := s.Tokens.Sign(string(user.ID))
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token}, nil
}

func (s *Service) validatePassword(password string) error {
	if utf8.RuneCountInString(password) < 6 {
		return ErrPasswordTooShort
	}
	return nil
}

func (s *Service) ensureDependencies() error {
	switch {
	case s.Users == nil:
		return errors.New("auth: user repository required")
	case s.Passwords == nil:
		return errors.New("auth: password hasher required")
	case s.Tokens == nil:
		return errors.New("auth: token signer required")
	default:
		return nil
	}
}

func generatedUsername(name, email string) string {
	base := strings.TrimSpace(name)
	if base == "" {
		base = strings.SplitN(email, "@", 2)[0]
	}
	base = strings.ToLower(strings.ReplaceAll(base, " ", ""))
	if len(base) > 16 {
		base = base[:16]
	}
	if base == "" {
		base = "user"
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:4]
	return base + suffix
}
