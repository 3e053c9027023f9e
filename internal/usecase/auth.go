package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domainErrors "github.com/polkiloo/library/internal/domain/errors"
	"github.com/polkiloo/library/internal/domain/model"
	"github.com/polkiloo/library/internal/domain/repository"
	pkgAuth "github.com/polkiloo/library/internal/pkg/auth"
)

// AuthUseCase handles member registration, login and session tokens.
type AuthUseCase struct {
	users  repository.UserRepository
	hasher pkgAuth.PasswordHasher
	tokens pkgAuth.Strategy
	admin  pkgAuth.AdminCredential
}

// NewAuthUseCase constructs AuthUseCase.
func NewAuthUseCase(users repository.UserRepository, hasher pkgAuth.PasswordHasher, strategy pkgAuth.Strategy, admin pkgAuth.AdminCredential) *AuthUseCase {
	return &AuthUseCase{users: users, hasher: hasher, tokens: strategy, admin: admin}
}

// Register creates a new member account.
func (u *AuthUseCase) Register(ctx context.Context, username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", domainErrors.ErrInvalidInput)
	}
	if password == "" {
		return nil, fmt.Errorf("%w: password is required", domainErrors.ErrInvalidInput)
	}
	if u.admin.Username != "" && username == u.admin.Username {
		return nil, domainErrors.ErrAlreadyExists
	}

	hash, err := u.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	usr, err := u.users.Create(ctx, username, hash)
	if err != nil {
		if errors.Is(err, domainErrors.ErrAlreadyExists) {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}

	return usr, nil
}

// Authenticate validates credentials and returns the caller identity with a session token.
// The configured administrator is checked before member accounts.
func (u *AuthUseCase) Authenticate(ctx context.Context, username, password string) (model.Identity, string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return model.Identity{}, "", domainErrors.ErrInvalidCredentials
	}

	if u.admin.Matches(u.hasher, username, password) {
		return u.issue(model.AdminIdentity())
	}

	usr, err := u.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return model.Identity{}, "", domainErrors.ErrInvalidCredentials
		}
		return model.Identity{}, "", err
	}

	if err := u.hasher.Compare(usr.PasswordHash, password); err != nil {
		return model.Identity{}, "", domainErrors.ErrInvalidCredentials
	}

	identity := model.MemberIdentity(usr.ID)
	identity.Admin = usr.IsAdmin
	return u.issue(identity)
}

func (u *AuthUseCase) issue(identity model.Identity) (model.Identity, string, error) {
	token, err := u.tokens.IssueToken(identity)
	if err != nil {
		return model.Identity{}, "", err
	}
	return identity, token, nil
}

// ParseToken extracts the caller identity from provided token.
func (u *AuthUseCase) ParseToken(token string) (model.Identity, error) {
	if token == "" {
		return model.Identity{}, pkgAuth.ErrInvalidToken
	}
	return u.tokens.ParseToken(token)
}
