package auth

import (
	"crypto/subtle"
	"errors"
	"strings"
)

// AdminCredential is the fixed administrator login, kept only in hashed form.
type AdminCredential struct {
	Username     string
	PasswordHash string
}

// NewAdminCredential hashes the configured administrator password.
func NewAdminCredential(username, password string, hasher PasswordHasher) (AdminCredential, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return AdminCredential{}, errors.New("administrator credentials must not be empty")
	}
	hash, err := hasher.Hash(password)
	if err != nil {
		return AdminCredential{}, err
	}
	return AdminCredential{Username: username, PasswordHash: hash}, nil
}

// Matches reports whether username and password belong to the administrator.
func (a AdminCredential) Matches(hasher PasswordHasher, username, password string) bool {
	if a.Username == "" {
		return false
	}
	if subtle.ConstantTimeCompare([]byte(a.Username), []byte(username)) != 1 {
		return false
	}
	return hasher.Compare(a.PasswordHash, password) == nil
}
