// Package auth holds the single-user credential check and the bearer token
// service used by the HTTP layer.
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrEmptyPassword is returned when hashing an empty password.
var ErrEmptyPassword = errors.New("password cannot be empty")

// HashPassword returns a bcrypt hash of password.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the bcrypt hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Credentials is the one static account allowed to log in.
// It is built at startup and never mutated.
type Credentials struct {
	username     string
	passwordHash string
}

// NewCredentials validates the stored hash and returns the credential.
func NewCredentials(username, passwordHash string) (*Credentials, error) {
	if username == "" {
		return nil, errors.New("username is required")
	}
	if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
		return nil, fmt.Errorf("invalid password hash: %w", err)
	}
	return &Credentials{username: username, passwordHash: passwordHash}, nil
}

// Username returns the configured account name.
func (c *Credentials) Username() string {
	return c.username
}

// Verify reports whether username and password match the stored account.
// The bcrypt comparison always runs so an unknown username costs the same
// as a wrong password.
func (c *Credentials) Verify(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(c.username)) == 1
	passOK := CheckPassword(password, c.passwordHash)
	return userOK && passOK
}
