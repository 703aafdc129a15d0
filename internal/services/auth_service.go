package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/mail"
	"strings"

	"github.com/latestcomment/influence-scoring/internal/models"
)

var (
	ErrMalformedEmail     = errors.New("email address is malformed")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type Credentials struct {
	Name     string
	Email    string
	Password string
}

// Authenticator turns login credentials into a researcher identity.
type Authenticator interface {
	Authenticate(ctx context.Context, creds Credentials) (models.Researcher, error)
}

// OpenAuthenticator trusts whatever name and email the researcher types.
type OpenAuthenticator struct{}

func (OpenAuthenticator) Authenticate(_ context.Context, creds Credentials) (models.Researcher, error) {
	email := normalizeEmail(creds.Email)
	// a bare address only; display-name forms such as "Amina <a@x.com>" are rejected
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return models.Researcher{}, &models.AuthenticationError{Email: creds.Email, Err: ErrMalformedEmail}
	}
	return models.Researcher{Name: strings.TrimSpace(creds.Name), Email: email}, nil
}

type Account struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AccountAuthenticator accepts only the configured researcher accounts.
type AccountAuthenticator struct {
	accounts map[string]Account
}

func NewAccountAuthenticator(accounts []Account) *AccountAuthenticator {
	a := &AccountAuthenticator{accounts: make(map[string]Account, len(accounts))}
	for _, acc := range accounts {
		a.accounts[normalizeEmail(acc.Email)] = acc
	}
	return a
}

func (a *AccountAuthenticator) Authenticate(_ context.Context, creds Credentials) (models.Researcher, error) {
	email := normalizeEmail(creds.Email)
	acc, ok := a.accounts[email]
	if !ok || subtle.ConstantTimeCompare([]byte(acc.Password), []byte(creds.Password)) != 1 {
		return models.Researcher{}, &models.AuthenticationError{Email: creds.Email, Err: ErrInvalidCredentials}
	}
	name := strings.TrimSpace(creds.Name)
	if acc.Name != "" {
		name = acc.Name
	}
	return models.Researcher{Name: name, Email: email}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
