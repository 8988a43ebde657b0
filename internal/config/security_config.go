package config

import (
	"fmt"
	"time"
)

// DefaultSecretKey is only suitable for local development.
const DefaultSecretKey = "dev-change-me"

type SecurityConfig interface {
	GetSecretKey() string
	GetMaxSessionAge() time.Duration
	GetSecureCookies() bool
	GetPasswordHasher() string
	GetBcryptCost() int
}

type Security struct {
	SecretKey      string        `env:"SECRET_KEY" envDefault:"dev-change-me"`
	MaxSessionAge  time.Duration `env:"SESSION_MAX_AGE" envDefault:"12h"`
	SecureCookies  bool          `env:"SECURE_COOKIES" envDefault:"false"`
	PasswordHasher string        `env:"PASSWORD_HASHER" envDefault:"bcrypt"`
	BcryptCost     int           `env:"BCRYPT_COST" envDefault:"10"`
}

var _ SecurityConfig = Security{}

func (s Security) validate() error {
	if s.SecretKey == "" {
		return fmt.Errorf("SECRET_KEY must not be empty")
	}
	if s.MaxSessionAge <= 0 {
		return fmt.Errorf("SESSION_MAX_AGE must be positive")
	}
	switch s.PasswordHasher {
	case "bcrypt", "argon2id":
	default:
		return fmt.Errorf("unknown PASSWORD_HASHER %q", s.PasswordHasher)
	}
	return nil
}

func (s Security) GetSecretKey() string {
	return s.SecretKey
}

func (s Security) GetMaxSessionAge() time.Duration {
	return s.MaxSessionAge
}

func (s Security) GetSecureCookies() bool {
	return s.SecureCookies
}

func (s Security) GetPasswordHasher() string {
	return s.PasswordHasher
}

func (s Security) GetBcryptCost() int {
	return s.BcryptCost
}
