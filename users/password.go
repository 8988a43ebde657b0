package users

import (
	"fmt"
	"strings"

	"github.com/matthewhartstonge/argon2"
	"golang.org/x/crypto/bcrypt"
)

const (
	HasherBcrypt   = "bcrypt"
	HasherArgon2id = "argon2id"

	argon2Prefix = "$argon2"
)

// PasswordHasher derives one-way, salted password hashes.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

// NewHasher returns the hasher for the given algorithm name.
func NewHasher(algorithm string, bcryptCost int) (PasswordHasher, error) {
	switch algorithm {
	case "", HasherBcrypt:
		if bcryptCost == 0 {
			bcryptCost = bcrypt.DefaultCost
		}
		if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
			return nil, fmt.Errorf("bcrypt cost %d out of range", bcryptCost)
		}
		return BcryptHasher{Cost: bcryptCost}, nil
	case HasherArgon2id:
		return Argon2Hasher{Config: argon2.DefaultConfig()}, nil
	default:
		return nil, fmt.Errorf("unknown password hasher %q", algorithm)
	}
}

type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.Cost)
	return string(bytes), err
}

type Argon2Hasher struct {
	Config argon2.Config
}

func (h Argon2Hasher) Hash(password string) (string, error) {
	encoded, err := h.Config.HashEncoded([]byte(password))
	return string(encoded), err
}

// CheckPasswordHash verifies password against an encoded bcrypt or argon2 hash.
// Both comparisons are constant time.
func CheckPasswordHash(password, hash string) bool {
	if strings.HasPrefix(hash, argon2Prefix) {
		ok, err := argon2.VerifyEncoded([]byte(password), []byte(hash))
		return err == nil && ok
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
