package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/truassets/internal/model"
)

// defaultCost is the bcrypt work factor (~250ms per hash on a modern core).
const defaultCost = 12

// Admin identity fields assigned by a successful credential check.
const (
	AdminID   = "admin-001"
	AdminName = "Admin"
)

// ErrInvalidCredentials is returned for any failed admin login, without
// saying which half was wrong.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

// PasswordService hashes and verifies passwords with bcrypt. The cost is a
// field so tests can use the minimum.
type PasswordService struct {
	cost int
}

// NewPasswordService creates a PasswordService with the default cost.
func NewPasswordService() *PasswordService {
	return &PasswordService{cost: defaultCost}
}

// NewPasswordServiceForTest creates a PasswordService with the given cost.
// Pass bcrypt.MinCost (4) from tests in other packages.
func NewPasswordServiceForTest(cost int) *PasswordService {
	return &PasswordService{cost: cost}
}

// Hash hashes plaintext. bcrypt ignores bytes past 72, so longer input is
// rejected.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > 72 {
		return "", errors.New("auth: password must be 72 bytes or fewer")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}
	return string(hashed), nil
}

// Verify returns nil when plaintext matches hash. The comparison is constant
// time.
func (p *PasswordService) Verify(hash, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return errors.New("auth: invalid password")
		}
		return fmt.Errorf("auth: comparing password hash: %w", err)
	}
	return nil
}

// AdminAuthenticator checks the single configured admin email/password pair.
// Only the bcrypt hash of the password is kept after construction.
type AdminAuthenticator struct {
	email     string
	hash      string
	passwords *PasswordService
}

// NewAdminAuthenticator hashes password once at startup.
func NewAdminAuthenticator(email, password string, passwords *PasswordService) (*AdminAuthenticator, error) {
	if email == "" || password == "" {
		return nil, errors.New("auth: admin email and password are required")
	}
	hash, err := passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("auth: hashing admin password: %w", err)
	}
	return &AdminAuthenticator{email: email, hash: hash, passwords: passwords}, nil
}

// Authenticate returns the admin identity when email and password match.
// The password is verified even on an email mismatch so both failures take
// the same time.
func (a *AdminAuthenticator) Authenticate(email, password string) (model.AuthenticatedUser, error) {
	pwErr := a.passwords.Verify(a.hash, password)
	if email != a.email || pwErr != nil {
		return model.AuthenticatedUser{}, ErrInvalidCredentials
	}
	return model.AuthenticatedUser{
		ID:    AdminID,
		Name:  AdminName,
		Email: a.email,
		Role:  model.RoleAdmin,
	}, nil
}
