package services

import (
	"errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"carebook/internal/domain"
	"carebook/internal/repos"
)

// ErrBadCreds is the single credential failure: unknown email, wrong password
// and deactivated accounts are indistinguishable to the caller.
var ErrBadCreds = errors.New("invalid email or password")

type AuthService struct {
	Users *repos.UserRepo
}

// Register creates a patient account. Public self-registration always gets
// the Patient role no matter what the caller submitted; the user row and the
// role membership commit together, so there is no half-created account.
func (s *AuthService) Register(email, fullName, password string) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		ID:       uuid.NewString(),
		Email:    email,
		FullName: fullName,
		Hash:     string(hash),
		Role:     domain.RolePatient,
		Active:   true,
	}
	if err := s.Users.Create(u); err != nil {
		return nil, err
	}
	return u, nil
}

// SignIn binds an already-authenticated user to a session (auto-login after
// registration).
func (s *AuthService) SignIn(sid string, u *domain.User, remember bool) error {
	return s.Users.BindSession(sid, u.ID, remember)
}

func (s *AuthService) Login(sid, email, password string, remember bool) (*domain.User, error) {
	u, err := s.Users.ByEmail(email)
	if err != nil {
		return nil, ErrBadCreds
	}
	if !u.Active {
		return nil, ErrBadCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, ErrBadCreds
	}
	if err := s.Users.BindSession(sid, u.ID, remember); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *AuthService) Logout(sid string) error {
	return s.Users.UnbindSession(sid)
}

func (s *AuthService) CurrentUser(sid string) (*domain.User, error) {
	return s.Users.SessionUser(sid)
}
