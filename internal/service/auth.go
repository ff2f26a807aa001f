package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/klinika/internal/model"
	"github.com/erazemk/klinika/internal/store"
)

// clinicCodeAttempts bounds the search for an unused generated clinic code.
const clinicCodeAttempts = 10

// Credentials is the input of Login.
type Credentials struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// SignupInput registers a user in an existing clinic.
type SignupInput struct {
	Name       string `json:"name" validate:"required,max=100"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8"`
	ClinicCode string `json:"clinic_code" validate:"required"`
}

// ClinicRegistration creates a clinic together with its first administrator.
type ClinicRegistration struct {
	ClinicName    string `json:"clinic_name" validate:"required,max=200"`
	Address       string `json:"address"`
	Phone         string `json:"phone"`
	Email         string `json:"email" validate:"omitempty,email"`
	AdminName     string `json:"admin_name" validate:"required,max=100"`
	AdminEmail    string `json:"admin_email" validate:"required,email"`
	AdminPassword string `json:"admin_password" validate:"required,min=8"`
}

// HashPassword hashes a password with bcrypt after checking its length.
func HashPassword(password string) (string, error) {
	if err := model.ValidatePassword(password); err != nil {
		return "", &ValidationError{Message: err.Error()}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// Login checks a user's credentials. The clinic is taken from the user's
// record, not from the request.
func (s *Service) Login(ctx context.Context, c Credentials) (*model.User, error) {
	if err := check(c); err != nil {
		return nil, err
	}

	u, err := store.GetUserByEmail(ctx, s.DB, c.Email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(c.Password)); err != nil {
		slog.WarnContext(ctx, "login failed", "email", u.Email, "clinic_code", u.ClinicCode)
		return nil, ErrInvalidCredentials
	}

	slog.InfoContext(ctx, "user logged in", "user", u.Email, "role", u.Role, "clinic_code", u.ClinicCode)
	return u, nil
}

// Signup creates a veterinarian account in an existing clinic.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*model.User, error) {
	trimAll(&in.Name, &in.Email, &in.ClinicCode)
	if err := check(in); err != nil {
		return nil, err
	}

	c, err := store.GetClinic(ctx, s.DB, in.ClinicCode)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrUnknownClinic
	}

	u := &model.User{Name: in.Name, Email: in.Email, Role: model.RoleVeterinarian}
	u.ClinicCode = c.ClinicCode
	created, err := s.createUser(ctx, u, in.Password)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "user signed up", "user", created.Email, "clinic_code", created.ClinicCode)
	return created, nil
}

// RegisterClinic creates a clinic with default settings and a generated code,
// then its administrator.
func (s *Service) RegisterClinic(ctx context.Context, in ClinicRegistration) (*model.Clinic, *model.User, error) {
	trimAll(&in.ClinicName, &in.Email, &in.AdminName, &in.AdminEmail)
	if err := check(in); err != nil {
		return nil, nil, err
	}
	if err := s.emailAvailable(ctx, in.AdminEmail); err != nil {
		return nil, nil, err
	}

	var clinic *model.Clinic
	for range clinicCodeAttempts {
		code, err := generateClinicCode()
		if err != nil {
			return nil, nil, err
		}
		existing, err := store.GetClinic(ctx, s.DB, code)
		if err != nil {
			return nil, nil, err
		}
		if existing != nil {
			continue
		}

		c := model.NewClinic(code, in.ClinicName)
		c.Address, c.Phone, c.Email = in.Address, in.Phone, in.Email
		if clinic, err = store.CreateClinic(ctx, s.DB, c); err != nil {
			return nil, nil, err
		}
		break
	}
	if clinic == nil {
		return nil, nil, fmt.Errorf("no free clinic code after %d attempts", clinicCodeAttempts)
	}

	admin := &model.User{Name: in.AdminName, Email: in.AdminEmail, Role: model.RoleAdministrator}
	admin.ClinicCode = clinic.ClinicCode
	created, err := s.createUser(ctx, admin, in.AdminPassword)
	if err != nil {
		return nil, nil, err
	}

	slog.InfoContext(ctx, "clinic registered", "clinic_code", clinic.ClinicCode, "name", clinic.ClinicName,
		"admin", created.Email)
	return clinic, created, nil
}

// ClinicByCode returns a clinic by its code, for the public existence check.
func (s *Service) ClinicByCode(ctx context.Context, code string) (*model.Clinic, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, invalidf("clinic code is required")
	}

	c, err := store.GetClinic(ctx, s.DB, code)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("clinic %s: %w", code, ErrNotFound)
	}
	return c, nil
}

func (s *Service) emailAvailable(ctx context.Context, email string) error {
	existing, err := store.GetUserByEmail(ctx, s.DB, email)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrEmailTaken
	}
	return nil
}

// createUser hashes the password and stores the user. u.ClinicCode must be set
// or resolvable from ctx.
func (s *Service) createUser(ctx context.Context, u *model.User, password string) (*model.User, error) {
	if err := s.emailAvailable(ctx, u.Email); err != nil {
		return nil, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = hash

	return store.CreateUser(ctx, s.DB, u)
}

// generateClinicCode returns "PC" followed by six random digits.
func generateClinicCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("generating clinic code: %w", err)
	}
	return fmt.Sprintf("PC%06d", n.Int64()), nil
}
