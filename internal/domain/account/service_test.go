package account

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/misonrisa/clinic/internal/platform/apperror"
	"github.com/misonrisa/clinic/internal/platform/auth"
)

// -- Mock Repository --

type mockRepo struct {
	accounts map[uuid.UUID]*Account
}

func newMockRepo() *mockRepo {
	return &mockRepo{accounts: make(map[uuid.UUID]*Account)}
}

func (m *mockRepo) Create(_ context.Context, a *Account) error {
	for _, existing := range m.accounts {
		if existing.Email == a.Email {
			return apperror.Conflict("email already registered")
		}
	}
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	m.accounts[a.ID] = a
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Account, error) {
	a, ok := m.accounts[id]
	if !ok {
		return nil, apperror.NotFound("account not found")
	}
	return a, nil
}

func (m *mockRepo) GetByEmail(_ context.Context, email string) (*Account, error) {
	for _, a := range m.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return nil, apperror.NotFound("account not found")
}

func newTestService() (*Service, *mockRepo) {
	repo := newMockRepo()
	return NewService(repo, "test-secret", time.Hour, zerolog.Nop()), repo
}

func TestRegister(t *testing.T) {
	svc, _ := newTestService()

	res, err := svc.Register(context.Background(), RegisterInput{
		Name: "Ana Ruiz", Email: "Ana@Clinic.com", Password: "secret1", Role: "doctor",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if res.Token == "" {
		t.Error("expected a token")
	}
	if res.Account.Email != "ana@clinic.com" {
		t.Errorf("email not normalized: %q", res.Account.Email)
	}
	if res.Account.Role != "doctor" {
		t.Errorf("role = %q", res.Account.Role)
	}

	claims, err := auth.ParseToken("test-secret", res.Token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.Subject != res.Account.ID.String() {
		t.Errorf("token subject = %q, want account id", claims.Subject)
	}
	if claims.Role != "doctor" {
		t.Errorf("token role = %q", claims.Role)
	}
}

func TestRegister_DefaultRole(t *testing.T) {
	svc, _ := newTestService()

	res, err := svc.Register(context.Background(), RegisterInput{
		Name: "Luis", Email: "luis@clinic.com", Password: "secret1",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if res.Account.Role != RolePatient {
		t.Errorf("default role = %q, want %q", res.Account.Role, RolePatient)
	}
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newTestService()

	tests := []struct {
		name  string
		in    RegisterInput
		field string
	}{
		{"missing name", RegisterInput{Email: "a@b.com", Password: "secret1"}, "name"},
		{"missing email", RegisterInput{Name: "A", Password: "secret1"}, "email"},
		{"short password", RegisterInput{Name: "A", Email: "a@b.com", Password: "ab"}, "password"},
		{"bad role", RegisterInput{Name: "A", Email: "a@b.com", Password: "secret1", Role: "root"}, "role"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.in)
			var appErr *apperror.Error
			if !errors.As(err, &appErr) {
				t.Fatalf("expected apperror, got %v", err)
			}
			if appErr.Kind != apperror.KindValidation {
				t.Errorf("kind = %q", appErr.Kind)
			}
			if appErr.Field != tt.field {
				t.Errorf("field = %q, want %q", appErr.Field, tt.field)
			}
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	in := RegisterInput{Name: "Ana", Email: "ana@clinic.com", Password: "secret1"}
	if _, err := svc.Register(ctx, in); err != nil {
		t.Fatalf("first Register: %v", err)
	}

	_, err := svc.Register(ctx, in)
	if !errors.Is(err, apperror.Conflict("")) {
		t.Errorf("expected conflict, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	reg, err := svc.Register(ctx, RegisterInput{Name: "Ana", Email: "ana@clinic.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	res, err := svc.Login(ctx, LoginInput{Email: "ANA@clinic.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.Account.ID != reg.Account.ID {
		t.Error("login returned a different account")
	}
	if res.Token == "" {
		t.Error("expected a token")
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Name: "Ana", Email: "ana@clinic.com", Password: "secret1"}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	tests := []struct {
		name string
		in   LoginInput
	}{
		{"unknown email", LoginInput{Email: "nobody@clinic.com", Password: "secret1"}},
		{"wrong password", LoginInput{Email: "ana@clinic.com", Password: "nope"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(ctx, tt.in)
			if !errors.Is(err, apperror.Unauthorized("")) {
				t.Errorf("expected unauthorized, got %v", err)
			}
		})
	}
}

func TestProfile(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	reg, err := svc.Register(ctx, RegisterInput{Name: "Ana", Email: "ana@clinic.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	a, err := svc.Profile(ctx, reg.Account.ID)
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if a.Email != "ana@clinic.com" {
		t.Errorf("email = %q", a.Email)
	}

	if _, err := svc.Profile(ctx, uuid.New()); !errors.Is(err, apperror.NotFound("")) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestPasswordHashNeverSerialized(t *testing.T) {
	svc, _ := newTestService()

	res, err := svc.Register(context.Background(), RegisterInput{
		Name: "Ana", Email: "ana@clinic.com", Password: "secret1",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	b, err := json.Marshal(res.Account)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if strings.Contains(string(b), "password") || strings.Contains(string(b), res.Account.PasswordHash) {
		t.Errorf("password material leaked in JSON: %s", b)
	}
}
