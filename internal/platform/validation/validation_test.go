package validation

import (
	"errors"
	"testing"

	"github.com/misonrisa/clinic/internal/platform/apperror"
)

type signupForm struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func TestValidate_OK(t *testing.T) {
	v := New()
	err := v.Validate(&signupForm{Name: "Ana", Email: "ana@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestValidate_ReportsJSONFieldName(t *testing.T) {
	v := New()
	err := v.Validate(&signupForm{Email: "ana@example.com", Password: "secret1"})
	if err == nil {
		t.Fatal("expected error for missing name")
	}
	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("error type = %T, want *apperror.Error", err)
	}
	if appErr.Kind != apperror.KindValidation {
		t.Errorf("Kind = %q, want %q", appErr.Kind, apperror.KindValidation)
	}
	if appErr.Field != "name" {
		t.Errorf("Field = %q, want %q", appErr.Field, "name")
	}
}

func TestValidate_EmailAndMin(t *testing.T) {
	v := New()

	err := v.Validate(&signupForm{Name: "Ana", Email: "not-an-email", Password: "secret1"})
	var appErr *apperror.Error
	if !errors.As(err, &appErr) || appErr.Field != "email" {
		t.Errorf("invalid email: got %v, want field email", err)
	}

	err = v.Validate(&signupForm{Name: "Ana", Email: "ana@example.com", Password: "ab"})
	if !errors.As(err, &appErr) || appErr.Field != "password" {
		t.Errorf("short password: got %v, want field password", err)
	}
}
