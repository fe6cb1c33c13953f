package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestIs_MatchesByKind(t *testing.T) {
	err := Conflict("slot already booked")
	if !errors.Is(err, Conflict("")) {
		t.Error("expected conflict errors to match by kind")
	}
	if errors.Is(err, NotFound("")) {
		t.Error("conflict should not match not_found")
	}
}

func TestIs_MatchesThroughWrapping(t *testing.T) {
	err := fmt.Errorf("create appointment: %w", PastDate("scheduled in the past"))
	if !errors.Is(err, PastDate("")) {
		t.Error("expected wrapped past_date to match")
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		kind Kind
		want int
	}{
		{KindValidation, http.StatusBadRequest},
		{KindPastDate, http.StatusBadRequest},
		{KindConflict, http.StatusConflict},
		{KindUnauthorized, http.StatusUnauthorized},
		{KindForbidden, http.StatusForbidden},
		{KindNotFound, http.StatusNotFound},
		{KindDownstream, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := HTTPStatus(tc.kind); got != tc.want {
			t.Errorf("HTTPStatus(%s) = %d, want %d", tc.kind, got, tc.want)
		}
	}
}

func TestToHTTP_AppError(t *testing.T) {
	httpErr := ToHTTP(ValidationField("patient_name", "is required"))
	if httpErr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", httpErr.Code)
	}
	body, ok := httpErr.Message.(map[string]string)
	if !ok {
		t.Fatalf("expected map body, got %T", httpErr.Message)
	}
	if body["field"] != "patient_name" {
		t.Errorf("expected field detail, got %q", body["field"])
	}
}

func TestToHTTP_UnknownError(t *testing.T) {
	httpErr := ToHTTP(errors.New("pg: connection refused"))
	if httpErr.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", httpErr.Code)
	}
	if httpErr.Message != "internal server error" {
		t.Errorf("internal detail leaked: %v", httpErr.Message)
	}
}

func TestDownstream_KeepsCause(t *testing.T) {
	cause := errors.New("smtp timeout")
	err := Downstream("reminder dispatch failed", cause)
	if !errors.Is(err, cause) {
		t.Error("expected cause to be reachable via errors.Is")
	}
}
