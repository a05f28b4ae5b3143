package validation

import (
	"encoding/json"
	"strings"
	"testing"

	"taskflow/pkg/errors"

	"github.com/go-playground/validator/v10"
)

type request struct {
	Title       string  `json:"title" validate:"required,notblank,trimmax=5"`
	Description *string `json:"description" validate:"omitempty,max=3"`
}

func newValidator(t *testing.T) *validator.Validate {
	t.Helper()
	v := validator.New()
	if err := RegisterOn(v); err != nil {
		t.Fatalf("RegisterOn() error = %v", err)
	}
	return v
}

func strPtr(s string) *string { return &s }

func TestRules(t *testing.T) {
	v := newValidator(t)

	tests := []struct {
		name      string
		req       request
		wantField string
		wantMsg   string
	}{
		{name: "valid", req: request{Title: "abc"}},
		{name: "trimmed length within limit", req: request{Title: "  abcde  "}},
		{name: "multibyte counts runes", req: request{Title: "héllo"}},
		{name: "missing title", req: request{}, wantField: "title", wantMsg: "is required"},
		{name: "blank title", req: request{Title: "   "}, wantField: "title", wantMsg: "must not be blank"},
		{name: "title too long", req: request{Title: "abcdef"}, wantField: "title", wantMsg: "must be at most 5 characters"},
		{name: "description too long", req: request{Title: "a", Description: strPtr("abcd")}, wantField: "description", wantMsg: "must be at most 3 characters"},
		{name: "empty description allowed", req: request{Title: "a", Description: strPtr("")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.req)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Struct() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Struct() error = nil, want validation failure")
			}

			appErr := Translate(err)
			if appErr.Code != errors.CodeValidation {
				t.Errorf("Code = %s, want %s", appErr.Code, errors.CodeValidation)
			}
			if got := appErr.Fields[tt.wantField]; got != tt.wantMsg {
				t.Errorf("Fields[%q] = %q, want %q (all: %v)", tt.wantField, got, tt.wantMsg, appErr.Fields)
			}
		})
	}
}

func TestTranslateMalformedBody(t *testing.T) {
	var dst request
	err := json.NewDecoder(strings.NewReader(`{"title":`)).Decode(&dst)
	if err == nil {
		t.Fatal("expected a decode error")
	}

	appErr := Translate(err)
	if appErr.Code != errors.CodeBadRequest {
		t.Errorf("Code = %s, want %s", appErr.Code, errors.CodeBadRequest)
	}
	if appErr.Fields != nil {
		t.Errorf("malformed body should carry no field errors, got %v", appErr.Fields)
	}
}

func TestRegisterIsRepeatable(t *testing.T) {
	if err := Register(); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := Register(); err != nil {
		t.Fatalf("second Register() error = %v", err)
	}
}
