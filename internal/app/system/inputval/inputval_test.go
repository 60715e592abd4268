package inputval

import (
	"strings"
	"testing"
)

func TestIsValidHTTPURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"http://example.com", true},
		{"https://inventory.example.com/api", true},
		{"http://localhost:8000", true},

		{"", false},
		{"   ", false},
		{"example.com", false},
		{"ftp://example.com", false},
		{"javascript:alert(1)", false},
		{"http://", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := IsValidHTTPURL(tt.url); got != tt.want {
				t.Errorf("IsValidHTTPURL(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

type settings struct {
	BackendURL string `validate:"required,httpurl" label:"backend_url"`
	TokenURL   string `validate:"httpurl" label:"backend_token_url"`
}

func TestValidate_Valid(t *testing.T) {
	res := Validate(settings{BackendURL: "http://localhost:8000"})
	if res.HasErrors() {
		t.Errorf("unexpected errors: %s", res.All())
	}
}

func TestValidate_BadURLs(t *testing.T) {
	res := Validate(settings{BackendURL: "localhost:8000", TokenURL: "not a url"})
	if !res.HasErrors() {
		t.Fatal("expected errors")
	}
	if !strings.Contains(res.First(), "http://") {
		t.Errorf("First() = %q", res.First())
	}
	for _, e := range res.Errors {
		if e.Label == "" {
			t.Errorf("missing label on %+v", e)
		}
	}
}

func TestValidate_Required(t *testing.T) {
	res := Validate(settings{})
	if !res.HasErrors() {
		t.Fatal("expected errors")
	}
	if !strings.Contains(res.All(), "backend_url") {
		t.Errorf("All() = %q, want backend_url mentioned", res.All())
	}
}

type secrets struct {
	SessionKey string `validate:"secret" label:"session_key"`
}

func TestValidate_Secret(t *testing.T) {
	if res := Validate(secrets{SessionKey: "short"}); !res.HasErrors() {
		t.Error("short key should fail")
	}
	if res := Validate(secrets{SessionKey: strings.Repeat("k9", 20)}); res.HasErrors() {
		t.Errorf("strong key failed: %s", res.All())
	}
}

func TestResult_Empty(t *testing.T) {
	r := &Result{}
	if r.HasErrors() || r.First() != "" || r.All() != "" {
		t.Error("empty result should report nothing")
	}
}
