package bind

import (
	"net/http/httptest"
	"strings"
	"testing"

	perr "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/platform/errors"
)

type payload struct {
	Title string `json:"title" validate:"required"`
	Link  string `json:"link" validate:"required,url"`
	Num   int64  `json:"num" validate:"gt=0"`
}

func TestParseJSONValid(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest("POST", "/", strings.NewReader(
		`{"title":"t","link":"https://x.example/1","num":3}`))
	got, err := ParseJSON[payload](r)
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if got.Title != "t" || got.Num != 3 {
		t.Fatalf("ParseJSON = %+v", got)
	}
}

func TestParseJSONEmptyBody(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest("POST", "/", strings.NewReader(""))
	if _, err := ParseJSON[payload](r); !perr.IsCode(err, perr.ErrorCodeJSON) {
		t.Fatalf("empty body err = %v, want json error", err)
	}

	// safe methods tolerate empty bodies
	r = httptest.NewRequest("GET", "/", strings.NewReader(""))
	if _, err := ParseJSON[payload](r); err != nil {
		t.Fatalf("GET empty body err = %v", err)
	}
}

func TestParseJSONUnknownField(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest("POST", "/", strings.NewReader(
		`{"title":"t","link":"https://x.example/1","num":3,"extra":true}`))
	if _, err := ParseJSON[payload](r); !perr.IsCode(err, perr.ErrorCodeJSON) {
		t.Fatalf("unknown field err = %v, want json error", err)
	}
}

func TestParseJSONTrailingData(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest("POST", "/", strings.NewReader(
		`{"title":"t","link":"https://x.example/1","num":3}{"again":1}`))
	if _, err := ParseJSON[payload](r); !perr.IsCode(err, perr.ErrorCodeJSON) {
		t.Fatalf("trailing data err = %v, want json error", err)
	}
}

func TestParseJSONValidationUsesJSONTagNames(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest("POST", "/", strings.NewReader(
		`{"title":"","link":"https://x.example/1","num":3}`))
	_, err := ParseJSON[payload](r)
	if !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
	e, ok := perr.As(err)
	if !ok || e.Field() != "title" {
		t.Fatalf("field = %q, want json tag name", e.Field())
	}
}

func TestParseJSONBadURL(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest("POST", "/", strings.NewReader(
		`{"title":"t","link":"not-a-url","num":3}`))
	_, err := ParseJSON[payload](r)
	if !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}
