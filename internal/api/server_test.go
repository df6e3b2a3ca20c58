package api

import (
	"errors"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"numonce/internal/game"
)

func TestBearerToken(t *testing.T) {
	cases := []struct {
		header string
		want   string
	}{
		{"Bearer abc123", "abc123"},
		{"bearer abc123", "abc123"},
		{"  Bearer   abc123  ", "abc123"},
		{"Basic abc123", ""},
		{"abc123", ""},
		{"", ""},
	}
	for _, c := range cases {
		if got := bearerToken(c.header); got != c.want {
			t.Fatalf("bearerToken(%q) = %q, want %q", c.header, got, c.want)
		}
	}
}

func TestSecretMatches(t *testing.T) {
	if !secretMatches("s3cret", "s3cret") {
		t.Fatalf("matching secret rejected")
	}
	if secretMatches("wrong", "s3cret") {
		t.Fatalf("wrong secret accepted")
	}
	// Unset server secret must never authorize anyone.
	if secretMatches("", "") || secretMatches("anything", "") {
		t.Fatalf("empty configured secret accepted")
	}
}

func TestWriteDomainErrorStatuses(t *testing.T) {
	cases := []struct {
		err    error
		status int
		kind   string
	}{
		{game.ErrInvalidNumber, 400, "invalid_number"},
		{game.ErrAlreadyPicked, 409, "already_picked"},
		{game.ErrAlreadySettled, 409, "already_settled"},
		{game.ErrNoSubmissions, 422, "no_submissions"},
		{errors.New("pg down"), 500, "storage"},
		{fmt.Errorf("settle: %w", game.ErrAlreadySettled), 409, "already_settled"},
	}
	for _, c := range cases {
		rec := httptest.NewRecorder()
		writeDomainError(rec, c.err)
		if rec.Code != c.status {
			t.Fatalf("%v: status = %d, want %d", c.err, rec.Code, c.status)
		}
		body := rec.Body.String()
		if want := fmt.Sprintf("%q", c.kind); !strings.Contains(body, want) {
			t.Fatalf("%v: body %s missing kind %s", c.err, body, want)
		}
	}
}
