package crawlerimpl

import (
	"context"
	"errors"
	"testing"

	"github.com/orgball2608/twitter-parser-telegram-bot/internal/browser"
	"github.com/orgball2608/twitter-parser-telegram-bot/internal/crawler"
)

func testCredentials() Credentials {
	return Credentials{Username: "crawler_acct", Password: "hunter2", Email: "crawler@example.com"}
}

func TestAuthenticateAuthTokenShortCircuits(t *testing.T) {
	page := newFakePage()
	page.cookies = []browser.Cookie{
		{Name: "ct0", Value: "csrf"},
		{Name: "auth_token", Value: "session"},
	}

	auth := NewAuthenticator(testCredentials(), testLogger())
	ok, err := auth.Authenticate(context.Background(), page)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if !ok {
		t.Fatal("expected authenticated session with auth_token cookie present")
	}
	if len(page.filled) != 0 || len(page.clicks) != 0 {
		t.Errorf("login flow ran despite valid cookie: fills=%v clicks=%v", page.filled, page.clicks)
	}
}

func TestAuthenticateNoLoginForm(t *testing.T) {
	page := newFakePage()
	// No auth_token, but no login form either.
	page.present[selectorLoginProbe] = false

	auth := NewAuthenticator(testCredentials(), testLogger())
	ok, err := auth.Authenticate(context.Background(), page)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if !ok {
		t.Fatal("expected authenticated when no login form is present")
	}
	if len(page.filled) != 0 {
		t.Errorf("unexpected fills: %v", page.filled)
	}
}

func TestAuthenticateProbeFailureAssumesAuthenticated(t *testing.T) {
	page := newFakePage()
	page.queryErr[selectorLoginProbe] = errors.New("detached frame")

	auth := NewAuthenticator(testCredentials(), testLogger())
	ok, err := auth.Authenticate(context.Background(), page)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if !ok {
		t.Fatal("flaky probe should not abort the session")
	}
}

func TestAuthenticateDirectPasswordFlow(t *testing.T) {
	page := newFakePage()
	page.present[selectorLoginProbe] = true
	page.present[selectorPasswordInput] = true

	auth := NewAuthenticator(testCredentials(), testLogger())
	ok, err := auth.Authenticate(context.Background(), page)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if !ok {
		t.Fatal("expected successful login")
	}

	if page.filled[selectorUsernameInput] != "crawler_acct" {
		t.Errorf("username fill = %q", page.filled[selectorUsernameInput])
	}
	if page.filled[selectorPasswordInput] != "hunter2" {
		t.Errorf("password fill = %q", page.filled[selectorPasswordInput])
	}
	if _, filled := page.filled[selectorEmailInput]; filled {
		t.Error("email confirmation filled although the password prompt appeared directly")
	}
	want := []string{xpathNextButton, xpathLoginButton}
	if len(page.clicks) != len(want) || page.clicks[0] != want[0] || page.clicks[1] != want[1] {
		t.Errorf("clicks = %v, want %v", page.clicks, want)
	}
}

func TestAuthenticateEmailFallbackFlow(t *testing.T) {
	page := newFakePage()
	page.present[selectorLoginProbe] = true
	// Password prompt withheld: the flow must answer the email challenge.
	page.present[selectorPasswordInput] = false

	auth := NewAuthenticator(testCredentials(), testLogger())
	ok, err := auth.Authenticate(context.Background(), page)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if !ok {
		t.Fatal("expected successful login through the email fallback")
	}

	if page.filled[selectorEmailInput] != "crawler@example.com" {
		t.Errorf("email fill = %q", page.filled[selectorEmailInput])
	}
	if page.filled[selectorPasswordInput] != "hunter2" {
		t.Errorf("password fill = %q", page.filled[selectorPasswordInput])
	}
	want := []string{xpathNextButton, xpathNextButton, xpathLoginButton}
	if len(page.clicks) != len(want) {
		t.Fatalf("clicks = %v, want %v", page.clicks, want)
	}
	for i := range want {
		if page.clicks[i] != want[i] {
			t.Errorf("clicks[%d] = %q, want %q", i, page.clicks[i], want[i])
		}
	}
}

func TestAuthenticateVerificationTimeoutIsNotAnError(t *testing.T) {
	page := newFakePage()
	page.present[selectorLoginProbe] = true
	page.present[selectorPasswordInput] = true
	page.waitErr[selectorHomeLandmark] = browser.ErrWaitTimeout

	auth := NewAuthenticator(testCredentials(), testLogger())
	ok, err := auth.Authenticate(context.Background(), page)
	if err != nil {
		t.Fatalf("verification timeout must not surface as an error, got %v", err)
	}
	if ok {
		t.Fatal("expected unauthenticated result when the landmark never appears")
	}
}

func TestAuthenticateUnexpectedFailureWrapsSentinel(t *testing.T) {
	page := newFakePage()
	page.present[selectorLoginProbe] = true
	page.waitErr[selectorUsernameInput] = errors.New("target crashed")

	auth := NewAuthenticator(testCredentials(), testLogger())
	_, err := auth.Authenticate(context.Background(), page)
	if !errors.Is(err, crawler.ErrAuthentication) {
		t.Fatalf("err = %v, want crawler.ErrAuthentication", err)
	}
}
