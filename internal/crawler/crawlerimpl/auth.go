package crawlerimpl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/orgball2608/twitter-parser-telegram-bot/internal/browser"
	"github.com/orgball2608/twitter-parser-telegram-bot/internal/crawler"
	"github.com/orgball2608/twitter-parser-telegram-bot/pkg/logger"
)

const (
	authTokenCookie = "auth_token"

	selectorLoginProbe    = `input[autocomplete="username"], form[action="/i/flow/login"]`
	selectorUsernameInput = `input[autocomplete="username"]`
	selectorPasswordInput = `input[type="password"]`
	selectorEmailInput    = `input[type="text"]`
	selectorHomeLandmark  = `[data-testid="AppTabBar_Home_Link"], article[data-testid="tweet"]`

	// The advance buttons carry no stable attributes, only their label text.
	xpathNextButton  = `//button[@role="button"][.//span[contains(text(),"Next")]]`
	xpathLoginButton = `//button[@type="button"][.//span[contains(text(),"Log in")]]`

	usernameWaitTimeout = 10 * time.Second
	emailWaitTimeout    = 15 * time.Second
	settleTimeout       = 50 * time.Second
	verifyTimeout       = 10 * time.Second
)

// AuthState names every step the login flow can be in, mostly for logging.
type AuthState int

const (
	StateUnknown AuthState = iota
	StateCheckingAuthToken
	StateCheckingLoginForm
	StateAuthenticated
	StateNeedsLogin
	StateEnteringUsername
	StateAwaitingSecondFactorPrompt
	StateEnteringEmailFallback
	StateEnteringPassword
	StateSubmittingLogin
	StateVerifyingLogin
	StateLoginFailed
)

func (s AuthState) String() string {
	switch s {
	case StateCheckingAuthToken:
		return "checking_auth_token"
	case StateCheckingLoginForm:
		return "checking_login_form"
	case StateAuthenticated:
		return "authenticated"
	case StateNeedsLogin:
		return "needs_login"
	case StateEnteringUsername:
		return "entering_username"
	case StateAwaitingSecondFactorPrompt:
		return "awaiting_second_factor_prompt"
	case StateEnteringEmailFallback:
		return "entering_email_fallback"
	case StateEnteringPassword:
		return "entering_password"
	case StateSubmittingLogin:
		return "submitting_login"
	case StateVerifyingLogin:
		return "verifying_login"
	case StateLoginFailed:
		return "login_failed"
	default:
		return "unknown"
	}
}

type Credentials struct {
	Username string
	Password string
	Email    string
}

// Authenticator drives a page through the login flow. It is stateless across
// accounts and can be reused for every page of a session.
type Authenticator struct {
	credentials Credentials
	logger      logger.Logger

	state AuthState
}

func NewAuthenticator(credentials Credentials, log logger.Logger) *Authenticator {
	return &Authenticator{
		credentials: credentials,
		logger:      log.WithComponent("Authenticator"),
		state:       StateUnknown,
	}
}

func (a *Authenticator) transition(next AuthState) {
	a.logger.Debug("Auth state transition", "from", a.state.String(), "to", next.String())
	a.state = next
}

// Authenticate returns true only when the page ends up authenticated. An
// ordinary verification failure returns (false, nil); anything unexpected
// inside the flow returns an error wrapping crawler.ErrAuthentication.
func (a *Authenticator) Authenticate(ctx context.Context, page browser.Page) (bool, error) {
	a.transition(StateCheckingAuthToken)
	hasToken, err := a.hasAuthToken(ctx, page)
	if err != nil {
		return false, fmt.Errorf("%w: reading cookies: %v", crawler.ErrAuthentication, err)
	}
	if hasToken {
		a.logger.Info("Auth token cookie present, already authenticated")
		a.transition(StateAuthenticated)
		return true, nil
	}

	a.transition(StateCheckingLoginForm)
	needsLogin, err := a.loginFormPresent(ctx, page)
	if err != nil {
		// A flaky DOM probe is not a reason to abort; the original treats it
		// as "no login required" and lets the scrape surface real problems.
		a.logger.Warn("Login form probe failed, assuming authenticated", "error", err)
		a.transition(StateAuthenticated)
		return true, nil
	}
	if !needsLogin {
		a.logger.Info("No login form present, already authenticated")
		a.transition(StateAuthenticated)
		return true, nil
	}

	a.transition(StateNeedsLogin)
	a.logger.Info("Starting login flow", "username", a.credentials.Username)

	a.transition(StateEnteringUsername)
	if err := page.WaitForSelector(ctx, selectorUsernameInput, usernameWaitTimeout); err != nil {
		return false, fmt.Errorf("%w: username input never appeared: %v", crawler.ErrAuthentication, err)
	}
	if err := page.Fill(ctx, selectorUsernameInput, a.credentials.Username); err != nil {
		return false, fmt.Errorf("%w: filling username: %v", crawler.ErrAuthentication, err)
	}
	if err := page.Click(ctx, xpathNextButton); err != nil {
		return false, fmt.Errorf("%w: advancing past username: %v", crawler.ErrAuthentication, err)
	}

	if err := page.WaitForNetworkIdle(ctx, settleTimeout); err != nil && !errors.Is(err, browser.ErrWaitTimeout) {
		return false, fmt.Errorf("%w: waiting for login flow to settle: %v", crawler.ErrAuthentication, err)
	}

	// The next screen asks for the password directly, or for an email/phone
	// confirmation first when bot detection kicked in.
	a.transition(StateAwaitingSecondFactorPrompt)
	passwordVisible, err := a.selectorPresent(ctx, page, selectorPasswordInput)
	if err != nil {
		return false, fmt.Errorf("%w: probing for password input: %v", crawler.ErrAuthentication, err)
	}
	if !passwordVisible {
		a.transition(StateEnteringEmailFallback)
		a.logger.Info("Password input not found, answering email confirmation")
		if err := page.WaitForSelector(ctx, selectorEmailInput, emailWaitTimeout); err != nil {
			return false, fmt.Errorf("%w: email confirmation input never appeared: %v", crawler.ErrAuthentication, err)
		}
		if err := page.Fill(ctx, selectorEmailInput, a.credentials.Email); err != nil {
			return false, fmt.Errorf("%w: filling email confirmation: %v", crawler.ErrAuthentication, err)
		}
		if err := page.Click(ctx, xpathNextButton); err != nil {
			return false, fmt.Errorf("%w: advancing past email confirmation: %v", crawler.ErrAuthentication, err)
		}
	}

	a.transition(StateEnteringPassword)
	if err := page.Fill(ctx, selectorPasswordInput, a.credentials.Password); err != nil {
		return false, fmt.Errorf("%w: filling password: %v", crawler.ErrAuthentication, err)
	}

	a.transition(StateSubmittingLogin)
	if err := page.Click(ctx, xpathLoginButton); err != nil {
		return false, fmt.Errorf("%w: submitting login: %v", crawler.ErrAuthentication, err)
	}

	a.transition(StateVerifyingLogin)
	if err := page.WaitForSelector(ctx, selectorHomeLandmark, verifyTimeout); err != nil {
		if errors.Is(err, browser.ErrWaitTimeout) {
			a.logger.Error("Login verification failed, landmark never appeared")
			a.transition(StateLoginFailed)
			return false, nil
		}
		return false, fmt.Errorf("%w: verifying login: %v", crawler.ErrAuthentication, err)
	}

	a.logger.Info("Login successful")
	a.transition(StateAuthenticated)
	return true, nil
}

func (a *Authenticator) hasAuthToken(ctx context.Context, page browser.Page) (bool, error) {
	cookies, err := page.Cookies(ctx)
	if err != nil {
		return false, err
	}
	for _, cookie := range cookies {
		if cookie.Name == authTokenCookie {
			return true, nil
		}
	}
	return false, nil
}

func (a *Authenticator) loginFormPresent(ctx context.Context, page browser.Page) (bool, error) {
	return a.selectorPresent(ctx, page, selectorLoginProbe)
}

func (a *Authenticator) selectorPresent(ctx context.Context, page browser.Page, selector string) (bool, error) {
	elements, err := page.QuerySelectorAll(ctx, selector)
	if err != nil {
		return false, err
	}
	return len(elements) > 0, nil
}
