/*
Package handler provides the HTTP handlers and routing for the RoboVeda API.

This file implements the authentication endpoints: signup, login, logout, and
the session probe the web client calls on startup. Sessions ride an HTTP-only
cookie carrying a signed JWT.
*/
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"unicode"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"roboveda/internal/app/users"
	"roboveda/internal/pkg/auth/jwt"
	"roboveda/internal/pkg/errs"
	"roboveda/internal/pkg/logx"
	"roboveda/internal/pkg/req"
	"roboveda/internal/pkg/resp"
)

var (
	emailRegex    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	usernameRegex = regexp.MustCompile(`^[a-z0-9_]{3,20}$`)
)

// validPassword enforces the password policy: 8 to 72 bytes (the bcrypt
// limit) containing at least one upper-case letter, one lower-case letter,
// and one digit.
func validPassword(password string) bool {
	if utf8.RuneCountInString(password) < 8 || len(password) > 72 {
		return false
	}
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && lower && digit
}

type SignupInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}

// HandleSignup creates a new account, signs the caller in, and returns the
// new user. Validation failures are reported before any store access.
func HandleSignup(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input SignupInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if !emailRegex.MatchString(input.Email) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidEmail))
			return
		}
		if !validPassword(input.Password) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidPassword))
			return
		}
		if !usernameRegex.MatchString(input.Username) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidUsername))
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		prefs, _ := json.Marshal(defaultPreferences())
		account, err := deps.Users.Create(r.Context(), users.CreateParams{
			Email:        input.Email,
			Username:     input.Username,
			PasswordHash: string(hashedPassword),
			Preferences:  prefs,
		})
		if err != nil {
			if errors.Is(err, users.ErrDuplicate) {
				logx.Warn("signup conflict: account already exists", "email", input.Email)
				resp.RespondError(w, r, errs.NewError(errs.ErrUserAlreadyExists))
				return
			}
			logx.Error(err, "failed to create account")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		if !issueSession(w, r, deps, account) {
			return
		}
		resp.RespondSuccess(w, r, map[string]any{"user": renderUser(account)})
	}
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin verifies credentials and issues the session cookie. Unknown
// accounts and wrong passwords report the same error so the endpoint does
// not confirm which emails exist.
func HandleLogin(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input LoginInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		account, err := deps.Users.GetByEmail(r.Context(), input.Email)
		if err != nil {
			logx.Warn("login: account lookup failed", "email", input.Email)
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(input.Password)); err != nil {
			logx.Warn("login: password mismatch", "email", input.Email)
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
			return
		}

		if !issueSession(w, r, deps, account) {
			return
		}
		resp.RespondSuccess(w, r, map[string]any{"user": renderUser(account)})
	}
}

// HandleLogout clears the session cookie. Always succeeds, signed in or not.
func HandleLogout(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jwt.ClearSessionCookie(w, deps.SecureCookies())
		resp.RespondSuccess(w, r, nil)
	}
}

// HandleGetSession returns the current user for a valid session cookie. The
// account is re-read from the store so revoked or deleted accounts drop out
// on the next probe.
func HandleGetSession(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		account, err := deps.Users.GetByID(r.Context(), identity.ID)
		if err != nil {
			jwt.ClearSessionCookie(w, deps.SecureCookies())
			resp.RespondError(w, r, errs.NewError(errs.ErrSessionExpired))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"user": renderUser(account)})
	}
}

// issueSession generates and sets the session cookie for the account. On
// failure it writes the error response and returns false.
func issueSession(w http.ResponseWriter, r *http.Request, deps *AppDeps, account users.Account) bool {
	payload := &jwt.Payload{
		ID:       account.ID,
		Email:    account.Email,
		Username: account.Username,
	}

	token, err := jwt.GenerateToken(payload, deps.Config.JWTSecret, jwt.SessionExpiration)
	if err != nil {
		logx.Error(err, "failed to generate session token", "user_id", account.ID)
		resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
		return false
	}

	jwt.SetSessionCookie(w, token, deps.SecureCookies())
	return true
}
