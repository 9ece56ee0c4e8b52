/*
Package session owns the authenticated identity state: the current user, the
loading/error flags, and the login/signup/logout/refresh actions that talk to
the session API. The HTTP-only session cookie itself is carried by the
transport client's cookie jar; this package never reads or writes it.
*/
package session

import "time"

// Theme is the UI theme preference.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// Preferences holds per-account UI settings. A user always carries
// preferences once it exists; missing server payloads are defaulted.
type Preferences struct {
	Theme         Theme  `json:"theme"`
	Notifications bool   `json:"notifications"`
	Language      string `json:"language"`
	Newsletter    bool   `json:"newsletter"`
}

// DefaultPreferences returns the preferences applied when the backend omits them.
func DefaultPreferences() Preferences {
	return Preferences{
		Theme:         ThemeSystem,
		Notifications: true,
		Language:      "en",
		Newsletter:    false,
	}
}

// User is the authenticated account identity.
type User struct {
	ID            string       `json:"id"`
	Email         string       `json:"email"`
	Username      string       `json:"username"`
	WalletAddress string       `json:"walletAddress,omitempty"`
	Avatar        string       `json:"avatar,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
	Preferences   *Preferences `json:"preferences"`
}

// withDefaults returns a copy of u with preferences filled in when the
// backend omitted them.
func withDefaults(u *User) *User {
	if u == nil {
		return nil
	}
	out := *u
	if out.Preferences == nil {
		prefs := DefaultPreferences()
		out.Preferences = &prefs
	}
	return &out
}

// UserUpdate is a shallow partial update of the user record.
// Nil fields are left untouched.
type UserUpdate struct {
	Email         *string
	Username      *string
	WalletAddress *string
	Avatar        *string
}

// PreferencesUpdate is a shallow partial update of the preferences record.
type PreferencesUpdate struct {
	Theme         *Theme
	Notifications *bool
	Language      *string
	Newsletter    *bool
}
