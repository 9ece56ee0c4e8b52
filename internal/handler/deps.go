package handler

import (
	"encoding/json"
	"time"

	"roboveda/internal/app/ai"
	"roboveda/internal/app/devices"
	"roboveda/internal/app/storage"
	"roboveda/internal/app/users"
	"roboveda/internal/configs"
)

// AppDeps carries the shared services every handler constructor receives.
type AppDeps struct {
	Config  *configs.AppConfig
	Users   users.Store
	Devices *devices.Registry
	AI      ai.Engine

	// Avatars is nil when S3 is not configured; the presign endpoint then
	// reports the feature unavailable.
	Avatars storage.AvatarStorage

	// LimitedMode is set when no database is configured and accounts live
	// in memory only.
	LimitedMode bool
}

// SecureCookies reports whether session cookies should carry the Secure flag.
func (d *AppDeps) SecureCookies() bool {
	return d.Config.Environment != "development"
}

// preferencesView is the preferences shape returned to clients. Missing or
// partial stored preferences are filled with these defaults.
type preferencesView struct {
	Theme         string `json:"theme"`
	Notifications bool   `json:"notifications"`
	Language      string `json:"language"`
	Newsletter    bool   `json:"newsletter"`
}

func defaultPreferences() preferencesView {
	return preferencesView{
		Theme:         "system",
		Notifications: true,
		Language:      "en",
		Newsletter:    false,
	}
}

// userView is the user shape embedded in auth and profile responses.
type userView struct {
	ID            string          `json:"id"`
	Email         string          `json:"email"`
	Username      string          `json:"username"`
	WalletAddress string          `json:"walletAddress,omitempty"`
	Avatar        string          `json:"avatar,omitempty"`
	CreatedAt     string          `json:"createdAt"`
	UpdatedAt     string          `json:"updatedAt"`
	Preferences   preferencesView `json:"preferences"`
}

// renderUser converts a stored account into its response form.
func renderUser(account users.Account) userView {
	prefs := defaultPreferences()
	if len(account.Preferences) > 0 {
		// Invalid stored JSON falls back to defaults rather than failing
		// the whole response.
		_ = json.Unmarshal(account.Preferences, &prefs)
	}

	return userView{
		ID:            account.ID,
		Email:         account.Email,
		Username:      account.Username,
		WalletAddress: account.WalletAddress,
		Avatar:        account.AvatarURL,
		CreatedAt:     account.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     account.UpdatedAt.Format(time.RFC3339),
		Preferences:   prefs,
	}
}
