package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"roboveda/internal/app/users"
	"roboveda/internal/pkg/auth/jwt"
	"roboveda/internal/pkg/errs"
	"roboveda/internal/pkg/logx"
	"roboveda/internal/pkg/randx"
	"roboveda/internal/pkg/req"
	"roboveda/internal/pkg/resp"
)

type UpdateProfileInput struct {
	Username *string `json:"username"`
	Avatar   *string `json:"avatar"`
}

// HandleUpdateProfile applies a partial profile update to the signed-in
// account.
func HandleUpdateProfile(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		var input UpdateProfileInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.Username != nil && !usernameRegex.MatchString(*input.Username) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidUsername))
			return
		}

		account, err := deps.Users.Update(r.Context(), identity.ID, users.UpdateParams{
			Username:  input.Username,
			AvatarURL: input.Avatar,
		})
		if err != nil {
			switch {
			case errors.Is(err, users.ErrNotFound):
				resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
			case errors.Is(err, users.ErrDuplicate):
				resp.RespondError(w, r, errs.NewError(errs.ErrUserAlreadyExists))
			default:
				logx.Error(err, "failed to update profile", "user_id", identity.ID)
				resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			}
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"user": renderUser(account)})
	}
}

type UpdatePreferencesInput struct {
	Theme         *string `json:"theme"`
	Notifications *bool   `json:"notifications"`
	Language      *string `json:"language"`
	Newsletter    *bool   `json:"newsletter"`
}

// HandleUpdatePreferences shallow-merges the supplied preference fields into
// the stored preferences. Omitted fields keep their current values.
func HandleUpdatePreferences(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		var input UpdatePreferencesInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.Theme != nil {
			switch *input.Theme {
			case "light", "dark", "system":
			default:
				resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
				return
			}
		}

		account, err := deps.Users.GetByID(r.Context(), identity.ID)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
			return
		}

		prefs := defaultPreferences()
		if len(account.Preferences) > 0 {
			_ = json.Unmarshal(account.Preferences, &prefs)
		}
		if input.Theme != nil {
			prefs.Theme = *input.Theme
		}
		if input.Notifications != nil {
			prefs.Notifications = *input.Notifications
		}
		if input.Language != nil {
			prefs.Language = *input.Language
		}
		if input.Newsletter != nil {
			prefs.Newsletter = *input.Newsletter
		}

		merged, _ := json.Marshal(prefs)
		account, err = deps.Users.Update(r.Context(), identity.ID, users.UpdateParams{
			Preferences: merged,
		})
		if err != nil {
			logx.Error(err, "failed to update preferences", "user_id", identity.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"user": renderUser(account)})
	}
}

// Avatar upload limits. Presigned URLs expire quickly since the client
// requests one immediately before uploading.
const (
	maxAvatarSize     = 5 << 20
	presignExpiration = 10 * time.Minute
)

var allowedAvatarTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

type PresignAvatarInput struct {
	MimeType string `json:"mimeType"`
	FileSize int64  `json:"fileSize"`
}

// HandlePresignAvatar hands out a presigned PUT URL for an avatar upload.
// The object key is server-generated so clients cannot overwrite each
// other's avatars.
func HandlePresignAvatar(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		if deps.Avatars == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, "avatar storage is not configured"))
			return
		}

		var input PresignAvatarInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		ext, ok := allowedAvatarTypes[input.MimeType]
		if !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}
		if input.FileSize <= 0 || input.FileSize > maxAvatarSize {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		token, err := randx.HexToken(8)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}
		key := fmt.Sprintf("avatars/%s/%s.%s", identity.ID, token, ext)

		url, err := deps.Avatars.PresignUpload(r.Context(), key, input.MimeType, input.FileSize, presignExpiration)
		if err != nil {
			logx.Error(err, "failed to presign avatar upload", "user_id", identity.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"uploadUrl": url,
			"key":       key,
			"expiresIn": int(presignExpiration.Seconds()),
		})
	}
}

// HandleAvatarDownloadURL hands out a presigned GET URL for the caller's
// current avatar. The bucket is private, so rendering an avatar always goes
// through a short-lived signed URL. An account without an avatar gets an
// empty downloadUrl.
func HandleAvatarDownloadURL(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		if deps.Avatars == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, "avatar storage is not configured"))
			return
		}

		account, err := deps.Users.GetByID(r.Context(), identity.ID)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
			return
		}

		if account.AvatarURL == "" {
			resp.RespondSuccess(w, r, map[string]any{"downloadUrl": "", "expiresIn": 0})
			return
		}

		url, err := deps.Avatars.PresignDownload(r.Context(), account.AvatarURL, presignExpiration)
		if err != nil {
			logx.Error(err, "failed to presign avatar download", "user_id", identity.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"downloadUrl": url,
			"expiresIn":   int(presignExpiration.Seconds()),
		})
	}
}

// HandleRemoveAvatar deletes the caller's avatar object and clears the field.
// The object delete is best-effort; the profile is cleared either way so a
// storage hiccup cannot leave the account pointing at a removed image.
func HandleRemoveAvatar(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		account, err := deps.Users.GetByID(r.Context(), identity.ID)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
			return
		}

		if account.AvatarURL != "" && deps.Avatars != nil {
			if err := deps.Avatars.Delete(r.Context(), account.AvatarURL); err != nil {
				logx.Warn("failed to delete avatar object", "user_id", identity.ID, "key", account.AvatarURL)
			}
		}

		empty := ""
		account, err = deps.Users.Update(r.Context(), identity.ID, users.UpdateParams{AvatarURL: &empty})
		if err != nil {
			logx.Error(err, "failed to clear avatar", "user_id", identity.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"user": renderUser(account)})
	}
}
