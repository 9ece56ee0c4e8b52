/*
This file implements the blockchain endpoints: the supported-network catalog
the wallet UI offers for switching, and linking a wallet address to the
signed-in account. Signature verification is handled by the wallet provider
on the client; the API only enforces address shape and uniqueness.
*/
package handler

import (
	"errors"
	"net/http"
	"regexp"

	"roboveda/internal/app/users"
	"roboveda/internal/chain"
	"roboveda/internal/pkg/auth/jwt"
	"roboveda/internal/pkg/errs"
	"roboveda/internal/pkg/logx"
	"roboveda/internal/pkg/req"
	"roboveda/internal/pkg/resp"
)

var ethAddressRegex = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// HandleListChains returns the supported network catalog.
func HandleListChains(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp.RespondSuccess(w, r, map[string]any{"chains": chain.SupportedChains()})
	}
}

type LinkWalletInput struct {
	Address string `json:"address"`
}

// HandleLinkWallet stores a wallet address on the signed-in account. An
// address already linked to another account is rejected.
func HandleLinkWallet(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		var input LinkWalletInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if !ethAddressRegex.MatchString(input.Address) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidAddress))
			return
		}

		account, err := deps.Users.Update(r.Context(), identity.ID, users.UpdateParams{
			WalletAddress: &input.Address,
		})
		if err != nil {
			switch {
			case errors.Is(err, users.ErrNotFound):
				resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
			case errors.Is(err, users.ErrDuplicate):
				resp.RespondError(w, r, errs.NewError(errs.ErrWalletAlreadyLinked))
			default:
				logx.Error(err, "failed to link wallet", "user_id", identity.ID)
				resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			}
			return
		}

		logx.Info("Wallet linked.", "user_id", identity.ID, "address", input.Address)
		resp.RespondSuccess(w, r, map[string]any{"user": renderUser(account)})
	}
}
