package handler

import (
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roboveda/internal/chain"
	"roboveda/internal/pkg/errs"
)

func newSessionClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar, Timeout: 5 * time.Second}
}

func TestListChainsCatalog(t *testing.T) {
	srv, client := newTestServer(t)

	resp, env := doJSON(t, client, http.MethodGet, srv.URL+"/api/blockchain/chains", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var data struct {
		Chains []chain.Chain `json:"chains"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.Chains)
	assert.Equal(t, int64(1), data.Chains[0].ID)
	assert.Equal(t, "Ethereum", data.Chains[0].Name)
}

func TestLinkWalletFlow(t *testing.T) {
	srv, client := newTestServer(t)
	signup(t, client, srv.URL, "alice@example.com", "alice_1")

	address := "0x52908400098527886e0f7030069857d2e4169ee7"
	resp, env := doJSON(t, client, http.MethodPost, srv.URL+"/api/blockchain/link-wallet", map[string]string{
		"address": address,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var data struct {
		User userView `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, address, data.User.WalletAddress)

	// A second account linking the same address (case differences included)
	// conflicts.
	other := newSessionClient(t)
	signup(t, other, srv.URL, "bob@example.com", "bob_1")

	resp, env = doJSON(t, other, http.MethodPost, srv.URL+"/api/blockchain/link-wallet", map[string]string{
		"address": "0x" + strings.ToUpper(address[2:]),
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, errs.ErrWalletAlreadyLinked, env.Code)
}

func TestLinkWalletRejectsMalformedAddress(t *testing.T) {
	srv, client := newTestServer(t)
	signup(t, client, srv.URL, "alice@example.com", "alice_1")

	for _, bad := range []string{
		"",
		"52908400098527886e0f7030069857d2e4169ee7",
		"0x529084",
		"0x52908400098527886E0F7030069857D2E4169ZZ7",
	} {
		resp, env := doJSON(t, client, http.MethodPost, srv.URL+"/api/blockchain/link-wallet", map[string]string{
			"address": bad,
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, errs.ErrInvalidAddress, env.Code)
	}
}

func TestLinkWalletRequiresAuth(t *testing.T) {
	srv, client := newTestServer(t)

	resp, env := doJSON(t, client, http.MethodPost, srv.URL+"/api/blockchain/link-wallet", map[string]string{
		"address": "0x52908400098527886e0f7030069857d2e4169ee7",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, errs.ErrUnauthorized, env.Code)
}
