package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roboveda/internal/pkg/errs"
)

func registerDevice(t *testing.T, client *http.Client, baseURL, name, deviceType string) {
	t.Helper()
	resp, _ := doJSON(t, client, http.MethodPost, baseURL+"/api/devices/", map[string]string{
		"name": name,
		"type": deviceType,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDashboardRequiresAuth(t *testing.T) {
	srv, client := newTestServer(t)

	for _, path := range []string{"/api/dashboard/overview", "/api/dashboard/activity", "/api/dashboard/quick-stats"} {
		resp, env := doJSON(t, client, http.MethodGet, srv.URL+path, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, errs.ErrUnauthorized, env.Code)
	}
}

func TestDashboardOverviewAggregatesDevices(t *testing.T) {
	srv, client := newTestServer(t)
	signup(t, client, srv.URL, "alice@example.com", "alice_1")

	registerDevice(t, client, srv.URL, "scout", "drone")
	registerDevice(t, client, srv.URL, "hauler", "rover")
	registerDevice(t, client, srv.URL, "wing", "drone")

	resp, env := doJSON(t, client, http.MethodGet, srv.URL+"/api/dashboard/overview", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var data struct {
		Devices deviceStats  `json:"devices"`
		Account accountStats `json:"account"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))

	assert.Equal(t, 3, data.Devices.Total)
	assert.Equal(t, 3, data.Devices.Idle)
	assert.Zero(t, data.Devices.Active)
	assert.InDelta(t, 100, data.Devices.AverageBattery, 0.001)
	require.Len(t, data.Devices.ByType, 2)
	assert.Equal(t, deviceTypeCount{DeviceType: "drone", Count: 2}, data.Devices.ByType[0])
	assert.Equal(t, deviceTypeCount{DeviceType: "rover", Count: 1}, data.Devices.ByType[1])

	assert.False(t, data.Account.HasWallet)
	assert.NotEmpty(t, data.Account.MemberSince)

	// Linking a wallet flips the account flag.
	resp, _ = doJSON(t, client, http.MethodPost, srv.URL+"/api/blockchain/link-wallet", map[string]string{
		"address": "0x52908400098527886e0f7030069857d2e4169ee7",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, env = doJSON(t, client, http.MethodGet, srv.URL+"/api/dashboard/overview", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.True(t, data.Account.HasWallet)
}

func TestDashboardActivityHonorsLimit(t *testing.T) {
	srv, client := newTestServer(t)
	signup(t, client, srv.URL, "alice@example.com", "alice_1")

	for i := 0; i < 3; i++ {
		registerDevice(t, client, srv.URL, fmt.Sprintf("unit-%d", i), "rover")
	}

	resp, env := doJSON(t, client, http.MethodGet, srv.URL+"/api/dashboard/activity?limit=2", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var data struct {
		Activities []activityEntry `json:"activities"`
		Count      int             `json:"count"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, 2, data.Count)
	require.Len(t, data.Activities, 2)
	for _, entry := range data.Activities {
		assert.Equal(t, "device", entry.ActivityType)
		assert.Equal(t, "rover", entry.Metadata["deviceType"])
	}

	resp, env = doJSON(t, client, http.MethodGet, srv.URL+"/api/dashboard/activity?limit=zero", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, errs.ErrInvalidParams, env.Code)
}

func TestQuickStatsCountsDevices(t *testing.T) {
	srv, client := newTestServer(t)
	signup(t, client, srv.URL, "alice@example.com", "alice_1")

	registerDevice(t, client, srv.URL, "scout", "drone")
	registerDevice(t, client, srv.URL, "hauler", "rover")

	resp, env := doJSON(t, client, http.MethodGet, srv.URL+"/api/dashboard/quick-stats", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var data struct {
		Devices       int `json:"devices"`
		ActiveDevices int `json:"activeDevices"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, 2, data.Devices)
	assert.Zero(t, data.ActiveDevices)
}
