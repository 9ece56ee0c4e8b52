/*
This file implements the dashboard endpoints: an account overview with device
statistics, a recent-activity feed, and a lightweight quick-stats probe for
the header widget. Transaction history lives on the client, so the server
side aggregates devices and account data only.
*/
package handler

import (
	"net/http"
	"sort"
	"strconv"
	"time"

	"roboveda/internal/app/devices"
	"roboveda/internal/pkg/auth/jwt"
	"roboveda/internal/pkg/errs"
	"roboveda/internal/pkg/resp"
)

const (
	defaultActivityLimit = 20
	maxActivityLimit     = 100
)

type deviceTypeCount struct {
	DeviceType string `json:"deviceType"`
	Count      int    `json:"count"`
}

type deviceStats struct {
	Total          int               `json:"total"`
	Active         int               `json:"active"`
	Idle           int               `json:"idle"`
	ByType         []deviceTypeCount `json:"byType"`
	AverageBattery float64           `json:"averageBattery"`
}

type accountStats struct {
	HasWallet   bool   `json:"hasWallet"`
	MemberSince string `json:"memberSince"`
}

type activityEntry struct {
	ActivityType string            `json:"activityType"`
	Description  string            `json:"description"`
	Timestamp    time.Time         `json:"timestamp"`
	Metadata     map[string]string `json:"metadata"`
}

func buildDeviceStats(list []devices.Device) deviceStats {
	stats := deviceStats{Total: len(list)}
	byType := make(map[string]int)
	var batterySum float64

	for _, d := range list {
		byType[d.Type]++
		batterySum += d.BatteryLevel
		if d.Status == "active" {
			stats.Active++
		} else {
			stats.Idle++
		}
	}

	types := make([]string, 0, len(byType))
	for t := range byType {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		stats.ByType = append(stats.ByType, deviceTypeCount{DeviceType: t, Count: byType[t]})
	}

	if stats.Total > 0 {
		stats.AverageBattery = batterySum / float64(stats.Total)
	}
	return stats
}

// HandleDashboardOverview aggregates device and account statistics for the
// signed-in user.
func HandleDashboardOverview(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)

		account, err := deps.Users.GetByID(r.Context(), identity.ID)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"devices": buildDeviceStats(deps.Devices.List()),
			"account": accountStats{
				HasWallet:   account.WalletAddress != "",
				MemberSince: account.CreatedAt.Format("2006-01-02"),
			},
		})
	}
}

// HandleDashboardActivity returns the most recent registry events, newest
// first. The limit query parameter caps the feed (default 20, max 100).
func HandleDashboardActivity(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultActivityLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
				return
			}
			limit = n
		}
		if limit > maxActivityLimit {
			limit = maxActivityLimit
		}

		list := deps.Devices.List()
		activities := make([]activityEntry, 0, len(list))
		for i := len(list) - 1; i >= 0 && len(activities) < limit; i-- {
			d := list[i]
			activities = append(activities, activityEntry{
				ActivityType: "device",
				Description:  d.Name + " (" + d.Type + ") registered",
				Timestamp:    d.RegisteredAt,
				Metadata: map[string]string{
					"deviceName": d.Name,
					"deviceType": d.Type,
					"status":     d.Status,
				},
			})
		}

		resp.RespondSuccess(w, r, map[string]any{
			"activities": activities,
			"count":      len(activities),
		})
	}
}

// HandleQuickStats serves the lightweight counters polled by the header.
func HandleQuickStats(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list := deps.Devices.List()
		active := 0
		for _, d := range list {
			if d.Status == "active" {
				active++
			}
		}

		resp.RespondSuccess(w, r, map[string]any{
			"devices":       len(list),
			"activeDevices": active,
		})
	}
}
