package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"roboveda/internal/app/devices"
	"roboveda/internal/pkg/auth/jwt"
	"roboveda/internal/pkg/errs"
	"roboveda/internal/pkg/logx"
	"roboveda/internal/pkg/req"
	"roboveda/internal/pkg/resp"
)

// telemetryInterval paces the live feed. One sample per second matches the
// dashboard's refresh rate.
const telemetryInterval = time.Second

type RegisterDeviceInput struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// HandleRegisterDevice adds a device to the registry.
func HandleRegisterDevice(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input RegisterDeviceInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		device, err := deps.Devices.Register(input.Name, input.Type)
		if err != nil {
			respondDeviceError(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"device":        device,
			"validCommands": devices.ValidCommandsFor(device.Type),
		})
	}
}

// HandleListDevices returns all registered devices.
func HandleListDevices(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp.RespondSuccess(w, r, map[string]any{"devices": deps.Devices.List()})
	}
}

// HandleGetDevice returns one device with its accepted command set.
func HandleGetDevice(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		device, err := deps.Devices.Get(chi.URLParam(r, "id"))
		if err != nil {
			respondDeviceError(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"device":        device,
			"validCommands": devices.ValidCommandsFor(device.Type),
		})
	}
}

// HandleRemoveDevice deletes a device from the registry.
func HandleRemoveDevice(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Devices.Remove(chi.URLParam(r, "id")); err != nil {
			respondDeviceError(w, r, err)
			return
		}
		resp.RespondSuccess(w, r, nil)
	}
}

type CommandInput struct {
	Command string                `json:"command"`
	Params  devices.CommandParams `json:"params"`
}

// HandleDeviceCommand validates and executes a command against a device.
func HandleDeviceCommand(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input CommandInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		result, err := deps.Devices.ExecuteCommand(r.Context(), chi.URLParam(r, "id"), input.Command, input.Params)
		if err != nil {
			respondDeviceError(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"result": result})
	}
}

// HandleDeviceTelemetry returns a single telemetry snapshot.
func HandleDeviceTelemetry(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		device, err := deps.Devices.Get(chi.URLParam(r, "id"))
		if err != nil {
			respondDeviceError(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"deviceId":  device.ID,
			"telemetry": devices.GenerateTelemetry(device.Type),
		})
	}
}

// HandleTelemetryFeed upgrades to a WebSocket and pushes telemetry samples
// for one device until the client disconnects. The session cookie must be
// valid before the upgrade; afterwards the feed is write-only.
func HandleTelemetryFeed(upgrader websocket.Upgrader, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if jwt.GetPayloadFromContext(r) == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		device, err := deps.Devices.Get(chi.URLParam(r, "id"))
		if err != nil {
			respondDeviceError(w, r, err)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "telemetry feed upgrade failed", "device_id", device.ID)
			return
		}
		defer conn.Close()

		// Drain the read side so close frames and pings are processed.
		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		ticker := time.NewTicker(telemetryInterval)
		defer ticker.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case <-ticker.C:
				sample := devices.GenerateTelemetry(device.Type)
				if err := conn.WriteJSON(sample); err != nil {
					return
				}
			}
		}
	}
}

// respondDeviceError forwards registry errors, which are already CustomError
// values with their HTTP status set.
func respondDeviceError(w http.ResponseWriter, r *http.Request, err error) {
	if customErr, ok := err.(*errs.CustomError); ok {
		resp.RespondError(w, r, customErr)
		return
	}
	resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
}
