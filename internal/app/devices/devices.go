/*
Package devices manages the robotics device registry and command execution.

Hardware integration is out of scope for the API tier: commands are validated
and acknowledged with execution estimates, and telemetry is simulated, so the
dashboard works end to end without physical devices attached.
*/
package devices

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"roboveda/internal/pkg/errs"
	"roboveda/internal/pkg/randx"
)

// validCommands maps each device type to its accepted command set.
var validCommands = map[string][]string{
	"drone": {"takeoff", "land", "hover", "move", "rotate", "return_home", "emergency_stop"},
	"robot": {"move_forward", "move_backward", "turn_left", "turn_right", "stop", "grab", "release"},
	"rover": {"drive", "stop", "turn", "scan", "deploy_sensor", "retract_sensor"},
}

// Device is one registered robotics device.
type Device struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Type         string    `json:"type"`
	Status       string    `json:"status"`
	BatteryLevel float64   `json:"batteryLevel"`
	RegisteredAt time.Time `json:"registeredAt"`
	LastCommand  string    `json:"lastCommand,omitempty"`
}

// CommandResult acknowledges a validated command.
type CommandResult struct {
	CommandID             string    `json:"commandId"`
	Status                string    `json:"status"`
	ExecutedAt            time.Time `json:"executedAt"`
	EstimatedDurationMS   int64     `json:"estimatedDurationMs"`
	EstimatedBatteryDrain float64   `json:"estimatedBatteryDrain"`
}

// CommandParams carries the optional tuning values of a command. Zero values
// fall back to safe defaults during validation.
type CommandParams struct {
	Speed      float64 `json:"speed,omitempty"`
	Direction  string  `json:"direction,omitempty"`
	DurationMS int64   `json:"duration_ms,omitempty"`
	Degrees    float64 `json:"degrees,omitempty"`
	Altitude   float64 `json:"altitude,omitempty"`
}

// ValidateDeviceType reports whether the type names a supported device class.
func ValidateDeviceType(deviceType string) bool {
	_, ok := validCommands[deviceType]
	return ok
}

// ValidCommandsFor returns the accepted commands for a device type, sorted.
func ValidCommandsFor(deviceType string) []string {
	cmds := append([]string(nil), validCommands[deviceType]...)
	sort.Strings(cmds)
	return cmds
}

// ValidateCommand checks that command is legal for the device type.
func ValidateCommand(deviceType, command string) *errs.CustomError {
	cmds, ok := validCommands[deviceType]
	if !ok {
		return errs.NewError(errs.ErrDeviceTypeInvalid, deviceType)
	}
	for _, c := range cmds {
		if c == command {
			return nil
		}
	}
	return errs.NewError(errs.ErrCommandInvalid, command, deviceType)
}

// Registry is the in-memory device inventory.
type Registry struct {
	mu      sync.RWMutex
	devices map[string]*Device
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{devices: make(map[string]*Device)}
}

// Register adds a device and returns its stored form. The type must be one
// of the supported device classes.
func (r *Registry) Register(name, deviceType string) (Device, error) {
	if !ValidateDeviceType(deviceType) {
		return Device{}, errs.NewError(errs.ErrDeviceTypeInvalid, deviceType)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = fmt.Sprintf("%s-unit", deviceType)
	}

	d := &Device{
		ID:           randx.DeviceID(),
		Name:         name,
		Type:         deviceType,
		Status:       "idle",
		BatteryLevel: 100,
		RegisteredAt: time.Now().UTC(),
	}

	r.mu.Lock()
	r.devices[d.ID] = d
	r.mu.Unlock()
	return *d, nil
}

// Get returns the device with the given id.
func (r *Registry) Get(id string) (Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.devices[id]
	if !ok {
		return Device{}, errs.NewError(errs.ErrDeviceNotFound)
	}
	return *d, nil
}

// List returns all devices ordered by registration time.
func (r *Registry) List() []Device {
	r.mu.RLock()
	out := make([]Device, 0, len(r.devices))
	for _, d := range r.devices {
		out = append(out, *d)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].RegisteredAt.Before(out[j].RegisteredAt)
	})
	return out
}

// Remove deletes a device from the registry.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.devices[id]; !ok {
		return errs.NewError(errs.ErrDeviceNotFound)
	}
	delete(r.devices, id)
	return nil
}

// ExecuteCommand validates the command against the device's type and records
// it, returning an acknowledgement with execution estimates. Execution is
// simulated; the estimate math matches the telemetry model.
func (r *Registry) ExecuteCommand(ctx context.Context, id, command string, params CommandParams) (CommandResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.devices[id]
	if !ok {
		return CommandResult{}, errs.NewError(errs.ErrDeviceNotFound)
	}
	if customErr := ValidateCommand(d.Type, command); customErr != nil {
		return CommandResult{}, customErr
	}

	normalized, err := normalizeParams(command, params)
	if err != nil {
		return CommandResult{}, err
	}

	drain := estimateBatteryDrain(command, normalized)
	d.LastCommand = command
	d.Status = "active"
	d.BatteryLevel -= drain
	if d.BatteryLevel < 0 {
		d.BatteryLevel = 0
	}

	return CommandResult{
		CommandID:             randx.MessageID(),
		Status:                "accepted",
		ExecutedAt:            time.Now().UTC(),
		EstimatedDurationMS:   normalized.DurationMS,
		EstimatedBatteryDrain: drain,
	}, nil
}

// normalizeParams applies per-command defaults and bounds checks.
func normalizeParams(command string, params CommandParams) (CommandParams, error) {
	switch command {
	case "move", "drive":
		if params.Speed == 0 {
			params.Speed = 0.5
		}
		if params.Speed < 0 || params.Speed > 1 {
			return CommandParams{}, errs.NewError(errs.ErrInvalidParams)
		}
		if params.Direction == "" {
			params.Direction = "forward"
		}
		if params.DurationMS == 0 {
			params.DurationMS = 1000
		}
	case "rotate", "turn", "turn_left", "turn_right":
		if params.Degrees == 0 {
			params.Degrees = 90
		}
		if params.Speed == 0 {
			params.Speed = 0.3
		}
	case "hover":
		if params.Altitude == 0 {
			params.Altitude = 1.0
		}
	}
	return params, nil
}

// estimateBatteryDrain models the cost of a command in battery percent.
func estimateBatteryDrain(command string, params CommandParams) float64 {
	switch command {
	case "move", "drive":
		return 0.1 * params.Speed * (float64(params.DurationMS) / 1000.0)
	case "rotate", "turn", "turn_left", "turn_right":
		deg := params.Degrees
		if deg < 0 {
			deg = -deg
		}
		return 0.05 * (deg / 360.0) * params.Speed
	case "hover":
		return 0.2 * params.Altitude
	default:
		return 0.01
	}
}
