package devices

import (
	"math/rand"
	"time"
)

// Telemetry is one simulated sensor snapshot for a device.
type Telemetry struct {
	Timestamp      time.Time       `json:"timestamp"`
	BatteryLevel   int             `json:"batteryLevel"`
	CPUTemp        float64         `json:"cpuTemp"`
	SignalStrength int             `json:"signalStrength"`
	Position       Position        `json:"position"`
	Velocity       Velocity        `json:"velocity"`
	Sensors        []SensorReading `json:"sensors"`
}

// Position is a GPS fix. Altitude is only reported for airborne devices.
type Position struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Altitude  *float64 `json:"altitude,omitempty"`
}

// Velocity is the current speed vector in m/s. Z is only reported for
// airborne devices.
type Velocity struct {
	X float64  `json:"x"`
	Y float64  `json:"y"`
	Z *float64 `json:"z,omitempty"`
}

// SensorReading is one auxiliary sensor value.
type SensorReading struct {
	SensorType string  `json:"sensorType"`
	Value      float64 `json:"value"`
	Unit       string  `json:"unit"`
}

// GenerateTelemetry produces a simulated snapshot for the given device type.
// Drones carry the altitude and vertical velocity fields; ground devices omit
// them.
func GenerateTelemetry(deviceType string) Telemetry {
	t := Telemetry{
		Timestamp:      time.Now().UTC(),
		BatteryLevel:   20 + rand.Intn(80),
		CPUTemp:        35 + rand.Float64()*40,
		SignalStrength: -80 + rand.Intn(50),
		Position: Position{
			Latitude:  -90 + rand.Float64()*180,
			Longitude: -180 + rand.Float64()*360,
		},
		Velocity: Velocity{
			X: -5 + rand.Float64()*10,
			Y: -5 + rand.Float64()*10,
		},
		Sensors: []SensorReading{
			{SensorType: "temperature", Value: 15 + rand.Float64()*20, Unit: "°C"},
			{SensorType: "humidity", Value: 30 + rand.Float64()*50, Unit: "%"},
		},
	}

	if deviceType == "drone" {
		altitude := rand.Float64() * 100
		vz := -2 + rand.Float64()*4
		t.Position.Altitude = &altitude
		t.Velocity.Z = &vz
	}

	return t
}
