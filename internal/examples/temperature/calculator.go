// Package temperature is the floating-point example: a thermistor
// conversion checked with tolerances, and a smoothing filter whose state
// is reset by the suite's setUp.
package temperature

import "math"

const (
	// SupplyVoltage is the divider reference in volts.
	SupplyVoltage = 3.0
	// SeriesResistance is the fixed divider resistor in ohms.
	SeriesResistance = 5000.0

	// R(t) = A * e^(B*t), R in ohms, t in degrees Celsius.
	coefficientA = 316589.698
	coefficientB = -0.1382009
)

// Calculate converts a sensor reading in millivolts to degrees Celsius.
// A zero reading is an open circuit and yields -Inf.
func Calculate(millivolts uint16) float64 {
	if millivolts == 0 {
		return math.Inf(-1)
	}
	sensorVoltage := float64(millivolts) / 1000
	resistance := (SupplyVoltage*SeriesResistance)/sensorVoltage - SeriesResistance
	return math.Log(resistance/coefficientA) / coefficientB
}
