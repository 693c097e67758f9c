package ltc2942

import "math"

// Full-scale constants. The datasheet formulas divide by 65535; the
// conversions below shift by 16 (divide by 65536). The difference is under
// one LSB of either channel (78 mV, 3 °C).
const (
	fullScaleMilliVolts  = 6000
	fullScaleKelvin      = 600
	zeroCelsiusCentiKelv = 27315
)

// Failure sentinels. None of them can be produced from a real register code.
const (
	InvalidVoltage     uint16 = math.MaxUint16
	InvalidTemperature int16  = math.MaxInt16
	InvalidCharge      uint32 = math.MaxUint32
	InvalidCode        uint16 = math.MaxUint16
)

// VoltageMilliVolts converts a voltage ADC code to mV.
func VoltageMilliVolts(code uint16) uint16 {
	return uint16(uint32(code) * fullScaleMilliVolts >> 16)
}

// TemperatureCentiCelsius converts a temperature ADC code to hundredths of °C.
// Hundredths keep 600 K inside an int16.
func TemperatureCentiCelsius(code uint16) int16 {
	cK := uint32(code) * fullScaleKelvin * 100 >> 16
	return int16(int32(cK) - zeroCelsiusCentiKelv)
}
