package ltc2942

import (
	"github.com/cockroachdb/errors"
)

var (
	ErrZeroSenseResistor = errors.New("sense resistor must be non-zero")
	ErrZeroCapacity      = errors.New("battery capacity must be non-zero")
	ErrNotCalibrated     = errors.New("device not calibrated")
)

// Charge LSB is 85 µAh at RSENSE = 50 mΩ and M = 128:
//
//	qLSB = 85 µAh * (50 mΩ / RSENSE) * (M / 128)
const (
	chargeLSBMicroAh = 85
	refSenseMilliOhm = 50
	chargeNumerator  = chargeLSBMicroAh * refSenseMilliOhm
	maxPrescaler     = 7
	fullScaleCode    = 0xFFFF
)

// Calibration holds the prescaler and the integer charge coefficients
// derived from one (capacity, sense resistor) pair. The fields are only
// meaningful together; build them with Calibrate.
type Calibration struct {
	CapacityMAh   uint16
	SenseMilliOhm uint16

	// Prescaler is the index 0..7, M = 1 << Prescaler.
	Prescaler uint8

	// charge µAh = code * Numerator / Denominator
	Numerator   uint32
	Denominator uint32

	// Offset is the accumulator code of an empty battery when a full
	// battery reads 0xFFFF.
	Offset uint16
}

// Calibrate picks the smallest prescaler whose accumulator range holds the
// rated capacity in half of the counter (the accumulator powers up at
// mid-scale), then derives the charge coefficients for it. If even M = 128
// cannot hold that margin, M = 128 is used.
func Calibrate(capacityMAh, senseMilliOhm uint16) (Calibration, error) {
	if senseMilliOhm == 0 {
		return Calibration{}, errors.Wrapf(ErrZeroSenseResistor, "calibrate Q=%dmAh", capacityMAh)
	}
	if capacityMAh == 0 {
		return Calibration{}, errors.Wrapf(ErrZeroCapacity, "calibrate R=%dmΩ", senseMilliOhm)
	}

	i := selectPrescaler(capacityMAh, senseMilliOhm)
	c := Calibration{
		CapacityMAh:   capacityMAh,
		SenseMilliOhm: senseMilliOhm,
		Prescaler:     i,
		Numerator:     chargeNumerator,
		Denominator:   uint32(senseMilliOhm) << (maxPrescaler - i),
	}
	c.Offset = c.emptyCode()
	return c, nil
}

// M returns the prescaler divider.
func (c Calibration) M() uint16 { return 1 << c.Prescaler }

// Valid reports whether c came out of Calibrate.
func (c Calibration) Valid() bool { return c.Denominator != 0 && c.Numerator != 0 }

// FullScaleMicroAh is the charge represented by the whole 16-bit counter.
func (c Calibration) FullScaleMicroAh() uint32 { return c.ChargeMicroAh(fullScaleCode) }

// ChargeMicroAh converts an accumulator code to µAh.
func (c Calibration) ChargeMicroAh(code uint16) uint32 {
	if !c.Valid() {
		return 0
	}
	return uint32(uint64(code) * uint64(c.Numerator) / uint64(c.Denominator))
}

// RemainingMicroAh converts an accumulator code to the charge left above
// Offset, clamped at zero.
func (c Calibration) RemainingMicroAh(code uint16) uint32 {
	if code <= c.Offset {
		return 0
	}
	return c.ChargeMicroAh(code - c.Offset)
}

// MicroAhToMilliCoulomb converts µAh to mC (1 µAh = 3.6 mC).
func MicroAhToMilliCoulomb(uAh uint32) uint32 {
	return uint32(uint64(uAh) * 36 / 10)
}

func (c Calibration) emptyCode() uint16 {
	// ceil(Q * den / num) counts cover the rated capacity.
	q := uint64(c.CapacityMAh) * 1000 * uint64(c.Denominator)
	n := uint64(c.Numerator)
	counts := (q + n - 1) / n
	if counts >= fullScaleCode {
		return 0
	}
	return uint16(fullScaleCode - counts)
}

func selectPrescaler(capacityMAh, senseMilliOhm uint16) uint8 {
	need := 2 * uint64(capacityMAh) * 1000
	i := uint8(maxPrescaler)
	for i > 0 && representableMicroAh(i-1, senseMilliOhm) >= need {
		i--
	}
	return i
}

// representableMicroAh is the full-scale charge for prescaler index i.
func representableMicroAh(i uint8, senseMilliOhm uint16) uint64 {
	return uint64(fullScaleCode) * chargeNumerator << i / (uint64(senseMilliOhm) << maxPrescaler)
}
