// Package ltc2942 drives the LTC2942 battery gas gauge: coulomb counter,
// battery voltage and die temperature, all read as one-byte registers.
//
// Conversions are integer-only. Charge depends on the prescaler chosen by
// Calibrate; voltage and temperature use fixed full-scale constants.
//
// The driver does no locking. Callers sharing a bus must serialise whole
// operations, SetRawCharge in particular.
package ltc2942

import (
	"github.com/cockroachdb/errors"
	"github.com/d2r2/go-logger"
)

var lg = logger.NewPackageLogger("ltc2942", logger.InfoLevel)

var (
	ErrSequence          = errors.New("accumulator write sequence failed")
	ErrPrescalerMismatch = errors.New("control register prescaler does not match calibration")
)

// RegisterTransport performs one complete bus transaction per call against
// the gauge's address. Implementations do not retry.
type RegisterTransport interface {
	ReadRegister(reg byte) (byte, error)
	WriteRegister(reg, val byte) error
}

// Config is the user-facing configuration applied by Configure.
type Config struct {
	CapacityMAh   uint16
	SenseMilliOhm uint16
	Mode          Mode
	ALCC          ALCC
}

// DefaultConfig returns automatic conversion with the AL/CC pin disabled.
// Capacity and sense resistor must still be set.
func DefaultConfig() Config {
	return Config{Mode: ModeAutomatic, ALCC: ALCCDisabled}
}

// Device is one LTC2942 with its own calibration.
type Device struct {
	t   RegisterTransport
	cal Calibration
}

func New(t RegisterTransport) *Device {
	return &Device{t: t}
}

// Calibration returns the calibration in use.
func (d *Device) Calibration() Calibration { return d.cal }

// Ping reads the status register and checks the identification bits.
func (d *Device) Ping() (bool, error) {
	v, err := d.t.ReadRegister(regStatus)
	if err != nil {
		return false, err
	}
	return v&deviceIDMask == deviceID, nil
}

// Configure calibrates for cfg and writes mode, prescaler and AL/CC to the
// control register. The new calibration is kept only if the write succeeds.
func (d *Device) Configure(cfg Config) error {
	cal, err := Calibrate(cfg.CapacityMAh, cfg.SenseMilliOhm)
	if err != nil {
		return err
	}
	ctrl := NewControl(cfg.Mode, cal.Prescaler, cfg.ALCC)
	if err := d.t.WriteRegister(regControl, byte(ctrl)); err != nil {
		return errors.Wrap(err, "write control")
	}
	d.cal = cal
	lg.Debugf("configured Q=%dmAh R=%dmΩ M=%d num=%d den=%d offset=%#04x control=%#02x",
		cal.CapacityMAh, cal.SenseMilliOhm, cal.M(), cal.Numerator, cal.Denominator, cal.Offset, byte(ctrl))
	return nil
}

// ReadControl returns the control register.
func (d *Device) ReadControl() (Control, error) {
	v, err := d.t.ReadRegister(regControl)
	return Control(v), err
}

// VerifyPrescaler checks that the device still runs the prescaler the
// calibration was derived for.
func (d *Device) VerifyPrescaler() error {
	if !d.cal.Valid() {
		return ErrNotCalibrated
	}
	ctrl, err := d.ReadControl()
	if err != nil {
		return err
	}
	if got := ctrl.Prescaler(); got != d.cal.Prescaler {
		return errors.Wrapf(ErrPrescalerMismatch, "device M=%d, calibration M=%d", 1<<got, d.cal.M())
	}
	return nil
}

// Voltage returns the battery voltage in mV, or InvalidVoltage on error.
func (d *Device) Voltage() (uint16, error) {
	code, err := d.readCode(regVoltageMSB, regVoltageLSB)
	if err != nil {
		return InvalidVoltage, err
	}
	return VoltageMilliVolts(code), nil
}

// Temperature returns the die temperature in hundredths of °C, or
// InvalidTemperature on error.
func (d *Device) Temperature() (int16, error) {
	code, err := d.readCode(regTemperatureMSB, regTemperatureLSB)
	if err != nil {
		return InvalidTemperature, err
	}
	return TemperatureCentiCelsius(code), nil
}

// RawCharge returns the accumulator code. On error the code is InvalidCode,
// which is also a legal reading; check the error.
func (d *Device) RawCharge() (uint16, error) {
	code, err := d.readCode(regChargeMSB, regChargeLSB)
	if err != nil {
		return InvalidCode, err
	}
	return code, nil
}

// AccumulatedCharge returns the accumulator in µAh, or InvalidCharge on error.
func (d *Device) AccumulatedCharge() (uint32, error) {
	code, err := d.calibratedCharge()
	if err != nil {
		return InvalidCharge, err
	}
	return d.cal.ChargeMicroAh(code), nil
}

// RemainingCapacity returns the charge above the empty-battery code in µAh,
// or InvalidCharge on error.
func (d *Device) RemainingCapacity() (uint32, error) {
	code, err := d.calibratedCharge()
	if err != nil {
		return InvalidCharge, err
	}
	return d.cal.RemainingMicroAh(code), nil
}

// Charge returns the accumulator in mC, or InvalidCharge on error.
func (d *Device) Charge() (uint32, error) {
	uAh, err := d.AccumulatedCharge()
	if err != nil {
		return InvalidCharge, err
	}
	return MicroAhToMilliCoulomb(uAh), nil
}

// ResetCharge zeroes the accumulator.
func (d *Device) ResetCharge() error {
	return d.SetRawCharge(0)
}

// SetRawCharge loads v into the accumulator. The analog section is shut
// down for the write and the saved control byte is written back afterwards,
// even when an earlier step failed. On error the device state is unknown.
func (d *Device) SetRawCharge(v uint16) error {
	saved, err := d.t.ReadRegister(regControl)
	if err != nil {
		return errors.Mark(errors.Wrap(err, "save control"), ErrSequence)
	}

	var errs error
	if err := d.t.WriteRegister(regControl, byte(Control(saved).WithShutdown())); err != nil {
		errs = errors.CombineErrors(errs, errors.Wrap(err, "shutdown"))
	}
	if err := d.t.WriteRegister(regChargeMSB, byte(v>>8)); err != nil {
		errs = errors.CombineErrors(errs, errors.Wrap(err, "charge msb"))
	}
	if err := d.t.WriteRegister(regChargeLSB, byte(v&0xFF)); err != nil {
		errs = errors.CombineErrors(errs, errors.Wrap(err, "charge lsb"))
	}
	if err := d.t.WriteRegister(regControl, saved); err != nil {
		lg.Errorf("control restore to %#02x failed: %v", saved, err)
		errs = errors.CombineErrors(errs, errors.Wrap(err, "restore control"))
	}

	if errs != nil {
		return errors.Mark(errors.Wrapf(errs, "set charge %#04x", v), ErrSequence)
	}
	lg.Debugf("accumulator set to %#04x", v)
	return nil
}

func (d *Device) calibratedCharge() (uint16, error) {
	if !d.cal.Valid() {
		return 0, ErrNotCalibrated
	}
	return d.readCode(regChargeMSB, regChargeLSB)
}

// readCode reads a 16-bit field as two one-byte transactions, MSB first.
func (d *Device) readCode(msb, lsb byte) (uint16, error) {
	hi, err := d.t.ReadRegister(msb)
	if err != nil {
		return 0, err
	}
	lo, err := d.t.ReadRegister(lsb)
	if err != nil {
		return 0, err
	}
	return uint16(hi)<<8 | uint16(lo), nil
}
