package ltc2942

import "github.com/cockroachdb/errors"

// Snapshot collects one reading of every channel. Fields whose read failed
// hold their Invalid* sentinel; Err combines the failures.
type Snapshot struct {
	RawCharge         uint16
	ChargeMicroAh     uint32
	ChargeMilliC      uint32
	RemainingMicroAh  uint32
	VoltageMilliV     uint16
	TemperatureCentiC int16
	Prescaler         uint8
	Err               error
}

func (d *Device) Snapshot() Snapshot {
	var s Snapshot
	d.SnapshotInto(&s)
	return s
}

func (d *Device) SnapshotInto(out *Snapshot) {
	s := Snapshot{
		RawCharge:        InvalidCode,
		ChargeMicroAh:    InvalidCharge,
		ChargeMilliC:     InvalidCharge,
		RemainingMicroAh: InvalidCharge,
		Prescaler:        d.cal.Prescaler,
	}

	// One accumulator read feeds every charge field.
	if code, err := d.RawCharge(); err != nil {
		s.Err = errors.CombineErrors(s.Err, errors.Wrap(err, "charge"))
	} else {
		s.RawCharge = code
		if d.cal.Valid() {
			s.ChargeMicroAh = d.cal.ChargeMicroAh(code)
			s.ChargeMilliC = MicroAhToMilliCoulomb(s.ChargeMicroAh)
			s.RemainingMicroAh = d.cal.RemainingMicroAh(code)
		} else {
			s.Err = errors.CombineErrors(s.Err, ErrNotCalibrated)
		}
	}

	v, err := d.Voltage()
	s.VoltageMilliV = v
	if err != nil {
		s.Err = errors.CombineErrors(s.Err, errors.Wrap(err, "voltage"))
	}

	t, err := d.Temperature()
	s.TemperatureCentiC = t
	if err != nil {
		s.Err = errors.CombineErrors(s.Err, errors.Wrap(err, "temperature"))
	}

	*out = s
}
