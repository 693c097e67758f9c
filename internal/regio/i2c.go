// Package regio provides one-byte register transports for devices behind a
// two-wire bus. Each call is a single bus transaction; nothing is retried.
package regio

import (
	"github.com/cockroachdb/errors"
	"github.com/d2r2/go-logger"
	"tinygo.org/x/drivers"
)

var lg = logger.NewPackageLogger("regio", logger.InfoLevel)

// ErrTransport marks every error returned by the transports in this package.
var ErrTransport = errors.New("register transport failure")

func transportErr(err error, op string, addr uint16, reg byte) error {
	return errors.Mark(errors.Wrapf(err, "%s %#02x@%#02x", op, reg, addr), ErrTransport)
}

// I2C reads and writes single registers through a drivers.I2C bus.
type I2C struct {
	bus  drivers.I2C
	addr uint16

	// Fixed buffers to avoid per-call heap allocations.
	w [2]byte
	r [1]byte
}

func NewI2C(bus drivers.I2C, addr uint16) *I2C {
	return &I2C{bus: bus, addr: addr}
}

// ReadRegister selects reg and reads back exactly one byte with a repeated
// start.
func (t *I2C) ReadRegister(reg byte) (byte, error) {
	t.w[0] = reg
	if err := t.bus.Tx(t.addr, t.w[:1], t.r[:1]); err != nil {
		return 0, transportErr(err, "read", t.addr, reg)
	}
	lg.Debugf("read %#02x = %#02x", reg, t.r[0])
	return t.r[0], nil
}

func (t *I2C) WriteRegister(reg, val byte) error {
	t.w[0] = reg
	t.w[1] = val
	if err := t.bus.Tx(t.addr, t.w[:2], nil); err != nil {
		return transportErr(err, "write", t.addr, reg)
	}
	lg.Debugf("write %#02x = %#02x", reg, val)
	return nil
}
