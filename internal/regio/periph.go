package regio

import (
	"periph.io/x/conn/v3/i2c"
	"tinygo.org/x/drivers"
)

// PeriphBus adapts a periph.io bus to the drivers.I2C Tx shape.
type PeriphBus struct {
	Bus i2c.Bus
}

var _ drivers.I2C = PeriphBus{}

func (b PeriphBus) Tx(addr uint16, w, r []byte) error {
	return b.Bus.Tx(addr, w, r)
}

// NewPeriph returns a register transport for addr on a periph.io bus.
func NewPeriph(bus i2c.Bus, addr uint16) *I2C {
	return NewI2C(PeriphBus{Bus: bus}, addr)
}
