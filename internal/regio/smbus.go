package regio

import (
	"github.com/go-daq/smbus"
)

// byteConn is the part of *smbus.Conn used here.
type byteConn interface {
	ReadReg(addr, reg uint8) (uint8, error)
	WriteReg(addr, reg, v uint8) error
}

// SMBus reads and writes single registers with SMBus byte-data transfers
// on a Linux i2c-dev connection.
type SMBus struct {
	conn byteConn
	addr uint8
}

func NewSMBus(conn *smbus.Conn, addr uint8) *SMBus {
	return &SMBus{conn: conn, addr: addr}
}

func (t *SMBus) ReadRegister(reg byte) (byte, error) {
	v, err := t.conn.ReadReg(t.addr, reg)
	if err != nil {
		return 0, transportErr(err, "read", uint16(t.addr), reg)
	}
	return v, nil
}

func (t *SMBus) WriteRegister(reg, val byte) error {
	if err := t.conn.WriteReg(t.addr, reg, val); err != nil {
		return transportErr(err, "write", uint16(t.addr), reg)
	}
	return nil
}
