package ltc2942

// Addr is the fixed 7-bit bus address of the LTC2942.
const Addr = 0x64

// Register sub-addresses (one byte each).
const (
	regStatus         = 0x00
	regControl        = 0x01
	regChargeMSB      = 0x02
	regChargeLSB      = 0x03
	regVoltageMSB     = 0x08
	regVoltageLSB     = 0x09
	regTemperatureMSB = 0x0C
	regTemperatureLSB = 0x0D
)

// Status register bits 7:6 identify the part.
const (
	deviceIDMask = 0xC0
	deviceID     = 0x00
)

// Mode selects the ADC conversion mode (control bits 7:6).
type Mode byte

const (
	ModeSleep             Mode = 0x00
	ModeManualTemperature Mode = 0x40
	ModeManualVoltage     Mode = 0x80
	ModeAutomatic         Mode = 0xC0
)

func (m Mode) String() string {
	switch m {
	case ModeAutomatic:
		return "automatic"
	case ModeManualVoltage:
		return "manual-voltage"
	case ModeManualTemperature:
		return "manual-temperature"
	default:
		return "sleep"
	}
}

// ALCC configures the AL/CC pin (control bits 2:1).
type ALCC byte

const (
	ALCCDisabled       ALCC = 0x00
	ALCCChargeComplete ALCC = 0x02
	ALCCAlert          ALCC = 0x04
)

func (a ALCC) String() string {
	switch a {
	case ALCCAlert:
		return "alert"
	case ALCCChargeComplete:
		return "charge-complete"
	default:
		return "disabled"
	}
}

// ParseALCC maps a pin behaviour name to its control bits.
func ParseALCC(s string) (ALCC, bool) {
	switch s {
	case "", "disabled":
		return ALCCDisabled, true
	case "alert":
		return ALCCAlert, true
	case "charge-complete":
		return ALCCChargeComplete, true
	}
	return ALCCDisabled, false
}

const (
	modeMask       = 0xC0
	prescalerMask  = 0x38
	prescalerShift = 3
	alccMask       = 0x06
	shutdownBit    = 0x01
)

// Control is the raw value of the control register.
type Control byte

// NewControl composes a control byte from its fields. prescaler is the
// index 0..7 (M = 1 << prescaler).
func NewControl(mode Mode, prescaler uint8, alcc ALCC) Control {
	return Control(byte(mode)&modeMask |
		(prescaler<<prescalerShift)&prescalerMask |
		byte(alcc)&alccMask)
}

func (c Control) Mode() Mode            { return Mode(c & modeMask) }
func (c Control) Prescaler() uint8      { return uint8(c&prescalerMask) >> prescalerShift }
func (c Control) ALCC() ALCC            { return ALCC(c & alccMask) }
func (c Control) Shutdown() bool        { return c&shutdownBit != 0 }
func (c Control) WithShutdown() Control { return c | shutdownBit }
