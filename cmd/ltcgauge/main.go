package main

import (
	"flag"

	"github.com/d2r2/go-logger"
	"github.com/go-daq/smbus"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"ltcgauge/internal/ltc2942"
	"ltcgauge/internal/regio"
	"ltcgauge/internal/server"
)

var lg = logger.NewPackageLogger("main", logger.InfoLevel)

func main() {
	defer logger.FinalizeLogger()

	port := flag.Int("port", 3000, "HTTP listen port")
	transport := flag.String("transport", "periph", "register transport: periph or smbus")
	busName := flag.String("bus", "", "periph I2C bus name (empty for the first bus)")
	smbusNum := flag.Int("smbus", 1, "i2c-dev bus number for the smbus transport")
	capacity := flag.Uint("capacity", 2000, "rated battery capacity in mAh")
	rsense := flag.Uint("rsense", 50, "sense resistor in mΩ")
	alccName := flag.String("alcc", "disabled", "AL/CC pin: disabled, alert or charge-complete")
	reset := flag.Bool("reset", false, "zero the accumulated charge at start")
	debug := flag.Bool("debug", false, "debug logging for the driver packages")
	flag.Parse()

	if *debug {
		for _, pkg := range []string{"ltc2942", "regio", "server", "main"} {
			logger.ChangePackageLogLevel(pkg, logger.DebugLevel)
		}
	}

	lg.Info("Starting ltcgauge...")

	if *capacity == 0 || *capacity > 0xFFFF || *rsense == 0 || *rsense > 0xFFFF {
		lg.Fatalf("capacity and rsense must be in 1..65535 (got %d mAh, %d mΩ)", *capacity, *rsense)
	}
	alcc, ok := ltc2942.ParseALCC(*alccName)
	if !ok {
		lg.Fatalf("unknown -alcc value %q", *alccName)
	}

	var t ltc2942.RegisterTransport
	switch *transport {
	case "periph":
		if _, err := host.Init(); err != nil {
			lg.Fatal(err)
		}
		bus, err := i2creg.Open(*busName)
		if err != nil {
			lg.Fatalf("failed to open I2C: %v", err)
		}
		defer bus.Close()
		t = regio.NewPeriph(bus, ltc2942.Addr)
	case "smbus":
		conn, err := smbus.Open(*smbusNum, ltc2942.Addr)
		if err != nil {
			lg.Fatalf("failed to open SMBus %d: %v", *smbusNum, err)
		}
		defer conn.Close()
		t = regio.NewSMBus(conn, ltc2942.Addr)
	default:
		lg.Fatalf("unknown -transport value %q", *transport)
	}

	gauge := ltc2942.New(t)

	if ok, err := gauge.Ping(); err != nil {
		lg.Errorf("Failed to probe LTC2942: %v", err)
	} else if !ok {
		lg.Errorf("Device at 0x%X is not an LTC2942", ltc2942.Addr)
	}

	cfg := ltc2942.DefaultConfig()
	cfg.CapacityMAh = uint16(*capacity)
	cfg.SenseMilliOhm = uint16(*rsense)
	cfg.ALCC = alcc
	if err := gauge.Configure(cfg); err != nil {
		lg.Fatalf("Failed to configure LTC2942: %v", err)
	}

	if *reset {
		if err := gauge.ResetCharge(); err != nil {
			lg.Errorf("Failed to reset accumulated charge: %v", err)
		}
	}

	cal := gauge.Calibration()
	lg.Infof("Hardware Initialized: LTC2942 (Addr: 0x%X) Q=%dmAh R=%dmΩ M=%d", ltc2942.Addr, cal.CapacityMAh, cal.SenseMilliOhm, cal.M())

	if err := server.Run(*port, gauge); err != nil {
		lg.Fatalf("Server failed: %v", err)
	}
}
