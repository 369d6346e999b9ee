package cmd

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/sarchlab/sdramctrl/mem/sdram"
	"github.com/sarchlab/sdramctrl/sim"
)

const envPrefix = "SDRAMSIM_"

// loadEnv reads .env from the working directory, if present. Variables that
// are already set win.
func loadEnv() {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("ignoring .env: %v", err)
	}
}

func envString(name, def string) string {
	if v, ok := os.LookupEnv(envPrefix + name); ok {
		return v
	}

	return def
}

func envInt(name string, def int) int {
	v, ok := os.LookupEnv(envPrefix + name)
	if !ok {
		return def
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("ignoring %s%s=%q: %v", envPrefix, name, v, err)
		return def
	}

	return n
}

func envFloat(name string, def float64) float64 {
	v, ok := os.LookupEnv(envPrefix + name)
	if !ok {
		return def
	}

	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("ignoring %s%s=%q: %v", envPrefix, name, v, err)
		return def
	}

	return f
}

func envBool(name string, def bool) bool {
	v, ok := os.LookupEnv(envPrefix + name)
	if !ok {
		return def
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("ignoring %s%s=%q: %v", envPrefix, name, v, err)
		return def
	}

	return b
}

// specOptions select the controller configuration. Zero values keep what
// the datasheet gives.
type specOptions struct {
	freqMHz         float64
	casLatency      int
	burstLength     int
	powerUp         int
	refreshInterval int
}

func (o *specOptions) register(flags interface {
	Float64Var(p *float64, name string, value float64, usage string)
	IntVar(p *int, name string, value int, usage string)
}) {
	flags.Float64Var(&o.freqMHz, "freq-mhz",
		envFloat("FREQ_MHZ", 100), "controller clock in MHz")
	flags.IntVar(&o.casLatency, "cas-latency",
		envInt("CAS_LATENCY", 3), "CAS latency, 2 or 3")
	flags.IntVar(&o.burstLength, "burst-length",
		envInt("BURST_LENGTH", 2), "beats per word, 1 or 2")
	flags.IntVar(&o.powerUp, "power-up",
		envInt("POWER_UP", 0), "power-up wait in cycles, 0 for the datasheet value")
	flags.IntVar(&o.refreshInterval, "refresh-interval",
		envInt("REFRESH_INTERVAL", 0),
		"refresh interval in cycles, 0 for the datasheet value")
}

func (o specOptions) spec() (sdram.Spec, error) {
	d := sdram.MT48LC16M16A2()
	d.CASLatency = o.casLatency
	d.BurstLength = o.burstLength

	spec, err := sdram.FromDatasheet(d, sim.Freq(o.freqMHz)*sim.MHz)
	if err != nil {
		return sdram.Spec{}, err
	}

	if o.powerUp > 0 {
		spec.PowerUp = o.powerUp
	}

	if o.refreshInterval > 0 {
		spec.RefreshInterval = o.refreshInterval
	}

	if err := spec.Validate(); err != nil {
		return sdram.Spec{}, err
	}

	return spec, nil
}
