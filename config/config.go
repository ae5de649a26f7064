// Package config holds the run-level settings of the harness.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables read by Load.
const (
	EnvRegisterStage = "SDSIM_REGISTER_STAGE"
	EnvMonitor       = "SDSIM_MONITOR"
	EnvMonitorPort   = "SDSIM_MONITOR_PORT"
	EnvOpenBrowser   = "SDSIM_OPEN_BROWSER"
	EnvTraceFile     = "SDSIM_TRACE_FILE"
	EnvVerify        = "SDSIM_VERIFY"
	EnvRCA           = "SDSIM_RCA"
	EnvScratchBase   = "SDSIM_SCRATCH_BASE"
	EnvTickLimit     = "SDSIM_TICK_LIMIT"
)

// Config is the configuration of a single run.
type Config struct {
	RegisterStage bool
	Monitor       bool
	MonitorPort   int
	OpenBrowser   bool
	TraceFile     string
	Verify        bool
	RCA           uint16
	ScratchBase   uint32

	// TickLimit stops a run that never reaches its terminating event. 0
	// means no limit.
	TickLimit uint64
}

// Default returns the configuration of the reference run.
func Default() Config {
	return Config{
		RCA:         0x1337,
		ScratchBase: 0x10000000,
		TickLimit:   1 << 20,
	}
}

// Load reads the given .env files, or ".env" if none is given, and applies
// the SDSIM_* variables on top of the defaults. Variables already set in the
// environment win over the files. A missing default .env file is not an
// error.
func Load(envFiles ...string) (Config, error) {
	err := godotenv.Load(envFiles...)
	if err != nil && (len(envFiles) > 0 || !errors.Is(err, fs.ErrNotExist)) {
		return Config{}, fmt.Errorf("loading env files: %w", err)
	}

	c := Default()
	if err := c.ApplyEnv(); err != nil {
		return Config{}, err
	}

	return c, nil
}

// ApplyEnv overrides fields with the SDSIM_* variables that are set.
func (c *Config) ApplyEnv() error {
	for _, f := range []func() error{
		func() error { return lookupBool(EnvRegisterStage, &c.RegisterStage) },
		func() error { return lookupBool(EnvMonitor, &c.Monitor) },
		func() error { return lookupBool(EnvOpenBrowser, &c.OpenBrowser) },
		func() error { return lookupBool(EnvVerify, &c.Verify) },
		func() error { return lookupInt(EnvMonitorPort, &c.MonitorPort) },
		func() error { return lookupUint(EnvRCA, 16, &c.RCA) },
		func() error { return lookupUint(EnvScratchBase, 32, &c.ScratchBase) },
		func() error { return lookupUint(EnvTickLimit, 64, &c.TickLimit) },
	} {
		if err := f(); err != nil {
			return err
		}
	}

	if v, ok := os.LookupEnv(EnvTraceFile); ok {
		c.TraceFile = v
	}

	return c.Validate()
}

// Validate checks the values that the harness cannot run with.
func (c Config) Validate() error {
	if c.RCA == 0 {
		return errors.New("RCA must not be zero")
	}

	if c.ScratchBase%4 != 0 {
		return fmt.Errorf("scratch base 0x%x is not word aligned", c.ScratchBase)
	}

	if c.MonitorPort < 0 || c.MonitorPort > 65535 {
		return fmt.Errorf("monitor port %d is out of range", c.MonitorPort)
	}

	return nil
}

func lookupBool(name string, dst *bool) error {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return nil
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	*dst = b

	return nil
}

func lookupInt(name string, dst *int) error {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	*dst = n

	return nil
}

type unsigned interface {
	~uint16 | ~uint32 | ~uint64
}

func lookupUint[T unsigned](name string, bits int, dst *T) error {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return nil
	}

	n, err := strconv.ParseUint(v, 0, bits)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	*dst = T(n)

	return nil
}
