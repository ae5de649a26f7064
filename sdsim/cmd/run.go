package cmd

import (
	"fmt"
	"log"

	"github.com/sarchlab/sdsim/config"
	"github.com/sarchlab/sdsim/simulation"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the initialization script.",
	Long: "Run the initialization script until its terminating event. " +
		"Settings come from SDSIM_* variables and .env files, and the flags " +
		"override them.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		envFile, _ := cmd.Flags().GetString("env")

		cfg, err := loadConfig(envFile)
		if err != nil {
			return err
		}

		if err := applyRunFlags(cmd, &cfg); err != nil {
			return err
		}

		return run(cfg)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	addRunFlags(runCmd)
}

func addRunFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("env", "", "Load settings from this .env file")
	f.Bool("register-stage", false,
		"Insert a one-cycle register stage into the bus")
	f.Bool("monitor", false, "Serve the monitoring API while running")
	f.Int("monitor-port", 0, "Port of the monitoring server, 0 for any")
	f.Bool("open-browser", false, "Open the monitoring page in a browser")
	f.String("trace-file", "", "Record tasks and commands into this file")
	f.Bool("verify", false, "Check the results after the run")
}

func applyRunFlags(cmd *cobra.Command, cfg *config.Config) error {
	f := cmd.Flags()

	var err error

	if f.Changed("register-stage") {
		cfg.RegisterStage, err = f.GetBool("register-stage")
	}

	if err == nil && f.Changed("monitor") {
		cfg.Monitor, err = f.GetBool("monitor")
	}

	if err == nil && f.Changed("monitor-port") {
		cfg.MonitorPort, err = f.GetInt("monitor-port")
	}

	if err == nil && f.Changed("open-browser") {
		cfg.OpenBrowser, err = f.GetBool("open-browser")
	}

	if err == nil && f.Changed("trace-file") {
		cfg.TraceFile, err = f.GetString("trace-file")
	}

	if err == nil && f.Changed("verify") {
		cfg.Verify, err = f.GetBool("verify")
	}

	if err != nil {
		return err
	}

	if cfg.OpenBrowser && !cfg.Monitor {
		return fmt.Errorf("--open-browser needs --monitor")
	}

	return cfg.Validate()
}

func run(cfg config.Config) error {
	s := simulation.MakeBuilder().WithConfig(cfg).Build()
	defer s.Terminate()

	if err := s.Run(); err != nil {
		return err
	}

	log.Printf("run finished at tick %d", s.Engine().CurrentTick())

	if !cfg.Verify {
		return nil
	}

	if err := s.Verify(); err != nil {
		return err
	}

	log.Printf("verification passed")

	return nil
}
