package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/sarchlab/sdsim/config"
	"github.com/sarchlab/sdsim/schedule"
	"github.com/spf13/cobra"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Print the initialization script.",
	Long: "Print every scheduled event with its tick, the register writes " +
		"and the strobes it raises.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		envFile, _ := cmd.Flags().GetString("env")

		cfg, err := loadConfig(envFile)
		if err != nil {
			return err
		}

		events := schedule.SDInitScript(schedule.ScriptParams{
			RCA:         cfg.RCA,
			ScratchBase: cfg.ScratchBase,
		})

		return printSchedule(cmd.OutOrStdout(), events)
	},
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
	scheduleCmd.Flags().String("env", "", "Load settings from this .env file")
}

func loadConfig(envFile string) (config.Config, error) {
	if envFile != "" {
		return config.Load(envFile)
	}

	return config.Load()
}

func printSchedule(out io.Writer, events []schedule.Event) error {
	w := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)

	fmt.Fprintln(w, "TICK\tUNIT\tEVENT\tWRITES\tSTROBES")

	for _, e := range events {
		writes := make([]string, 0, len(e.Writes))
		for _, wr := range e.Writes {
			writes = append(writes,
				fmt.Sprintf("%s=0x%08x", wr.Register, wr.Value))
		}

		strobes := strings.Join(e.Strobes, ",")
		if e.Terminate {
			strobes = "finish"
		}

		fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\n",
			e.Tick, e.Tick/schedule.UnitTicks, e.Name,
			strings.Join(writes, " "), strobes)
	}

	return w.Flush()
}
