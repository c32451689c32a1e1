package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"hashmap-learn/wordcount"
)

type experimentOptions struct {
	output string
}

func newExperimentCmd(root *rootOptions) *cobra.Command {
	opts := &experimentOptions{}
	cmd := &cobra.Command{
		Use:   "experiment <input file> [capacity...]",
		Short: "Count the same input once per initial capacity and compare",
		Long: `Experiment counts the words of the input file once for every initial
capacity and writes, for each run, the capacity, the map statistics, the
results and the time taken. Capacities accept decimal, 0x hex and 0 octal
forms; without any, the "capacities" setting is used.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := root.props
			capacityArgs := args[1:]
			if len(capacityArgs) == 0 {
				capacityArgs = p.Capacities
			}
			capacities, err := wordcount.ParseCapacities(capacityArgs)
			if err != nil {
				return err
			}
			input, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("unable to open input file %q: %w", args[0], err)
			}
			out := cmd.OutOrStdout()
			var file *os.File
			if opts.output != "" {
				if file, err = os.Create(opts.output); err != nil {
					return fmt.Errorf("unable to open output file %q: %w", opts.output, err)
				}
				defer func() {
					_ = file.Close()
				}()
				out = file
			}
			start := time.Now()
			results, err := wordcount.RunExperiments(cmd.Context(), input, out, wordcount.SettingsFrom(p), capacities)
			if err != nil {
				return err
			}
			if file != nil {
				if err := file.Close(); err != nil {
					return fmt.Errorf("unable to close output file: %w", err)
				}
			}
			return recordRuns(cmd.Context(), p, args[0], start, results)
		},
	}
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the report to this file instead of standard output")
	return cmd
}
