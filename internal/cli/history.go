package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"hashmap-learn/persistent"
)

func newHistoryCmd(root *rootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := root.props
			if p.HistoryFile == "" {
				return errors.New("no history file configured, set --history-file")
			}
			h, err := persistent.OpenHistory(p.HistoryFile)
			if err != nil {
				return err
			}
			defer func() {
				_ = h.Close()
			}()
			runs, err := h.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "RUN\tSTARTED\tINPUT\tIMPL\tHASH\tCAPACITY\tFINAL\tWORDS\tTOP\tCHAINS\tAVG CHAIN\tTIME")
			for _, r := range runs {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%d\t%d\t%s (%d)\t%d\t%.3f\t%s\n",
					r.RunID, r.StartedAt.Local().Format(time.DateTime), r.Input, r.Implementation,
					r.HashFunction, r.InitialCapacity, r.FinalCapacity, r.UniqueWords,
					r.MostCommonWord, r.MostCommonCount, r.ChainCount, r.AverageChainLength, r.Elapsed)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to show, 0 shows all")
	return cmd
}
