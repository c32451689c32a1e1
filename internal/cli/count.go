package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"hashmap-learn/config"
	"hashmap-learn/datastruct/dict"
	"hashmap-learn/lib/logger"
	"hashmap-learn/persistent"
	"hashmap-learn/wordcount"
)

func newCountCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "count <input file>",
		Short: "Count words in a file and report the most common one",
		Long: `Count reads the input file ("-" for standard input), counts every word
(maximal run of ASCII letters, case-insensitive) and prints the number of
unique words, the most common word and, with --print-stats, the map statistics.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCount(cmd.Context(), cmd.OutOrStdout(), root.props, args[0])
		},
	}
	return cmd
}

func openInput(name string) (io.ReadCloser, error) {
	if name == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	file, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("unable to open input file %q: %w", name, err)
	}
	return file, nil
}

func runCount(ctx context.Context, out io.Writer, p *config.CounterProperties, input string) error {
	start := time.Now()
	settings := wordcount.SettingsFrom(p)
	m, err := settings.NewMap(p.InitialCapacity)
	if err != nil {
		return err
	}
	defer m.Free()

	r, err := openInput(input)
	if err != nil {
		return err
	}
	_, err = wordcount.Count(r, m)
	_ = r.Close()
	if err != nil {
		dict.LogOnError(m)
		return err
	}

	res, err := wordcount.Summarize(m, p.InitialCapacity)
	if err != nil {
		return err
	}
	if p.PrintStats {
		if _, err := io.WriteString(out, res.StatsBlock); err != nil {
			return err
		}
	}
	if err := res.FprintSummary(out); err != nil {
		return err
	}

	res.Elapsed = time.Since(start)
	return recordRuns(ctx, p, input, start, []*wordcount.Result{res})
}

// recordRuns 在配置了 history-file 时保存结果
func recordRuns(ctx context.Context, p *config.CounterProperties, input string, start time.Time, results []*wordcount.Result) error {
	if p.HistoryFile == "" {
		return nil
	}
	h, err := persistent.OpenHistory(p.HistoryFile)
	if err != nil {
		return err
	}
	defer func() {
		_ = h.Close()
	}()
	for _, res := range results {
		id, err := h.Record(ctx, toRunRecord(p, input, start, res))
		if err != nil {
			return err
		}
		logger.Debugf("recorded run %s", id)
	}
	return nil
}

func toRunRecord(p *config.CounterProperties, input string, start time.Time, res *wordcount.Result) persistent.RunRecord {
	return persistent.RunRecord{
		StartedAt:          start,
		Input:              input,
		Implementation:     p.Implementation,
		HashFunction:       p.HashFunction,
		LoadFactor:         p.LoadFactor,
		InitialCapacity:    res.Capacity,
		FinalCapacity:      res.Stats.Capacity,
		UniqueWords:        res.UniqueWords,
		MostCommonWord:     res.Word,
		MostCommonCount:    res.Count,
		ChainCount:         res.Stats.ChainCount,
		AverageChainLength: res.Stats.AverageChainLength,
		ModCount:           res.Stats.ModCount,
		Elapsed:            res.Elapsed,
	}
}
