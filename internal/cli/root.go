// Package cli 实现 wordcount 命令行
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"hashmap-learn/config"
	"hashmap-learn/datastruct/dict"
	"hashmap-learn/lib/hashfunc"
	"hashmap-learn/lib/logger"
)

const envPrefix = "WORDCOUNT"

const (
	exitSuccess   = 0
	exitUserError = 1
)

// Version 在构建时通过 -ldflags "-X hashmap-learn/internal/cli.Version=..." 设置
var Version = "dev"

type rootOptions struct {
	configFile string
	props      *config.CounterProperties
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	defaults := config.Defaults()
	root := &cobra.Command{
		Use:   "wordcount",
		Short: "Count words with a pluggable hash map",
		Long: `wordcount counts word occurrences in text files using a chained hash map
(or one of its alternative implementations) and reports table statistics.

Settings are read in this order, later sources win: built-in defaults,
the file given by --config, WORDCOUNT_* environment variables, flags.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configFile, "config", "", "config file with one \"key value\" per line")
	pf.Int("initial-capacity", defaults.InitialCapacity, "initial bucket count, rounded up to a power of two")
	pf.Float64("load-factor", defaults.LoadFactor, "resize threshold as size/capacity, negative disables resizing")
	pf.String("hash-function", defaults.HashFunction, "hash function: "+strings.Join(hashfunc.Names(), ", "))
	pf.String("implementation", defaults.Implementation, "map implementation: "+strings.Join(dict.Implementations(), ", "))
	pf.Int("memory-limit", defaults.MemoryLimit, "memory budget in bytes for each map, 0 means unlimited")
	pf.Int("max-iterators", defaults.MaxIterators, "maximum live iterators per map, 0 means unlimited")
	pf.Bool("strict-modcount", defaults.StrictModCount, "invalidate iterators on every put, including value updates")
	pf.Bool("print-stats", defaults.PrintStats, "print map statistics")
	pf.Int("parallelism", defaults.Parallelism, "number of experiments to run at the same time")
	pf.String("history-file", defaults.HistoryFile, "SQLite file recording every run, empty disables history")
	pf.String("loglevel", defaults.LogLevel, "log level: debug, info, warn, error")

	root.AddCommand(newCountCmd(opts))
	root.AddCommand(newExperimentCmd(opts))
	root.AddCommand(newHistoryCmd(opts))
	root.AddCommand(newVersionCmd())
	return root
}

// load 依次应用默认值、配置文件、环境变量和命令行参数
func (o *rootOptions) load(cmd *cobra.Command) error {
	if o.configFile != "" {
		if err := config.SetupConfigProperties(o.configFile); err != nil {
			return err
		}
	} else {
		config.Properties = config.Defaults()
	}
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	err := config.Overlay(config.Properties, func(key string) (string, bool) {
		if !v.IsSet(key) {
			return "", false
		}
		return v.GetString(key), true
	})
	if err != nil {
		return err
	}
	o.props = config.Properties
	logger.Setup(&logger.Settings{
		Output: cmd.ErrOrStderr(),
		Level:  o.props.LogLevel,
	})
	logger.Debugf("settings: %+v", *o.props)
	return nil
}

// Execute 运行根命令，出错时以非零状态退出
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		os.Exit(exitUserError)
	}
	os.Exit(exitSuccess)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the wordcount version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "wordcount %s\n", Version)
			return err
		},
	}
}
