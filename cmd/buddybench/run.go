package main

import (
	"log/slog"

	"github.com/buddyalloc/buddyalloc/bench"
	"github.com/buddyalloc/buddyalloc/config"
	"github.com/buddyalloc/buddyalloc/pool"
	"github.com/buddyalloc/buddyalloc/telemetry"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

func runBenchmark(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	applyCLIOverrides(cmd, &cfg)

	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	logger := newLogger()

	p, err := pool.Construct(cfg.MinOrder, cfg.MaxOrder, logger)
	if err != nil {
		return errors.Wrap(err, "constructing pool")
	}
	defer p.Destroy()

	sink, err := telemetry.Open(cfg.Out, telemetry.Format(cfg.Format))
	if err != nil {
		return errors.Wrap(err, "opening telemetry sink")
	}
	defer sink.Close()

	h := bench.New(p, sink, cfg, logger)

	logger.Info("starting benchmark",
		slog.String("test", string(cfg.Test)),
		slog.Int("ops", cfg.Ops),
		slog.Int("minOrder", cfg.MinOrder),
		slog.Int("maxOrder", cfg.MaxOrder),
		slog.Int("threads", cfg.Threads),
	)

	return h.Run()
}

// applyCLIOverrides merges explicitly-passed CLI flags over cfg, which at
// this point already reflects the config file merged over the built-in
// defaults. A flag that was never set on the command line is left alone,
// preserving the CLI > config file > defaults precedence.
func applyCLIOverrides(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()

	if flags.Changed("test") {
		cfg.Test = config.WorkloadKind(flagTest)
	}
	if flags.Changed("ops") {
		cfg.Ops = flagOps
	}
	if flags.Changed("block-size") {
		cfg.BlockSize = flagBlockSize
	}
	if flags.Changed("min-block-size") {
		cfg.MinBlockSize = flagMinBlockSize
	}
	if flags.Changed("max-block-size") {
		cfg.MaxBlockSize = flagMaxBlockSize
	}
	if flags.Changed("min-order") {
		cfg.MinOrder = flagMinOrder
	}
	if flags.Changed("max-order") {
		cfg.MaxOrder = flagMaxOrder
	}
	if flags.Changed("alignment") {
		cfg.Alignment = flagAlignment
	}
	if flags.Changed("threads") {
		cfg.Threads = flagThreads
	}
	if flags.Changed("duration") {
		cfg.DurationSecs = flagDuration
	}
	if flags.Changed("seed") {
		cfg.Seed = flagSeed
	}
	if flags.Changed("out") {
		cfg.Out = flagOut
	}
	if flags.Changed("format") {
		cfg.Format = config.OutputFormat(flagFormat)
	}
}
