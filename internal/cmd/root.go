// Package cmd wires the cobra command tree, harness context, and the
// readers together. The root command disables cobra's own flag parsing and
// hands raw argv to internal/cli, since this module's flag grammar
// (long-options-only, schema-driven) is not something pflag's default
// binding captures on its own.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ioburst/iobench/internal/appconfig"
	"github.com/ioburst/iobench/internal/cli"
	"github.com/ioburst/iobench/internal/engine"
	"github.com/ioburst/iobench/internal/harness"
	"github.com/ioburst/iobench/internal/inireader"
	"github.com/ioburst/iobench/internal/jobtable"
	"github.com/ioburst/iobench/internal/membuf"
	"github.com/ioburst/iobench/internal/schema"
)

// Exit codes (spec.md §6): zero on success; nonzero when no jobs are
// defined, the worker table cannot be allocated, defaults cannot be filled,
// or an INI file cannot be opened. ExitUsage covers CLI grammar errors,
// additive to the four the spec names.
const (
	ExitOK = iota
	ExitNoJobs
	ExitTableAlloc
	ExitDefaultsFill
	ExitINIOpen
	ExitUsage
)

// defaultMaxJobs is the worker table's initial negotiated capacity request
// (spec.md §4.6 scenario 6 uses 1024 as its literal example).
const defaultMaxJobs = 1024

var version = "dev"

var exitCode int

// Execute runs the root command against os.Args and returns the process
// exit code.
func Execute() int {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "fio:", err)
		if exitCode == ExitOK {
			exitCode = ExitUsage
		}
	}
	return exitCode
}

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:                "iobench [flags] [jobfile ...]",
		Short:              "flexible storage-I/O workload generator and benchmarking harness",
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		RunE: func(_ *cobra.Command, args []string) error {
			return run(args)
		},
	}
}

func run(argv []string) error {
	cfg, err := appconfig.Load()
	if err != nil {
		exitCode = ExitDefaultsFill
		return err
	}

	table, err := jobtable.New(defaultMaxJobs)
	if err != nil {
		exitCode = ExitTableAlloc
		return err
	}

	var pinned *membuf.PinnedRegion
	if cfg.LockMemMiB > 0 {
		pinned, err = membuf.AcquirePinned(uint64(cfg.LockMemMiB), func(format string, args ...any) {
			log.Warnf(format, args...)
		})
		if err != nil {
			table.Close()
			exitCode = ExitTableAlloc
			return err
		}
	}

	ctx := harness.New(table, pinned, uuid.New().String(), os.Stdout, os.Stderr)
	ctx.Terse = cfg.Terse
	ctx.LockMemMiB = uint64(cfg.LockMemMiB)
	defer ctx.Close()

	applyConfigDefaults(cfg)

	if err := schema.ResetDefaults(ctx.Defaults.Job()); err != nil {
		exitCode = ExitDefaultsFill
		return err
	}

	hf, paths, err := cli.Parse(ctx, argv)
	if err != nil {
		exitCode = ExitUsage
		return err
	}

	switch {
	case hf.Version:
		fmt.Fprintln(ctx.Stdout, "iobench", version)
		return nil
	case hf.Help:
		fmt.Fprintln(ctx.Stdout, usageText)
		return nil
	case hf.CmdHelp != "":
		printCmdHelp(ctx.Stdout, hf.CmdHelp)
		return nil
	}

	ctx.Terse = ctx.Terse || hf.Minimal

	output := hf.Output
	if output == "" {
		output = cfg.DefaultOutputPath
	}
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("opening output %s: %w", output, err)
		}
		defer f.Close()
		ctx.Stdout = f
	}

	for _, path := range paths {
		if err := readJobFile(ctx, path); err != nil {
			exitCode = ExitINIOpen
			return err
		}
	}

	if len(ctx.Table.Jobs()) == 0 {
		exitCode = ExitNoJobs
		return errors.New("fio: no jobs defined")
	}

	for _, w := range ctx.Table.Jobs() {
		if err := w.ProvisionBuffer(); err != nil {
			return err
		}
		if err := w.SeedWorker(false); err != nil {
			return err
		}
	}

	return nil
}

func readJobFile(ctx *harness.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return inireader.Read(ctx, f)
}

// applyConfigDefaults seeds schema.Table's built-in defaults from the
// persisted ambient config, before ResetDefaults applies them to the
// defaults descriptor.
func applyConfigDefaults(cfg *appconfig.Config) {
	if cfg.DefaultIOEngine == "" {
		return
	}
	if _, err := engine.Lookup(cfg.DefaultIOEngine); err != nil {
		log.Warnf("fio: ignoring unknown config default_ioengine %q", cfg.DefaultIOEngine)
		return
	}
	for i := range schema.Table {
		if schema.Table[i].Name == "ioengine" {
			schema.Table[i].Default = cfg.DefaultIOEngine
		}
	}
}
